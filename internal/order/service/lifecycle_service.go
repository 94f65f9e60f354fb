package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"comandero/internal/domain"
	apperrors "comandero/internal/errors"
)

type TxRunner interface {
	WithinTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error
}

type ComandaRepository interface {
	FindByID(ctx context.Context, id int) (*domain.Comanda, error)
	FindByIDTx(ctx context.Context, tx *sql.Tx, id int) (*domain.Comanda, error)
	Insert(ctx context.Context, tx *sql.Tx, c domain.Comanda) (int, error)
	UpdateEstado(ctx context.Context, tx *sql.Tx, id int, estado domain.ComandaStatus) error
	UpdateCocinero(ctx context.Context, tx *sql.Tx, id int, cocineroID string) error
	UpdatePagada(ctx context.Context, tx *sql.Tx, id int, pagada bool) error
	Delete(ctx context.Context, tx *sql.Tx, id int) error
	ListByMesa(ctx context.Context, mesaID int) ([]domain.Comanda, error)
	ListByMesaTx(ctx context.Context, tx *sql.Tx, mesaID int) ([]domain.Comanda, error)
	ListByMesero(ctx context.Context, meseroID string) ([]domain.Comanda, error)
	ListByEstado(ctx context.Context, estado domain.ComandaStatus) ([]domain.Comanda, error)
	ListByFechaRange(ctx context.Context, desde, hasta time.Time) ([]domain.Comanda, error)
	CountByEstado(ctx context.Context, estado domain.ComandaStatus) (int, error)
	SumVentasBetween(ctx context.Context, desde, hasta time.Time) (decimal.Decimal, error)
}

type DetalleRepository interface {
	ListByComandaTx(ctx context.Context, tx *sql.Tx, comandaID int) ([]domain.Detalle, error)
	DeleteByComanda(ctx context.Context, tx *sql.Tx, comandaID int) error
}

type ProductoRepository interface {
	AdjustStock(ctx context.Context, tx *sql.Tx, id int, delta int) error
}

type StaffDirectory interface {
	FindByID(ctx context.Context, id string) (*domain.Staff, error)
}

type MesaDirectory interface {
	FindByID(ctx context.Context, id int) (*domain.Mesa, error)
}

type TableOccupier interface {
	Occupy(ctx context.Context, tx *sql.Tx, mesaID int) error
}

// LifecycleService owns the comanda state machine: creation, cocinero
// assignment, transitions, cancellation, the pagada flag and the bulk
// per-mesa operations billing relies on.
type LifecycleService struct {
	txr       TxRunner
	comandas  ComandaRepository
	detalles  DetalleRepository
	productos ProductoRepository
	staff     StaffDirectory
	mesas     MesaDirectory
	occupier  TableOccupier
	logger    *zap.Logger
}

func NewLifecycleService(
	txr TxRunner,
	comandas ComandaRepository,
	detalles DetalleRepository,
	productos ProductoRepository,
	staff StaffDirectory,
	mesas MesaDirectory,
	occupier TableOccupier,
	logger *zap.Logger,
) *LifecycleService {
	return &LifecycleService{
		txr:       txr,
		comandas:  comandas,
		detalles:  detalles,
		productos: productos,
		staff:     staff,
		mesas:     mesas,
		occupier:  occupier,
		logger:    logger,
	}
}

// Create opens a comanda in PENDIENTE against the mesa and mesero, and marks
// the mesa occupied if it is not already.
func (s *LifecycleService) Create(ctx context.Context, mesaID int, meseroID string) (*domain.Comanda, error) {
	if _, err := s.mesas.FindByID(ctx, mesaID); err != nil {
		return nil, err
	}
	if _, err := s.staff.FindByID(ctx, meseroID); err != nil {
		return nil, err
	}

	comanda := domain.Comanda{
		MesaID:   mesaID,
		MeseroID: meseroID,
		Estado:   domain.ComandaStatusPendiente,
		Pagada:   false,
		Fecha:    time.Now().UTC(),
	}

	err := s.txr.WithinTx(ctx, nil, func(tx *sql.Tx) error {
		id, err := s.comandas.Insert(ctx, tx, comanda)
		if err != nil {
			return err
		}
		comanda.ID = id

		return s.occupier.Occupy(ctx, tx, mesaID)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("comanda created",
		zap.Int("comandaId", comanda.ID),
		zap.Int("mesaId", mesaID),
		zap.String("meseroId", meseroID),
	)
	return &comanda, nil
}

// AssignCook sets the cocinero without touching the estado; use
// StartPreparation for the combined assign-and-transition.
func (s *LifecycleService) AssignCook(ctx context.Context, comandaID int, cocineroID string) (*domain.Comanda, error) {
	if _, err := s.staff.FindByID(ctx, cocineroID); err != nil {
		return nil, err
	}

	var out *domain.Comanda
	err := s.txr.WithinTx(ctx, nil, func(tx *sql.Tx) error {
		comanda, err := s.comandas.FindByIDTx(ctx, tx, comandaID)
		if err != nil {
			return err
		}

		if err := s.comandas.UpdateCocinero(ctx, tx, comandaID, cocineroID); err != nil {
			return err
		}

		comanda.CocineroID = &cocineroID
		out = comanda
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// StartPreparation assigns the cocinero and moves the comanda to
// PREPARACION in one step.
func (s *LifecycleService) StartPreparation(ctx context.Context, comandaID int, cocineroID string) (*domain.Comanda, error) {
	if _, err := s.staff.FindByID(ctx, cocineroID); err != nil {
		return nil, err
	}

	var out *domain.Comanda
	err := s.txr.WithinTx(ctx, nil, func(tx *sql.Tx) error {
		comanda, err := s.comandas.FindByIDTx(ctx, tx, comandaID)
		if err != nil {
			return err
		}

		if !comanda.Estado.CanTransitionTo(domain.ComandaStatusPreparacion) {
			return apperrors.NewConflictError(fmt.Sprintf(
				"invalid transition from %s to %s", comanda.Estado, domain.ComandaStatusPreparacion))
		}

		if err := s.comandas.UpdateEstado(ctx, tx, comandaID, domain.ComandaStatusPreparacion); err != nil {
			return err
		}
		if err := s.comandas.UpdateCocinero(ctx, tx, comandaID, cocineroID); err != nil {
			return err
		}

		comanda.Estado = domain.ComandaStatusPreparacion
		comanda.CocineroID = &cocineroID
		out = comanda
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("comanda in preparation", zap.Int("comandaId", comandaID), zap.String("cocineroId", cocineroID))
	return out, nil
}

// Transition moves the comanda to target if the state machine allows it.
// Terminal states are never left.
func (s *LifecycleService) Transition(ctx context.Context, comandaID int, target domain.ComandaStatus) (*domain.Comanda, error) {
	var out *domain.Comanda
	err := s.txr.WithinTx(ctx, nil, func(tx *sql.Tx) error {
		comanda, err := s.comandas.FindByIDTx(ctx, tx, comandaID)
		if err != nil {
			return err
		}

		if !comanda.Estado.CanTransitionTo(target) {
			return apperrors.NewConflictError(fmt.Sprintf(
				"invalid transition from %s to %s", comanda.Estado, target))
		}

		if err := s.comandas.UpdateEstado(ctx, tx, comandaID, target); err != nil {
			return err
		}

		comanda.Estado = target
		out = comanda
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("comanda transitioned", zap.Int("comandaId", comandaID), zap.String("estado", string(target)))
	return out, nil
}

func (s *LifecycleService) Cancel(ctx context.Context, comandaID int) (*domain.Comanda, error) {
	return s.Transition(ctx, comandaID, domain.ComandaStatusCancelado)
}

// MarkPaid flips the pagada flag. Only a COMPLETADO comanda can be paid;
// paying an already-paid comanda is a no-op, not an error.
func (s *LifecycleService) MarkPaid(ctx context.Context, comandaID int) (*domain.Comanda, error) {
	var out *domain.Comanda
	err := s.txr.WithinTx(ctx, nil, func(tx *sql.Tx) error {
		comanda, err := s.comandas.FindByIDTx(ctx, tx, comandaID)
		if err != nil {
			return err
		}

		if comanda.Estado != domain.ComandaStatusCompletado {
			return apperrors.NewConflictError(fmt.Sprintf(
				"comanda %d cannot be paid in estado %s", comandaID, comanda.Estado))
		}

		if comanda.Pagada {
			out = comanda
			return nil
		}

		if err := s.comandas.UpdatePagada(ctx, tx, comandaID, true); err != nil {
			return err
		}

		comanda.Pagada = true
		out = comanda
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("comanda paid", zap.Int("comandaId", comandaID))
	return out, nil
}

// FinalizeAllForTable completes every non-terminal comanda of the mesa and
// returns how many it moved. Already completed or cancelled comandas are
// untouched, so re-invocation returns 0.
func (s *LifecycleService) FinalizeAllForTable(ctx context.Context, mesaID int) (int, error) {
	if _, err := s.mesas.FindByID(ctx, mesaID); err != nil {
		return 0, err
	}

	count := 0
	err := s.txr.WithinTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead}, func(tx *sql.Tx) error {
		comandas, err := s.comandas.ListByMesaTx(ctx, tx, mesaID)
		if err != nil {
			return err
		}

		for _, c := range comandas {
			if c.Estado.Terminal() {
				continue
			}
			if err := s.comandas.UpdateEstado(ctx, tx, c.ID, domain.ComandaStatusCompletado); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("comandas finalized", zap.Int("mesaId", mesaID), zap.Int("count", count))
	return count, nil
}

// AllCompletedForTable is true only when the mesa has at least one comanda
// and every one of them is terminal. An empty mesa cannot bill.
func (s *LifecycleService) AllCompletedForTable(ctx context.Context, mesaID int) (bool, error) {
	if _, err := s.mesas.FindByID(ctx, mesaID); err != nil {
		return false, err
	}

	comandas, err := s.comandas.ListByMesa(ctx, mesaID)
	if err != nil {
		return false, err
	}

	if len(comandas) == 0 {
		return false, nil
	}

	for _, c := range comandas {
		if !c.Estado.Terminal() {
			return false, nil
		}
	}
	return true, nil
}

// Delete removes the comanda and its detalles, restoring every reserved
// unit to its producto first. All-or-nothing.
func (s *LifecycleService) Delete(ctx context.Context, comandaID int) error {
	err := s.txr.WithinTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead}, func(tx *sql.Tx) error {
		if _, err := s.comandas.FindByIDTx(ctx, tx, comandaID); err != nil {
			return err
		}

		detalles, err := s.detalles.ListByComandaTx(ctx, tx, comandaID)
		if err != nil {
			return err
		}

		for _, d := range detalles {
			if err := s.productos.AdjustStock(ctx, tx, d.ProductoID, d.Cantidad); err != nil {
				return err
			}
		}

		if err := s.detalles.DeleteByComanda(ctx, tx, comandaID); err != nil {
			return err
		}

		return s.comandas.Delete(ctx, tx, comandaID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("comanda deleted", zap.Int("comandaId", comandaID))
	return nil
}

func (s *LifecycleService) GetByID(ctx context.Context, comandaID int) (*domain.Comanda, error) {
	return s.comandas.FindByID(ctx, comandaID)
}

func (s *LifecycleService) ListByMesa(ctx context.Context, mesaID int) ([]domain.Comanda, error) {
	if _, err := s.mesas.FindByID(ctx, mesaID); err != nil {
		return nil, err
	}
	return s.comandas.ListByMesa(ctx, mesaID)
}

func (s *LifecycleService) ListByMesero(ctx context.Context, meseroID string) ([]domain.Comanda, error) {
	if _, err := s.staff.FindByID(ctx, meseroID); err != nil {
		return nil, err
	}
	return s.comandas.ListByMesero(ctx, meseroID)
}

func (s *LifecycleService) ListByEstado(ctx context.Context, estado domain.ComandaStatus) ([]domain.Comanda, error) {
	return s.comandas.ListByEstado(ctx, estado)
}

func (s *LifecycleService) ListByFechaRange(ctx context.Context, desde, hasta time.Time) ([]domain.Comanda, error) {
	if desde.After(hasta) {
		return nil, apperrors.NewValidationError("desde must not be after hasta", apperrors.ValidationDetail{
			Field:   "desde",
			Message: "start date must not be after end date",
		})
	}
	return s.comandas.ListByFechaRange(ctx, desde, hasta)
}

func (s *LifecycleService) CountByEstado(ctx context.Context, estado domain.ComandaStatus) (int, error) {
	return s.comandas.CountByEstado(ctx, estado)
}

// SalesTotalForRange totals all detalle subtotals of comandas dated within
// the range.
func (s *LifecycleService) SalesTotalForRange(ctx context.Context, desde, hasta time.Time) (decimal.Decimal, error) {
	if desde.After(hasta) {
		return decimal.Zero, apperrors.NewValidationError("desde must not be after hasta", apperrors.ValidationDetail{
			Field:   "desde",
			Message: "start date must not be after end date",
		})
	}
	return s.comandas.SumVentasBetween(ctx, desde, hasta)
}
