package service

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"comandero/internal/domain"
	"comandero/internal/dto"
	apperrors "comandero/internal/errors"
)

type TxRunner interface {
	WithinTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error
}

type MesaRepository interface {
	FindByIDTx(ctx context.Context, tx *sql.Tx, id int) (*domain.Mesa, error)
}

type ComandaRepository interface {
	ListByMesaTx(ctx context.Context, tx *sql.Tx, mesaID int) ([]domain.Comanda, error)
	UpdatePagada(ctx context.Context, tx *sql.Tx, id int, pagada bool) error
}

type DetalleRepository interface {
	SumSubtotalsByComandaTx(ctx context.Context, tx *sql.Tx, comandaID int) (decimal.Decimal, error)
	CountByComandaTx(ctx context.Context, tx *sql.Tx, comandaID int) (int, error)
}

type StaffDirectory interface {
	FindByID(ctx context.Context, id string) (*domain.Staff, error)
}

// BillingService reconciles a mesa's comandas into a payable total. Each
// summary and each bulk payment runs in a single repeatable-read
// transaction so it never observes a mix of pre- and post-mutation rows.
type BillingService struct {
	txr      TxRunner
	mesas    MesaRepository
	comandas ComandaRepository
	detalles DetalleRepository
	staff    StaffDirectory
	logger   *zap.Logger
}

func NewBillingService(
	txr TxRunner,
	mesas MesaRepository,
	comandas ComandaRepository,
	detalles DetalleRepository,
	staff StaffDirectory,
	logger *zap.Logger,
) *BillingService {
	return &BillingService{
		txr:      txr,
		mesas:    mesas,
		comandas: comandas,
		detalles: detalles,
		staff:    staff,
		logger:   logger,
	}
}

// TableSummary partitions the mesa's comandas into completed-unpaid,
// paid and pending, and totals what is still owed. A comanda's total counts
// all of its detalle subtotals, cancelled lines included.
func (s *BillingService) TableSummary(ctx context.Context, mesaID int) (*dto.FacturacionMesa, error) {
	var summary *dto.FacturacionMesa

	err := s.txr.WithinTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead}, func(tx *sql.Tx) error {
		mesa, err := s.mesas.FindByIDTx(ctx, tx, mesaID)
		if err != nil {
			return err
		}

		comandas, err := s.comandas.ListByMesaTx(ctx, tx, mesaID)
		if err != nil {
			return err
		}

		facturables := 0
		pagadas := 0
		pendientes := 0
		totalAPagar := decimal.Zero
		lines := make([]dto.ComandaFacturacion, 0, len(comandas))

		for _, c := range comandas {
			total, err := s.detalles.SumSubtotalsByComandaTx(ctx, tx, c.ID)
			if err != nil {
				return err
			}
			cantidad, err := s.detalles.CountByComandaTx(ctx, tx, c.ID)
			if err != nil {
				return err
			}

			if c.Facturable() {
				facturables++
				totalAPagar = totalAPagar.Add(total)
			}
			if c.Pagada {
				pagadas++
			}
			if !c.Estado.Terminal() {
				pendientes++
			}

			lines = append(lines, dto.ComandaFacturacion{
				ComandaID:         c.ID,
				Fecha:             c.Fecha,
				Estado:            string(c.Estado),
				Mesero:            s.staffName(ctx, c.MeseroID),
				Cocinero:          s.optionalStaffName(ctx, c.CocineroID),
				Total:             total,
				CantidadProductos: cantidad,
				Pagada:            c.Pagada,
			})
		}

		todasCompletadas := len(comandas) > 0
		for _, c := range comandas {
			if !c.Estado.Terminal() {
				todasCompletadas = false
				break
			}
		}

		summary = &dto.FacturacionMesa{
			MesaID:              mesa.ID,
			Ubicacion:           mesa.Ubicacion,
			TotalComandas:       len(comandas),
			ComandasCompletadas: facturables,
			ComandasPendientes:  pendientes,
			ComandasPagadas:     pagadas,
			TodasCompletadas:    todasCompletadas,
			// Vacuously true when nothing is left to pay.
			TodasPagadas: facturables == 0,
			TotalAPagar:  totalAPagar,
			Comandas:     lines,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// MarkAllPaidForTable pays every completed-and-unpaid comanda of the mesa
// and returns how many it touched. A second invocation finds none and
// returns 0.
func (s *BillingService) MarkAllPaidForTable(ctx context.Context, mesaID int) (int, error) {
	count := 0
	err := s.txr.WithinTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead}, func(tx *sql.Tx) error {
		if _, err := s.mesas.FindByIDTx(ctx, tx, mesaID); err != nil {
			return err
		}

		comandas, err := s.comandas.ListByMesaTx(ctx, tx, mesaID)
		if err != nil {
			return err
		}

		for _, c := range comandas {
			if !c.Facturable() {
				continue
			}
			if err := s.comandas.UpdatePagada(ctx, tx, c.ID, true); err != nil {
				return err
			}
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("comandas paid", zap.Int("mesaId", mesaID), zap.Int("count", count))
	return count, nil
}

func (s *BillingService) staffName(ctx context.Context, id string) string {
	staff, err := s.staff.FindByID(ctx, id)
	if err != nil {
		if _, ok := apperrors.IsNotFoundError(err); ok {
			return "N/A"
		}
		s.logger.Warn("staff lookup failed", zap.String("staffId", id), zap.Error(err))
		return "N/A"
	}
	return staff.Nombre
}

func (s *BillingService) optionalStaffName(ctx context.Context, id *string) string {
	if id == nil {
		return "N/A"
	}
	return s.staffName(ctx, *id)
}
