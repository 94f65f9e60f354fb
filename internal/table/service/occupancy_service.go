package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"comandero/internal/domain"
)

type TxRunner interface {
	WithinTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error
}

type MesaRepository interface {
	FindByID(ctx context.Context, id int) (*domain.Mesa, error)
	FindByIDTx(ctx context.Context, tx *sql.Tx, id int) (*domain.Mesa, error)
	UpdateEstado(ctx context.Context, tx *sql.Tx, id int, estado domain.MesaStatus) error
}

// OccupancyService flips mesa occupancy as a side effect of the comanda
// lifecycle. It holds no state of its own beyond Mesa.Estado. Releasing a
// mesa after billing is the caller's composition, never automatic.
type OccupancyService struct {
	txr    TxRunner
	mesas  MesaRepository
	logger *zap.Logger
}

func NewOccupancyService(txr TxRunner, mesas MesaRepository, logger *zap.Logger) *OccupancyService {
	return &OccupancyService{txr: txr, mesas: mesas, logger: logger}
}

// Occupy marks the mesa OCUPADO inside the caller's transaction, unless it
// already is. Invoked when a comanda is created against the mesa.
func (s *OccupancyService) Occupy(ctx context.Context, tx *sql.Tx, mesaID int) error {
	mesa, err := s.mesas.FindByIDTx(ctx, tx, mesaID)
	if err != nil {
		return err
	}

	if mesa.Ocupada() {
		return nil
	}

	if err := s.mesas.UpdateEstado(ctx, tx, mesaID, domain.MesaStatusOcupado); err != nil {
		return err
	}

	s.logger.Info("mesa occupied", zap.Int("mesaId", mesaID), zap.String("previousEstado", string(mesa.Estado)))
	return nil
}

// Release sets the mesa back to DISPONIBLE.
func (s *OccupancyService) Release(ctx context.Context, mesaID int) (*domain.Mesa, error) {
	err := s.txr.WithinTx(ctx, nil, func(tx *sql.Tx) error {
		if _, err := s.mesas.FindByIDTx(ctx, tx, mesaID); err != nil {
			return err
		}
		return s.mesas.UpdateEstado(ctx, tx, mesaID, domain.MesaStatusDisponible)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("mesa released", zap.Int("mesaId", mesaID))
	return s.mesas.FindByID(ctx, mesaID)
}

func (s *OccupancyService) Reserve(ctx context.Context, mesaID int) (*domain.Mesa, error) {
	err := s.txr.WithinTx(ctx, nil, func(tx *sql.Tx) error {
		if _, err := s.mesas.FindByIDTx(ctx, tx, mesaID); err != nil {
			return err
		}
		return s.mesas.UpdateEstado(ctx, tx, mesaID, domain.MesaStatusReservado)
	})
	if err != nil {
		return nil, err
	}

	return s.mesas.FindByID(ctx, mesaID)
}
