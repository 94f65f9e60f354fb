package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"comandero/internal/domain"
	apperrors "comandero/internal/errors"
)

type mockTxRunner struct{}

func (m *mockTxRunner) WithinTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

type mockMesaRepository struct {
	FindByIDFunc     func(ctx context.Context, id int) (*domain.Mesa, error)
	FindByIDTxFunc   func(ctx context.Context, tx *sql.Tx, id int) (*domain.Mesa, error)
	UpdateEstadoFunc func(ctx context.Context, tx *sql.Tx, id int, estado domain.MesaStatus) error
}

func (m *mockMesaRepository) FindByID(ctx context.Context, id int) (*domain.Mesa, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockMesaRepository) FindByIDTx(ctx context.Context, tx *sql.Tx, id int) (*domain.Mesa, error) {
	return m.FindByIDTxFunc(ctx, tx, id)
}

func (m *mockMesaRepository) UpdateEstado(ctx context.Context, tx *sql.Tx, id int, estado domain.MesaStatus) error {
	return m.UpdateEstadoFunc(ctx, tx, id, estado)
}

func TestOccupy_MarksDisponibleMesaOcupado(t *testing.T) {
	var newEstado domain.MesaStatus
	mesas := &mockMesaRepository{
		FindByIDTxFunc: func(ctx context.Context, tx *sql.Tx, id int) (*domain.Mesa, error) {
			return &domain.Mesa{ID: id, Estado: domain.MesaStatusDisponible}, nil
		},
		UpdateEstadoFunc: func(ctx context.Context, tx *sql.Tx, id int, estado domain.MesaStatus) error {
			newEstado = estado
			return nil
		},
	}

	svc := NewOccupancyService(&mockTxRunner{}, mesas, zap.NewNop())

	err := svc.Occupy(context.Background(), nil, 5)
	assert.NoError(t, err)
	assert.Equal(t, domain.MesaStatusOcupado, newEstado)
}

func TestOccupy_AlreadyOcupadoIsNoOp(t *testing.T) {
	mesas := &mockMesaRepository{
		FindByIDTxFunc: func(ctx context.Context, tx *sql.Tx, id int) (*domain.Mesa, error) {
			return &domain.Mesa{ID: id, Estado: domain.MesaStatusOcupado}, nil
		},
		UpdateEstadoFunc: func(ctx context.Context, tx *sql.Tx, id int, estado domain.MesaStatus) error {
			return errors.New("should not be called")
		},
	}

	svc := NewOccupancyService(&mockTxRunner{}, mesas, zap.NewNop())

	err := svc.Occupy(context.Background(), nil, 5)
	assert.NoError(t, err)
}

func TestOccupy_ReservedMesaBecomesOcupado(t *testing.T) {
	var newEstado domain.MesaStatus
	mesas := &mockMesaRepository{
		FindByIDTxFunc: func(ctx context.Context, tx *sql.Tx, id int) (*domain.Mesa, error) {
			return &domain.Mesa{ID: id, Estado: domain.MesaStatusReservado}, nil
		},
		UpdateEstadoFunc: func(ctx context.Context, tx *sql.Tx, id int, estado domain.MesaStatus) error {
			newEstado = estado
			return nil
		},
	}

	svc := NewOccupancyService(&mockTxRunner{}, mesas, zap.NewNop())

	err := svc.Occupy(context.Background(), nil, 5)
	assert.NoError(t, err)
	assert.Equal(t, domain.MesaStatusOcupado, newEstado)
}

func TestRelease_SetsDisponible(t *testing.T) {
	var newEstado domain.MesaStatus
	mesas := &mockMesaRepository{
		FindByIDFunc: func(ctx context.Context, id int) (*domain.Mesa, error) {
			return &domain.Mesa{ID: id, Estado: domain.MesaStatusDisponible}, nil
		},
		FindByIDTxFunc: func(ctx context.Context, tx *sql.Tx, id int) (*domain.Mesa, error) {
			return &domain.Mesa{ID: id, Estado: domain.MesaStatusOcupado}, nil
		},
		UpdateEstadoFunc: func(ctx context.Context, tx *sql.Tx, id int, estado domain.MesaStatus) error {
			newEstado = estado
			return nil
		},
	}

	svc := NewOccupancyService(&mockTxRunner{}, mesas, zap.NewNop())

	mesa, err := svc.Release(context.Background(), 5)
	assert.NoError(t, err)
	assert.Equal(t, domain.MesaStatusDisponible, newEstado)
	assert.Equal(t, domain.MesaStatusDisponible, mesa.Estado)
}

func TestReserve_UnknownMesa(t *testing.T) {
	mesas := &mockMesaRepository{
		FindByIDTxFunc: func(ctx context.Context, tx *sql.Tx, id int) (*domain.Mesa, error) {
			return nil, apperrors.NewNotFoundError("mesa not found")
		},
	}

	svc := NewOccupancyService(&mockTxRunner{}, mesas, zap.NewNop())

	_, err := svc.Reserve(context.Background(), 99)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}
