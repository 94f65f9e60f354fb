package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"comandero/internal/domain"
	apperrors "comandero/internal/errors"
)

// Mock implementations

type mockTxRunner struct{}

func (m *mockTxRunner) WithinTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error {
	return fn(nil)
}

type mockComandaRepository struct {
	FindByIDFunc         func(ctx context.Context, id int) (*domain.Comanda, error)
	FindByIDTxFunc       func(ctx context.Context, tx *sql.Tx, id int) (*domain.Comanda, error)
	InsertFunc           func(ctx context.Context, tx *sql.Tx, c domain.Comanda) (int, error)
	UpdateEstadoFunc     func(ctx context.Context, tx *sql.Tx, id int, estado domain.ComandaStatus) error
	UpdateCocineroFunc   func(ctx context.Context, tx *sql.Tx, id int, cocineroID string) error
	UpdatePagadaFunc     func(ctx context.Context, tx *sql.Tx, id int, pagada bool) error
	DeleteFunc           func(ctx context.Context, tx *sql.Tx, id int) error
	ListByMesaFunc       func(ctx context.Context, mesaID int) ([]domain.Comanda, error)
	ListByMesaTxFunc     func(ctx context.Context, tx *sql.Tx, mesaID int) ([]domain.Comanda, error)
	ListByMeseroFunc     func(ctx context.Context, meseroID string) ([]domain.Comanda, error)
	ListByEstadoFunc     func(ctx context.Context, estado domain.ComandaStatus) ([]domain.Comanda, error)
	ListByFechaRangeFunc func(ctx context.Context, desde, hasta time.Time) ([]domain.Comanda, error)
	CountByEstadoFunc    func(ctx context.Context, estado domain.ComandaStatus) (int, error)
	SumVentasBetweenFunc func(ctx context.Context, desde, hasta time.Time) (decimal.Decimal, error)
}

func (m *mockComandaRepository) FindByID(ctx context.Context, id int) (*domain.Comanda, error) {
	return m.FindByIDFunc(ctx, id)
}

func (m *mockComandaRepository) FindByIDTx(ctx context.Context, tx *sql.Tx, id int) (*domain.Comanda, error) {
	return m.FindByIDTxFunc(ctx, tx, id)
}

func (m *mockComandaRepository) Insert(ctx context.Context, tx *sql.Tx, c domain.Comanda) (int, error) {
	return m.InsertFunc(ctx, tx, c)
}

func (m *mockComandaRepository) UpdateEstado(ctx context.Context, tx *sql.Tx, id int, estado domain.ComandaStatus) error {
	return m.UpdateEstadoFunc(ctx, tx, id, estado)
}

func (m *mockComandaRepository) UpdateCocinero(ctx context.Context, tx *sql.Tx, id int, cocineroID string) error {
	return m.UpdateCocineroFunc(ctx, tx, id, cocineroID)
}

func (m *mockComandaRepository) UpdatePagada(ctx context.Context, tx *sql.Tx, id int, pagada bool) error {
	return m.UpdatePagadaFunc(ctx, tx, id, pagada)
}

func (m *mockComandaRepository) Delete(ctx context.Context, tx *sql.Tx, id int) error {
	return m.DeleteFunc(ctx, tx, id)
}

func (m *mockComandaRepository) ListByMesa(ctx context.Context, mesaID int) ([]domain.Comanda, error) {
	return m.ListByMesaFunc(ctx, mesaID)
}

func (m *mockComandaRepository) ListByMesaTx(ctx context.Context, tx *sql.Tx, mesaID int) ([]domain.Comanda, error) {
	return m.ListByMesaTxFunc(ctx, tx, mesaID)
}

func (m *mockComandaRepository) ListByMesero(ctx context.Context, meseroID string) ([]domain.Comanda, error) {
	return m.ListByMeseroFunc(ctx, meseroID)
}

func (m *mockComandaRepository) ListByEstado(ctx context.Context, estado domain.ComandaStatus) ([]domain.Comanda, error) {
	return m.ListByEstadoFunc(ctx, estado)
}

func (m *mockComandaRepository) ListByFechaRange(ctx context.Context, desde, hasta time.Time) ([]domain.Comanda, error) {
	return m.ListByFechaRangeFunc(ctx, desde, hasta)
}

func (m *mockComandaRepository) CountByEstado(ctx context.Context, estado domain.ComandaStatus) (int, error) {
	return m.CountByEstadoFunc(ctx, estado)
}

func (m *mockComandaRepository) SumVentasBetween(ctx context.Context, desde, hasta time.Time) (decimal.Decimal, error) {
	return m.SumVentasBetweenFunc(ctx, desde, hasta)
}

type mockDetalleRepository struct {
	ListByComandaTxFunc func(ctx context.Context, tx *sql.Tx, comandaID int) ([]domain.Detalle, error)
	DeleteByComandaFunc func(ctx context.Context, tx *sql.Tx, comandaID int) error
}

func (m *mockDetalleRepository) ListByComandaTx(ctx context.Context, tx *sql.Tx, comandaID int) ([]domain.Detalle, error) {
	return m.ListByComandaTxFunc(ctx, tx, comandaID)
}

func (m *mockDetalleRepository) DeleteByComanda(ctx context.Context, tx *sql.Tx, comandaID int) error {
	return m.DeleteByComandaFunc(ctx, tx, comandaID)
}

type mockProductoRepository struct {
	AdjustStockFunc func(ctx context.Context, tx *sql.Tx, id int, delta int) error
}

func (m *mockProductoRepository) AdjustStock(ctx context.Context, tx *sql.Tx, id int, delta int) error {
	return m.AdjustStockFunc(ctx, tx, id, delta)
}

type mockStaffDirectory struct {
	FindByIDFunc func(ctx context.Context, id string) (*domain.Staff, error)
}

func (m *mockStaffDirectory) FindByID(ctx context.Context, id string) (*domain.Staff, error) {
	return m.FindByIDFunc(ctx, id)
}

type mockMesaDirectory struct {
	FindByIDFunc func(ctx context.Context, id int) (*domain.Mesa, error)
}

func (m *mockMesaDirectory) FindByID(ctx context.Context, id int) (*domain.Mesa, error) {
	return m.FindByIDFunc(ctx, id)
}

type mockTableOccupier struct {
	OccupyFunc func(ctx context.Context, tx *sql.Tx, mesaID int) error
}

func (m *mockTableOccupier) Occupy(ctx context.Context, tx *sql.Tx, mesaID int) error {
	return m.OccupyFunc(ctx, tx, mesaID)
}

func staffExists() *mockStaffDirectory {
	return &mockStaffDirectory{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Staff, error) {
			return &domain.Staff{ID: id, Nombre: "Ana", Rol: domain.RolMesero}, nil
		},
	}
}

func mesaExists() *mockMesaDirectory {
	return &mockMesaDirectory{
		FindByIDFunc: func(ctx context.Context, id int) (*domain.Mesa, error) {
			return &domain.Mesa{ID: id, Capacidad: 4, Estado: domain.MesaStatusDisponible}, nil
		},
	}
}

func newTestLifecycleService(
	comandas *mockComandaRepository,
	detalles *mockDetalleRepository,
	productos *mockProductoRepository,
	occupier *mockTableOccupier,
) *LifecycleService {
	return NewLifecycleService(
		&mockTxRunner{},
		comandas,
		detalles,
		productos,
		staffExists(),
		mesaExists(),
		occupier,
		zap.NewNop(),
	)
}

// Tests

func TestCreate_OpensPendienteAndOccupiesMesa(t *testing.T) {
	var inserted domain.Comanda
	comandas := &mockComandaRepository{
		InsertFunc: func(ctx context.Context, tx *sql.Tx, c domain.Comanda) (int, error) {
			inserted = c
			return 11, nil
		},
	}

	occupied := 0
	occupier := &mockTableOccupier{
		OccupyFunc: func(ctx context.Context, tx *sql.Tx, mesaID int) error {
			occupied = mesaID
			return nil
		},
	}

	svc := newTestLifecycleService(comandas, &mockDetalleRepository{}, &mockProductoRepository{}, occupier)

	comanda, err := svc.Create(context.Background(), 5, "mesero-1")
	assert.NoError(t, err)
	assert.Equal(t, 11, comanda.ID)
	assert.Equal(t, domain.ComandaStatusPendiente, inserted.Estado)
	assert.False(t, inserted.Pagada)
	assert.Equal(t, 5, occupied)
}

func TestCreate_UnknownMesero(t *testing.T) {
	svc := NewLifecycleService(
		&mockTxRunner{},
		&mockComandaRepository{},
		&mockDetalleRepository{},
		&mockProductoRepository{},
		&mockStaffDirectory{
			FindByIDFunc: func(ctx context.Context, id string) (*domain.Staff, error) {
				return nil, apperrors.NewNotFoundError("usuario not found")
			},
		},
		mesaExists(),
		&mockTableOccupier{},
		zap.NewNop(),
	)

	_, err := svc.Create(context.Background(), 5, "ghost")
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}

func TestTransition_PendienteToPreparacion(t *testing.T) {
	comandas := &mockComandaRepository{
		FindByIDTxFunc: func(ctx context.Context, tx *sql.Tx, id int) (*domain.Comanda, error) {
			return &domain.Comanda{ID: id, Estado: domain.ComandaStatusPendiente}, nil
		},
		UpdateEstadoFunc: func(ctx context.Context, tx *sql.Tx, id int, estado domain.ComandaStatus) error {
			assert.Equal(t, domain.ComandaStatusPreparacion, estado)
			return nil
		},
	}

	svc := newTestLifecycleService(comandas, &mockDetalleRepository{}, &mockProductoRepository{}, &mockTableOccupier{})

	comanda, err := svc.Transition(context.Background(), 1, domain.ComandaStatusPreparacion)
	assert.NoError(t, err)
	assert.Equal(t, domain.ComandaStatusPreparacion, comanda.Estado)
}

func TestTransition_PendienteToCompletadoRejected(t *testing.T) {
	comandas := &mockComandaRepository{
		FindByIDTxFunc: func(ctx context.Context, tx *sql.Tx, id int) (*domain.Comanda, error) {
			return &domain.Comanda{ID: id, Estado: domain.ComandaStatusPendiente}, nil
		},
		UpdateEstadoFunc: func(ctx context.Context, tx *sql.Tx, id int, estado domain.ComandaStatus) error {
			return errors.New("should not be called")
		},
	}

	svc := newTestLifecycleService(comandas, &mockDetalleRepository{}, &mockProductoRepository{}, &mockTableOccupier{})

	_, err := svc.Transition(context.Background(), 1, domain.ComandaStatusCompletado)
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestTransition_TerminalStatesAreFrozen(t *testing.T) {
	for _, estado := range []domain.ComandaStatus{domain.ComandaStatusCompletado, domain.ComandaStatusCancelado} {
		comandas := &mockComandaRepository{
			FindByIDTxFunc: func(ctx context.Context, tx *sql.Tx, id int) (*domain.Comanda, error) {
				return &domain.Comanda{ID: id, Estado: estado}, nil
			},
		}

		svc := newTestLifecycleService(comandas, &mockDetalleRepository{}, &mockProductoRepository{}, &mockTableOccupier{})

		_, err := svc.Transition(context.Background(), 1, domain.ComandaStatusPendiente)
		_, ok := apperrors.IsConflictError(err)
		assert.True(t, ok, "estado %s", estado)
	}
}

func TestStartPreparation_AssignsCookAndTransitions(t *testing.T) {
	var assignedCook string
	comandas := &mockComandaRepository{
		FindByIDTxFunc: func(ctx context.Context, tx *sql.Tx, id int) (*domain.Comanda, error) {
			return &domain.Comanda{ID: id, Estado: domain.ComandaStatusPendiente}, nil
		},
		UpdateEstadoFunc: func(ctx context.Context, tx *sql.Tx, id int, estado domain.ComandaStatus) error {
			return nil
		},
		UpdateCocineroFunc: func(ctx context.Context, tx *sql.Tx, id int, cocineroID string) error {
			assignedCook = cocineroID
			return nil
		},
	}

	svc := newTestLifecycleService(comandas, &mockDetalleRepository{}, &mockProductoRepository{}, &mockTableOccupier{})

	comanda, err := svc.StartPreparation(context.Background(), 1, "cocinero-7")
	assert.NoError(t, err)
	assert.Equal(t, "cocinero-7", assignedCook)
	assert.Equal(t, domain.ComandaStatusPreparacion, comanda.Estado)
	assert.Equal(t, "cocinero-7", *comanda.CocineroID)
}

func TestMarkPaid_RequiresCompletado(t *testing.T) {
	comandas := &mockComandaRepository{
		FindByIDTxFunc: func(ctx context.Context, tx *sql.Tx, id int) (*domain.Comanda, error) {
			return &domain.Comanda{ID: id, Estado: domain.ComandaStatusPreparacion}, nil
		},
	}

	svc := newTestLifecycleService(comandas, &mockDetalleRepository{}, &mockProductoRepository{}, &mockTableOccupier{})

	_, err := svc.MarkPaid(context.Background(), 1)
	_, ok := apperrors.IsConflictError(err)
	assert.True(t, ok)
}

func TestMarkPaid_AlreadyPaidIsNoOp(t *testing.T) {
	comandas := &mockComandaRepository{
		FindByIDTxFunc: func(ctx context.Context, tx *sql.Tx, id int) (*domain.Comanda, error) {
			return &domain.Comanda{ID: id, Estado: domain.ComandaStatusCompletado, Pagada: true}, nil
		},
		UpdatePagadaFunc: func(ctx context.Context, tx *sql.Tx, id int, pagada bool) error {
			return errors.New("should not be called")
		},
	}

	svc := newTestLifecycleService(comandas, &mockDetalleRepository{}, &mockProductoRepository{}, &mockTableOccupier{})

	comanda, err := svc.MarkPaid(context.Background(), 1)
	assert.NoError(t, err)
	assert.True(t, comanda.Pagada)
}

func TestMarkPaid_SetsPagada(t *testing.T) {
	paid := false
	comandas := &mockComandaRepository{
		FindByIDTxFunc: func(ctx context.Context, tx *sql.Tx, id int) (*domain.Comanda, error) {
			return &domain.Comanda{ID: id, Estado: domain.ComandaStatusCompletado}, nil
		},
		UpdatePagadaFunc: func(ctx context.Context, tx *sql.Tx, id int, pagada bool) error {
			paid = pagada
			return nil
		},
	}

	svc := newTestLifecycleService(comandas, &mockDetalleRepository{}, &mockProductoRepository{}, &mockTableOccupier{})

	comanda, err := svc.MarkPaid(context.Background(), 1)
	assert.NoError(t, err)
	assert.True(t, paid)
	assert.True(t, comanda.Pagada)
}

func TestFinalizeAllForTable_SkipsTerminal(t *testing.T) {
	var completed []int
	comandas := &mockComandaRepository{
		ListByMesaTxFunc: func(ctx context.Context, tx *sql.Tx, mesaID int) ([]domain.Comanda, error) {
			return []domain.Comanda{
				{ID: 1, Estado: domain.ComandaStatusPendiente},
				{ID: 2, Estado: domain.ComandaStatusPreparacion},
				{ID: 3, Estado: domain.ComandaStatusCompletado},
				{ID: 4, Estado: domain.ComandaStatusCancelado},
			}, nil
		},
		UpdateEstadoFunc: func(ctx context.Context, tx *sql.Tx, id int, estado domain.ComandaStatus) error {
			completed = append(completed, id)
			return nil
		},
	}

	svc := newTestLifecycleService(comandas, &mockDetalleRepository{}, &mockProductoRepository{}, &mockTableOccupier{})

	count, err := svc.FinalizeAllForTable(context.Background(), 5)
	assert.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, []int{1, 2}, completed)
}

func TestAllCompletedForTable_EmptyMesaIsFalse(t *testing.T) {
	comandas := &mockComandaRepository{
		ListByMesaFunc: func(ctx context.Context, mesaID int) ([]domain.Comanda, error) {
			return nil, nil
		},
	}

	svc := newTestLifecycleService(comandas, &mockDetalleRepository{}, &mockProductoRepository{}, &mockTableOccupier{})

	done, err := svc.AllCompletedForTable(context.Background(), 5)
	assert.NoError(t, err)
	assert.False(t, done)
}

func TestAllCompletedForTable_MixedStates(t *testing.T) {
	comandas := &mockComandaRepository{
		ListByMesaFunc: func(ctx context.Context, mesaID int) ([]domain.Comanda, error) {
			return []domain.Comanda{
				{ID: 1, Estado: domain.ComandaStatusCompletado},
				{ID: 2, Estado: domain.ComandaStatusPreparacion},
			}, nil
		},
	}

	svc := newTestLifecycleService(comandas, &mockDetalleRepository{}, &mockProductoRepository{}, &mockTableOccupier{})

	done, err := svc.AllCompletedForTable(context.Background(), 5)
	assert.NoError(t, err)
	assert.False(t, done)
}

func TestAllCompletedForTable_AllTerminal(t *testing.T) {
	comandas := &mockComandaRepository{
		ListByMesaFunc: func(ctx context.Context, mesaID int) ([]domain.Comanda, error) {
			return []domain.Comanda{
				{ID: 1, Estado: domain.ComandaStatusCompletado},
				{ID: 2, Estado: domain.ComandaStatusCancelado},
			}, nil
		},
	}

	svc := newTestLifecycleService(comandas, &mockDetalleRepository{}, &mockProductoRepository{}, &mockTableOccupier{})

	done, err := svc.AllCompletedForTable(context.Background(), 5)
	assert.NoError(t, err)
	assert.True(t, done)
}

func TestDelete_RestoresStockPerDetalle(t *testing.T) {
	restored := map[int]int{}
	productos := &mockProductoRepository{
		AdjustStockFunc: func(ctx context.Context, tx *sql.Tx, id int, delta int) error {
			restored[id] += delta
			return nil
		},
	}

	detallesDeleted := false
	detalles := &mockDetalleRepository{
		ListByComandaTxFunc: func(ctx context.Context, tx *sql.Tx, comandaID int) ([]domain.Detalle, error) {
			return []domain.Detalle{
				{ID: 1, ProductoID: 42, Cantidad: 3},
				{ID: 2, ProductoID: 43, Cantidad: 5},
			}, nil
		},
		DeleteByComandaFunc: func(ctx context.Context, tx *sql.Tx, comandaID int) error {
			detallesDeleted = true
			return nil
		},
	}

	comandaDeleted := false
	comandas := &mockComandaRepository{
		FindByIDTxFunc: func(ctx context.Context, tx *sql.Tx, id int) (*domain.Comanda, error) {
			return &domain.Comanda{ID: id, Estado: domain.ComandaStatusPendiente}, nil
		},
		DeleteFunc: func(ctx context.Context, tx *sql.Tx, id int) error {
			comandaDeleted = true
			return nil
		},
	}

	svc := newTestLifecycleService(comandas, detalles, productos, &mockTableOccupier{})

	err := svc.Delete(context.Background(), 1)
	assert.NoError(t, err)
	assert.Equal(t, map[int]int{42: 3, 43: 5}, restored)
	assert.True(t, detallesDeleted)
	assert.True(t, comandaDeleted)
}

func TestListByFechaRange_RejectsInvertedRange(t *testing.T) {
	svc := newTestLifecycleService(&mockComandaRepository{}, &mockDetalleRepository{}, &mockProductoRepository{}, &mockTableOccupier{})

	desde := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	hasta := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.ListByFechaRange(context.Background(), desde, hasta)
	_, ok := apperrors.IsValidationError(err)
	assert.True(t, ok)

	_, err = svc.SalesTotalForRange(context.Background(), desde, hasta)
	_, ok = apperrors.IsValidationError(err)
	assert.True(t, ok)
}
