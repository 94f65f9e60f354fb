package service

import (
	"context"
	"database/sql"
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

type mockMesaRepository struct {
	FindByIDTxFunc func(ctx context.Context, tx *sql.Tx, id int) (*domain.Mesa, error)
}

func (m *mockMesaRepository) FindByIDTx(ctx context.Context, tx *sql.Tx, id int) (*domain.Mesa, error) {
	return m.FindByIDTxFunc(ctx, tx, id)
}

type mockComandaRepository struct {
	ListByMesaTxFunc func(ctx context.Context, tx *sql.Tx, mesaID int) ([]domain.Comanda, error)
	UpdatePagadaFunc func(ctx context.Context, tx *sql.Tx, id int, pagada bool) error
}

func (m *mockComandaRepository) ListByMesaTx(ctx context.Context, tx *sql.Tx, mesaID int) ([]domain.Comanda, error) {
	return m.ListByMesaTxFunc(ctx, tx, mesaID)
}

func (m *mockComandaRepository) UpdatePagada(ctx context.Context, tx *sql.Tx, id int, pagada bool) error {
	return m.UpdatePagadaFunc(ctx, tx, id, pagada)
}

type mockDetalleRepository struct {
	SumSubtotalsByComandaTxFunc func(ctx context.Context, tx *sql.Tx, comandaID int) (decimal.Decimal, error)
	CountByComandaTxFunc        func(ctx context.Context, tx *sql.Tx, comandaID int) (int, error)
}

func (m *mockDetalleRepository) SumSubtotalsByComandaTx(ctx context.Context, tx *sql.Tx, comandaID int) (decimal.Decimal, error) {
	return m.SumSubtotalsByComandaTxFunc(ctx, tx, comandaID)
}

func (m *mockDetalleRepository) CountByComandaTx(ctx context.Context, tx *sql.Tx, comandaID int) (int, error) {
	return m.CountByComandaTxFunc(ctx, tx, comandaID)
}

type mockStaffDirectory struct {
	FindByIDFunc func(ctx context.Context, id string) (*domain.Staff, error)
}

func (m *mockStaffDirectory) FindByID(ctx context.Context, id string) (*domain.Staff, error) {
	return m.FindByIDFunc(ctx, id)
}

func mesaExists() *mockMesaRepository {
	return &mockMesaRepository{
		FindByIDTxFunc: func(ctx context.Context, tx *sql.Tx, id int) (*domain.Mesa, error) {
			return &domain.Mesa{ID: id, Capacidad: 4, Ubicacion: "Terraza", Estado: domain.MesaStatusOcupado}, nil
		},
	}
}

func staffNamed(nombre string) *mockStaffDirectory {
	return &mockStaffDirectory{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Staff, error) {
			return &domain.Staff{ID: id, Nombre: nombre, Rol: domain.RolMesero}, nil
		},
	}
}

func newTestBillingService(
	mesas MesaRepository,
	comandas *mockComandaRepository,
	detalles *mockDetalleRepository,
	staff StaffDirectory,
) *BillingService {
	return NewBillingService(&mockTxRunner{}, mesas, comandas, detalles, staff, zap.NewNop())
}

// Tests

func TestTableSummary_TotalsOnlyCompletedUnpaid(t *testing.T) {
	cocinero := "cocinero-1"
	comandas := &mockComandaRepository{
		ListByMesaTxFunc: func(ctx context.Context, tx *sql.Tx, mesaID int) ([]domain.Comanda, error) {
			return []domain.Comanda{
				{ID: 1, MeseroID: "mesero-1", CocineroID: &cocinero, Estado: domain.ComandaStatusCompletado, Fecha: time.Now()},
				{ID: 2, MeseroID: "mesero-1", Estado: domain.ComandaStatusCompletado, Fecha: time.Now()},
				{ID: 3, MeseroID: "mesero-1", Estado: domain.ComandaStatusCancelado, Fecha: time.Now()},
			}, nil
		},
	}

	totals := map[int]decimal.Decimal{
		1: decimal.NewFromFloat(40.00),
		2: decimal.NewFromFloat(17.50),
		3: decimal.NewFromFloat(99.00),
	}
	detalles := &mockDetalleRepository{
		SumSubtotalsByComandaTxFunc: func(ctx context.Context, tx *sql.Tx, comandaID int) (decimal.Decimal, error) {
			return totals[comandaID], nil
		},
		CountByComandaTxFunc: func(ctx context.Context, tx *sql.Tx, comandaID int) (int, error) {
			return 2, nil
		},
	}

	svc := newTestBillingService(mesaExists(), comandas, detalles, staffNamed("Ana"))

	summary, err := svc.TableSummary(context.Background(), 5)
	assert.NoError(t, err)
	assert.Equal(t, 5, summary.MesaID)
	assert.Equal(t, "Terraza", summary.Ubicacion)
	assert.Equal(t, 3, summary.TotalComandas)
	assert.Equal(t, 2, summary.ComandasCompletadas)
	assert.Equal(t, 0, summary.ComandasPendientes)
	assert.Equal(t, 0, summary.ComandasPagadas)
	assert.True(t, summary.TodasCompletadas)
	assert.False(t, summary.TodasPagadas)
	// The cancelled comanda's 99.00 never enters the payable total.
	assert.True(t, summary.TotalAPagar.Equal(decimal.NewFromFloat(57.50)),
		"expected 57.50, got %s", summary.TotalAPagar)
	assert.Len(t, summary.Comandas, 3)
	assert.Equal(t, "Ana", summary.Comandas[0].Mesero)
	assert.Equal(t, "Ana", summary.Comandas[0].Cocinero)
	assert.Equal(t, "N/A", summary.Comandas[1].Cocinero)
}

func TestTableSummary_EmptyMesa(t *testing.T) {
	comandas := &mockComandaRepository{
		ListByMesaTxFunc: func(ctx context.Context, tx *sql.Tx, mesaID int) ([]domain.Comanda, error) {
			return nil, nil
		},
	}

	svc := newTestBillingService(mesaExists(), comandas, &mockDetalleRepository{}, staffNamed("Ana"))

	summary, err := svc.TableSummary(context.Background(), 5)
	assert.NoError(t, err)
	assert.Equal(t, 0, summary.TotalComandas)
	assert.False(t, summary.TodasCompletadas)
	assert.True(t, summary.TodasPagadas)
	assert.True(t, summary.TotalAPagar.IsZero())
}

func TestTableSummary_PendingComandaBlocksCompletion(t *testing.T) {
	comandas := &mockComandaRepository{
		ListByMesaTxFunc: func(ctx context.Context, tx *sql.Tx, mesaID int) ([]domain.Comanda, error) {
			return []domain.Comanda{
				{ID: 1, MeseroID: "mesero-1", Estado: domain.ComandaStatusCompletado},
				{ID: 2, MeseroID: "mesero-1", Estado: domain.ComandaStatusPreparacion},
			}, nil
		},
	}

	detalles := &mockDetalleRepository{
		SumSubtotalsByComandaTxFunc: func(ctx context.Context, tx *sql.Tx, comandaID int) (decimal.Decimal, error) {
			return decimal.NewFromInt(10), nil
		},
		CountByComandaTxFunc: func(ctx context.Context, tx *sql.Tx, comandaID int) (int, error) {
			return 1, nil
		},
	}

	svc := newTestBillingService(mesaExists(), comandas, detalles, staffNamed("Ana"))

	summary, err := svc.TableSummary(context.Background(), 5)
	assert.NoError(t, err)
	assert.False(t, summary.TodasCompletadas)
	assert.Equal(t, 1, summary.ComandasPendientes)
	assert.True(t, summary.TotalAPagar.Equal(decimal.NewFromInt(10)))
}

func TestTableSummary_UnknownStaffRendersNA(t *testing.T) {
	comandas := &mockComandaRepository{
		ListByMesaTxFunc: func(ctx context.Context, tx *sql.Tx, mesaID int) ([]domain.Comanda, error) {
			return []domain.Comanda{
				{ID: 1, MeseroID: "ghost", Estado: domain.ComandaStatusCompletado},
			}, nil
		},
	}

	detalles := &mockDetalleRepository{
		SumSubtotalsByComandaTxFunc: func(ctx context.Context, tx *sql.Tx, comandaID int) (decimal.Decimal, error) {
			return decimal.NewFromInt(10), nil
		},
		CountByComandaTxFunc: func(ctx context.Context, tx *sql.Tx, comandaID int) (int, error) {
			return 1, nil
		},
	}

	staff := &mockStaffDirectory{
		FindByIDFunc: func(ctx context.Context, id string) (*domain.Staff, error) {
			return nil, apperrors.NewNotFoundError("usuario not found")
		},
	}

	svc := newTestBillingService(mesaExists(), comandas, detalles, staff)

	summary, err := svc.TableSummary(context.Background(), 5)
	assert.NoError(t, err)
	assert.Equal(t, "N/A", summary.Comandas[0].Mesero)
	assert.Equal(t, "N/A", summary.Comandas[0].Cocinero)
}

func TestMarkAllPaidForTable_PaysOnlyFacturables(t *testing.T) {
	var paidIDs []int
	comandas := &mockComandaRepository{
		ListByMesaTxFunc: func(ctx context.Context, tx *sql.Tx, mesaID int) ([]domain.Comanda, error) {
			return []domain.Comanda{
				{ID: 1, Estado: domain.ComandaStatusCompletado},
				{ID: 2, Estado: domain.ComandaStatusCompletado, Pagada: true},
				{ID: 3, Estado: domain.ComandaStatusCancelado},
				{ID: 4, Estado: domain.ComandaStatusPreparacion},
			}, nil
		},
		UpdatePagadaFunc: func(ctx context.Context, tx *sql.Tx, id int, pagada bool) error {
			paidIDs = append(paidIDs, id)
			return nil
		},
	}

	svc := newTestBillingService(mesaExists(), comandas, &mockDetalleRepository{}, staffNamed("Ana"))

	count, err := svc.MarkAllPaidForTable(context.Background(), 5)
	assert.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, []int{1}, paidIDs)
}

func TestMarkAllPaidForTable_SecondInvocationPaysNothing(t *testing.T) {
	comandas := &mockComandaRepository{
		ListByMesaTxFunc: func(ctx context.Context, tx *sql.Tx, mesaID int) ([]domain.Comanda, error) {
			return []domain.Comanda{
				{ID: 1, Estado: domain.ComandaStatusCompletado, Pagada: true},
				{ID: 2, Estado: domain.ComandaStatusCompletado, Pagada: true},
			}, nil
		},
	}

	svc := newTestBillingService(mesaExists(), comandas, &mockDetalleRepository{}, staffNamed("Ana"))

	count, err := svc.MarkAllPaidForTable(context.Background(), 5)
	assert.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMarkAllPaidForTable_MesaNotFound(t *testing.T) {
	mesas := &mockMesaRepository{
		FindByIDTxFunc: func(ctx context.Context, tx *sql.Tx, id int) (*domain.Mesa, error) {
			return nil, apperrors.NewNotFoundError("mesa not found")
		},
	}

	svc := newTestBillingService(mesas, &mockComandaRepository{}, &mockDetalleRepository{}, staffNamed("Ana"))

	_, err := svc.MarkAllPaidForTable(context.Background(), 99)
	_, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
}
