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
	"comandero/internal/inventory/repository"
)

type TxRunner interface {
	WithinTx(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) error
}

type ProductoRepository interface {
	FindByID(ctx context.Context, id int) (*domain.Producto, error)
	FindByIDForUpdate(ctx context.Context, tx *sql.Tx, id int) (*domain.Producto, error)
	AdjustStock(ctx context.Context, tx *sql.Tx, id int, delta int) error
}

type DetalleRepository interface {
	FindByID(ctx context.Context, id int) (*domain.Detalle, error)
	FindByIDTx(ctx context.Context, tx *sql.Tx, id int) (*domain.Detalle, error)
	FindByComandaAndProducto(ctx context.Context, tx *sql.Tx, comandaID, productoID int) (*domain.Detalle, error)
	Insert(ctx context.Context, tx *sql.Tx, d domain.Detalle) (int, error)
	Update(ctx context.Context, tx *sql.Tx, d domain.Detalle) error
	Delete(ctx context.Context, tx *sql.Tx, id int) error
	ListByComanda(ctx context.Context, comandaID int) ([]domain.Detalle, error)
	ListByProducto(ctx context.Context, productoID int) ([]domain.Detalle, error)
	ListBySubtotalRange(ctx context.Context, minimo, maximo decimal.Decimal) ([]domain.Detalle, error)
	CountByComanda(ctx context.Context, comandaID int) (int, error)
	SumSubtotalsByComanda(ctx context.Context, comandaID int) (decimal.Decimal, error)
	TopProductosVendidos(ctx context.Context, limite int) ([]repository.ProductoVendido, error)
}

type ComandaRepository interface {
	FindByID(ctx context.Context, id int) (*domain.Comanda, error)
}

// LedgerService keeps Producto.Stock consistent with the sum of live detalle
// reservations. Every check-then-adjust sequence runs inside one transaction
// with the producto row locked, so concurrent reservations against the same
// product serialize instead of racing stock negative.
type LedgerService struct {
	txr       TxRunner
	productos ProductoRepository
	detalles  DetalleRepository
	comandas  ComandaRepository
	logger    *zap.Logger
	txTimeout time.Duration
}

func NewLedgerService(
	txr TxRunner,
	productos ProductoRepository,
	detalles DetalleRepository,
	comandas ComandaRepository,
	logger *zap.Logger,
	txTimeout time.Duration,
) *LedgerService {
	return &LedgerService{
		txr:       txr,
		productos: productos,
		detalles:  detalles,
		comandas:  comandas,
		logger:    logger,
		txTimeout: txTimeout,
	}
}

// AddLineItem reserves cantidad units of the producto for the comanda. If a
// detalle for the same (comanda, producto) pair already exists the quantities
// merge; stock is validated against the incremental amount either way. The
// unit price is snapshotted from the producto at this moment, not live-linked.
func (s *LedgerService) AddLineItem(ctx context.Context, comandaID, productoID, cantidad int) (*domain.Detalle, error) {
	if cantidad < 1 {
		return nil, apperrors.NewValidationError("cantidad must be at least 1", apperrors.ValidationDetail{
			Field:   "cantidad",
			Message: "cantidad must be a positive integer",
		})
	}

	if _, err := s.comandas.FindByID(ctx, comandaID); err != nil {
		return nil, err
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var out *domain.Detalle
	err := s.txr.WithinTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead}, func(tx *sql.Tx) error {
		producto, err := s.productos.FindByIDForUpdate(txCtx, tx, productoID)
		if err != nil {
			return err
		}

		if !producto.Activo {
			return apperrors.NewInactiveProductError(
				fmt.Sprintf("producto %d is inactive and cannot be added", productoID))
		}

		if !producto.TieneStock(cantidad) {
			return apperrors.NewInsufficientStockError(
				fmt.Sprintf("insufficient stock for producto %d", productoID), producto.Stock)
		}

		existing, err := s.detalles.FindByComandaAndProducto(txCtx, tx, comandaID, productoID)
		if err != nil {
			return err
		}

		if existing != nil {
			existing.Cantidad += cantidad
			existing.RecalcularSubtotal()
			if err := s.detalles.Update(txCtx, tx, *existing); err != nil {
				return err
			}
			out = existing
		} else {
			detalle := domain.Detalle{
				ComandaID:      comandaID,
				ProductoID:     productoID,
				Cantidad:       cantidad,
				PrecioUnitario: producto.Precio,
				Estado:         domain.DetalleStatusPendiente,
			}
			detalle.RecalcularSubtotal()

			id, err := s.detalles.Insert(txCtx, tx, detalle)
			if err != nil {
				return err
			}
			detalle.ID = id
			out = &detalle
		}

		return s.productos.AdjustStock(txCtx, tx, productoID, -cantidad)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("line item reserved",
		zap.Int("comandaId", comandaID),
		zap.Int("productoId", productoID),
		zap.Int("cantidad", cantidad),
		zap.Int("detalleId", out.ID),
	)
	return out, nil
}

// UpdateQuantity moves the detalle to nuevaCantidad, adjusting producto
// stock by the delta: extra units re-validate against stock, removed units
// are restored.
func (s *LedgerService) UpdateQuantity(ctx context.Context, detalleID, nuevaCantidad int) (*domain.Detalle, error) {
	if nuevaCantidad <= 0 {
		return nil, apperrors.NewValidationError("cantidad must be greater than 0", apperrors.ValidationDetail{
			Field:   "cantidad",
			Message: "cantidad must be a positive integer",
		})
	}

	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	var out *domain.Detalle
	err := s.txr.WithinTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead}, func(tx *sql.Tx) error {
		detalle, err := s.detalles.FindByIDTx(txCtx, tx, detalleID)
		if err != nil {
			return err
		}

		producto, err := s.productos.FindByIDForUpdate(txCtx, tx, detalle.ProductoID)
		if err != nil {
			return err
		}

		delta := nuevaCantidad - detalle.Cantidad
		if delta > 0 && !producto.TieneStock(delta) {
			return apperrors.NewInsufficientStockError(
				fmt.Sprintf("insufficient stock for producto %d", detalle.ProductoID), producto.Stock)
		}

		if delta != 0 {
			if err := s.productos.AdjustStock(txCtx, tx, detalle.ProductoID, -delta); err != nil {
				return err
			}
		}

		detalle.Cantidad = nuevaCantidad
		detalle.RecalcularSubtotal()
		if err := s.detalles.Update(txCtx, tx, *detalle); err != nil {
			return err
		}

		out = detalle
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("line item quantity updated", zap.Int("detalleId", detalleID), zap.Int("cantidad", nuevaCantidad))
	return out, nil
}

// UpdatePrice overrides the snapshotted unit price and restores the subtotal
// invariant. Stock is unaffected.
func (s *LedgerService) UpdatePrice(ctx context.Context, detalleID int, nuevoPrecio decimal.Decimal) (*domain.Detalle, error) {
	if nuevoPrecio.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.NewValidationError("precio must be greater than 0", apperrors.ValidationDetail{
			Field:   "precioUnitario",
			Message: "precioUnitario must be positive",
		})
	}

	var out *domain.Detalle
	err := s.txr.WithinTx(ctx, nil, func(tx *sql.Tx) error {
		detalle, err := s.detalles.FindByIDTx(ctx, tx, detalleID)
		if err != nil {
			return err
		}

		detalle.PrecioUnitario = nuevoPrecio
		detalle.RecalcularSubtotal()
		if err := s.detalles.Update(ctx, tx, *detalle); err != nil {
			return err
		}

		out = detalle
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// DeleteLineItem releases the full reserved quantity back to the producto
// and removes the detalle, in one transaction.
func (s *LedgerService) DeleteLineItem(ctx context.Context, detalleID int) error {
	txCtx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	err := s.txr.WithinTx(txCtx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead}, func(tx *sql.Tx) error {
		detalle, err := s.detalles.FindByIDTx(txCtx, tx, detalleID)
		if err != nil {
			return err
		}

		if err := s.productos.AdjustStock(txCtx, tx, detalle.ProductoID, detalle.Cantidad); err != nil {
			return err
		}

		return s.detalles.Delete(txCtx, tx, detalleID)
	})
	if err != nil {
		return err
	}

	s.logger.Info("line item deleted", zap.Int("detalleId", detalleID))
	return nil
}

// RecalculateSubtotal repairs subtotal drift from manual data fixes.
func (s *LedgerService) RecalculateSubtotal(ctx context.Context, detalleID int) (*domain.Detalle, error) {
	var out *domain.Detalle
	err := s.txr.WithinTx(ctx, nil, func(tx *sql.Tx) error {
		detalle, err := s.detalles.FindByIDTx(ctx, tx, detalleID)
		if err != nil {
			return err
		}

		detalle.RecalcularSubtotal()
		if err := s.detalles.Update(ctx, tx, *detalle); err != nil {
			return err
		}

		out = detalle
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

// ChangeStatus moves the detalle's own estado. Stock and the comanda total
// are untouched: cancelled lines keep their reservation and keep counting
// toward the total.
func (s *LedgerService) ChangeStatus(ctx context.Context, detalleID int, estado domain.DetalleStatus) (*domain.Detalle, error) {
	var out *domain.Detalle
	err := s.txr.WithinTx(ctx, nil, func(tx *sql.Tx) error {
		detalle, err := s.detalles.FindByIDTx(ctx, tx, detalleID)
		if err != nil {
			return err
		}

		detalle.Estado = estado
		if err := s.detalles.Update(ctx, tx, *detalle); err != nil {
			return err
		}

		out = detalle
		return nil
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (s *LedgerService) GetByID(ctx context.Context, detalleID int) (*domain.Detalle, error) {
	return s.detalles.FindByID(ctx, detalleID)
}

func (s *LedgerService) ListByComanda(ctx context.Context, comandaID int) ([]domain.Detalle, error) {
	if _, err := s.comandas.FindByID(ctx, comandaID); err != nil {
		return nil, err
	}
	return s.detalles.ListByComanda(ctx, comandaID)
}

func (s *LedgerService) ListByProducto(ctx context.Context, productoID int) ([]domain.Detalle, error) {
	if _, err := s.productos.FindByID(ctx, productoID); err != nil {
		return nil, err
	}
	return s.detalles.ListByProducto(ctx, productoID)
}

func (s *LedgerService) ListBySubtotalRange(ctx context.Context, minimo, maximo decimal.Decimal) ([]domain.Detalle, error) {
	if minimo.GreaterThan(maximo) {
		return nil, apperrors.NewValidationError("minimo must not exceed maximo", apperrors.ValidationDetail{
			Field:   "subtotalMinimo",
			Message: "subtotalMinimo must be less than or equal to subtotalMaximo",
		})
	}
	return s.detalles.ListBySubtotalRange(ctx, minimo, maximo)
}

func (s *LedgerService) CountByComanda(ctx context.Context, comandaID int) (int, error) {
	if _, err := s.comandas.FindByID(ctx, comandaID); err != nil {
		return 0, err
	}
	return s.detalles.CountByComanda(ctx, comandaID)
}

// ComandaTotal sums every detalle subtotal of the comanda, regardless of
// each line's estado.
func (s *LedgerService) ComandaTotal(ctx context.Context, comandaID int) (decimal.Decimal, error) {
	if _, err := s.comandas.FindByID(ctx, comandaID); err != nil {
		return decimal.Zero, err
	}
	return s.detalles.SumSubtotalsByComanda(ctx, comandaID)
}

func (s *LedgerService) TopProductosVendidos(ctx context.Context, limite int) ([]repository.ProductoVendido, error) {
	if limite <= 0 {
		return nil, apperrors.NewValidationError("limite must be greater than 0", apperrors.ValidationDetail{
			Field:   "limite",
			Message: "limite must be a positive integer",
		})
	}
	return s.detalles.TopProductosVendidos(ctx, limite)
}
