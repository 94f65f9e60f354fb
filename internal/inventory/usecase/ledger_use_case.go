package usecase

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"comandero/internal/domain"
	apperrors "comandero/internal/errors"
	"comandero/internal/infrastructure/mysql"
)

type StockLedger interface {
	AddLineItem(ctx context.Context, comandaID, productoID, cantidad int) (*domain.Detalle, error)
	UpdateQuantity(ctx context.Context, detalleID, nuevaCantidad int) (*domain.Detalle, error)
}

// LedgerUseCase wraps the locking ledger operations with a bounded retry for
// MySQL lock conflicts. Two requests reserving the same producto serialize
// on the row lock; occasionally the loser deadlocks instead of waiting and
// is worth one more attempt.
type LedgerUseCase struct {
	ledger           StockLedger
	logger           *zap.Logger
	maxRetryAttempts int
}

func NewLedgerUseCase(ledger StockLedger, logger *zap.Logger, maxRetryAttempts int) *LedgerUseCase {
	return &LedgerUseCase{
		ledger:           ledger,
		logger:           logger,
		maxRetryAttempts: maxRetryAttempts,
	}
}

func (uc *LedgerUseCase) AddLineItem(ctx context.Context, comandaID, productoID, cantidad int) (*domain.Detalle, error) {
	return uc.withRetry(ctx, "addLineItem", func() (*domain.Detalle, error) {
		return uc.ledger.AddLineItem(ctx, comandaID, productoID, cantidad)
	})
}

func (uc *LedgerUseCase) UpdateQuantity(ctx context.Context, detalleID, nuevaCantidad int) (*domain.Detalle, error) {
	return uc.withRetry(ctx, "updateQuantity", func() (*domain.Detalle, error) {
		return uc.ledger.UpdateQuantity(ctx, detalleID, nuevaCantidad)
	})
}

func (uc *LedgerUseCase) withRetry(ctx context.Context, op string, fn func() (*domain.Detalle, error)) (*domain.Detalle, error) {
	// Backoff intervals: attempt 1 (0ms), attempt 2 (100ms), attempt 3 (200ms).
	backoffs := []time.Duration{0, 100 * time.Millisecond, 200 * time.Millisecond}

	for attempt := 1; attempt <= uc.maxRetryAttempts; attempt++ {
		detalle, err := fn()
		if err == nil {
			return detalle, nil
		}

		if !mysql.IsDeadlock(err) {
			return nil, err
		}

		if attempt < uc.maxRetryAttempts {
			backoff := backoffs[(attempt-1)%len(backoffs)]
			// Jitter: ±20% of the backoff base.
			jitter := time.Duration(float64(backoff) * (0.8 + rand.Float64()*0.4))
			uc.logger.Warn("deadlock detected, retrying",
				zap.String("operation", op),
				zap.Int("attempt", attempt),
				zap.Int("maxAttempts", uc.maxRetryAttempts),
				zap.Duration("backoff", jitter),
			)
			time.Sleep(jitter)
		}
	}

	uc.logger.Error("deadlock retries exhausted",
		zap.String("operation", op),
		zap.Int("maxAttempts", uc.maxRetryAttempts),
	)
	return nil, apperrors.NewDeadlockError("max retries exceeded")
}
