package dto

import (
	"time"

	"comandero/internal/errors"
)

type ErrorResponse struct {
	TraceID string `json:"traceId"`
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
	// StockDisponible is set only on INSUFFICIENT_STOCK so the caller can
	// decide whether a smaller request is worth retrying.
	StockDisponible *int                      `json:"stockDisponible,omitempty"`
	Details         []errors.ValidationDetail `json:"details,omitempty"`
	Timestamp       time.Time                 `json:"timestamp"`
}
