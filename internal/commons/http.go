package commons

import (
	"encoding/json"
	"net/http"
	"time"

	"go.uber.org/zap"

	"comandero/internal/dto"
	apperrors "comandero/internal/errors"
)

func WriteJSON(w http.ResponseWriter, statusCode int, v any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("encoding response", zap.Error(err))
	}
}

// WriteError maps the core's error taxonomy onto HTTP. State-machine and
// stock conflicts are client errors; anything unrecognized is reported as
// internal without leaking the cause.
func WriteError(w http.ResponseWriter, traceID string, err error, logger *zap.Logger) {
	resp := dto.ErrorResponse{
		TraceID:   traceID,
		Timestamp: time.Now().UTC(),
	}

	switch {
	case isValidation(err, &resp):
	case isNotFound(err, &resp):
	case isConflict(err, &resp):
	case isInsufficientStock(err, &resp):
	case isInactiveProduct(err, &resp):
	case isDeadlock(err, &resp):
	default:
		logger.Error("unexpected error", zap.Error(err))
		resp.Status = http.StatusInternalServerError
		resp.Code = "INTERNAL_ERROR"
		resp.Message = "an unexpected error occurred"
	}

	WriteJSON(w, resp.Status, resp, logger)
}

func isValidation(err error, resp *dto.ErrorResponse) bool {
	ve, ok := apperrors.IsValidationError(err)
	if !ok {
		return false
	}
	resp.Status = http.StatusBadRequest
	resp.Code = "VALIDATION_ERROR"
	resp.Message = ve.Message
	resp.Details = ve.Details
	return true
}

func isNotFound(err error, resp *dto.ErrorResponse) bool {
	nfe, ok := apperrors.IsNotFoundError(err)
	if !ok {
		return false
	}
	resp.Status = http.StatusNotFound
	resp.Code = "NOT_FOUND"
	resp.Message = nfe.Message
	return true
}

func isConflict(err error, resp *dto.ErrorResponse) bool {
	ce, ok := apperrors.IsConflictError(err)
	if !ok {
		return false
	}
	resp.Status = http.StatusConflict
	resp.Code = "CONFLICT"
	resp.Message = ce.Message
	return true
}

func isInsufficientStock(err error, resp *dto.ErrorResponse) bool {
	ise, ok := apperrors.IsInsufficientStockError(err)
	if !ok {
		return false
	}
	resp.Status = http.StatusConflict
	resp.Code = "INSUFFICIENT_STOCK"
	resp.Message = ise.Message
	available := ise.Available
	resp.StockDisponible = &available
	return true
}

func isInactiveProduct(err error, resp *dto.ErrorResponse) bool {
	ipe, ok := apperrors.IsInactiveProductError(err)
	if !ok {
		return false
	}
	resp.Status = http.StatusUnprocessableEntity
	resp.Code = "PRODUCT_INACTIVE"
	resp.Message = ipe.Message
	return true
}

func isDeadlock(err error, resp *dto.ErrorResponse) bool {
	de, ok := apperrors.IsDeadlockError(err)
	if !ok {
		return false
	}
	resp.Status = http.StatusConflict
	resp.Code = "DEADLOCK"
	resp.Message = de.Message
	return true
}
