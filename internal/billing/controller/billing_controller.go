package controller

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"comandero/internal/commons"
	"comandero/internal/dto"
	apperrors "comandero/internal/errors"
)

type BillingService interface {
	TableSummary(ctx context.Context, mesaID int) (*dto.FacturacionMesa, error)
	MarkAllPaidForTable(ctx context.Context, mesaID int) (int, error)
}

type BillingController struct {
	service BillingService
	logger  *zap.Logger
}

func NewBillingController(service BillingService, logger *zap.Logger) *BillingController {
	return &BillingController{service: service, logger: logger}
}

func (c *BillingController) TableSummary(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	mesaID, ok := c.pathID(w, r, traceID, logger)
	if !ok {
		return
	}

	summary, err := c.service.TableSummary(r.Context(), mesaID)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, summary, logger)
}

func (c *BillingController) MarkAllPaid(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	mesaID, ok := c.pathID(w, r, traceID, logger)
	if !ok {
		return
	}

	count, err := c.service.MarkAllPaidForTable(r.Context(), mesaID)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, dto.MarkAllPaidResponse{MesaID: mesaID, Count: count}, logger)
}

func (c *BillingController) pathID(w http.ResponseWriter, r *http.Request, traceID string, logger *zap.Logger) (int, bool) {
	raw := chi.URLParam(r, "mesaId")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		commons.WriteError(w, traceID, apperrors.NewValidationError("invalid mesaId", apperrors.ValidationDetail{
			Field:   "mesaId",
			Message: "mesaId must be a positive integer",
		}), logger)
		return 0, false
	}
	return id, true
}
