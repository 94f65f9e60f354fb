package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"comandero/internal/commons"
	"comandero/internal/domain"
	"comandero/internal/dto"
	apperrors "comandero/internal/errors"
)

type LifecycleService interface {
	Create(ctx context.Context, mesaID int, meseroID string) (*domain.Comanda, error)
	AssignCook(ctx context.Context, comandaID int, cocineroID string) (*domain.Comanda, error)
	StartPreparation(ctx context.Context, comandaID int, cocineroID string) (*domain.Comanda, error)
	Transition(ctx context.Context, comandaID int, target domain.ComandaStatus) (*domain.Comanda, error)
	MarkPaid(ctx context.Context, comandaID int) (*domain.Comanda, error)
	FinalizeAllForTable(ctx context.Context, mesaID int) (int, error)
	AllCompletedForTable(ctx context.Context, mesaID int) (bool, error)
	Cancel(ctx context.Context, comandaID int) (*domain.Comanda, error)
	Delete(ctx context.Context, comandaID int) error
	GetByID(ctx context.Context, comandaID int) (*domain.Comanda, error)
	ListByMesa(ctx context.Context, mesaID int) ([]domain.Comanda, error)
	ListByMesero(ctx context.Context, meseroID string) ([]domain.Comanda, error)
	ListByEstado(ctx context.Context, estado domain.ComandaStatus) ([]domain.Comanda, error)
	ListByFechaRange(ctx context.Context, desde, hasta time.Time) ([]domain.Comanda, error)
	CountByEstado(ctx context.Context, estado domain.ComandaStatus) (int, error)
	SalesTotalForRange(ctx context.Context, desde, hasta time.Time) (decimal.Decimal, error)
}

type ComandaController struct {
	service LifecycleService
	logger  *zap.Logger
}

func NewComandaController(service LifecycleService, logger *zap.Logger) *ComandaController {
	return &ComandaController{service: service, logger: logger}
}

func (c *ComandaController) Create(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	var req dto.CreateComandaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid JSON body", zap.Error(err))
		commons.WriteError(w, traceID, apperrors.NewValidationError("invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		}), logger)
		return
	}

	var details []apperrors.ValidationDetail
	if req.MesaID <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "idMesa",
			Message: "idMesa must be a positive integer",
		})
	}
	if req.MeseroID == "" {
		details = append(details, apperrors.ValidationDetail{
			Field:   "idMesero",
			Message: "idMesero is required",
		})
	}
	if len(details) > 0 {
		commons.WriteError(w, traceID, apperrors.NewValidationError("validation failed", details...), logger)
		return
	}

	comanda, err := c.service.Create(r.Context(), req.MesaID, req.MeseroID)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusCreated, toComandaResponse(comanda), logger)
}

func (c *ComandaController) Get(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	comandaID, ok := c.pathID(w, r, traceID, "comandaId", logger)
	if !ok {
		return
	}

	comanda, err := c.service.GetByID(r.Context(), comandaID)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, toComandaResponse(comanda), logger)
}

func (c *ComandaController) Delete(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	comandaID, ok := c.pathID(w, r, traceID, "comandaId", logger)
	if !ok {
		return
	}

	if err := c.service.Delete(r.Context(), comandaID); err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *ComandaController) Transition(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	comandaID, ok := c.pathID(w, r, traceID, "comandaId", logger)
	if !ok {
		return
	}

	var req dto.TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		commons.WriteError(w, traceID, apperrors.NewValidationError("invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		}), logger)
		return
	}

	estado, err := domain.ParseComandaStatus(req.Estado)
	if err != nil {
		commons.WriteError(w, traceID, apperrors.NewValidationError("unknown estado", apperrors.ValidationDetail{
			Field:   "estado",
			Message: "estado must be one of PENDIENTE, PREPARACION, COMPLETADO, CANCELADO",
		}), logger)
		return
	}

	comanda, err := c.service.Transition(r.Context(), comandaID, estado)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, toComandaResponse(comanda), logger)
}

func (c *ComandaController) AssignCocinero(w http.ResponseWriter, r *http.Request) {
	c.withCocinero(w, r, c.service.AssignCook)
}

func (c *ComandaController) StartPreparation(w http.ResponseWriter, r *http.Request) {
	c.withCocinero(w, r, c.service.StartPreparation)
}

func (c *ComandaController) withCocinero(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, comandaID int, cocineroID string) (*domain.Comanda, error),
) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	comandaID, ok := c.pathID(w, r, traceID, "comandaId", logger)
	if !ok {
		return
	}

	var req dto.AssignCocineroRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.CocineroID == "" {
		commons.WriteError(w, traceID, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "idCocinero",
			Message: "idCocinero is required",
		}), logger)
		return
	}

	comanda, err := op(r.Context(), comandaID, req.CocineroID)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, toComandaResponse(comanda), logger)
}

func (c *ComandaController) Cancel(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	comandaID, ok := c.pathID(w, r, traceID, "comandaId", logger)
	if !ok {
		return
	}

	comanda, err := c.service.Cancel(r.Context(), comandaID)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, toComandaResponse(comanda), logger)
}

// List filters comandas by estado, mesero, or fecha range, one filter per
// request.
func (c *ComandaController) List(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	q := r.URL.Query()

	var comandas []domain.Comanda
	var err error
	switch {
	case q.Get("estado") != "":
		var estado domain.ComandaStatus
		estado, err = domain.ParseComandaStatus(q.Get("estado"))
		if err != nil {
			commons.WriteError(w, traceID, apperrors.NewValidationError("unknown estado", apperrors.ValidationDetail{
				Field:   "estado",
				Message: "estado must be one of PENDIENTE, PREPARACION, COMPLETADO, CANCELADO",
			}), logger)
			return
		}
		comandas, err = c.service.ListByEstado(r.Context(), estado)
	case q.Get("mesero") != "":
		comandas, err = c.service.ListByMesero(r.Context(), q.Get("mesero"))
	case q.Get("desde") != "" || q.Get("hasta") != "":
		var desde, hasta time.Time
		desde, hasta, err = parseFechaRange(q.Get("desde"), q.Get("hasta"))
		if err != nil {
			commons.WriteError(w, traceID, err, logger)
			return
		}
		comandas, err = c.service.ListByFechaRange(r.Context(), desde, hasta)
	default:
		commons.WriteError(w, traceID, apperrors.NewValidationError("a filter is required", apperrors.ValidationDetail{
			Field:   "estado",
			Message: "provide estado, mesero, or a desde/hasta range",
		}), logger)
		return
	}
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	responses := make([]dto.ComandaResponse, 0, len(comandas))
	for i := range comandas {
		responses = append(responses, toComandaResponse(&comandas[i]))
	}
	commons.WriteJSON(w, http.StatusOK, responses, logger)
}

func (c *ComandaController) CountByEstado(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	estado, err := domain.ParseComandaStatus(r.URL.Query().Get("estado"))
	if err != nil {
		commons.WriteError(w, traceID, apperrors.NewValidationError("unknown estado", apperrors.ValidationDetail{
			Field:   "estado",
			Message: "estado must be one of PENDIENTE, PREPARACION, COMPLETADO, CANCELADO",
		}), logger)
		return
	}

	count, err := c.service.CountByEstado(r.Context(), estado)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, map[string]any{"estado": string(estado), "total": count}, logger)
}

func parseFechaRange(desdeRaw, hastaRaw string) (time.Time, time.Time, error) {
	desde, err := time.Parse(time.RFC3339, desdeRaw)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "desde",
			Message: "desde must be an RFC 3339 timestamp",
		})
	}
	hasta, err := time.Parse(time.RFC3339, hastaRaw)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "hasta",
			Message: "hasta must be an RFC 3339 timestamp",
		})
	}
	return desde, hasta, nil
}

func (c *ComandaController) MarkPaid(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	comandaID, ok := c.pathID(w, r, traceID, "comandaId", logger)
	if !ok {
		return
	}

	comanda, err := c.service.MarkPaid(r.Context(), comandaID)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, toComandaResponse(comanda), logger)
}

func (c *ComandaController) ListByMesa(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	mesaID, ok := c.pathID(w, r, traceID, "mesaId", logger)
	if !ok {
		return
	}

	comandas, err := c.service.ListByMesa(r.Context(), mesaID)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	responses := make([]dto.ComandaResponse, 0, len(comandas))
	for i := range comandas {
		responses = append(responses, toComandaResponse(&comandas[i]))
	}
	commons.WriteJSON(w, http.StatusOK, responses, logger)
}

func (c *ComandaController) FinalizeAllForMesa(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	mesaID, ok := c.pathID(w, r, traceID, "mesaId", logger)
	if !ok {
		return
	}

	count, err := c.service.FinalizeAllForTable(r.Context(), mesaID)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, dto.FinalizeResponse{MesaID: mesaID, Count: count}, logger)
}

func (c *ComandaController) AllCompletedForMesa(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	mesaID, ok := c.pathID(w, r, traceID, "mesaId", logger)
	if !ok {
		return
	}

	done, err := c.service.AllCompletedForTable(r.Context(), mesaID)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, dto.AllCompletedResponse{MesaID: mesaID, TodasCompletadas: done}, logger)
}

// SalesTotal reports total sales over a date range given as RFC 3339
// query parameters.
func (c *ComandaController) SalesTotal(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	desde, hasta, err := parseFechaRange(r.URL.Query().Get("desde"), r.URL.Query().Get("hasta"))
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	total, err := c.service.SalesTotalForRange(r.Context(), desde, hasta)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, map[string]decimal.Decimal{"totalVentas": total}, logger)
}

func (c *ComandaController) pathID(w http.ResponseWriter, r *http.Request, traceID, param string, logger *zap.Logger) (int, bool) {
	raw := chi.URLParam(r, param)
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		commons.WriteError(w, traceID, apperrors.NewValidationError("invalid "+param, apperrors.ValidationDetail{
			Field:   param,
			Message: param + " must be a positive integer",
		}), logger)
		return 0, false
	}
	return id, true
}

func toComandaResponse(c *domain.Comanda) dto.ComandaResponse {
	return dto.ComandaResponse{
		ComandaID:  c.ID,
		MesaID:     c.MesaID,
		MeseroID:   c.MeseroID,
		CocineroID: c.CocineroID,
		Estado:     string(c.Estado),
		Pagada:     c.Pagada,
		Fecha:      c.Fecha,
	}
}
