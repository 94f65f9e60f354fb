package controller

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"comandero/internal/commons"
	"comandero/internal/domain"
	"comandero/internal/dto"
	apperrors "comandero/internal/errors"
	"comandero/internal/inventory/repository"
)

// RetriableLedger covers the operations that go through the deadlock
// retry layer.
type RetriableLedger interface {
	AddLineItem(ctx context.Context, comandaID, productoID, cantidad int) (*domain.Detalle, error)
	UpdateQuantity(ctx context.Context, detalleID, nuevaCantidad int) (*domain.Detalle, error)
}

type LedgerService interface {
	UpdatePrice(ctx context.Context, detalleID int, nuevoPrecio decimal.Decimal) (*domain.Detalle, error)
	DeleteLineItem(ctx context.Context, detalleID int) error
	RecalculateSubtotal(ctx context.Context, detalleID int) (*domain.Detalle, error)
	ChangeStatus(ctx context.Context, detalleID int, estado domain.DetalleStatus) (*domain.Detalle, error)
	GetByID(ctx context.Context, detalleID int) (*domain.Detalle, error)
	ListByComanda(ctx context.Context, comandaID int) ([]domain.Detalle, error)
	ListByProducto(ctx context.Context, productoID int) ([]domain.Detalle, error)
	ListBySubtotalRange(ctx context.Context, minimo, maximo decimal.Decimal) ([]domain.Detalle, error)
	CountByComanda(ctx context.Context, comandaID int) (int, error)
	ComandaTotal(ctx context.Context, comandaID int) (decimal.Decimal, error)
	TopProductosVendidos(ctx context.Context, limite int) ([]repository.ProductoVendido, error)
}

type DetalleController struct {
	retriable RetriableLedger
	service   LedgerService
	logger    *zap.Logger
}

func NewDetalleController(retriable RetriableLedger, service LedgerService, logger *zap.Logger) *DetalleController {
	return &DetalleController{retriable: retriable, service: service, logger: logger}
}

func (c *DetalleController) Add(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	comandaID, ok := c.pathID(w, r, traceID, "comandaId", logger)
	if !ok {
		return
	}

	var req dto.AddDetalleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		commons.WriteError(w, traceID, apperrors.NewValidationError("invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		}), logger)
		return
	}

	var details []apperrors.ValidationDetail
	if req.ProductoID <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "idProducto",
			Message: "idProducto must be a positive integer",
		})
	}
	if req.Cantidad <= 0 {
		details = append(details, apperrors.ValidationDetail{
			Field:   "cantidad",
			Message: "cantidad must be a positive integer",
		})
	}
	if len(details) > 0 {
		commons.WriteError(w, traceID, apperrors.NewValidationError("validation failed", details...), logger)
		return
	}

	detalle, err := c.retriable.AddLineItem(r.Context(), comandaID, req.ProductoID, req.Cantidad)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusCreated, toDetalleResponse(detalle), logger)
}

func (c *DetalleController) Get(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	detalleID, ok := c.pathID(w, r, traceID, "detalleId", logger)
	if !ok {
		return
	}

	detalle, err := c.service.GetByID(r.Context(), detalleID)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, toDetalleResponse(detalle), logger)
}

func (c *DetalleController) UpdateCantidad(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	detalleID, ok := c.pathID(w, r, traceID, "detalleId", logger)
	if !ok {
		return
	}

	var req dto.UpdateCantidadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Cantidad <= 0 {
		commons.WriteError(w, traceID, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "cantidad",
			Message: "cantidad must be a positive integer",
		}), logger)
		return
	}

	detalle, err := c.retriable.UpdateQuantity(r.Context(), detalleID, req.Cantidad)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, toDetalleResponse(detalle), logger)
}

func (c *DetalleController) UpdatePrecio(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	detalleID, ok := c.pathID(w, r, traceID, "detalleId", logger)
	if !ok {
		return
	}

	var req dto.UpdatePrecioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.PrecioUnitario.IsNegative() {
		commons.WriteError(w, traceID, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "precioUnitario",
			Message: "precioUnitario must be a non-negative amount",
		}), logger)
		return
	}

	detalle, err := c.service.UpdatePrice(r.Context(), detalleID, req.PrecioUnitario)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, toDetalleResponse(detalle), logger)
}

func (c *DetalleController) ChangeEstado(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	detalleID, ok := c.pathID(w, r, traceID, "detalleId", logger)
	if !ok {
		return
	}

	var req dto.ChangeDetalleEstadoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		commons.WriteError(w, traceID, apperrors.NewValidationError("invalid JSON body", apperrors.ValidationDetail{
			Field:   "body",
			Message: "request body must be valid JSON",
		}), logger)
		return
	}

	estado, err := domain.ParseDetalleStatus(req.Estado)
	if err != nil {
		commons.WriteError(w, traceID, apperrors.NewValidationError("unknown estado", apperrors.ValidationDetail{
			Field:   "estado",
			Message: "estado must be one of PENDIENTE, PREPARACION, COMPLETADO, CANCELADO",
		}), logger)
		return
	}

	detalle, err := c.service.ChangeStatus(r.Context(), detalleID, estado)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, toDetalleResponse(detalle), logger)
}

func (c *DetalleController) Recalculate(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	detalleID, ok := c.pathID(w, r, traceID, "detalleId", logger)
	if !ok {
		return
	}

	detalle, err := c.service.RecalculateSubtotal(r.Context(), detalleID)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, toDetalleResponse(detalle), logger)
}

func (c *DetalleController) Delete(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	detalleID, ok := c.pathID(w, r, traceID, "detalleId", logger)
	if !ok {
		return
	}

	if err := c.service.DeleteLineItem(r.Context(), detalleID); err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (c *DetalleController) ListByComanda(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	comandaID, ok := c.pathID(w, r, traceID, "comandaId", logger)
	if !ok {
		return
	}

	detalles, err := c.service.ListByComanda(r.Context(), comandaID)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	responses := make([]dto.DetalleResponse, 0, len(detalles))
	for i := range detalles {
		responses = append(responses, toDetalleResponse(&detalles[i]))
	}
	commons.WriteJSON(w, http.StatusOK, responses, logger)
}

func (c *DetalleController) ListByProducto(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	productoID, ok := c.pathID(w, r, traceID, "productoId", logger)
	if !ok {
		return
	}

	detalles, err := c.service.ListByProducto(r.Context(), productoID)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	responses := make([]dto.DetalleResponse, 0, len(detalles))
	for i := range detalles {
		responses = append(responses, toDetalleResponse(&detalles[i]))
	}
	commons.WriteJSON(w, http.StatusOK, responses, logger)
}

// ListBySubtotalRange filters detalles whose subtotal falls within
// [minimo, maximo].
func (c *DetalleController) ListBySubtotalRange(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	minimo, err := decimal.NewFromString(r.URL.Query().Get("minimo"))
	if err != nil {
		commons.WriteError(w, traceID, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "minimo",
			Message: "minimo must be a decimal amount",
		}), logger)
		return
	}
	maximo, err := decimal.NewFromString(r.URL.Query().Get("maximo"))
	if err != nil {
		commons.WriteError(w, traceID, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
			Field:   "maximo",
			Message: "maximo must be a decimal amount",
		}), logger)
		return
	}

	detalles, err := c.service.ListBySubtotalRange(r.Context(), minimo, maximo)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	responses := make([]dto.DetalleResponse, 0, len(detalles))
	for i := range detalles {
		responses = append(responses, toDetalleResponse(&detalles[i]))
	}
	commons.WriteJSON(w, http.StatusOK, responses, logger)
}

func (c *DetalleController) CountByComanda(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	comandaID, ok := c.pathID(w, r, traceID, "comandaId", logger)
	if !ok {
		return
	}

	count, err := c.service.CountByComanda(r.Context(), comandaID)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, map[string]int{"idComanda": comandaID, "total": count}, logger)
}

func (c *DetalleController) ComandaTotal(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	comandaID, ok := c.pathID(w, r, traceID, "comandaId", logger)
	if !ok {
		return
	}

	total, err := c.service.ComandaTotal(r.Context(), comandaID)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, dto.ComandaTotalResponse{ComandaID: comandaID, Total: total}, logger)
}

func (c *DetalleController) TopProductos(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	limite := 10
	if raw := r.URL.Query().Get("limite"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			commons.WriteError(w, traceID, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
				Field:   "limite",
				Message: "limite must be a positive integer",
			}), logger)
			return
		}
		limite = parsed
	}

	vendidos, err := c.service.TopProductosVendidos(r.Context(), limite)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	responses := make([]dto.ProductoVendidoResponse, 0, len(vendidos))
	for _, v := range vendidos {
		responses = append(responses, dto.ProductoVendidoResponse{
			ProductoID:    v.ProductoID,
			Nombre:        v.Nombre,
			CantidadTotal: v.CantidadTotal,
		})
	}
	commons.WriteJSON(w, http.StatusOK, responses, logger)
}

func (c *DetalleController) pathID(w http.ResponseWriter, r *http.Request, traceID, param string, logger *zap.Logger) (int, bool) {
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

func toDetalleResponse(d *domain.Detalle) dto.DetalleResponse {
	return dto.DetalleResponse{
		DetalleID:      d.ID,
		ComandaID:      d.ComandaID,
		ProductoID:     d.ProductoID,
		Cantidad:       d.Cantidad,
		PrecioUnitario: d.PrecioUnitario,
		Subtotal:       d.Subtotal,
		Estado:         string(d.Estado),
	}
}
