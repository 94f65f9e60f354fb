package controller

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"comandero/internal/commons"
	"comandero/internal/domain"
	"comandero/internal/dto"
	apperrors "comandero/internal/errors"
)

type OccupancyService interface {
	Release(ctx context.Context, mesaID int) (*domain.Mesa, error)
	Reserve(ctx context.Context, mesaID int) (*domain.Mesa, error)
}

type MesaFinder interface {
	FindByID(ctx context.Context, mesaID int) (*domain.Mesa, error)
	ListDisponibles(ctx context.Context) ([]domain.Mesa, error)
	ListByCapacidadMinima(ctx context.Context, capacidad int) ([]domain.Mesa, error)
}

type MesaController struct {
	occupancy OccupancyService
	mesas     MesaFinder
	logger    *zap.Logger
}

func NewMesaController(occupancy OccupancyService, mesas MesaFinder, logger *zap.Logger) *MesaController {
	return &MesaController{occupancy: occupancy, mesas: mesas, logger: logger}
}

func (c *MesaController) Get(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	mesaID, ok := c.pathID(w, r, traceID, logger)
	if !ok {
		return
	}

	mesa, err := c.mesas.FindByID(r.Context(), mesaID)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, toMesaResponse(mesa), logger)
}

func (c *MesaController) Release(w http.ResponseWriter, r *http.Request) {
	c.withOccupancy(w, r, c.occupancy.Release)
}

func (c *MesaController) Reserve(w http.ResponseWriter, r *http.Request) {
	c.withOccupancy(w, r, c.occupancy.Reserve)
}

func (c *MesaController) withOccupancy(
	w http.ResponseWriter,
	r *http.Request,
	op func(ctx context.Context, mesaID int) (*domain.Mesa, error),
) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	mesaID, ok := c.pathID(w, r, traceID, logger)
	if !ok {
		return
	}

	mesa, err := op(r.Context(), mesaID)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, toMesaResponse(mesa), logger)
}

func (c *MesaController) ListDisponibles(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	// Optional capacity filter narrows availability to mesas that seat
	// at least the requested party size.
	if raw := r.URL.Query().Get("capacidad"); raw != "" {
		capacidad, err := strconv.Atoi(raw)
		if err != nil || capacidad <= 0 {
			commons.WriteError(w, traceID, apperrors.NewValidationError("validation failed", apperrors.ValidationDetail{
				Field:   "capacidad",
				Message: "capacidad must be a positive integer",
			}), logger)
			return
		}

		mesas, err := c.mesas.ListByCapacidadMinima(r.Context(), capacidad)
		if err != nil {
			commons.WriteError(w, traceID, err, logger)
			return
		}
		commons.WriteJSON(w, http.StatusOK, toMesaResponses(mesas), logger)
		return
	}

	mesas, err := c.mesas.ListDisponibles(r.Context())
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}
	commons.WriteJSON(w, http.StatusOK, toMesaResponses(mesas), logger)
}

func (c *MesaController) pathID(w http.ResponseWriter, r *http.Request, traceID string, logger *zap.Logger) (int, bool) {
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

func toMesaResponse(m *domain.Mesa) dto.MesaResponse {
	return dto.MesaResponse{
		MesaID:    m.ID,
		Capacidad: m.Capacidad,
		Ubicacion: m.Ubicacion,
		Estado:    string(m.Estado),
	}
}

func toMesaResponses(mesas []domain.Mesa) []dto.MesaResponse {
	responses := make([]dto.MesaResponse, 0, len(mesas))
	for i := range mesas {
		responses = append(responses, toMesaResponse(&mesas[i]))
	}
	return responses
}
