package product

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"comandero/internal/commons"
	"comandero/internal/domain"
	apperrors "comandero/internal/errors"
)

type Catalog interface {
	FindByID(ctx context.Context, id int) (*domain.Producto, error)
	ListActivos(ctx context.Context) ([]domain.Producto, error)
}

// Controller exposes the read-only catalog. Stock mutations only ever
// happen through detalle operations.
type Controller struct {
	catalog Catalog
	logger  *zap.Logger
}

func NewController(catalog Catalog, logger *zap.Logger) *Controller {
	return &Controller{catalog: catalog, logger: logger}
}

type productoResponse struct {
	ProductoID  int    `json:"idProducto"`
	Nombre      string `json:"nombre"`
	Precio      string `json:"precio"`
	Stock       int    `json:"stock"`
	Activo      bool   `json:"activo"`
	CategoriaID int    `json:"categoriaId"`
}

func (c *Controller) ListActivos(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	productos, err := c.catalog.ListActivos(r.Context())
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	responses := make([]productoResponse, 0, len(productos))
	for i := range productos {
		responses = append(responses, toProductoResponse(&productos[i]))
	}
	commons.WriteJSON(w, http.StatusOK, responses, logger)
}

func (c *Controller) Get(w http.ResponseWriter, r *http.Request) {
	traceID := uuid.New().String()
	logger := c.logger.With(zap.String("traceId", traceID))

	raw := chi.URLParam(r, "productoId")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		commons.WriteError(w, traceID, apperrors.NewValidationError("invalid productoId", apperrors.ValidationDetail{
			Field:   "productoId",
			Message: "productoId must be a positive integer",
		}), logger)
		return
	}

	producto, err := c.catalog.FindByID(r.Context(), id)
	if err != nil {
		commons.WriteError(w, traceID, err, logger)
		return
	}

	commons.WriteJSON(w, http.StatusOK, toProductoResponse(producto), logger)
}

func toProductoResponse(p *domain.Producto) productoResponse {
	return productoResponse{
		ProductoID:  p.ID,
		Nombre:      p.Nombre,
		Precio:      p.Precio.StringFixed(2),
		Stock:       p.Stock,
		Activo:      p.Activo,
		CategoriaID: p.CategoriaID,
	}
}
