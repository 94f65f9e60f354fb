package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	billingctrl "comandero/internal/billing/controller"
	inventoryctrl "comandero/internal/inventory/controller"
	orderctrl "comandero/internal/order/controller"
	"comandero/internal/product"
	tablectrl "comandero/internal/table/controller"
)

func NewRouter(
	comandas *orderctrl.ComandaController,
	detalles *inventoryctrl.DetalleController,
	mesas *tablectrl.MesaController,
	billing *billingctrl.BillingController,
	productos *product.Controller,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/comandas", func(r chi.Router) {
		r.Post("/", comandas.Create)
		r.Get("/", comandas.List)
		r.Get("/count", comandas.CountByEstado)
		r.Get("/ventas", comandas.SalesTotal)

		r.Route("/{comandaId}", func(r chi.Router) {
			r.Get("/", comandas.Get)
			r.Delete("/", comandas.Delete)
			r.Put("/estado", comandas.Transition)
			r.Put("/cocinero", comandas.AssignCocinero)
			r.Put("/preparacion", comandas.StartPreparation)
			r.Put("/cancelar", comandas.Cancel)
			r.Put("/pagar", comandas.MarkPaid)

			r.Post("/detalles", detalles.Add)
			r.Get("/detalles", detalles.ListByComanda)
			r.Get("/detalles/count", detalles.CountByComanda)
			r.Get("/total", detalles.ComandaTotal)
		})
	})

	r.Route("/detalles", func(r chi.Router) {
		r.Get("/", detalles.ListBySubtotalRange)

		r.Route("/{detalleId}", func(r chi.Router) {
			r.Get("/", detalles.Get)
			r.Delete("/", detalles.Delete)
			r.Put("/cantidad", detalles.UpdateCantidad)
			r.Put("/precio", detalles.UpdatePrecio)
			r.Put("/estado", detalles.ChangeEstado)
			r.Post("/recalcular", detalles.Recalculate)
		})
	})

	r.Route("/productos", func(r chi.Router) {
		r.Get("/", productos.ListActivos)

		r.Route("/{productoId}", func(r chi.Router) {
			r.Get("/", productos.Get)
			r.Get("/detalles", detalles.ListByProducto)
		})
	})

	r.Route("/mesas", func(r chi.Router) {
		r.Get("/disponibles", mesas.ListDisponibles)

		r.Route("/{mesaId}", func(r chi.Router) {
			r.Get("/", mesas.Get)
			r.Post("/liberar", mesas.Release)
			r.Post("/reservar", mesas.Reserve)

			r.Get("/comandas", comandas.ListByMesa)
			r.Post("/comandas/finalizar", comandas.FinalizeAllForMesa)
			r.Get("/comandas/completadas", comandas.AllCompletedForMesa)

			r.Get("/facturacion", billing.TableSummary)
			r.Post("/pagar", billing.MarkAllPaid)
		})
	})

	r.Get("/reportes/productos-mas-vendidos", detalles.TopProductos)

	return r
}
