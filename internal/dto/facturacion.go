package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ComandaFacturacion is one comanda line in a mesa's billing summary.
type ComandaFacturacion struct {
	ComandaID         int             `json:"idComanda"`
	Fecha             time.Time       `json:"fecha"`
	Estado            string          `json:"estado"`
	Mesero            string          `json:"mesero"`
	Cocinero          string          `json:"cocinero"`
	Total             decimal.Decimal `json:"total"`
	CantidadProductos int             `json:"cantidadProductos"`
	Pagada            bool            `json:"pagada"`
}

// FacturacionMesa is the billing summary for one mesa. TotalAPagar covers
// completed-and-unpaid comandas only; paid and cancelled comandas never
// contribute.
type FacturacionMesa struct {
	MesaID              int                  `json:"idMesa"`
	Ubicacion           string               `json:"ubicacionMesa"`
	TotalComandas       int                  `json:"totalComandas"`
	ComandasCompletadas int                  `json:"comandasCompletadas"`
	ComandasPendientes  int                  `json:"comandasPendientes"`
	ComandasPagadas     int                  `json:"comandasPagadas"`
	TodasCompletadas    bool                 `json:"todasCompletadas"`
	TodasPagadas        bool                 `json:"todasPagadas"`
	TotalAPagar         decimal.Decimal      `json:"totalAPagar"`
	Comandas            []ComandaFacturacion `json:"comandas"`
}
