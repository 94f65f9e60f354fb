package dto

import "github.com/shopspring/decimal"

type AddDetalleRequest struct {
	ProductoID int `json:"idProducto"`
	Cantidad   int `json:"cantidad"`
}

type UpdateCantidadRequest struct {
	Cantidad int `json:"cantidad"`
}

type UpdatePrecioRequest struct {
	PrecioUnitario decimal.Decimal `json:"precioUnitario"`
}

type ChangeDetalleEstadoRequest struct {
	Estado string `json:"estado"`
}

type DetalleResponse struct {
	DetalleID      int             `json:"idDetalle"`
	ComandaID      int             `json:"idComanda"`
	ProductoID     int             `json:"idProducto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precioUnitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Estado         string          `json:"estado"`
}

type ProductoVendidoResponse struct {
	ProductoID    int    `json:"idProducto"`
	Nombre        string `json:"nombre"`
	CantidadTotal int    `json:"cantidadTotal"`
}
