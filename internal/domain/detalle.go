package domain

import "github.com/shopspring/decimal"

// Detalle is one product-and-quantity line within a comanda. PrecioUnitario
// is snapshotted from the product at creation time, never live-linked.
type Detalle struct {
	ID             int
	ComandaID      int
	ProductoID     int
	Cantidad       int
	PrecioUnitario decimal.Decimal
	Subtotal       decimal.Decimal
	Estado         DetalleStatus
}

// RecalcularSubtotal restores the Subtotal = Cantidad * PrecioUnitario
// invariant. Every quantity or price mutation must call it.
func (d *Detalle) RecalcularSubtotal() {
	d.Subtotal = d.PrecioUnitario.Mul(decimal.NewFromInt(int64(d.Cantidad)))
}
