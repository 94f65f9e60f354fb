package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Producto is a catalog entry. Stock is the number of unreserved units;
// it never goes negative.
type Producto struct {
	ID          int
	Nombre      string
	Precio      decimal.Decimal
	Stock       int
	Activo      bool
	CategoriaID int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (p Producto) TieneStock(cantidad int) bool {
	return p.Stock >= cantidad
}
