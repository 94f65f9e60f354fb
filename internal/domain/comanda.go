package domain

import "time"

// Comanda is one customer order tied to a single mesa and mesero. The
// cocinero is optional until kitchen work starts. Pagada is orthogonal to
// Estado and may only become true once the comanda is COMPLETADO.
type Comanda struct {
	ID         int
	MesaID     int
	MeseroID   string
	CocineroID *string
	Estado     ComandaStatus
	Pagada     bool
	Fecha      time.Time
}

func (c Comanda) EstaPendiente() bool {
	return c.Estado == ComandaStatusPendiente
}

func (c Comanda) EstaCompletada() bool {
	return c.Estado == ComandaStatusCompletado
}

// Facturable reports whether the comanda still owes money: completed but
// not yet paid. Cancelled comandas never bill.
func (c Comanda) Facturable() bool {
	return c.Estado == ComandaStatusCompletado && !c.Pagada
}
