package domain

// Mesa is a table. Mesas do not own comandas; comandas reference a mesa
// by id and the "current session" is a query.
type Mesa struct {
	ID        int
	Capacidad int
	Ubicacion string
	Estado    MesaStatus
}

func (m Mesa) Ocupada() bool {
	return m.Estado == MesaStatusOcupado
}
