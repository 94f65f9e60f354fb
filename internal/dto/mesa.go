package dto

type MesaResponse struct {
	MesaID    int    `json:"idMesa"`
	Capacidad int    `json:"capacidad"`
	Ubicacion string `json:"ubicacion"`
	Estado    string `json:"estado"`
}
