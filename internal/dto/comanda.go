package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type CreateComandaRequest struct {
	MesaID   int    `json:"idMesa"`
	MeseroID string `json:"idMesero"`
}

type AssignCocineroRequest struct {
	CocineroID string `json:"idCocinero"`
}

type TransitionRequest struct {
	Estado string `json:"estado"`
}

type ComandaResponse struct {
	ComandaID  int       `json:"idComanda"`
	MesaID     int       `json:"idMesa"`
	MeseroID   string    `json:"idMesero"`
	CocineroID *string   `json:"idCocinero,omitempty"`
	Estado     string    `json:"estado"`
	Pagada     bool      `json:"pagada"`
	Fecha      time.Time `json:"fecha"`
}

type FinalizeResponse struct {
	MesaID int `json:"idMesa"`
	Count  int `json:"comandasFinalizadas"`
}

type MarkAllPaidResponse struct {
	MesaID int `json:"idMesa"`
	Count  int `json:"comandasPagadas"`
}

type AllCompletedResponse struct {
	MesaID           int  `json:"idMesa"`
	TodasCompletadas bool `json:"todasCompletadas"`
}

type ComandaTotalResponse struct {
	ComandaID int             `json:"idComanda"`
	Total     decimal.Decimal `json:"total"`
}
