package domain

import (
	"fmt"
	"strings"
)

// ComandaStatus is the canonical lifecycle state of a comanda. The legacy
// database stored free-form names ("Completado", "Completada", "COMPLETADO");
// ParseComandaStatus normalizes those at the scan boundary so the rest of the
// code only ever compares canonical values.
type ComandaStatus string

const (
	ComandaStatusPendiente   ComandaStatus = "PENDIENTE"
	ComandaStatusPreparacion ComandaStatus = "PREPARACION"
	ComandaStatusCompletado  ComandaStatus = "COMPLETADO"
	ComandaStatusCancelado   ComandaStatus = "CANCELADO"
)

func ParseComandaStatus(s string) (ComandaStatus, error) {
	switch normalizeStatusName(s) {
	case "PENDIENTE":
		return ComandaStatusPendiente, nil
	case "PREPARACION", "EN PREPARACION":
		return ComandaStatusPreparacion, nil
	case "COMPLETADO":
		return ComandaStatusCompletado, nil
	case "CANCELADO":
		return ComandaStatusCancelado, nil
	}
	return "", fmt.Errorf("unknown comanda status %q", s)
}

// CanTransitionTo reports whether the state machine permits moving to target.
// PENDIENTE -> PREPARACION -> COMPLETADO, with CANCELADO reachable from the
// two non-terminal states. COMPLETADO and CANCELADO are terminal.
func (s ComandaStatus) CanTransitionTo(target ComandaStatus) bool {
	switch s {
	case ComandaStatusPendiente:
		return target == ComandaStatusPreparacion || target == ComandaStatusCancelado
	case ComandaStatusPreparacion:
		return target == ComandaStatusCompletado || target == ComandaStatusCancelado
	}
	return false
}

func (s ComandaStatus) Terminal() bool {
	return s == ComandaStatusCompletado || s == ComandaStatusCancelado
}

// DetalleStatus mirrors the comanda states but is tracked per line item.
type DetalleStatus string

const (
	DetalleStatusPendiente   DetalleStatus = "PENDIENTE"
	DetalleStatusPreparacion DetalleStatus = "PREPARACION"
	DetalleStatusCompletado  DetalleStatus = "COMPLETADO"
	DetalleStatusCancelado   DetalleStatus = "CANCELADO"
)

func ParseDetalleStatus(s string) (DetalleStatus, error) {
	cs, err := ParseComandaStatus(s)
	if err != nil {
		return "", fmt.Errorf("unknown detalle status %q", s)
	}
	return DetalleStatus(cs), nil
}

// MesaStatus is the occupancy state of a table.
type MesaStatus string

const (
	MesaStatusDisponible MesaStatus = "DISPONIBLE"
	MesaStatusOcupado    MesaStatus = "OCUPADO"
	MesaStatusReservado  MesaStatus = "RESERVADO"
)

func ParseMesaStatus(s string) (MesaStatus, error) {
	switch normalizeStatusName(s) {
	case "DISPONIBLE":
		return MesaStatusDisponible, nil
	case "OCUPADO", "LIBRE OCUPADO":
		return MesaStatusOcupado, nil
	case "RESERVADO":
		return MesaStatusReservado, nil
	}
	return "", fmt.Errorf("unknown mesa status %q", s)
}

// normalizeStatusName uppercases and collapses the feminine spelling variants
// the legacy data carries ("Completada", "Ocupada", ...).
func normalizeStatusName(s string) string {
	n := strings.ToUpper(strings.TrimSpace(s))
	switch n {
	case "COMPLETADA":
		return "COMPLETADO"
	case "CANCELADA":
		return "CANCELADO"
	case "OCUPADA":
		return "OCUPADO"
	case "RESERVADA":
		return "RESERVADO"
	}
	return n
}
