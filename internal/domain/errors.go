package domain

import (
	"context"
	"errors"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound             = errors.New("recurso no encontrado")
	ErrInvalidInput         = errors.New("entrada inválida")
	ErrRemoteWrite          = errors.New("el ERP rechazó la operación")
	ErrTransport            = errors.New("fallo de transporte con el ERP")
	ErrGeneratorUnavailable = errors.New("el generador no devolvió datos creativos")
	ErrGeneratorTimeout     = errors.New("el generador excedió el tiempo límite")
	ErrContract             = errors.New("violación de contrato de datos")
)

// IsFatal indica si el error debe abortar la corrida: sin conexión con el ERP
// o contexto cancelado. Los rechazos por registro no son fatales.
func IsFatal(err error) bool {
	return errors.Is(err, ErrTransport) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
