package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")

	// Motor de movimientos de inventario.
	ErrInvalidQuantity   = errors.New("la cantidad debe ser un entero mayor que cero")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrUnknownReason     = errors.New("motivo de movimiento desconocido")
	ErrInvalidKind       = errors.New("tipo de movimiento inválido")
	ErrInvalidTransfer   = errors.New("el origen y el destino no pueden ser iguales")
	ErrMissingLocation   = errors.New("falta la ubicación requerida por el tipo de movimiento")

	// ErrBusy: no se obtuvo el bloqueo de fila dentro del límite configurado.
	// Es el único error que el llamador debe reintentar.
	ErrBusy = errors.New("inventario ocupado, reintente")
)

// IsRetryable indica si el error proviene de contención de bloqueos.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrBusy)
}
