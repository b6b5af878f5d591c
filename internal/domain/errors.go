package domain

import "errors"

// Taxonomía de fallos del motor de stock. Los mensajes concretos se agregan con
// fmt.Errorf("%w: ...") y la capa HTTP traduce cada uno con errors.Is.
var (
	// ErrNotFound producto, bodega, traslado o alerta inexistente.
	ErrNotFound = errors.New("no existe")
	// ErrInvalidInput filtros o campos obligatorios mal formados.
	ErrInvalidInput = errors.New("datos inválidos")
	// ErrInvalidQuantity cantidad no positiva o stock resultante negativo.
	ErrInvalidQuantity = errors.New("cantidad inválida")
	// ErrInsufficientStock la salida supera lo disponible en origen.
	ErrInsufficientStock = errors.New("stock insuficiente")
	// ErrInvalidTransition operación no permitida desde el estado actual del traslado.
	ErrInvalidTransition = errors.New("cambio de estado no permitido")
	// ErrInvalidOperation acción estructuralmente prohibida, como borrar un traslado completado.
	ErrInvalidOperation = errors.New("operación no permitida")
	// ErrConflict colisión de identificador tras agotar los reintentos.
	ErrConflict = errors.New("conflicto de identificador")
	// ErrDuplicate violación de unicidad en el almacenamiento.
	ErrDuplicate = errors.New("registro duplicado")

	ErrUnauthorized = errors.New("no autenticado")
	ErrForbidden    = errors.New("rol sin permiso")
)
