package inventory

import "github.com/jhoicas/inventario-stock/internal/domain/entity"

// ClassifyAdjustment decide el tipo de asiento de un ajuste manual (fijar cantidad).
// Delta positivo se registra como entrada (IN); cero o negativo como ADJUSTMENT.
func ClassifyAdjustment(delta int64) entity.TransactionType {
	if delta > 0 {
		return entity.TransactionIn
	}
	return entity.TransactionAdjustment
}

// ApplyDelta calcula la nueva cantidad y si el resultado es válido (no negativo).
func ApplyDelta(previous, delta int64) (int64, bool) {
	next := previous + delta
	return next, next >= 0
}
