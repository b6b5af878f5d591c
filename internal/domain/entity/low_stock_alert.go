package entity

import "time"

// AlertLevel severidad de una alerta de stock bajo.
type AlertLevel string

const (
	AlertWarning  AlertLevel = "warning"
	AlertCritical AlertLevel = "critical"
)

// ResolvedBySystem actor usado cuando la alerta se resuelve automáticamente.
const ResolvedBySystem = "system"

// LowStockAlert marca que un producto (en una bodega o global) está en o bajo su umbral.
// Como máximo una alerta sin resolver por (ProductID, WarehouseID).
type LowStockAlert struct {
	ID              string
	ProductID       string
	WarehouseID     *string
	CurrentQuantity int64
	Threshold       int64
	AlertLevel      AlertLevel
	IsResolved      bool
	ResolvedBy      string
	ResolvedAt      *time.Time
	CreatedAt       time.Time
}

// Resolve marca la alerta como resuelta. No hace nada si ya lo estaba.
func (a *LowStockAlert) Resolve(by string, at time.Time) bool {
	if a.IsResolved {
		return false
	}
	a.IsResolved = true
	a.ResolvedBy = by
	a.ResolvedAt = &at
	return true
}
