package entity

import "github.com/shopspring/decimal"

// Product vista de solo lectura del producto (pertenece al servicio de catálogo).
// LowStockThreshold <= 0 significa que el producto no se monitorea.
// CriticalRatio, si es válido, reemplaza el ratio crítico configurado para este producto.
type Product struct {
	ID                string
	SKU               string
	Name              string
	CurrentStock      int64
	LowStockThreshold int64
	CriticalRatio     decimal.NullDecimal
}

// AlertRatio devuelve el ratio crítico propio del producto o fallback.
func (p *Product) AlertRatio(fallback decimal.Decimal) decimal.Decimal {
	if p.CriticalRatio.Valid {
		return p.CriticalRatio.Decimal
	}
	return fallback
}
