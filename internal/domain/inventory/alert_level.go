package inventory

import (
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// DefaultCriticalRatio fracción del umbral en o bajo la cual la alerta es crítica.
var DefaultCriticalRatio = decimal.NewFromFloat(0.5)

// IsLowStock indica si la cantidad está en o bajo el umbral. Umbrales <= 0 no se monitorean.
func IsLowStock(quantity, threshold int64) bool {
	return threshold > 0 && quantity <= threshold
}

// AlertLevelFor deriva la severidad: critical si quantity <= threshold*ratio, warning en otro caso.
func AlertLevelFor(quantity, threshold int64, ratio decimal.Decimal) entity.AlertLevel {
	limit := decimal.NewFromInt(threshold).Mul(ratio)
	if decimal.NewFromInt(quantity).LessThanOrEqual(limit) {
		return entity.AlertCritical
	}
	return entity.AlertWarning
}
