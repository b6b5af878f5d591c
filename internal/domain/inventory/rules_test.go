package inventory_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/inventory"
)

func TestClassifyAdjustment_PositivoEsEntrada(t *testing.T) {
	assert.Equal(t, entity.TransactionIn, inventory.ClassifyAdjustment(5))
	assert.Equal(t, entity.TransactionAdjustment, inventory.ClassifyAdjustment(0))
	assert.Equal(t, entity.TransactionAdjustment, inventory.ClassifyAdjustment(-3))
}

func TestApplyDelta_NoPermiteNegativos(t *testing.T) {
	next, ok := inventory.ApplyDelta(10, -10)
	assert.True(t, ok)
	assert.Equal(t, int64(0), next)

	_, ok = inventory.ApplyDelta(10, -11)
	assert.False(t, ok, "quedar en -1 debe rechazarse")
}

func TestIsLowStock_UmbralInclusivo(t *testing.T) {
	assert.True(t, inventory.IsLowStock(10, 10), "stock igual al umbral es stock bajo")
	assert.True(t, inventory.IsLowStock(0, 10))
	assert.False(t, inventory.IsLowStock(11, 10))
	assert.False(t, inventory.IsLowStock(0, 0), "umbral cero no se monitorea")
	assert.False(t, inventory.IsLowStock(0, -5))
}

func TestAlertLevelFor_CriticoEnLaMitadDelUmbral(t *testing.T) {
	ratio := inventory.DefaultCriticalRatio
	assert.Equal(t, entity.AlertCritical, inventory.AlertLevelFor(0, 10, ratio))
	assert.Equal(t, entity.AlertCritical, inventory.AlertLevelFor(5, 10, ratio))
	assert.Equal(t, entity.AlertWarning, inventory.AlertLevelFor(6, 10, ratio))
	assert.Equal(t, entity.AlertWarning, inventory.AlertLevelFor(10, 10, ratio))

	// umbral impar: 7 * 0.5 = 3.5
	assert.Equal(t, entity.AlertCritical, inventory.AlertLevelFor(3, 7, ratio))
	assert.Equal(t, entity.AlertWarning, inventory.AlertLevelFor(4, 7, ratio))

	assert.Equal(t, entity.AlertCritical, inventory.AlertLevelFor(2, 10, decimal.RequireFromString("0.25")))
	assert.Equal(t, entity.AlertWarning, inventory.AlertLevelFor(3, 10, decimal.RequireFromString("0.25")))
}

func TestFormatIdentifier_RellenaConCeros(t *testing.T) {
	assert.Equal(t, "TRF-000007", inventory.FormatIdentifier("TRF-", 7, 6))
	assert.Equal(t, "TRF-1234567", inventory.FormatIdentifier("TRF-", 1234567, 6), "un número más ancho se usa completo")
	assert.Equal(t, "7", inventory.FormatIdentifier("", 7, 1))
}

func TestParseSequence(t *testing.T) {
	cases := []struct {
		id   string
		want int64
		ok   bool
	}{
		{"TRF-000042", 42, true},
		{"TRF-1000000", 1000000, true},
		{"TRF-", 0, false},
		{"TRF-12A", 0, false},
		{"OTR-000001", 0, false},
		{"TRF-20240102T030405000006", 0, false},
		{"TRF-1234567890123456789", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.id, func(t *testing.T) {
			n, ok := inventory.ParseSequence("TRF-", tc.id)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, n)
		})
	}
}

func TestFallbackIdentifier_DerivadoDelReloj(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 6000, time.UTC)
	id := inventory.FallbackIdentifier("TRF-", now)
	assert.Equal(t, "TRF-20240102T030405000006", id)

	_, ok := inventory.ParseSequence("TRF-", id)
	assert.False(t, ok, "el id de respaldo no debe confundirse con la secuencia")

	bogota := time.FixedZone("COT", -5*3600)
	assert.Equal(t, id, inventory.FallbackIdentifier("TRF-", now.In(bogota)), "se formatea en UTC")
}
