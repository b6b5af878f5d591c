package inventory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

func TestAdjust_SubirRegistraEntradaYBajarRegistraAjuste(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	up, err := f.adjuster.Adjust(ctx, inventory.AdjustInput{
		ProductID: prodMonitored, WarehouseID: wh(whA), NewQuantity: 20, Notes: "conteo inicial", Actor: "ana",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(20), up.Delta)
	assert.Equal(t, entity.TransactionIn, up.Entry.TransactionType)
	assert.Equal(t, entity.ReferenceManual, up.Entry.ReferenceType)
	assert.Equal(t, "conteo inicial", up.Entry.Notes)
	assert.Equal(t, "ana", up.Entry.Actor)
	assert.Equal(t, int64(20), up.Level.CurrentQuantity)

	down, err := f.adjuster.Adjust(ctx, inventory.AdjustInput{ProductID: prodMonitored, WarehouseID: wh(whA), NewQuantity: 15})
	require.NoError(t, err)
	assert.Equal(t, int64(-5), down.Delta)
	assert.Equal(t, entity.TransactionAdjustment, down.Entry.TransactionType)
	assert.Equal(t, int64(20), down.Entry.PreviousQuantity)
	assert.Equal(t, int64(15), down.Entry.NewQuantity)

	same, err := f.adjuster.Adjust(ctx, inventory.AdjustInput{ProductID: prodMonitored, WarehouseID: wh(whA), NewQuantity: 15})
	require.NoError(t, err)
	assert.Equal(t, int64(0), same.Delta)
	assert.Equal(t, entity.TransactionAdjustment, same.Entry.TransactionType)

	assert.Equal(t, int64(15), f.stock(t, prodMonitored, wh(whA)))
}

func TestAdjust_ACeroEsValido(t *testing.T) {
	f := newFixture(t)
	f.setStock(t, prodFree, nil, 8)

	res, err := f.adjuster.Adjust(context.Background(), inventory.AdjustInput{ProductID: prodFree, NewQuantity: 0})
	require.NoError(t, err)
	assert.Equal(t, int64(-8), res.Delta)
	assert.Equal(t, int64(0), f.stock(t, prodFree, nil))
}

func TestAdjust_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.adjuster.Adjust(ctx, inventory.AdjustInput{NewQuantity: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.adjuster.Adjust(ctx, inventory.AdjustInput{ProductID: prodMonitored, NewQuantity: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.adjuster.Adjust(ctx, inventory.AdjustInput{ProductID: "NO-EXISTE", NewQuantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.adjuster.Adjust(ctx, inventory.AdjustInput{ProductID: prodMonitored, WarehouseID: wh("WH-Z"), NewQuantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.Equal(t, int64(0), f.stock(t, prodMonitored, nil), "un ajuste rechazado no escribe")
}
