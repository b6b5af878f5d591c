package inventory_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

func transferInput(qty int64) inventory.CreateTransferInput {
	return inventory.CreateTransferInput{
		ProductID:       prodMonitored,
		FromWarehouseID: whA,
		ToWarehouseID:   whB,
		Quantity:        qty,
		Actor:           "ana",
	}
}

func TestCreate_QuedaPendienteYNoMueveStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setStock(t, prodMonitored, wh(whA), 10)

	tr, err := f.workflow.Create(ctx, transferInput(3))
	require.NoError(t, err)
	assert.Equal(t, "TRF-000001", tr.ID)
	assert.Equal(t, entity.TransferPending, tr.Status)
	assert.Equal(t, int64(10), f.stock(t, prodMonitored, wh(whA)))
	assert.Equal(t, int64(0), f.stock(t, prodMonitored, wh(whB)))

	second, err := f.workflow.Create(ctx, transferInput(2))
	require.NoError(t, err)
	assert.Equal(t, "TRF-000002", second.ID, "ids consecutivos")
}

func TestCreate_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setStock(t, prodMonitored, wh(whA), 5)

	cases := []struct {
		name string
		mod  func(in *inventory.CreateTransferInput)
		want error
	}{
		{"sin producto", func(in *inventory.CreateTransferInput) { in.ProductID = "" }, domain.ErrInvalidInput},
		{"sin destino", func(in *inventory.CreateTransferInput) { in.ToWarehouseID = "" }, domain.ErrInvalidInput},
		{"cantidad cero", func(in *inventory.CreateTransferInput) { in.Quantity = 0 }, domain.ErrInvalidQuantity},
		{"cantidad negativa", func(in *inventory.CreateTransferInput) { in.Quantity = -2 }, domain.ErrInvalidQuantity},
		{"misma bodega", func(in *inventory.CreateTransferInput) { in.ToWarehouseID = whA }, domain.ErrInvalidInput},
		{"producto inexistente", func(in *inventory.CreateTransferInput) { in.ProductID = "P-404" }, domain.ErrNotFound},
		{"bodega inexistente", func(in *inventory.CreateTransferInput) { in.ToWarehouseID = "WH-404" }, domain.ErrNotFound},
		{"stock insuficiente", func(in *inventory.CreateTransferInput) { in.Quantity = 6 }, domain.ErrInsufficientStock},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := transferInput(1)
			tc.mod(&in)
			_, err := f.workflow.Create(ctx, in)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	list, err := f.workflow.List(ctx, repository.TransferFilter{})
	require.NoError(t, err)
	assert.Empty(t, list, "un traslado rechazado no deja fila")
}

func TestCreate_IdExplicitoDuplicadoEsConflicto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setStock(t, prodMonitored, wh(whA), 10)

	in := transferInput(1)
	in.ID = "MANUAL-1"
	_, err := f.workflow.Create(ctx, in)
	require.NoError(t, err)

	_, err = f.workflow.Create(ctx, in)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestApprove_MueveStockYCompleta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setStock(t, prodMonitored, wh(whA), 10)

	tr, err := f.workflow.Create(ctx, transferInput(3))
	require.NoError(t, err)

	done, err := f.workflow.Approve(ctx, tr.ID, "jefe")
	require.NoError(t, err)
	assert.Equal(t, entity.TransferCompleted, done.Status)
	assert.Equal(t, int64(7), f.stock(t, prodMonitored, wh(whA)))
	assert.Equal(t, int64(3), f.stock(t, prodMonitored, wh(whB)))

	legs, err := f.ledger.History(ctx, repository.HistoryFilter{ReferenceID: tr.ID})
	require.NoError(t, err)
	require.Len(t, legs, 2)
	byType := map[entity.TransactionType]*entity.StockHistoryEntry{}
	for _, e := range legs {
		byType[e.TransactionType] = e
		assert.Equal(t, entity.ReferenceTransfer, e.ReferenceType)
		assert.Equal(t, "jefe", e.Actor)
	}
	require.Contains(t, byType, entity.TransactionTransferOut)
	require.Contains(t, byType, entity.TransactionTransferIn)
	assert.Equal(t, int64(-3), byType[entity.TransactionTransferOut].QuantityDelta)
	assert.Equal(t, whA, *byType[entity.TransactionTransferOut].WarehouseID)
	assert.Equal(t, int64(3), byType[entity.TransactionTransferIn].QuantityDelta)
	assert.Equal(t, whB, *byType[entity.TransactionTransferIn].WarehouseID)

	stored, err := f.workflow.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferCompleted, stored.Status)
}

func TestApprove_SinActorUsaElCreador(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setStock(t, prodMonitored, wh(whA), 4)

	tr, err := f.workflow.Create(ctx, transferInput(4))
	require.NoError(t, err)
	_, err = f.workflow.Approve(ctx, tr.ID, "")
	require.NoError(t, err)

	legs, err := f.ledger.History(ctx, repository.HistoryFilter{ReferenceID: tr.ID})
	require.NoError(t, err)
	for _, e := range legs {
		assert.Equal(t, "ana", e.Actor)
	}
	assert.Equal(t, int64(0), f.stock(t, prodMonitored, wh(whA)), "trasladar todo deja el origen en cero")
}

func TestApprove_RevalidaStockAlAprobar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setStock(t, prodMonitored, wh(whA), 10)

	tr, err := f.workflow.Create(ctx, transferInput(8))
	require.NoError(t, err)
	f.setStock(t, prodMonitored, wh(whA), 5)

	_, err = f.workflow.Approve(ctx, tr.ID, "jefe")
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	stored, err := f.workflow.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferPending, stored.Status)
	assert.Equal(t, int64(5), f.stock(t, prodMonitored, wh(whA)))
	assert.Equal(t, int64(0), f.stock(t, prodMonitored, wh(whB)))
}

func TestApprove_FalloEnLaEntradaRevierteLaSalida(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setStock(t, prodMonitored, wh(whA), 10)

	tr, err := f.workflow.Create(ctx, transferInput(6))
	require.NoError(t, err)

	errDisk := errors.New("disco lleno")
	f.store.BeforeHistoryInsert = func(e *entity.StockHistoryEntry) error {
		if e.TransactionType == entity.TransactionTransferIn {
			return errDisk
		}
		return nil
	}
	_, err = f.workflow.Approve(ctx, tr.ID, "jefe")
	require.ErrorIs(t, err, errDisk)
	f.store.BeforeHistoryInsert = nil

	assert.Equal(t, int64(10), f.stock(t, prodMonitored, wh(whA)), "la salida debe revertirse")
	assert.Equal(t, int64(0), f.stock(t, prodMonitored, wh(whB)))
	legs, err := f.ledger.History(ctx, repository.HistoryFilter{ReferenceID: tr.ID})
	require.NoError(t, err)
	assert.Empty(t, legs)
	stored, err := f.workflow.Get(ctx, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.TransferPending, stored.Status)

	// sin el fallo, el mismo traslado se aprueba normalmente
	_, err = f.workflow.Approve(ctx, tr.ID, "jefe")
	require.NoError(t, err)
	assert.Equal(t, int64(4), f.stock(t, prodMonitored, wh(whA)))
	assert.Equal(t, int64(6), f.stock(t, prodMonitored, wh(whB)))
}

func TestMaquinaDeEstados_TransicionesInvalidas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setStock(t, prodMonitored, wh(whA), 10)

	completed, err := f.workflow.TransferStock(ctx, transferInput(2))
	require.NoError(t, err)
	require.Equal(t, entity.TransferCompleted, completed.Status)

	_, err = f.workflow.Approve(ctx, completed.ID, "jefe")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.workflow.Cancel(ctx, completed.ID, "jefe")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	err = f.workflow.Delete(ctx, completed.ID, "jefe")
	assert.ErrorIs(t, err, domain.ErrInvalidOperation)

	pending, err := f.workflow.Create(ctx, transferInput(1))
	require.NoError(t, err)
	cancelled, err := f.workflow.Cancel(ctx, pending.ID, "jefe")
	require.NoError(t, err)
	assert.Equal(t, entity.TransferCancelled, cancelled.Status)

	_, err = f.workflow.Approve(ctx, pending.ID, "jefe")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	_, err = f.workflow.Cancel(ctx, pending.ID, "jefe")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)

	require.NoError(t, f.workflow.Delete(ctx, pending.ID, "jefe"))
	_, err = f.workflow.Get(ctx, pending.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.workflow.Approve(ctx, "TRF-999999", "jefe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_SoloNotas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setStock(t, prodMonitored, wh(whA), 10)
	tr, err := f.workflow.Create(ctx, transferInput(1))
	require.NoError(t, err)

	notes := "camión 2"
	updated, err := f.workflow.Update(ctx, tr.ID, inventory.TransferPatch{Notes: &notes}, "ana")
	require.NoError(t, err)
	assert.Equal(t, "camión 2", updated.Notes)

	same := entity.TransferPending
	_, err = f.workflow.Update(ctx, tr.ID, inventory.TransferPatch{Status: &same}, "ana")
	assert.NoError(t, err, "repetir el estado actual no es un cambio")

	completed := entity.TransferCompleted
	_, err = f.workflow.Update(ctx, tr.ID, inventory.TransferPatch{Status: &completed}, "ana")
	assert.ErrorIs(t, err, domain.ErrInvalidTransition)
	assert.Equal(t, int64(10), f.stock(t, prodMonitored, wh(whA)), "Update nunca mueve stock")
}

func TestUpdate_NotasEditablesTrasCompletar(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setStock(t, prodMonitored, wh(whA), 10)
	tr, err := f.workflow.TransferStock(ctx, transferInput(3))
	require.NoError(t, err)
	require.Equal(t, entity.TransferCompleted, tr.Status)

	notes := "recibido con caja abierta"
	updated, err := f.workflow.Update(ctx, tr.ID, inventory.TransferPatch{Notes: &notes}, "ana")
	require.NoError(t, err)
	assert.Equal(t, notes, updated.Notes)
	assert.Equal(t, entity.TransferCompleted, updated.Status)
	assert.Equal(t, int64(7), f.stock(t, prodMonitored, wh(whA)))
}

func TestTransferStock_ConservaElTotal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setStock(t, prodMonitored, wh(whA), 10)
	f.setStock(t, prodMonitored, wh(whC), 4)
	f.setStock(t, prodMonitored, nil, 1)

	before, err := f.aggregator.Summary(ctx, prodMonitored)
	require.NoError(t, err)

	_, err = f.workflow.TransferStock(ctx, transferInput(6))
	require.NoError(t, err)
	in := transferInput(2)
	in.FromWarehouseID, in.ToWarehouseID = whC, whA
	_, err = f.workflow.TransferStock(ctx, in)
	require.NoError(t, err)

	after, err := f.aggregator.Summary(ctx, prodMonitored)
	require.NoError(t, err)
	assert.Equal(t, before.Total, after.Total)
	assert.Equal(t, int64(15), after.Total)
	assert.Equal(t, int64(6), f.stock(t, prodMonitored, wh(whA)))
	assert.Equal(t, int64(6), f.stock(t, prodMonitored, wh(whB)))
	assert.Equal(t, int64(2), f.stock(t, prodMonitored, wh(whC)))
}

func TestTransferStock_FalloAlAprobarDevuelveElPendiente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setStock(t, prodMonitored, wh(whA), 10)

	errDisk := errors.New("disco lleno")
	f.store.BeforeHistoryInsert = func(*entity.StockHistoryEntry) error { return errDisk }

	tr, err := f.workflow.TransferStock(ctx, transferInput(3))
	require.ErrorIs(t, err, errDisk)
	require.NotNil(t, tr)
	assert.Equal(t, entity.TransferPending, tr.Status)
	assert.Equal(t, int64(10), f.stock(t, prodMonitored, wh(whA)))
}

func TestList_FiltraPorEstadoYBodega(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.setStock(t, prodMonitored, wh(whA), 20)

	_, err := f.workflow.TransferStock(ctx, transferInput(1))
	require.NoError(t, err)
	_, err = f.workflow.Create(ctx, transferInput(1))
	require.NoError(t, err)
	in := transferInput(1)
	in.ToWarehouseID = whC
	_, err = f.workflow.Create(ctx, in)
	require.NoError(t, err)

	pending, err := f.workflow.List(ctx, repository.TransferFilter{Status: entity.TransferPending})
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	toC, err := f.workflow.List(ctx, repository.TransferFilter{WarehouseID: whC})
	require.NoError(t, err)
	assert.Len(t, toC, 1)

	fromA, err := f.workflow.List(ctx, repository.TransferFilter{WarehouseID: whA, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, fromA, 2)

	_, err = f.workflow.List(ctx, repository.TransferFilter{Status: "perdido"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
