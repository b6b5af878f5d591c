package inventory_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/infrastructure/memory"
)

const (
	prodMonitored = "P-001" // umbral 10
	prodFree      = "P-002" // sin umbral
	whA           = "WH-A"
	whB           = "WH-B"
	whC           = "WH-C"
)

// fixture motor completo sobre el store en memoria. Sin dispatcher: nada corre en segundo plano.
type fixture struct {
	store      *memory.Store
	ledger     *inventory.StockLedger
	aggregator *inventory.StockAggregator
	allocator  *inventory.IdAllocator
	detector   *inventory.LowStockDetector
	adjuster   *inventory.StockAdjustmentEngine
	workflow   *inventory.TransferWorkflow
}

type fixtureOpts struct {
	dispatcher *inventory.Dispatcher
	cache      inventory.SummaryCache
	publisher  inventory.AlertPublisher
	audit      inventory.AuditLogger
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, fixtureOpts{})
}

func newFixtureWith(t *testing.T, opts fixtureOpts) *fixture {
	t.Helper()
	log := zerolog.Nop()
	store := memory.NewStore()
	store.AddProduct(entity.Product{ID: prodMonitored, SKU: "SKU-1", Name: "Tornillo", LowStockThreshold: 10})
	store.AddProduct(entity.Product{ID: prodFree, SKU: "SKU-2", Name: "Tuerca"})
	store.AddWarehouse(entity.Warehouse{ID: whA, Name: "Principal"})
	store.AddWarehouse(entity.Warehouse{ID: whB, Name: "Norte"})
	store.AddWarehouse(entity.Warehouse{ID: whC, Name: "Sur"})

	f := &fixture{store: store}
	f.ledger = inventory.NewStockLedger(store, store.History(), opts.cache, log)
	f.aggregator = inventory.NewStockAggregator(store.Levels(), store.Warehouses(), opts.cache, log)
	f.allocator = inventory.NewIdAllocator(store.TransferIDs(), inventory.IdAllocatorConfig{}, log)
	f.detector = inventory.NewLowStockDetector(inventory.DetectorDeps{
		Products:   store.Products(),
		Alerts:     store.Alerts(),
		Aggregator: f.aggregator,
		Publisher:  opts.publisher,
		Dispatcher: opts.dispatcher,
		Audit:      opts.audit,
	}, log)
	f.adjuster = inventory.NewStockAdjustmentEngine(inventory.AdjustmentDeps{
		Ledger:     f.ledger,
		Products:   store.Products(),
		Warehouses: store.Warehouses(),
		Evaluator:  f.detector,
		Dispatcher: opts.dispatcher,
		Audit:      opts.audit,
	}, log)
	f.workflow = inventory.NewTransferWorkflow(inventory.TransferDeps{
		TxRunner:   store,
		Transfers:  store.Transfers(),
		Products:   store.Products(),
		Warehouses: store.Warehouses(),
		Aggregator: f.aggregator,
		Ledger:     f.ledger,
		Allocator:  f.allocator,
		Evaluator:  f.detector,
		Dispatcher: opts.dispatcher,
		Audit:      opts.audit,
	}, log)
	return f
}

func wh(id string) *string { return &id }

// setStock fija la cantidad de una clave con un ajuste manual.
func (f *fixture) setStock(t *testing.T, productID string, warehouseID *string, qty int64) {
	t.Helper()
	_, err := f.adjuster.Adjust(context.Background(), inventory.AdjustInput{
		ProductID:   productID,
		WarehouseID: warehouseID,
		NewQuantity: qty,
		Actor:       "tester",
	})
	require.NoError(t, err)
}

func (f *fixture) stock(t *testing.T, productID string, warehouseID *string) int64 {
	t.Helper()
	qty, err := f.aggregator.CurrentStock(context.Background(), productID, warehouseID)
	require.NoError(t, err)
	return qty
}
