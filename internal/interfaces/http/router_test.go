package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-stock/internal/application/dto"
	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/infrastructure/memory"
	apphttp "github.com/jhoicas/inventario-stock/internal/interfaces/http"
)

// buildStockApp monta el router completo sobre el store en memoria, sin tareas en segundo plano.
func buildStockApp(t *testing.T) *fiber.App {
	t.Helper()
	log := zerolog.Nop()
	store := memory.NewStore()
	store.AddProduct(entity.Product{ID: "P-001", SKU: "SKU-1", Name: "Tornillo", LowStockThreshold: 10})
	store.AddWarehouse(entity.Warehouse{ID: "WH-A", Name: "Principal"})
	store.AddWarehouse(entity.Warehouse{ID: "WH-B", Name: "Norte"})

	ledger := inventory.NewStockLedger(store, store.History(), nil, log)
	aggregator := inventory.NewStockAggregator(store.Levels(), store.Warehouses(), nil, log)
	allocator := inventory.NewIdAllocator(store.TransferIDs(), inventory.IdAllocatorConfig{}, log)
	detector := inventory.NewLowStockDetector(inventory.DetectorDeps{
		Products:   store.Products(),
		Alerts:     store.Alerts(),
		Aggregator: aggregator,
	}, log)
	adjuster := inventory.NewStockAdjustmentEngine(inventory.AdjustmentDeps{
		Ledger:     ledger,
		Products:   store.Products(),
		Warehouses: store.Warehouses(),
		Evaluator:  detector,
	}, log)
	workflow := inventory.NewTransferWorkflow(inventory.TransferDeps{
		TxRunner:   store,
		Transfers:  store.Transfers(),
		Products:   store.Products(),
		Warehouses: store.Warehouses(),
		Aggregator: aggregator,
		Ledger:     ledger,
		Allocator:  allocator,
		Evaluator:  detector,
	}, log)

	app := fiber.New(fiber.Config{Immutable: true})
	apphttp.Router(app, apphttp.RouterDeps{
		Aggregator:    aggregator,
		Ledger:        ledger,
		Adjuster:      adjuster,
		Transfers:     workflow,
		Detector:      detector,
		JWTSecret:     testJWTSecret,
		StorageDriver: "memory",
		Log:           log,
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path, role string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if role != "" {
		req.Header.Set("Authorization", tokenForRole(t, role))
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func adjust(t *testing.T, app *fiber.App, warehouseID string, qty int64) {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/stock/adjustments", "admin", map[string]any{
		"product_id":   "P-001",
		"warehouse_id": warehouseID,
		"new_quantity": qty,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	app := buildStockApp(t)
	resp := doJSON(t, app, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := decode[map[string]string](t, resp)
	assert.Equal(t, "memory", body["storage"])
}

// ─── Stock ───────────────────────────────────────────────────────────────────

func TestAdjust_ActualizaStockYHistorial(t *testing.T) {
	app := buildStockApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/stock/adjustments", "bodeguero", map[string]any{
		"product_id":   "P-001",
		"warehouse_id": "WH-A",
		"new_quantity": 25,
		"notes":        "conteo físico",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	adj := decode[dto.AdjustStockResponse](t, resp)
	assert.Equal(t, int64(25), adj.Delta)
	assert.Equal(t, "IN", adj.Entry.TransactionType)
	assert.Equal(t, testUserID, adj.Entry.Actor)

	resp = doJSON(t, app, http.MethodGet, "/api/stock/products/P-001/stock?warehouse_id=WH-A", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int64(25), decode[dto.CurrentStockResponse](t, resp).Quantity)

	resp = doJSON(t, app, http.MethodGet, "/api/stock/history?product_id=P-001", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	hist := decode[dto.StockHistoryResponse](t, resp)
	require.Len(t, hist.Items, 1)
	assert.Equal(t, 50, hist.Page.Limit)
}

func TestAdjust_Errores(t *testing.T) {
	app := buildStockApp(t)

	cases := []struct {
		name   string
		role   string
		body   map[string]any
		status int
		code   string
	}{
		{"rol sin permiso", "vendedor", map[string]any{"product_id": "P-001", "new_quantity": 1}, http.StatusForbidden, "FORBIDDEN"},
		{"sin new_quantity", "admin", map[string]any{"product_id": "P-001"}, http.StatusBadRequest, "VALIDATION"},
		{"cantidad negativa", "admin", map[string]any{"product_id": "P-001", "new_quantity": -1}, http.StatusBadRequest, "INVALID_QUANTITY"},
		{"producto inexistente", "admin", map[string]any{"product_id": "NOPE", "new_quantity": 1}, http.StatusNotFound, "NOT_FOUND"},
		{"bodega inexistente", "admin", map[string]any{"product_id": "P-001", "warehouse_id": "WH-Z", "new_quantity": 1}, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := doJSON(t, app, http.MethodPost, "/api/stock/adjustments", tc.role, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
			assert.Equal(t, tc.code, decode[dto.ErrorResponse](t, resp).Code)
		})
	}
}

func TestHistory_FechaInvalida(t *testing.T) {
	app := buildStockApp(t)
	resp := doJSON(t, app, http.MethodGet, "/api/stock/history?from=ayer", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, resp).Code)
}

func TestHistory_SoloPoolGlobal(t *testing.T) {
	app := buildStockApp(t)
	adjust(t, app, "WH-A", 10)
	resp := doJSON(t, app, http.MethodPost, "/api/stock/adjustments", "admin", map[string]any{
		"product_id": "P-001", "new_quantity": 4,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/stock/history?product_id=P-001&global_only=true", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	hist := decode[dto.StockHistoryResponse](t, resp)
	require.Len(t, hist.Items, 1)
	assert.Nil(t, hist.Items[0].WarehouseID)
	assert.Equal(t, int64(4), hist.Items[0].NewQuantity)

	resp = doJSON(t, app, http.MethodGet, "/api/stock/history?global_only=true&warehouse_id=WH-A", "vendedor", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSummary_DesglosePorBodega(t *testing.T) {
	app := buildStockApp(t)
	adjust(t, app, "WH-A", 7)
	adjust(t, app, "WH-B", 3)

	resp := doJSON(t, app, http.MethodGet, "/api/stock/products/P-001/summary", "admin", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	s := decode[dto.StockSummaryResponse](t, resp)
	assert.Equal(t, int64(10), s.Total)
	require.Len(t, s.Warehouses, 2)
	assert.Equal(t, "Principal", s.Warehouses[0].WarehouseName)
}

// ─── Traslados ───────────────────────────────────────────────────────────────

func TestTransfers_CicloCompleto(t *testing.T) {
	app := buildStockApp(t)
	adjust(t, app, "WH-A", 20)

	resp := doJSON(t, app, http.MethodPost, "/api/stock/transfers", "admin", map[string]any{
		"product_id":        "P-001",
		"from_warehouse_id": "WH-A",
		"to_warehouse_id":   "WH-B",
		"quantity":          5,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[dto.TransferResponse](t, resp)
	assert.Equal(t, "TRF-000001", created.ID)
	assert.Equal(t, "pending", created.Status)

	resp = doJSON(t, app, http.MethodPost, "/api/stock/transfers/TRF-000001/approve", "bodeguero", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "completed", decode[dto.TransferResponse](t, resp).Status)

	resp = doJSON(t, app, http.MethodGet, "/api/stock/products/P-001/stock?warehouse_id=WH-B", "admin", nil)
	assert.Equal(t, int64(5), decode[dto.CurrentStockResponse](t, resp).Quantity)

	resp = doJSON(t, app, http.MethodPost, "/api/stock/transfers/TRF-000001/cancel", "admin", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_TRANSITION", decode[dto.ErrorResponse](t, resp).Code)

	resp = doJSON(t, app, http.MethodDelete, "/api/stock/transfers/TRF-000001", "admin", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INVALID_OPERATION", decode[dto.ErrorResponse](t, resp).Code)

	resp = doJSON(t, app, http.MethodGet, "/api/stock/transfers?status=completed", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[dto.TransferListResponse](t, resp).Items, 1)
}

func TestTransfers_ExecuteSinStock(t *testing.T) {
	app := buildStockApp(t)
	adjust(t, app, "WH-A", 2)

	resp := doJSON(t, app, http.MethodPost, "/api/stock/transfers/execute", "admin", map[string]any{
		"product_id":        "P-001",
		"from_warehouse_id": "WH-A",
		"to_warehouse_id":   "WH-B",
		"quantity":          5,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", decode[dto.ErrorResponse](t, resp).Code)
}

func TestTransfers_EditarYEliminarPending(t *testing.T) {
	app := buildStockApp(t)
	adjust(t, app, "WH-A", 20)
	resp := doJSON(t, app, http.MethodPost, "/api/stock/transfers", "admin", map[string]any{
		"product_id":        "P-001",
		"from_warehouse_id": "WH-A",
		"to_warehouse_id":   "WH-B",
		"quantity":          1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPatch, "/api/stock/transfers/TRF-000001", "admin", map[string]any{"notes": "urgente"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "urgente", decode[dto.TransferResponse](t, resp).Notes)

	resp = doJSON(t, app, http.MethodPatch, "/api/stock/transfers/TRF-000001", "admin", map[string]any{"status": "completed"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, "/api/stock/transfers/TRF-000001", "admin", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/stock/transfers/TRF-000001", "admin", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ─── Alertas ─────────────────────────────────────────────────────────────────

func TestAlerts_CheckActiveResolve(t *testing.T) {
	app := buildStockApp(t)
	adjust(t, app, "WH-A", 3)

	resp := doJSON(t, app, http.MethodPost, "/api/stock/alerts/check", "admin", map[string]any{
		"product_id":   "P-001",
		"warehouse_id": "WH-A",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	created := decode[dto.AlertListResponse](t, resp)
	require.Equal(t, 1, created.Count)
	alert := created.Items[0]
	assert.Equal(t, "critical", alert.AlertLevel)
	require.NotNil(t, alert.WarehouseID)
	assert.Equal(t, "WH-A", *alert.WarehouseID)

	resp = doJSON(t, app, http.MethodGet, "/api/stock/alerts/active?product_id=P-001", "vendedor", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, decode[dto.AlertListResponse](t, resp).Count)

	resp = doJSON(t, app, http.MethodPost, "/api/stock/alerts/"+alert.ID+"/resolve", "admin", map[string]any{"resolved_by": "ana"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resolved := decode[dto.AlertResponse](t, resp)
	assert.True(t, resolved.IsResolved)
	assert.Equal(t, "ana", resolved.ResolvedBy)

	resp = doJSON(t, app, http.MethodGet, "/api/stock/alerts/active", "admin", nil)
	assert.Equal(t, 0, decode[dto.AlertListResponse](t, resp).Count)

	resp = doJSON(t, app, http.MethodPost, "/api/stock/alerts/no-existe/resolve", "admin", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/api/stock/alerts/history?level=rojo", "admin", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
