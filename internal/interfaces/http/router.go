package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/pkg/jwt"
	"github.com/rs/zerolog"
)

// Roles con permiso para mover stock.
var stockWriters = []string{jwt.RoleAdmin, jwt.RoleBodeguero}

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Aggregator    *inventory.StockAggregator
	Ledger        *inventory.StockLedger
	Adjuster      *inventory.StockAdjustmentEngine
	Transfers     *inventory.TransferWorkflow
	Detector      *inventory.LowStockDetector
	JWTSecret     string
	StorageDriver string
	Log           zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "storage": deps.StorageDriver})
	})

	// Rutas protegidas (requieren Bearer Token)
	stock := app.Group("/api/stock", AuthMiddleware(deps.JWTSecret))
	writers := RequireRole(stockWriters...)

	stockHandler := NewStockHandler(deps.Aggregator, deps.Ledger, deps.Adjuster, deps.Log)
	stock.Get("/products/:productId/stock", stockHandler.GetCurrentStock)
	stock.Get("/products/:productId/summary", stockHandler.GetSummary)
	stock.Get("/history", stockHandler.GetHistory)
	stock.Post("/adjustments", writers, stockHandler.Adjust)

	transferHandler := NewTransferHandler(deps.Transfers, deps.Log)
	transfers := stock.Group("/transfers")
	transfers.Post("/execute", writers, transferHandler.Execute)
	transfers.Post("/", writers, transferHandler.Create)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Post("/:id/approve", writers, transferHandler.Approve)
	transfers.Post("/:id/cancel", writers, transferHandler.Cancel)
	transfers.Patch("/:id", writers, transferHandler.Update)
	transfers.Delete("/:id", writers, transferHandler.Delete)

	alertHandler := NewAlertHandler(deps.Detector, deps.Log)
	alerts := stock.Group("/alerts")
	alerts.Get("/active", alertHandler.Active)
	alerts.Get("/history", alertHandler.History)
	alerts.Post("/check", alertHandler.Check)
	alerts.Post("/auto-resolve", alertHandler.AutoResolve)
	alerts.Post("/:id/resolve", alertHandler.Resolve)
}
