package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-stock/internal/application/dto"
	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
	"github.com/rs/zerolog"
)

// StockHandler consultas de stock, historial y ajustes (protegido).
type StockHandler struct {
	aggregator *inventory.StockAggregator
	ledger     *inventory.StockLedger
	adjuster   *inventory.StockAdjustmentEngine
	log        zerolog.Logger
}

// NewStockHandler construye el handler.
func NewStockHandler(aggregator *inventory.StockAggregator, ledger *inventory.StockLedger, adjuster *inventory.StockAdjustmentEngine, log zerolog.Logger) *StockHandler {
	return &StockHandler{aggregator: aggregator, ledger: ledger, adjuster: adjuster, log: log}
}

// GetCurrentStock godoc
// @Summary      Stock actual de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId     path   string  true   "ID del producto"
// @Param        warehouse_id  query  string  false  "Bodega. Vacío = pool global."
// @Success      200  {object}  dto.CurrentStockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock/products/{productId}/stock [get]
func (h *StockHandler) GetCurrentStock(c *fiber.Ctx) error {
	productID := c.Params("productId")
	warehouseID := optionalQuery(c, "warehouse_id")
	qty, err := h.aggregator.CurrentStock(c.UserContext(), productID, warehouseID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.CurrentStockResponse{ProductID: productID, WarehouseID: warehouseID, Quantity: qty})
}

// GetSummary godoc
// @Summary      Resumen por bodega de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockSummaryResponse
// @Router       /api/stock/products/{productId}/summary [get]
func (h *StockHandler) GetSummary(c *fiber.Ctx) error {
	summary, err := h.aggregator.Summary(c.UserContext(), c.Params("productId"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToStockSummaryResponse(summary))
}

// GetHistory godoc
// @Summary      Historial de movimientos de stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Producto"
// @Param        warehouse_id  query  string  false  "Bodega"
// @Param        global_only   query  bool    false  "Solo asientos sin bodega (pool global)"
// @Param        type          query  string  false  "IN|OUT|ADJUSTMENT|TRANSFER_OUT|TRANSFER_IN"
// @Param        from          query  string  false  "RFC3339"
// @Param        to            query  string  false  "RFC3339"
// @Param        limit         query  int     false  "Máximo 500"
// @Param        offset        query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.StockHistoryResponse
// @Router       /api/stock/history [get]
func (h *StockHandler) GetHistory(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badQuery(c, "paginación inválida")
	}
	page.DefaultPage()

	filter := repository.HistoryFilter{
		ProductID:       c.Query("product_id"),
		WarehouseID:     optionalQuery(c, "warehouse_id"),
		GlobalOnly:      c.QueryBool("global_only"),
		TransactionType: entity.TransactionType(c.Query("type")),
		ReferenceID:     c.Query("reference_id"),
		Limit:           page.Limit,
		Offset:          page.Offset,
	}
	var err error
	if filter.From, err = parseTimeQuery(c, "from"); err != nil {
		return badQuery(c, "from debe ser RFC3339")
	}
	if filter.To, err = parseTimeQuery(c, "to"); err != nil {
		return badQuery(c, "to debe ser RFC3339")
	}

	entries, err := h.ledger.History(c.UserContext(), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]dto.StockHistoryEntryDTO, 0, len(entries))
	for _, e := range entries {
		items = append(items, dto.ToStockHistoryEntryDTO(e))
	}
	return c.JSON(dto.StockHistoryResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Count: len(items)},
	})
}

// Adjust godoc
// @Summary      Ajuste manual de stock (fijar cantidad)
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AdjustStockRequest  true  "product_id, warehouse_id opcional, new_quantity"
// @Success      200  {object}  dto.AdjustStockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/adjustments [post]
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if in.NewQuantity == nil {
		return badQuery(c, "new_quantity es requerido")
	}
	res, err := h.adjuster.Adjust(c.UserContext(), inventory.AdjustInput{
		ProductID:   in.ProductID,
		WarehouseID: in.WarehouseID,
		NewQuantity: *in.NewQuantity,
		Notes:       in.Notes,
		Actor:       GetUserID(c),
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.AdjustStockResponse{
		Level: dto.ToStockLevelDTO(res.Level),
		Delta: res.Delta,
		Entry: dto.ToStockHistoryEntryDTO(res.Entry),
	})
}

func parseTimeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
