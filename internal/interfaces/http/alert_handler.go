package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-stock/internal/application/dto"
	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
	"github.com/rs/zerolog"
)

// AlertHandler alertas de stock bajo (protegido).
type AlertHandler struct {
	detector *inventory.LowStockDetector
	log      zerolog.Logger
}

// NewAlertHandler construye el handler.
func NewAlertHandler(detector *inventory.LowStockDetector, log zerolog.Logger) *AlertHandler {
	return &AlertHandler{detector: detector, log: log}
}

func alertFilter(c *fiber.Ctx) (repository.AlertFilter, error) {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return repository.AlertFilter{}, err
	}
	page.DefaultPage()
	return repository.AlertFilter{
		ProductID:   c.Query("product_id"),
		WarehouseID: optionalQuery(c, "warehouse_id"),
		Level:       entity.AlertLevel(c.Query("level")),
		Limit:       page.Limit,
		Offset:      page.Offset,
	}, nil
}

// Active godoc
// @Summary      Alertas activas
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AlertListResponse
// @Router       /api/stock/alerts/active [get]
func (h *AlertHandler) Active(c *fiber.Ctx) error {
	filter, err := alertFilter(c)
	if err != nil {
		return badQuery(c, "paginación inválida")
	}
	list, err := h.detector.ActiveAlerts(c.UserContext(), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToAlertListResponse(list))
}

// History godoc
// @Summary      Historial de alertas (resueltas y activas)
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AlertListResponse
// @Router       /api/stock/alerts/history [get]
func (h *AlertHandler) History(c *fiber.Ctx) error {
	filter, err := alertFilter(c)
	if err != nil {
		return badQuery(c, "paginación inválida")
	}
	list, err := h.detector.AlertHistory(c.UserContext(), filter)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToAlertListResponse(list))
}

// Check godoc
// @Summary      Evaluar stock bajo y crear alertas
// @Description  Sin product_id evalúa todos los productos monitoreados.
// @Tags         alerts
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CheckAlertsRequest  false  "product_id y warehouse_id opcionales"
// @Success      200  {object}  dto.AlertListResponse
// @Router       /api/stock/alerts/check [post]
func (h *AlertHandler) Check(c *fiber.Ctx) error {
	var in dto.CheckAlertsRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	created, err := h.detector.CheckAndCreateAlerts(c.UserContext(), in.ProductID, in.WarehouseID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToAlertListResponse(created))
}

// Resolve godoc
// @Summary      Resolver alerta (idempotente)
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID de la alerta"
// @Success      200  {object}  dto.AlertResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/alerts/{id}/resolve [post]
func (h *AlertHandler) Resolve(c *fiber.Ctx) error {
	var in dto.ResolveAlertRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&in); err != nil {
			return badBody(c)
		}
	}
	by := in.ResolvedBy
	if by == "" {
		by = GetUserID(c)
	}
	alert, err := h.detector.ResolveAlert(c.UserContext(), c.Params("id"), by)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToAlertResponse(alert))
}

// AutoResolve godoc
// @Summary      Resolver alertas cuyo stock ya supera el umbral
// @Tags         alerts
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.AlertListResponse
// @Router       /api/stock/alerts/auto-resolve [post]
func (h *AlertHandler) AutoResolve(c *fiber.Ctx) error {
	resolved, err := h.detector.AutoResolveAlerts(c.UserContext())
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToAlertListResponse(resolved))
}
