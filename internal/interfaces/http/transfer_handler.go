package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/inventario-stock/internal/application/dto"
	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
	"github.com/rs/zerolog"
)

// TransferHandler traslados entre bodegas (protegido).
type TransferHandler struct {
	workflow *inventory.TransferWorkflow
	log      zerolog.Logger
}

// NewTransferHandler construye el handler.
func NewTransferHandler(workflow *inventory.TransferWorkflow, log zerolog.Logger) *TransferHandler {
	return &TransferHandler{workflow: workflow, log: log}
}

func (h *TransferHandler) createInput(c *fiber.Ctx) (inventory.CreateTransferInput, bool) {
	var in dto.CreateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return inventory.CreateTransferInput{}, false
	}
	return inventory.CreateTransferInput{
		ID:              in.ID,
		ProductID:       in.ProductID,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		Quantity:        in.Quantity,
		Notes:           in.Notes,
		Actor:           GetUserID(c),
	}, true
}

// Create godoc
// @Summary      Crear traslado (pending)
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "product_id, from_warehouse_id, to_warehouse_id, quantity"
// @Success      201  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	in, ok := h.createInput(c)
	if !ok {
		return badBody(c)
	}
	t, err := h.workflow.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToTransferResponse(t))
}

// Execute godoc
// @Summary      Crear y aprobar un traslado en una sola llamada
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "product_id, from_warehouse_id, to_warehouse_id, quantity"
// @Success      201  {object}  dto.TransferResponse
// @Router       /api/stock/transfers/execute [post]
func (h *TransferHandler) Execute(c *fiber.Ctx) error {
	in, ok := h.createInput(c)
	if !ok {
		return badBody(c)
	}
	t, err := h.workflow.TransferStock(c.UserContext(), in)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.ToTransferResponse(t))
}

// List godoc
// @Summary      Listar traslados
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Producto"
// @Param        warehouse_id  query  string  false  "Bodega de origen o destino"
// @Param        status        query  string  false  "pending|completed|cancelled"
// @Success      200  {object}  dto.TransferListResponse
// @Router       /api/stock/transfers [get]
func (h *TransferHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badQuery(c, "paginación inválida")
	}
	page.DefaultPage()
	list, err := h.workflow.List(c.UserContext(), repository.TransferFilter{
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
		Status:      entity.TransferStatus(c.Query("status")),
		Limit:       page.Limit,
		Offset:      page.Offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	items := make([]dto.TransferResponse, 0, len(list))
	for _, t := range list {
		items = append(items, dto.ToTransferResponse(t))
	}
	return c.JSON(dto.TransferListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Count: len(items)},
	})
}

// GetByID godoc
// @Summary      Obtener traslado
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/transfers/{id} [get]
func (h *TransferHandler) GetByID(c *fiber.Ctx) error {
	t, err := h.workflow.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToTransferResponse(t))
}

// Approve godoc
// @Summary      Aprobar traslado (mueve el stock)
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/transfers/{id}/approve [post]
func (h *TransferHandler) Approve(c *fiber.Ctx) error {
	t, err := h.workflow.Approve(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToTransferResponse(t))
}

// Cancel godoc
// @Summary      Cancelar traslado pending
// @Tags         transfers
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del traslado"
// @Success      200  {object}  dto.TransferResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/transfers/{id}/cancel [post]
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	t, err := h.workflow.Cancel(c.UserContext(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToTransferResponse(t))
}

// Update godoc
// @Summary      Corregir notas de un traslado
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID del traslado"
// @Param        body  body  dto.UpdateTransferRequest  true  "notes"
// @Success      200  {object}  dto.TransferResponse
// @Router       /api/stock/transfers/{id} [patch]
func (h *TransferHandler) Update(c *fiber.Ctx) error {
	var in dto.UpdateTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	patch := inventory.TransferPatch{Notes: in.Notes}
	if in.Status != nil {
		s := entity.TransferStatus(*in.Status)
		patch.Status = &s
	}
	t, err := h.workflow.Update(c.UserContext(), c.Params("id"), patch, GetUserID(c))
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ToTransferResponse(t))
}

// Delete godoc
// @Summary      Eliminar traslado pending o cancelled
// @Tags         transfers
// @Security     Bearer
// @Param        id  path  string  true  "ID del traslado"
// @Success      204
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock/transfers/{id} [delete]
func (h *TransferHandler) Delete(c *fiber.Ctx) error {
	if err := h.workflow.Delete(c.UserContext(), c.Params("id"), GetUserID(c)); err != nil {
		return writeError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
