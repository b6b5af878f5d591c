package dto

import (
	"time"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// CreateTransferRequest body para POST /api/stock/transfers y /transfers/execute.
type CreateTransferRequest struct {
	ID              string `json:"id,omitempty"`
	ProductID       string `json:"product_id"`
	FromWarehouseID string `json:"from_warehouse_id"`
	ToWarehouseID   string `json:"to_warehouse_id"`
	Quantity        int64  `json:"quantity"`
	Notes           string `json:"notes,omitempty"`
}

// UpdateTransferRequest body para PATCH /api/stock/transfers/:id.
type UpdateTransferRequest struct {
	Notes  *string `json:"notes,omitempty"`
	Status *string `json:"status,omitempty"`
}

// TransferResponse traslado serializado.
type TransferResponse struct {
	ID              string    `json:"id"`
	ProductID       string    `json:"product_id"`
	FromWarehouseID string    `json:"from_warehouse_id"`
	ToWarehouseID   string    `json:"to_warehouse_id"`
	Quantity        int64     `json:"quantity"`
	Status          string    `json:"status"`
	Notes           string    `json:"notes,omitempty"`
	Actor           string    `json:"actor,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// TransferListResponse página de traslados.
type TransferListResponse struct {
	Items []TransferResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// ToTransferResponse convierte un traslado.
func ToTransferResponse(t *entity.StockTransfer) TransferResponse {
	return TransferResponse{
		ID:              t.ID,
		ProductID:       t.ProductID,
		FromWarehouseID: t.FromWarehouseID,
		ToWarehouseID:   t.ToWarehouseID,
		Quantity:        t.Quantity,
		Status:          string(t.Status),
		Notes:           t.Notes,
		Actor:           t.Actor,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}
