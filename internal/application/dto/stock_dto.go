package dto

import (
	"time"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// CurrentStockResponse respuesta de GET /api/stock/products/:productId/stock.
type CurrentStockResponse struct {
	ProductID   string  `json:"product_id"`
	WarehouseID *string `json:"warehouse_id"`
	Quantity    int64   `json:"quantity"`
}

// WarehouseStockDTO cantidad por bodega dentro de un resumen.
type WarehouseStockDTO struct {
	WarehouseID   string    `json:"warehouse_id"`
	WarehouseName string    `json:"warehouse_name,omitempty"`
	Quantity      int64     `json:"quantity"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// StockSummaryResponse desglose por bodega; total = Σ warehouses + unassigned.
type StockSummaryResponse struct {
	ProductID  string              `json:"product_id"`
	Warehouses []WarehouseStockDTO `json:"warehouses"`
	Unassigned int64               `json:"unassigned"`
	Total      int64               `json:"total"`
}

// StockHistoryEntryDTO asiento del historial.
type StockHistoryEntryDTO struct {
	ID               string    `json:"id"`
	ProductID        string    `json:"product_id"`
	WarehouseID      *string   `json:"warehouse_id"`
	TransactionType  string    `json:"transaction_type"`
	QuantityDelta    int64     `json:"quantity_delta"`
	PreviousQuantity int64     `json:"previous_quantity"`
	NewQuantity      int64     `json:"new_quantity"`
	ReferenceType    string    `json:"reference_type,omitempty"`
	ReferenceID      string    `json:"reference_id,omitempty"`
	Notes            string    `json:"notes,omitempty"`
	Actor            string    `json:"actor,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// StockHistoryResponse página del historial.
type StockHistoryResponse struct {
	Items []StockHistoryEntryDTO `json:"items"`
	Page  PageResponse           `json:"page"`
}

// AdjustStockRequest body para POST /api/stock/adjustments.
type AdjustStockRequest struct {
	ProductID   string  `json:"product_id"`
	WarehouseID *string `json:"warehouse_id,omitempty"`
	NewQuantity *int64  `json:"new_quantity"`
	Notes       string  `json:"notes,omitempty"`
}

// StockLevelDTO nivel corriente de una clave.
type StockLevelDTO struct {
	ProductID       string    `json:"product_id"`
	WarehouseID     *string   `json:"warehouse_id"`
	CurrentQuantity int64     `json:"current_quantity"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// AdjustStockResponse nivel actualizado más el delta aplicado.
type AdjustStockResponse struct {
	Level StockLevelDTO        `json:"level"`
	Delta int64                `json:"delta"`
	Entry StockHistoryEntryDTO `json:"entry"`
}

// ToStockSummaryResponse convierte el resumen de dominio.
func ToStockSummaryResponse(s *entity.StockSummary) StockSummaryResponse {
	out := StockSummaryResponse{
		ProductID:  s.ProductID,
		Warehouses: make([]WarehouseStockDTO, 0, len(s.Warehouses)),
		Unassigned: s.Unassigned,
		Total:      s.Total,
	}
	for _, w := range s.Warehouses {
		out.Warehouses = append(out.Warehouses, WarehouseStockDTO(w))
	}
	return out
}

// ToStockHistoryEntryDTO convierte un asiento.
func ToStockHistoryEntryDTO(e *entity.StockHistoryEntry) StockHistoryEntryDTO {
	return StockHistoryEntryDTO{
		ID:               e.ID,
		ProductID:        e.ProductID,
		WarehouseID:      e.WarehouseID,
		TransactionType:  string(e.TransactionType),
		QuantityDelta:    e.QuantityDelta,
		PreviousQuantity: e.PreviousQuantity,
		NewQuantity:      e.NewQuantity,
		ReferenceType:    e.ReferenceType,
		ReferenceID:      e.ReferenceID,
		Notes:            e.Notes,
		Actor:            e.Actor,
		CreatedAt:        e.CreatedAt,
	}
}

// ToStockLevelDTO convierte un nivel.
func ToStockLevelDTO(l *entity.ProductStockLevel) StockLevelDTO {
	return StockLevelDTO{
		ProductID:       l.ProductID,
		WarehouseID:     l.WarehouseID,
		CurrentQuantity: l.CurrentQuantity,
		UpdatedAt:       l.UpdatedAt,
	}
}
