package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// HistoryFilter filtros de consulta del historial. Campos vacíos no filtran.
// WarehouseID nil no filtra por bodega; GlobalOnly limita a los asientos del pool global.
type HistoryFilter struct {
	ProductID       string
	WarehouseID     *string
	GlobalOnly      bool
	TransactionType entity.TransactionType
	ReferenceID     string
	From            *time.Time
	To              *time.Time
	Limit           int
	Offset          int
}

// StockHistoryRepository define el puerto de persistencia del historial (append-only).
type StockHistoryRepository interface {
	Create(ctx context.Context, entry *entity.StockHistoryEntry) error
	// List ordena del más reciente al más antiguo.
	List(ctx context.Context, filter HistoryFilter) ([]*entity.StockHistoryEntry, error)
}
