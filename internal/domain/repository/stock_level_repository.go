package repository

import (
	"context"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// StockLevelRepository define el puerto para el total corriente por producto+bodega (DIP).
// warehouseID nil = pool global. Solo el libro de stock escribe niveles.
type StockLevelRepository interface {
	// Get devuelve nil, nil si no existe la fila.
	Get(ctx context.Context, productID string, warehouseID *string) (*entity.ProductStockLevel, error)
	// GetForUpdate garantiza que la fila exista (cantidad 0) y la bloquea hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, productID string, warehouseID *string) (*entity.ProductStockLevel, error)
	Save(ctx context.Context, level *entity.ProductStockLevel) error
	ListByProduct(ctx context.Context, productID string) ([]*entity.ProductStockLevel, error)
}
