package repository

import (
	"context"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// ProductRepository lectura de productos (el catálogo es dueño de la tabla).
type ProductRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	// ListMonitored lista productos con umbral de stock bajo positivo.
	ListMonitored(ctx context.Context, limit, offset int) ([]*entity.Product, error)
}

// WarehouseRepository lectura de bodegas.
type WarehouseRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
}
