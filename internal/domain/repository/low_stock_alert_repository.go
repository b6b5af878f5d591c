package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// AlertFilter filtros para listar alertas. Resolved nil = todas.
type AlertFilter struct {
	ProductID   string
	WarehouseID *string
	Resolved    *bool
	Level       entity.AlertLevel
	Limit       int
	Offset      int
}

// LowStockAlertRepository define el puerto de persistencia para alertas de stock bajo.
type LowStockAlertRepository interface {
	// Create devuelve domain.ErrDuplicate si ya hay una alerta sin resolver para la clave.
	Create(ctx context.Context, alert *entity.LowStockAlert) error
	GetByID(ctx context.Context, id string) (*entity.LowStockAlert, error)
	// GetActive devuelve la alerta sin resolver de la clave, o nil, nil.
	GetActive(ctx context.Context, productID string, warehouseID *string) (*entity.LowStockAlert, error)
	// Resolve marca la alerta como resuelta solo si sigue activa. applied=false indica que ya estaba
	// resuelta (otro resolvedor ganó) o que no existe; el caller relee para distinguir.
	Resolve(ctx context.Context, id, resolvedBy string, at time.Time) (applied bool, err error)
	List(ctx context.Context, filter AlertFilter) ([]*entity.LowStockAlert, error)
}
