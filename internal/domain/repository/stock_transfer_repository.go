package repository

import (
	"context"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// TransferFilter filtros para listar traslados. WarehouseID coincide con origen o destino.
type TransferFilter struct {
	ProductID   string
	WarehouseID string
	Status      entity.TransferStatus
	Limit       int
	Offset      int
}

// StockTransferRepository define el puerto de persistencia para traslados entre bodegas.
type StockTransferRepository interface {
	// Create devuelve domain.ErrDuplicate si el ID ya existe.
	Create(ctx context.Context, transfer *entity.StockTransfer) error
	GetByID(ctx context.Context, id string) (*entity.StockTransfer, error)
	// GetForUpdate bloquea la fila del traslado dentro de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error)
	Update(ctx context.Context, transfer *entity.StockTransfer) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter TransferFilter) ([]*entity.StockTransfer, error)
}
