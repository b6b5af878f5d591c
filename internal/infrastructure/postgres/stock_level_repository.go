package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

var _ repository.StockLevelRepository = (*StockLevelRepo)(nil)

// StockLevelRepo implementación de StockLevelRepository sobre PostgreSQL (usable con pool o tx).
type StockLevelRepo struct {
	q Querier
}

// NewStockLevelRepository construye el adaptador de niveles. Pasar pool o tx (Querier).
func NewStockLevelRepository(q Querier) *StockLevelRepo {
	return &StockLevelRepo{q: q}
}

// Get obtiene el nivel de un producto en una bodega (nil = pool global).
func (r *StockLevelRepo) Get(ctx context.Context, productID string, warehouseID *string) (*entity.ProductStockLevel, error) {
	query := `
		SELECT product_id, warehouse_key, current_quantity, updated_at
		FROM stock_levels WHERE product_id = $1 AND warehouse_key = $2`
	l, err := scanLevel(r.q.QueryRow(ctx, query, productID, entity.WarehouseKey(warehouseID)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock level: %w", err)
	}
	return l, nil
}

// GetForUpdate crea la fila si no existe y la bloquea (SELECT FOR UPDATE). Debe llamarse dentro de una tx.
func (r *StockLevelRepo) GetForUpdate(ctx context.Context, productID string, warehouseID *string) (*entity.ProductStockLevel, error) {
	key := entity.WarehouseKey(warehouseID)
	ensure := `
		INSERT INTO stock_levels (product_id, warehouse_key, current_quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (product_id, warehouse_key) DO NOTHING`
	if _, err := r.q.Exec(ctx, ensure, productID, key); err != nil {
		return nil, fmt.Errorf("ensure stock level: %w", err)
	}
	query := `
		SELECT product_id, warehouse_key, current_quantity, updated_at
		FROM stock_levels WHERE product_id = $1 AND warehouse_key = $2
		FOR UPDATE`
	l, err := scanLevel(r.q.QueryRow(ctx, query, productID, key))
	if err != nil {
		return nil, fmt.Errorf("get stock level for update: %w", err)
	}
	return l, nil
}

// Save escribe la cantidad corriente de la clave.
func (r *StockLevelRepo) Save(ctx context.Context, level *entity.ProductStockLevel) error {
	query := `
		INSERT INTO stock_levels (product_id, warehouse_key, current_quantity, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (product_id, warehouse_key)
		DO UPDATE SET current_quantity = EXCLUDED.current_quantity, updated_at = EXCLUDED.updated_at`
	_, err := r.q.Exec(ctx, query, level.ProductID, entity.WarehouseKey(level.WarehouseID), level.CurrentQuantity, level.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save stock level: %w", err)
	}
	return nil
}

// ListByProduct lista todos los niveles de un producto, incluido el global.
func (r *StockLevelRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.ProductStockLevel, error) {
	query := `
		SELECT product_id, warehouse_key, current_quantity, updated_at
		FROM stock_levels WHERE product_id = $1 ORDER BY warehouse_key`
	rows, err := r.q.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock levels: %w", err)
	}
	defer rows.Close()
	var list []*entity.ProductStockLevel
	for rows.Next() {
		l, err := scanLevel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock level: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

func scanLevel(row pgx.Row) (*entity.ProductStockLevel, error) {
	var (
		l   entity.ProductStockLevel
		key string
	)
	if err := row.Scan(&l.ProductID, &key, &l.CurrentQuantity, &l.UpdatedAt); err != nil {
		return nil, err
	}
	l.WarehouseID = entity.WarehouseFromKey(key)
	return &l, nil
}
