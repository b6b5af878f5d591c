package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// Columnas en el orden de los campos de entity.Product (RowToAddrOfStructByPos).
const productColumns = `id, sku, name, current_stock, low_stock_threshold, critical_ratio`

// ProductRepo lectura de productos. Al motor le interesan low_stock_threshold y critical_ratio
// (NUMERIC, decodificado por el codec de shopspring registrado en el pool).
type ProductRepo struct {
	q Querier
}

func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	rows, err := r.q.Query(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	p, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByPos[entity.Product])
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan product %s: %w", id, err)
	}
	return p, nil
}

// ListMonitored productos con umbral positivo, en orden de id para paginar de forma estable.
func (r *ProductRepo) ListMonitored(ctx context.Context, limit, offset int) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx,
		`SELECT `+productColumns+` FROM products WHERE low_stock_threshold > 0 ORDER BY id LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list monitored products: %w", err)
	}
	list, err := pgx.CollectRows(rows, pgx.RowToAddrOfStructByPos[entity.Product])
	if err != nil {
		return nil, fmt.Errorf("scan monitored products: %w", err)
	}
	return list, nil
}
