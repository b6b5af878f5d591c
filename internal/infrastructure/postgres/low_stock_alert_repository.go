package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

var _ repository.LowStockAlertRepository = (*LowStockAlertRepo)(nil)

const alertColumns = `id, product_id, warehouse_key, current_quantity, threshold, alert_level,
	is_resolved, resolved_by, resolved_at, created_at`

// LowStockAlertRepo implementación sobre PostgreSQL.
// El índice único parcial uq_low_stock_alerts_active garantiza una sola alerta activa por clave.
type LowStockAlertRepo struct {
	q Querier
}

// NewLowStockAlertRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLowStockAlertRepository(q Querier) *LowStockAlertRepo {
	return &LowStockAlertRepo{q: q}
}

// Create inserta la alerta. Devuelve domain.ErrDuplicate si ya existe una activa para la clave.
func (r *LowStockAlertRepo) Create(ctx context.Context, a *entity.LowStockAlert) error {
	query := `INSERT INTO low_stock_alerts (` + alertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		a.ID, a.ProductID, entity.WarehouseKey(a.WarehouseID), a.CurrentQuantity, a.Threshold,
		string(a.AlertLevel), a.IsResolved, nullString(a.ResolvedBy), a.ResolvedAt, a.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: alerta activa para %s", domain.ErrDuplicate, a.ProductID)
		}
		return fmt.Errorf("create low stock alert: %w", err)
	}
	return nil
}

// GetByID obtiene una alerta por ID.
func (r *LowStockAlertRepo) GetByID(ctx context.Context, id string) (*entity.LowStockAlert, error) {
	query := `SELECT ` + alertColumns + ` FROM low_stock_alerts WHERE id = $1`
	a, err := scanAlert(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get low stock alert: %w", err)
	}
	return a, nil
}

// GetActive obtiene la alerta sin resolver de la clave.
func (r *LowStockAlertRepo) GetActive(ctx context.Context, productID string, warehouseID *string) (*entity.LowStockAlert, error) {
	query := `SELECT ` + alertColumns + ` FROM low_stock_alerts
		WHERE product_id = $1 AND warehouse_key = $2 AND NOT is_resolved`
	a, err := scanAlert(r.q.QueryRow(ctx, query, productID, entity.WarehouseKey(warehouseID)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active low stock alert: %w", err)
	}
	return a, nil
}

// Resolve escribe la resolución solo sobre una alerta activa; el filtro NOT is_resolved
// hace que dos resolvedores concurrentes no se pisen.
func (r *LowStockAlertRepo) Resolve(ctx context.Context, id, resolvedBy string, at time.Time) (bool, error) {
	query := `UPDATE low_stock_alerts SET is_resolved = TRUE, resolved_by = $2, resolved_at = $3
		WHERE id = $1 AND NOT is_resolved`
	cmd, err := r.q.Exec(ctx, query, id, nullString(resolvedBy), at)
	if err != nil {
		return false, fmt.Errorf("resolve low stock alert: %w", err)
	}
	return cmd.RowsAffected() == 1, nil
}

// List lista alertas filtradas, de la más reciente a la más antigua.
func (r *LowStockAlertRepo) List(ctx context.Context, f repository.AlertFilter) ([]*entity.LowStockAlert, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.WarehouseID != nil {
		add("warehouse_key = $%d", *f.WarehouseID)
	}
	if f.Resolved != nil {
		add("is_resolved = $%d", *f.Resolved)
	}
	if f.Level != "" {
		add("alert_level = $%d", string(f.Level))
	}
	query := `SELECT ` + alertColumns + ` FROM low_stock_alerts`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list low stock alerts: %w", err)
	}
	defer rows.Close()
	var list []*entity.LowStockAlert
	for rows.Next() {
		a, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("scan low stock alert: %w", err)
		}
		list = append(list, a)
	}
	return list, rows.Err()
}

func scanAlert(row pgx.Row) (*entity.LowStockAlert, error) {
	var (
		a          entity.LowStockAlert
		key, level string
		resolvedBy *string
	)
	if err := row.Scan(&a.ID, &a.ProductID, &key, &a.CurrentQuantity, &a.Threshold, &level,
		&a.IsResolved, &resolvedBy, &a.ResolvedAt, &a.CreatedAt); err != nil {
		return nil, err
	}
	a.WarehouseID = entity.WarehouseFromKey(key)
	a.AlertLevel = entity.AlertLevel(level)
	a.ResolvedBy = derefString(resolvedBy)
	return &a, nil
}
