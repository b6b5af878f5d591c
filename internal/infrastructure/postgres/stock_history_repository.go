package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

var _ repository.StockHistoryRepository = (*StockHistoryRepo)(nil)

// StockHistoryRepo implementación sobre PostgreSQL (usable con pool o tx).
type StockHistoryRepo struct {
	q Querier
}

// NewStockHistoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockHistoryRepository(q Querier) *StockHistoryRepo {
	return &StockHistoryRepo{q: q}
}

// Create persiste un asiento del historial.
func (r *StockHistoryRepo) Create(ctx context.Context, e *entity.StockHistoryEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	query := `
		INSERT INTO stock_history (id, product_id, warehouse_id, transaction_type, quantity_delta,
			previous_quantity, new_quantity, reference_type, reference_id, notes, actor, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.ProductID, e.WarehouseID, string(e.TransactionType), e.QuantityDelta,
		e.PreviousQuantity, e.NewQuantity, nullString(e.ReferenceType), nullString(e.ReferenceID),
		nullString(e.Notes), nullString(e.Actor), e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create stock history: %w", err)
	}
	return nil
}

// List filtra el historial y ordena del más reciente al más antiguo.
func (r *StockHistoryRepo) List(ctx context.Context, f repository.HistoryFilter) ([]*entity.StockHistoryEntry, error) {
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
		add("warehouse_id = $%d", *f.WarehouseID)
	}
	if f.GlobalOnly {
		conds = append(conds, "warehouse_id IS NULL")
	}
	if f.TransactionType != "" {
		add("transaction_type = $%d", string(f.TransactionType))
	}
	if f.ReferenceID != "" {
		add("reference_id = $%d", f.ReferenceID)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}

	query := `
		SELECT id, product_id, warehouse_id, transaction_type, quantity_delta, previous_quantity,
			new_quantity, reference_type, reference_id, notes, actor, created_at
		FROM stock_history`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock history: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockHistoryEntry
	for rows.Next() {
		var e entity.StockHistoryEntry
		var txType string
		var refType, refID, notes, actor *string
		if err := rows.Scan(&e.ID, &e.ProductID, &e.WarehouseID, &txType, &e.QuantityDelta,
			&e.PreviousQuantity, &e.NewQuantity, &refType, &refID, &notes, &actor, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan stock history: %w", err)
		}
		e.TransactionType = entity.TransactionType(txType)
		e.ReferenceType = derefString(refType)
		e.ReferenceID = derefString(refID)
		e.Notes = derefString(notes)
		e.Actor = derefString(actor)
		list = append(list, &e)
	}
	return list, rows.Err()
}
