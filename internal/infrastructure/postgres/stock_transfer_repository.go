package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

var _ repository.StockTransferRepository = (*StockTransferRepo)(nil)

const transferColumns = `id, product_id, from_warehouse_id, to_warehouse_id, quantity, status, notes, actor, created_at, updated_at`

// StockTransferRepo implementación sobre PostgreSQL (usable con pool o tx).
type StockTransferRepo struct {
	q Querier
}

// NewStockTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTransferRepository(q Querier) *StockTransferRepo {
	return &StockTransferRepo{q: q}
}

// Create inserta el traslado. Devuelve domain.ErrDuplicate si el id ya existe.
func (r *StockTransferRepo) Create(ctx context.Context, t *entity.StockTransfer) error {
	query := `INSERT INTO stock_transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.ProductID, t.FromWarehouseID, t.ToWarehouseID, t.Quantity, string(t.Status),
		nullString(t.Notes), nullString(t.Actor), t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: traslado %s", domain.ErrDuplicate, t.ID)
		}
		return fmt.Errorf("create stock transfer: %w", err)
	}
	return nil
}

// GetByID obtiene un traslado por ID.
func (r *StockTransferRepo) GetByID(ctx context.Context, id string) (*entity.StockTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM stock_transfers WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetForUpdate obtiene el traslado y bloquea la fila (SELECT FOR UPDATE).
func (r *StockTransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error) {
	query := `SELECT ` + transferColumns + ` FROM stock_transfers WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *StockTransferRepo) getOne(ctx context.Context, query, id string) (*entity.StockTransfer, error) {
	t, err := scanTransfer(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock transfer: %w", err)
	}
	return t, nil
}

// Update actualiza estado y notas.
func (r *StockTransferRepo) Update(ctx context.Context, t *entity.StockTransfer) error {
	query := `UPDATE stock_transfers SET status = $2, notes = $3, updated_at = $4 WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, t.ID, string(t.Status), nullString(t.Notes), t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update stock transfer: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: traslado %s", domain.ErrNotFound, t.ID)
	}
	return nil
}

// Delete elimina el traslado.
func (r *StockTransferRepo) Delete(ctx context.Context, id string) error {
	cmd, err := r.q.Exec(ctx, `DELETE FROM stock_transfers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete stock transfer: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: traslado %s", domain.ErrNotFound, id)
	}
	return nil
}

// List lista traslados filtrados, del más reciente al más antiguo.
func (r *StockTransferRepo) List(ctx context.Context, f repository.TransferFilter) ([]*entity.StockTransfer, error) {
	var (
		conds []string
		args  []any
	)
	if f.ProductID != "" {
		args = append(args, f.ProductID)
		conds = append(conds, fmt.Sprintf("product_id = $%d", len(args)))
	}
	if f.WarehouseID != "" {
		args = append(args, f.WarehouseID)
		conds = append(conds, fmt.Sprintf("(from_warehouse_id = $%d OR to_warehouse_id = $%d)", len(args), len(args)))
	}
	if f.Status != "" {
		args = append(args, string(f.Status))
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	query := `SELECT ` + transferColumns + ` FROM stock_transfers`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, f.Limit, f.Offset)

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock transfers: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockTransfer
	for rows.Next() {
		t, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock transfer: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func scanTransfer(row pgx.Row) (*entity.StockTransfer, error) {
	var (
		t            entity.StockTransfer
		status       string
		notes, actor *string
	)
	if err := row.Scan(&t.ID, &t.ProductID, &t.FromWarehouseID, &t.ToWarehouseID, &t.Quantity,
		&status, &notes, &actor, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	t.Status = entity.TransferStatus(status)
	t.Notes = derefString(notes)
	t.Actor = derefString(actor)
	return &t, nil
}
