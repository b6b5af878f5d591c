package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

var _ inventory.TxRunner = (*TxRunner)(nil)

// TxRunner abre una transacción READ COMMITTED por llamada.
// La serialización por clave la dan los SELECT ... FOR UPDATE de los repositorios, no el nivel de aislamiento.
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run confirma si fn devuelve nil; cualquier error (de fn o del commit) deja la transacción revertida.
func (r *TxRunner) Run(ctx context.Context, fn func(
	levelRepo repository.StockLevelRepository,
	historyRepo repository.StockHistoryRepository,
	transferRepo repository.StockTransferRepository,
) error) error {
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, func(tx pgx.Tx) error {
		return fn(NewStockLevelRepository(tx), NewStockHistoryRepository(tx), NewStockTransferRepository(tx))
	})
}
