package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	invrules "github.com/jhoicas/inventario-stock/internal/domain/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
	"github.com/rs/zerolog"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 500
)

// AppendInput datos de un asiento del libro.
// Se usa QuantityDelta, o TargetQuantity para ajustes de tipo "fijar cantidad"
// (en ese caso el delta se calcula bajo el bloqueo de la fila y Type vacío se clasifica con ClassifyAdjustment).
type AppendInput struct {
	ProductID      string
	WarehouseID    *string
	Type           entity.TransactionType
	QuantityDelta  int64
	TargetQuantity *int64
	ReferenceType  string
	ReferenceID    string
	Notes          string
	Actor          string
}

// StockLedger libro append-only de movimientos de stock.
// Cada asiento y la actualización del nivel correspondiente se aplican en la misma transacción,
// con la fila del nivel bloqueada (SELECT FOR UPDATE) para serializar escritores de la misma clave.
type StockLedger struct {
	txRunner    TxRunner
	historyRepo repository.StockHistoryRepository
	cache       SummaryCache
	log         zerolog.Logger
	now         func() time.Time
}

// NewStockLedger construye el libro. cache puede ser nil.
func NewStockLedger(txRunner TxRunner, historyRepo repository.StockHistoryRepository, cache SummaryCache, log zerolog.Logger) *StockLedger {
	if cache == nil {
		cache = noopCache{}
	}
	return &StockLedger{
		txRunner:    txRunner,
		historyRepo: historyRepo,
		cache:       cache,
		log:         log.With().Str("component", "stock_ledger").Logger(),
		now:         time.Now,
	}
}

// Append escribe un asiento y actualiza el nivel en una transacción propia.
func (l *StockLedger) Append(ctx context.Context, in AppendInput) (*entity.StockHistoryEntry, *entity.ProductStockLevel, error) {
	var (
		entry *entity.StockHistoryEntry
		level *entity.ProductStockLevel
	)
	err := l.txRunner.Run(ctx, func(
		levelRepo repository.StockLevelRepository,
		historyRepo repository.StockHistoryRepository,
		_ repository.StockTransferRepository,
	) error {
		var err error
		entry, level, err = l.AppendInTx(ctx, levelRepo, historyRepo, in)
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	l.Invalidate(ctx, in.ProductID)
	return entry, level, nil
}

// AppendInTx aplica el asiento con repositorios de una transacción ya abierta por el caller.
// Rechaza con ErrInsufficientStock cualquier resultado negativo antes de escribir.
func (l *StockLedger) AppendInTx(
	ctx context.Context,
	levelRepo repository.StockLevelRepository,
	historyRepo repository.StockHistoryRepository,
	in AppendInput,
) (*entity.StockHistoryEntry, *entity.ProductStockLevel, error) {
	if in.ProductID == "" {
		return nil, nil, fmt.Errorf("%w: product_id requerido", domain.ErrInvalidInput)
	}
	if in.TargetQuantity != nil && *in.TargetQuantity < 0 {
		return nil, nil, fmt.Errorf("%w: la cantidad objetivo no puede ser negativa", domain.ErrInvalidQuantity)
	}

	// Bloquea la fila del nivel para evitar condiciones de carrera entre escritores de la misma clave
	level, err := levelRepo.GetForUpdate(ctx, in.ProductID, in.WarehouseID)
	if err != nil {
		return nil, nil, err
	}

	previous := level.CurrentQuantity
	delta := in.QuantityDelta
	txType := in.Type
	if in.TargetQuantity != nil {
		delta = *in.TargetQuantity - previous
		if txType == "" {
			txType = invrules.ClassifyAdjustment(delta)
		}
	}
	if !txType.Valid() {
		return nil, nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, in.Type)
	}

	next, ok := invrules.ApplyDelta(previous, delta)
	if !ok {
		return nil, nil, fmt.Errorf("%w: disponible %d, solicitado %d", domain.ErrInsufficientStock, previous, -delta)
	}

	now := l.now()
	level.CurrentQuantity = next
	level.UpdatedAt = now
	if err := levelRepo.Save(ctx, level); err != nil {
		return nil, nil, err
	}

	entry := &entity.StockHistoryEntry{
		ID:               uuid.New().String(),
		ProductID:        in.ProductID,
		WarehouseID:      in.WarehouseID,
		TransactionType:  txType,
		QuantityDelta:    delta,
		PreviousQuantity: previous,
		NewQuantity:      next,
		ReferenceType:    in.ReferenceType,
		ReferenceID:      in.ReferenceID,
		Notes:            in.Notes,
		Actor:            in.Actor,
		CreatedAt:        now,
	}
	if err := historyRepo.Create(ctx, entry); err != nil {
		return nil, nil, err
	}
	return entry, level, nil
}

// History devuelve asientos filtrados, del más reciente al más antiguo.
func (l *StockLedger) History(ctx context.Context, filter repository.HistoryFilter) ([]*entity.StockHistoryEntry, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultHistoryLimit
	}
	if filter.Limit > maxHistoryLimit {
		filter.Limit = maxHistoryLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.TransactionType != "" && !filter.TransactionType.Valid() {
		return nil, fmt.Errorf("%w: tipo de movimiento %q", domain.ErrInvalidInput, filter.TransactionType)
	}
	if filter.GlobalOnly && filter.WarehouseID != nil {
		return nil, fmt.Errorf("%w: global_only y warehouse_id son excluyentes", domain.ErrInvalidInput)
	}
	if filter.From != nil && filter.To != nil && filter.From.After(*filter.To) {
		return nil, fmt.Errorf("%w: rango de fechas invertido", domain.ErrInvalidInput)
	}
	list, err := l.historyRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*entity.StockHistoryEntry{}
	}
	return list, nil
}

// Invalidate descarta el resumen cacheado de un producto después de un commit.
func (l *StockLedger) Invalidate(ctx context.Context, productID string) {
	if err := l.cache.Invalidate(ctx, productID); err != nil {
		l.log.Warn().Err(err).Str("product_id", productID).Msg("invalidar caché de resumen")
	}
}
