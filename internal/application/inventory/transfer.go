package inventory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
	"github.com/rs/zerolog"
)

const (
	defaultTransferLimit = 50
	maxTransferLimit     = 500
	// DefaultTransferPrefix prefijo de los ids de traslado asignados automáticamente.
	DefaultTransferPrefix = "TRF-"
)

// CreateTransferInput datos para crear un traslado. ID vacío = se asigna con el IdAllocator.
type CreateTransferInput struct {
	ID              string
	ProductID       string
	FromWarehouseID string
	ToWarehouseID   string
	Quantity        int64
	Notes           string
	Actor           string
}

// TransferPatch cambios permitidos por Update. Status solo se acepta si no cambia el estado actual.
type TransferPatch struct {
	Notes  *string
	Status *entity.TransferStatus
}

// TransferWorkflow máquina de estados de traslados: pending → completed | cancelled.
type TransferWorkflow struct {
	txRunner      TxRunner
	transferRepo  repository.StockTransferRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	aggregator    *StockAggregator
	ledger        *StockLedger
	allocator     *IdAllocator
	evaluator     StockEvaluator
	dispatcher    *Dispatcher
	audit         auditTrail
	prefix        string
	log           zerolog.Logger
	now           func() time.Time
}

// TransferDeps dependencias del flujo de traslados. Evaluator, Dispatcher y Audit son opcionales.
type TransferDeps struct {
	TxRunner   TxRunner
	Transfers  repository.StockTransferRepository
	Products   repository.ProductRepository
	Warehouses repository.WarehouseRepository
	Aggregator *StockAggregator
	Ledger     *StockLedger
	Allocator  *IdAllocator
	Evaluator  StockEvaluator
	Dispatcher *Dispatcher
	Audit      AuditLogger
	Prefix     string
}

// NewTransferWorkflow construye el flujo de traslados.
func NewTransferWorkflow(deps TransferDeps, log zerolog.Logger) *TransferWorkflow {
	prefix := deps.Prefix
	if prefix == "" {
		prefix = DefaultTransferPrefix
	}
	return &TransferWorkflow{
		txRunner:      deps.TxRunner,
		transferRepo:  deps.Transfers,
		productRepo:   deps.Products,
		warehouseRepo: deps.Warehouses,
		aggregator:    deps.Aggregator,
		ledger:        deps.Ledger,
		allocator:     deps.Allocator,
		evaluator:     deps.Evaluator,
		dispatcher:    deps.Dispatcher,
		audit:         auditTrail{logger: deps.Audit, dispatcher: deps.Dispatcher},
		prefix:        prefix,
		log:           log.With().Str("component", "transfer_workflow").Logger(),
		now:           time.Now,
	}
}

// Create valida y persiste un traslado en pending. No mueve stock.
// Toda validación ocurre antes de insertar: un traslado rechazado no deja fila.
func (w *TransferWorkflow) Create(ctx context.Context, in CreateTransferInput) (*entity.StockTransfer, error) {
	if in.ProductID == "" || in.FromWarehouseID == "" || in.ToWarehouseID == "" {
		return nil, fmt.Errorf("%w: product_id, from_warehouse_id y to_warehouse_id son requeridos", domain.ErrInvalidInput)
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: la cantidad a trasladar debe ser mayor que cero", domain.ErrInvalidQuantity)
	}
	if in.FromWarehouseID == in.ToWarehouseID {
		return nil, fmt.Errorf("%w: la bodega de origen y destino deben ser distintas", domain.ErrInvalidInput)
	}
	if err := w.ensureRefs(ctx, in.ProductID, in.FromWarehouseID, in.ToWarehouseID); err != nil {
		return nil, err
	}

	from := in.FromWarehouseID
	available, err := w.aggregator.CurrentStock(ctx, in.ProductID, &from)
	if err != nil {
		return nil, err
	}
	if available < in.Quantity {
		return nil, fmt.Errorf("%w: disponible %d en %s, solicitado %d", domain.ErrInsufficientStock, available, from, in.Quantity)
	}

	now := w.now()
	t := &entity.StockTransfer{
		ID:              in.ID,
		ProductID:       in.ProductID,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		Quantity:        in.Quantity,
		Status:          entity.TransferPending,
		Notes:           in.Notes,
		Actor:           in.Actor,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if t.ID != "" {
		if err := w.transferRepo.Create(ctx, t); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return nil, fmt.Errorf("%w: el traslado %s ya existe", domain.ErrConflict, t.ID)
			}
			return nil, err
		}
	} else {
		if _, err := w.allocator.Allocate(ctx, w.prefix, func(ctx context.Context, id string) error {
			t.ID = id
			return w.transferRepo.Create(ctx, t)
		}); err != nil {
			return nil, err
		}
	}

	w.log.Info().
		Str("transfer_id", t.ID).
		Str("product_id", t.ProductID).
		Str("from", t.FromWarehouseID).
		Str("to", t.ToWarehouseID).
		Int64("quantity", t.Quantity).
		Msg("traslado creado")
	w.audit.record(AuditTransferCreated, "stock_transfer", t.ID, in.Actor, nil, *t)
	return t, nil
}

// Approve ejecuta el traslado: TRANSFER_OUT en origen y TRANSFER_IN en destino en una sola transacción.
// El stock del origen se vuelve a validar bajo bloqueo; si cualquier pata falla el traslado sigue en pending.
func (w *TransferWorkflow) Approve(ctx context.Context, id, actor string) (*entity.StockTransfer, error) {
	var before, after entity.StockTransfer
	err := w.txRunner.Run(ctx, func(
		levelRepo repository.StockLevelRepository,
		historyRepo repository.StockHistoryRepository,
		transferRepo repository.StockTransferRepository,
	) error {
		t, err := lockTransfer(ctx, transferRepo, id)
		if err != nil {
			return err
		}
		if t.Status != entity.TransferPending {
			return fmt.Errorf("%w: no se puede aprobar un traslado %s", domain.ErrInvalidTransition, t.Status)
		}
		before = *t

		// Orden fijo de bloqueo para que traslados opuestos no se bloqueen mutuamente
		keys := []string{t.FromWarehouseID, t.ToWarehouseID}
		sort.Strings(keys)
		for _, k := range keys {
			wh := k
			if _, err := levelRepo.GetForUpdate(ctx, t.ProductID, &wh); err != nil {
				return err
			}
		}

		entryActor := actor
		if entryActor == "" {
			entryActor = t.Actor
		}
		from, to := t.FromWarehouseID, t.ToWarehouseID
		if _, _, err := w.ledger.AppendInTx(ctx, levelRepo, historyRepo, AppendInput{
			ProductID:     t.ProductID,
			WarehouseID:   &from,
			Type:          entity.TransactionTransferOut,
			QuantityDelta: -t.Quantity,
			ReferenceType: entity.ReferenceTransfer,
			ReferenceID:   t.ID,
			Notes:         t.Notes,
			Actor:         entryActor,
		}); err != nil {
			return err
		}
		if _, _, err := w.ledger.AppendInTx(ctx, levelRepo, historyRepo, AppendInput{
			ProductID:     t.ProductID,
			WarehouseID:   &to,
			Type:          entity.TransactionTransferIn,
			QuantityDelta: t.Quantity,
			ReferenceType: entity.ReferenceTransfer,
			ReferenceID:   t.ID,
			Notes:         t.Notes,
			Actor:         entryActor,
		}); err != nil {
			return err
		}

		t.Status = entity.TransferCompleted
		t.UpdatedAt = w.now()
		if err := transferRepo.Update(ctx, t); err != nil {
			return err
		}
		after = *t
		return nil
	})
	if err != nil {
		return nil, err
	}

	w.ledger.Invalidate(ctx, after.ProductID)
	w.log.Info().Str("transfer_id", after.ID).Str("actor", actor).Msg("traslado completado")
	w.audit.record(AuditTransferApproved, "stock_transfer", after.ID, actor, before, after)
	scheduleEvaluation(w.dispatcher, w.evaluator, after.ProductID, &after.FromWarehouseID)
	scheduleEvaluation(w.dispatcher, w.evaluator, after.ProductID, &after.ToWarehouseID)
	return &after, nil
}

// TransferStock crea el traslado y lo aprueba de inmediato.
// Si la aprobación falla, el traslado creado queda en pending y se devuelve junto con el error.
func (w *TransferWorkflow) TransferStock(ctx context.Context, in CreateTransferInput) (*entity.StockTransfer, error) {
	t, err := w.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	done, err := w.Approve(ctx, t.ID, in.Actor)
	if err != nil {
		return t, err
	}
	return done, nil
}

// Cancel pasa un traslado pending a cancelled. Un traslado completado no se revierte: se crea otro en sentido contrario.
func (w *TransferWorkflow) Cancel(ctx context.Context, id, actor string) (*entity.StockTransfer, error) {
	var before, after entity.StockTransfer
	err := w.txRunner.Run(ctx, func(
		_ repository.StockLevelRepository,
		_ repository.StockHistoryRepository,
		transferRepo repository.StockTransferRepository,
	) error {
		t, err := lockTransfer(ctx, transferRepo, id)
		if err != nil {
			return err
		}
		if t.Status != entity.TransferPending {
			return fmt.Errorf("%w: no se puede cancelar un traslado %s", domain.ErrInvalidTransition, t.Status)
		}
		before = *t
		t.Status = entity.TransferCancelled
		t.UpdatedAt = w.now()
		if err := transferRepo.Update(ctx, t); err != nil {
			return err
		}
		after = *t
		return nil
	})
	if err != nil {
		return nil, err
	}
	w.log.Info().Str("transfer_id", id).Str("actor", actor).Msg("traslado cancelado")
	w.audit.record(AuditTransferCancelled, "stock_transfer", id, actor, before, after)
	return &after, nil
}

// Update corrige las notas. El estado solo cambia con Approve o Cancel.
func (w *TransferWorkflow) Update(ctx context.Context, id string, patch TransferPatch, actor string) (*entity.StockTransfer, error) {
	var before, after entity.StockTransfer
	err := w.txRunner.Run(ctx, func(
		_ repository.StockLevelRepository,
		_ repository.StockHistoryRepository,
		transferRepo repository.StockTransferRepository,
	) error {
		t, err := lockTransfer(ctx, transferRepo, id)
		if err != nil {
			return err
		}
		if patch.Status != nil && *patch.Status != t.Status {
			return fmt.Errorf("%w: el estado cambia con aprobar o cancelar (actual %s, solicitado %s)",
				domain.ErrInvalidTransition, t.Status, *patch.Status)
		}
		before = *t
		if patch.Notes != nil {
			t.Notes = *patch.Notes
		}
		t.UpdatedAt = w.now()
		if err := transferRepo.Update(ctx, t); err != nil {
			return err
		}
		after = *t
		return nil
	})
	if err != nil {
		return nil, err
	}
	w.audit.record(AuditTransferUpdated, "stock_transfer", id, actor, before, after)
	return &after, nil
}

// Delete elimina un traslado pending o cancelled. Los completados se conservan por trazabilidad del libro.
func (w *TransferWorkflow) Delete(ctx context.Context, id, actor string) error {
	var before entity.StockTransfer
	err := w.txRunner.Run(ctx, func(
		_ repository.StockLevelRepository,
		_ repository.StockHistoryRepository,
		transferRepo repository.StockTransferRepository,
	) error {
		t, err := lockTransfer(ctx, transferRepo, id)
		if err != nil {
			return err
		}
		if t.Status == entity.TransferCompleted {
			return fmt.Errorf("%w: un traslado completado no se puede eliminar", domain.ErrInvalidOperation)
		}
		before = *t
		return transferRepo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	w.log.Info().Str("transfer_id", id).Str("actor", actor).Msg("traslado eliminado")
	w.audit.record(AuditTransferDeleted, "stock_transfer", id, actor, before, nil)
	return nil
}

// Get devuelve un traslado por id.
func (w *TransferWorkflow) Get(ctx context.Context, id string) (*entity.StockTransfer, error) {
	t, err := w.transferRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: traslado %s", domain.ErrNotFound, id)
	}
	return t, nil
}

// List lista traslados filtrados, del más reciente al más antiguo.
func (w *TransferWorkflow) List(ctx context.Context, filter repository.TransferFilter) ([]*entity.StockTransfer, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultTransferLimit
	}
	if filter.Limit > maxTransferLimit {
		filter.Limit = maxTransferLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, fmt.Errorf("%w: estado %q", domain.ErrInvalidInput, filter.Status)
	}
	list, err := w.transferRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*entity.StockTransfer{}
	}
	return list, nil
}

func (w *TransferWorkflow) ensureRefs(ctx context.Context, productID, fromID, toID string) error {
	product, err := w.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	if w.warehouseRepo == nil {
		return nil
	}
	for _, id := range []string{fromID, toID} {
		wh, err := w.warehouseRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if wh == nil {
			return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, id)
		}
	}
	return nil
}

func lockTransfer(ctx context.Context, repo repository.StockTransferRepository, id string) (*entity.StockTransfer, error) {
	t, err := repo.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("%w: traslado %s", domain.ErrNotFound, id)
	}
	return t, nil
}
