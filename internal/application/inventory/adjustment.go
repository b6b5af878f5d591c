package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
	"github.com/rs/zerolog"
)

// AdjustInput ajuste manual: fija la cantidad de la clave en NewQuantity.
type AdjustInput struct {
	ProductID     string
	WarehouseID   *string
	NewQuantity   int64
	Notes         string
	Actor         string
	ReferenceType string // por defecto "manual"
	ReferenceID   string
}

// AdjustResult nivel resultante, asiento escrito y delta aplicado.
type AdjustResult struct {
	Level *entity.ProductStockLevel
	Entry *entity.StockHistoryEntry
	Delta int64
}

// StockAdjustmentEngine aplica correcciones de inventario (fijar cantidad).
type StockAdjustmentEngine struct {
	ledger        *StockLedger
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	evaluator     StockEvaluator
	dispatcher    *Dispatcher
	audit         auditTrail
	log           zerolog.Logger
}

// AdjustmentDeps dependencias del motor de ajustes. Evaluator, Dispatcher y Audit son opcionales.
type AdjustmentDeps struct {
	Ledger     *StockLedger
	Products   repository.ProductRepository
	Warehouses repository.WarehouseRepository
	Evaluator  StockEvaluator
	Dispatcher *Dispatcher
	Audit      AuditLogger
}

// NewStockAdjustmentEngine construye el motor de ajustes.
func NewStockAdjustmentEngine(deps AdjustmentDeps, log zerolog.Logger) *StockAdjustmentEngine {
	return &StockAdjustmentEngine{
		ledger:        deps.Ledger,
		productRepo:   deps.Products,
		warehouseRepo: deps.Warehouses,
		evaluator:     deps.Evaluator,
		dispatcher:    deps.Dispatcher,
		audit:         auditTrail{logger: deps.Audit, dispatcher: deps.Dispatcher},
		log:           log.With().Str("component", "stock_adjustment").Logger(),
	}
}

// Adjust fija la cantidad de (producto, bodega) en NewQuantity.
// El delta se calcula con la fila del nivel bloqueada, así dos ajustes concurrentes de la misma clave se serializan.
// Delta > 0 se registra como IN; cero o negativo como ADJUSTMENT.
// La evaluación de stock bajo y la auditoría corren en segundo plano y no afectan el resultado.
func (e *StockAdjustmentEngine) Adjust(ctx context.Context, in AdjustInput) (*AdjustResult, error) {
	if in.ProductID == "" {
		return nil, fmt.Errorf("%w: product_id requerido", domain.ErrInvalidInput)
	}
	if in.NewQuantity < 0 {
		return nil, fmt.Errorf("%w: la cantidad no puede ser negativa", domain.ErrInvalidQuantity)
	}
	if err := e.ensureKey(ctx, in.ProductID, in.WarehouseID); err != nil {
		return nil, err
	}

	refType := in.ReferenceType
	if refType == "" {
		refType = entity.ReferenceManual
	}
	target := in.NewQuantity
	entry, level, err := e.ledger.Append(ctx, AppendInput{
		ProductID:      in.ProductID,
		WarehouseID:    in.WarehouseID,
		TargetQuantity: &target,
		ReferenceType:  refType,
		ReferenceID:    in.ReferenceID,
		Notes:          in.Notes,
		Actor:          in.Actor,
	})
	if err != nil {
		return nil, err
	}

	e.log.Info().
		Str("product_id", in.ProductID).
		Str("warehouse_id", entity.WarehouseKey(in.WarehouseID)).
		Int64("previous", entry.PreviousQuantity).
		Int64("new", entry.NewQuantity).
		Str("type", string(entry.TransactionType)).
		Msg("stock ajustado")

	before := entity.ProductStockLevel{
		ProductID:       in.ProductID,
		WarehouseID:     in.WarehouseID,
		CurrentQuantity: entry.PreviousQuantity,
	}
	e.audit.record(AuditStockAdjusted, "stock_level", in.ProductID+"/"+entity.WarehouseKey(in.WarehouseID), in.Actor, before, *level)
	e.scheduleEvaluation(in.ProductID, in.WarehouseID)

	return &AdjustResult{Level: level, Entry: entry, Delta: entry.QuantityDelta}, nil
}

func (e *StockAdjustmentEngine) ensureKey(ctx context.Context, productID string, warehouseID *string) error {
	product, err := e.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	if warehouseID == nil || e.warehouseRepo == nil {
		return nil
	}
	wh, err := e.warehouseRepo.GetByID(ctx, *warehouseID)
	if err != nil {
		return err
	}
	if wh == nil {
		return fmt.Errorf("%w: bodega %s", domain.ErrNotFound, *warehouseID)
	}
	return nil
}

func (e *StockAdjustmentEngine) scheduleEvaluation(productID string, warehouseID *string) {
	scheduleEvaluation(e.dispatcher, e.evaluator, productID, warehouseID)
}

// scheduleEvaluation encola la evaluación de stock bajo de una clave.
func scheduleEvaluation(d *Dispatcher, evaluator StockEvaluator, productID string, warehouseID *string) {
	if evaluator == nil {
		return
	}
	var wh *string
	if warehouseID != nil {
		w := *warehouseID
		wh = &w
	}
	d.Dispatch("evaluate_low_stock", func(ctx context.Context) error {
		_, err := evaluator.Evaluate(ctx, productID, wh)
		return err
	})
}
