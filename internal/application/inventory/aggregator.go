package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
	"github.com/rs/zerolog"
)

// StockAggregator responde "cuánto hay" leyendo los niveles materializados por el libro.
type StockAggregator struct {
	levelRepo     repository.StockLevelRepository
	warehouseRepo repository.WarehouseRepository
	cache         SummaryCache
	log           zerolog.Logger
}

// NewStockAggregator construye el agregador. warehouseRepo y cache pueden ser nil.
func NewStockAggregator(
	levelRepo repository.StockLevelRepository,
	warehouseRepo repository.WarehouseRepository,
	cache SummaryCache,
	log zerolog.Logger,
) *StockAggregator {
	if cache == nil {
		cache = noopCache{}
	}
	return &StockAggregator{
		levelRepo:     levelRepo,
		warehouseRepo: warehouseRepo,
		cache:         cache,
		log:           log.With().Str("component", "stock_aggregator").Logger(),
	}
}

// CurrentStock devuelve la cantidad de la clave (warehouseID nil = pool global).
// Una clave sin fila es stock cero, no un error.
func (a *StockAggregator) CurrentStock(ctx context.Context, productID string, warehouseID *string) (int64, error) {
	if productID == "" {
		return 0, fmt.Errorf("%w: product_id requerido", domain.ErrInvalidInput)
	}
	level, err := a.levelRepo.Get(ctx, productID, warehouseID)
	if err != nil {
		return 0, err
	}
	if level == nil {
		return 0, nil
	}
	return level.CurrentQuantity, nil
}

// Summary desglosa el stock del producto por bodega más el pool global.
// Total = Σ Warehouses + Unassigned.
func (a *StockAggregator) Summary(ctx context.Context, productID string) (*entity.StockSummary, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: product_id requerido", domain.ErrInvalidInput)
	}
	if cached, ok, err := a.cache.Get(ctx, productID); err != nil {
		a.log.Warn().Err(err).Str("product_id", productID).Msg("leer caché de resumen")
	} else if ok {
		return cached, nil
	}

	// La generación se lee antes que los niveles.
	gen, genErr := a.cache.Generation(ctx, productID)
	if genErr != nil {
		a.log.Warn().Err(genErr).Str("product_id", productID).Msg("leer generación de resumen")
	}

	levels, err := a.levelRepo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	summary := BuildSummary(productID, levels)
	a.fillWarehouseNames(ctx, summary)

	if genErr != nil {
		return summary, nil
	}
	stored, err := a.cache.Set(ctx, summary, gen)
	switch {
	case err != nil:
		a.log.Warn().Err(err).Str("product_id", productID).Msg("guardar caché de resumen")
	case !stored:
		a.log.Debug().Str("product_id", productID).Int64("generation", gen).Msg("resumen descartado: hubo un commit durante la lectura")
	}
	return summary, nil
}

// BuildSummary reduce los niveles de un producto al resumen, ordenado por bodega.
func BuildSummary(productID string, levels []*entity.ProductStockLevel) *entity.StockSummary {
	summary := &entity.StockSummary{ProductID: productID, Warehouses: []entity.WarehouseStock{}}
	for _, l := range levels {
		if l.IsGlobal() {
			summary.Unassigned += l.CurrentQuantity
		} else {
			summary.Warehouses = append(summary.Warehouses, entity.WarehouseStock{
				WarehouseID: *l.WarehouseID,
				Quantity:    l.CurrentQuantity,
				UpdatedAt:   l.UpdatedAt,
			})
		}
		summary.Total += l.CurrentQuantity
	}
	sort.Slice(summary.Warehouses, func(i, j int) bool {
		return summary.Warehouses[i].WarehouseID < summary.Warehouses[j].WarehouseID
	})
	return summary
}

func (a *StockAggregator) fillWarehouseNames(ctx context.Context, summary *entity.StockSummary) {
	if a.warehouseRepo == nil {
		return
	}
	for i := range summary.Warehouses {
		wh, err := a.warehouseRepo.GetByID(ctx, summary.Warehouses[i].WarehouseID)
		if err != nil || wh == nil {
			continue
		}
		summary.Warehouses[i].WarehouseName = wh.Name
	}
}
