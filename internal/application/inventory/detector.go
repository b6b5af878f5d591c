package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	invrules "github.com/jhoicas/inventario-stock/internal/domain/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	defaultAlertLimit = 50
	maxAlertLimit     = 500
	scanPageSize      = 200
)

// StockEvaluator evalúa una clave (producto, bodega) contra el umbral de stock bajo.
type StockEvaluator interface {
	Evaluate(ctx context.Context, productID string, warehouseID *string) (*entity.LowStockAlert, error)
}

// LowStockDetector crea y resuelve alertas de stock bajo.
// Como máximo una alerta sin resolver por clave: se consulta la activa antes de crear y el repositorio
// rechaza con ErrDuplicate una segunda alerta concurrente.
type LowStockDetector struct {
	productRepo repository.ProductRepository
	alertRepo   repository.LowStockAlertRepository
	aggregator  *StockAggregator
	publisher   AlertPublisher
	dispatcher  *Dispatcher
	audit       auditTrail
	ratio       decimal.Decimal
	log         zerolog.Logger
	now         func() time.Time
}

// DetectorDeps dependencias del detector. Publisher, Dispatcher y Audit son opcionales.
type DetectorDeps struct {
	Products      repository.ProductRepository
	Alerts        repository.LowStockAlertRepository
	Aggregator    *StockAggregator
	Publisher     AlertPublisher
	Dispatcher    *Dispatcher
	Audit         AuditLogger
	CriticalRatio decimal.Decimal
}

// NewLowStockDetector construye el detector. Un ratio cero usa DefaultCriticalRatio.
func NewLowStockDetector(deps DetectorDeps, log zerolog.Logger) *LowStockDetector {
	ratio := deps.CriticalRatio
	if ratio.IsZero() {
		ratio = invrules.DefaultCriticalRatio
	}
	return &LowStockDetector{
		productRepo: deps.Products,
		alertRepo:   deps.Alerts,
		aggregator:  deps.Aggregator,
		publisher:   deps.Publisher,
		dispatcher:  deps.Dispatcher,
		audit:       auditTrail{logger: deps.Audit, dispatcher: deps.Dispatcher},
		ratio:       ratio,
		log:         log.With().Str("component", "low_stock_detector").Logger(),
		now:         time.Now,
	}
}

var _ StockEvaluator = (*LowStockDetector)(nil)

// Evaluate compara el stock de la clave con el umbral del producto.
// Crea una alerta si stock <= umbral y no hay una activa; resuelve la activa (por "system") si el stock ya supera el umbral.
// Devuelve la alerta creada o nil.
func (d *LowStockDetector) Evaluate(ctx context.Context, productID string, warehouseID *string) (*entity.LowStockAlert, error) {
	product, err := d.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
	}
	return d.evaluateProduct(ctx, product, warehouseID)
}

func (d *LowStockDetector) evaluateProduct(ctx context.Context, product *entity.Product, warehouseID *string) (*entity.LowStockAlert, error) {
	if product.LowStockThreshold <= 0 {
		return nil, nil
	}
	stock, err := d.aggregator.CurrentStock(ctx, product.ID, warehouseID)
	if err != nil {
		return nil, err
	}
	active, err := d.alertRepo.GetActive(ctx, product.ID, warehouseID)
	if err != nil {
		return nil, err
	}

	if !invrules.IsLowStock(stock, product.LowStockThreshold) {
		if active != nil {
			_, applied, err := d.resolve(ctx, active, entity.ResolvedBySystem)
			if err != nil {
				return nil, err
			}
			if applied {
				d.log.Info().Str("alert_id", active.ID).Str("product_id", product.ID).Msg("alerta resuelta automáticamente")
			}
		}
		return nil, nil
	}
	if active != nil {
		return nil, nil
	}

	alert := &entity.LowStockAlert{
		ID:              uuid.New().String(),
		ProductID:       product.ID,
		WarehouseID:     warehouseID,
		CurrentQuantity: stock,
		Threshold:       product.LowStockThreshold,
		AlertLevel:      invrules.AlertLevelFor(stock, product.LowStockThreshold, product.AlertRatio(d.ratio)),
		CreatedAt:       d.now(),
	}
	if err := d.alertRepo.Create(ctx, alert); err != nil {
		// Otro evaluador creó la alerta de la clave entre GetActive y Create
		if errors.Is(err, domain.ErrDuplicate) {
			return nil, nil
		}
		return nil, err
	}
	d.log.Info().
		Str("alert_id", alert.ID).
		Str("product_id", product.ID).
		Str("warehouse_id", entity.WarehouseKey(warehouseID)).
		Int64("stock", stock).
		Int64("threshold", product.LowStockThreshold).
		Str("level", string(alert.AlertLevel)).
		Msg("alerta de stock bajo creada")
	d.publish(alert, product)
	return alert, nil
}

func (d *LowStockDetector) publish(alert *entity.LowStockAlert, product *entity.Product) {
	if d.publisher == nil {
		return
	}
	a, p := *alert, *product
	d.dispatcher.Dispatch("publish_low_stock", func(ctx context.Context) error {
		return d.publisher.PublishLowStock(ctx, &a, &p)
	})
}

// CheckAndCreateAlerts evalúa un producto, o todos los monitoreados si productID es nil.
// En el barrido completo los errores por producto se registran y no detienen el resto.
func (d *LowStockDetector) CheckAndCreateAlerts(ctx context.Context, productID *string, warehouseID *string) ([]*entity.LowStockAlert, error) {
	created := []*entity.LowStockAlert{}
	if productID != nil {
		alert, err := d.Evaluate(ctx, *productID, warehouseID)
		if err != nil {
			return nil, err
		}
		if alert != nil {
			created = append(created, alert)
		}
		return created, nil
	}

	for offset := 0; ; offset += scanPageSize {
		products, err := d.productRepo.ListMonitored(ctx, scanPageSize, offset)
		if err != nil {
			return created, err
		}
		for _, p := range products {
			alert, err := d.evaluateProduct(ctx, p, warehouseID)
			if err != nil {
				d.log.Warn().Err(err).Str("product_id", p.ID).Msg("evaluar stock bajo")
				continue
			}
			if alert != nil {
				created = append(created, alert)
			}
		}
		if len(products) < scanPageSize {
			return created, nil
		}
	}
}

// ResolveAlert marca la alerta como resuelta. Resolver una alerta ya resuelta no es un error.
func (d *LowStockDetector) ResolveAlert(ctx context.Context, alertID, resolvedBy string) (*entity.LowStockAlert, error) {
	alert, err := d.alertRepo.GetByID(ctx, alertID)
	if err != nil {
		return nil, err
	}
	if alert == nil {
		return nil, fmt.Errorf("%w: alerta %s", domain.ErrNotFound, alertID)
	}
	if resolvedBy == "" {
		resolvedBy = entity.ResolvedBySystem
	}
	if alert.IsResolved {
		return alert, nil
	}
	before := *alert
	resolved, applied, err := d.resolve(ctx, alert, resolvedBy)
	if err != nil {
		return nil, err
	}
	if applied {
		d.audit.record(AuditAlertResolved, "low_stock_alert", alert.ID, resolvedBy, before, *resolved)
	}
	return resolved, nil
}

// resolve escribe la resolución condicionada a que la alerta siga activa.
// Si otro resolvedor ganó, devuelve la alerta releída con applied=false.
func (d *LowStockDetector) resolve(ctx context.Context, alert *entity.LowStockAlert, resolvedBy string) (*entity.LowStockAlert, bool, error) {
	at := d.now()
	applied, err := d.alertRepo.Resolve(ctx, alert.ID, resolvedBy, at)
	if err != nil {
		return nil, false, err
	}
	if applied {
		resolved := *alert
		resolved.Resolve(resolvedBy, at)
		return &resolved, true, nil
	}
	current, err := d.alertRepo.GetByID(ctx, alert.ID)
	if err != nil {
		return nil, false, err
	}
	if current == nil {
		return nil, false, fmt.Errorf("%w: alerta %s", domain.ErrNotFound, alert.ID)
	}
	return current, false, nil
}

// AutoResolveAlerts resuelve todas las alertas activas cuyo stock ya supera el umbral.
// Primero se recolectan las activas: resolverlas mientras se pagina desplazaría los offsets.
func (d *LowStockDetector) AutoResolveAlerts(ctx context.Context) ([]*entity.LowStockAlert, error) {
	isResolved := false
	var pending []*entity.LowStockAlert
	for offset := 0; ; offset += scanPageSize {
		page, err := d.alertRepo.List(ctx, repository.AlertFilter{Resolved: &isResolved, Limit: scanPageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		pending = append(pending, page...)
		if len(page) < scanPageSize {
			break
		}
	}

	resolved := []*entity.LowStockAlert{}
	products := map[string]*entity.Product{}
	for _, alert := range pending {
		product, ok := products[alert.ProductID]
		if !ok {
			p, err := d.productRepo.GetByID(ctx, alert.ProductID)
			if err != nil {
				d.log.Warn().Err(err).Str("product_id", alert.ProductID).Msg("leer producto para auto-resolver")
				continue
			}
			product = p
			products[alert.ProductID] = p
		}
		if product == nil {
			continue
		}
		stock, err := d.aggregator.CurrentStock(ctx, alert.ProductID, alert.WarehouseID)
		if err != nil {
			d.log.Warn().Err(err).Str("alert_id", alert.ID).Msg("leer stock para auto-resolver")
			continue
		}
		if invrules.IsLowStock(stock, product.LowStockThreshold) {
			continue
		}
		done, applied, err := d.resolve(ctx, alert, entity.ResolvedBySystem)
		if err != nil {
			d.log.Warn().Err(err).Str("alert_id", alert.ID).Msg("auto-resolver alerta")
			continue
		}
		if !applied {
			continue
		}
		d.audit.record(AuditAlertResolved, "low_stock_alert", alert.ID, entity.ResolvedBySystem, *alert, *done)
		resolved = append(resolved, done)
	}
	if len(resolved) > 0 {
		d.log.Info().Int("count", len(resolved)).Msg("alertas auto-resueltas")
	}
	return resolved, nil
}

// ActiveAlerts lista alertas sin resolver.
func (d *LowStockDetector) ActiveAlerts(ctx context.Context, filter repository.AlertFilter) ([]*entity.LowStockAlert, error) {
	isResolved := false
	filter.Resolved = &isResolved
	return d.listAlerts(ctx, filter)
}

// AlertHistory lista alertas resueltas y sin resolver, de la más reciente a la más antigua.
func (d *LowStockDetector) AlertHistory(ctx context.Context, filter repository.AlertFilter) ([]*entity.LowStockAlert, error) {
	return d.listAlerts(ctx, filter)
}

func (d *LowStockDetector) listAlerts(ctx context.Context, filter repository.AlertFilter) ([]*entity.LowStockAlert, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultAlertLimit
	}
	if filter.Limit > maxAlertLimit {
		filter.Limit = maxAlertLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if filter.Level != "" && filter.Level != entity.AlertWarning && filter.Level != entity.AlertCritical {
		return nil, fmt.Errorf("%w: nivel de alerta %q", domain.ErrInvalidInput, filter.Level)
	}
	list, err := d.alertRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []*entity.LowStockAlert{}
	}
	return list, nil
}
