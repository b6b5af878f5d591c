package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el libro de stock: o se aplican todas las escrituras de fn o ninguna.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		levelRepo repository.StockLevelRepository,
		historyRepo repository.StockHistoryRepository,
		transferRepo repository.StockTransferRepository,
	) error) error
}

// SummaryCache caché opcional de resúmenes de stock. Se invalida después de cada commit del libro.
// Cada Invalidate avanza la generación del producto; Set solo guarda si la generación sigue
// siendo la leída antes de consultar los niveles, así un resumen previo a un commit no vuelve a la caché.
type SummaryCache interface {
	Get(ctx context.Context, productID string) (*entity.StockSummary, bool, error)
	Generation(ctx context.Context, productID string) (int64, error)
	// Set devuelve stored=false si la generación cambió desde generation.
	Set(ctx context.Context, summary *entity.StockSummary, generation int64) (stored bool, err error)
	Invalidate(ctx context.Context, productID string) error
}

// AuditEntry registro de auditoría con instantáneas antes/después.
type AuditEntry struct {
	Action     string
	EntityType string
	EntityID   string
	Actor      string
	Before     any
	After      any
	At         time.Time
}

// AuditLogger gancho de auditoría (persistencia externa). Se invoca en segundo plano.
type AuditLogger interface {
	Log(ctx context.Context, entry AuditEntry) error
}

// AlertPublisher notifica alertas nuevas a sistemas externos (correo, mensajería).
type AlertPublisher interface {
	PublishLowStock(ctx context.Context, alert *entity.LowStockAlert, product *entity.Product) error
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (*entity.StockSummary, bool, error) { return nil, false, nil }
func (noopCache) Generation(context.Context, string) (int64, error)               { return 0, nil }
func (noopCache) Set(context.Context, *entity.StockSummary, int64) (bool, error)  { return false, nil }
func (noopCache) Invalidate(context.Context, string) error                        { return nil }
