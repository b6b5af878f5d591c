// Package nats publica eventos de alertas de stock bajo.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"

	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
)

// DefaultSubject subject de los eventos de stock bajo.
const DefaultSubject = "inventory.low_stock"

var _ inventory.AlertPublisher = (*AlertPublisher)(nil)

// LowStockEvent cuerpo JSON publicado por cada alerta creada.
type LowStockEvent struct {
	EventType       string    `json:"event_type"`
	AlertID         string    `json:"alert_id"`
	ProductID       string    `json:"product_id"`
	ProductName     string    `json:"product_name"`
	SKU             string    `json:"sku,omitempty"`
	WarehouseID     *string   `json:"warehouse_id"`
	CurrentQuantity int64     `json:"current_quantity"`
	Threshold       int64     `json:"threshold"`
	AlertLevel      string    `json:"alert_level"`
	CreatedAt       time.Time `json:"created_at"`
}

// publisher lo que se necesita de *nats.Conn.
type publisher interface {
	Publish(subject string, data []byte) error
}

// AlertPublisher implementa inventory.AlertPublisher sobre NATS core.
type AlertPublisher struct {
	conn    publisher
	subject string
}

// Connect abre la conexión con reconexión automática.
func Connect(url, name string, log zerolog.Logger) (*natsgo.Conn, error) {
	nc, err := natsgo.Connect(url,
		natsgo.Name(name),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2*time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				log.Warn().Err(err).Msg("nats desconectado")
			}
		}),
		natsgo.ReconnectHandler(func(c *natsgo.Conn) {
			log.Info().Str("url", c.ConnectedUrl()).Msg("nats reconectado")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return nc, nil
}

// NewAlertPublisher construye el publicador. subject vacío usa DefaultSubject.
func NewAlertPublisher(conn *natsgo.Conn, subject string) *AlertPublisher {
	return newAlertPublisher(conn, subject)
}

func newAlertPublisher(conn publisher, subject string) *AlertPublisher {
	if subject == "" {
		subject = DefaultSubject
	}
	return &AlertPublisher{conn: conn, subject: subject}
}

// PublishLowStock publica la alerta como LowStockEvent.
func (p *AlertPublisher) PublishLowStock(ctx context.Context, alert *entity.LowStockAlert, product *entity.Product) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(NewLowStockEvent(alert, product))
	if err != nil {
		return fmt.Errorf("marshal low stock event: %w", err)
	}
	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("publish low stock event: %w", err)
	}
	return nil
}

// NewLowStockEvent arma el evento a partir de la alerta y el producto.
func NewLowStockEvent(alert *entity.LowStockAlert, product *entity.Product) LowStockEvent {
	ev := LowStockEvent{
		EventType:       "inventory.low_stock",
		AlertID:         alert.ID,
		ProductID:       alert.ProductID,
		WarehouseID:     alert.WarehouseID,
		CurrentQuantity: alert.CurrentQuantity,
		Threshold:       alert.Threshold,
		AlertLevel:      string(alert.AlertLevel),
		CreatedAt:       alert.CreatedAt,
	}
	if product != nil {
		ev.ProductName = product.Name
		ev.SKU = product.SKU
	}
	return ev
}
