package entity

import "time"

// TransferStatus estado de un traslado entre bodegas.
type TransferStatus string

// Estados del traslado: pending → completed | cancelled (ambos terminales).
const (
	TransferPending   TransferStatus = "pending"
	TransferCompleted TransferStatus = "completed"
	TransferCancelled TransferStatus = "cancelled"
)

// IsTerminal indica si ya no se permiten transiciones.
func (s TransferStatus) IsTerminal() bool {
	return s == TransferCompleted || s == TransferCancelled
}

// Valid indica si el estado es conocido.
func (s TransferStatus) Valid() bool {
	return s == TransferPending || s == TransferCompleted || s == TransferCancelled
}

// StockTransfer representa la intención de mover Quantity unidades de un producto entre dos bodegas.
// No reserva inventario: el stock solo se mueve al aprobar.
type StockTransfer struct {
	ID              string
	ProductID       string
	FromWarehouseID string
	ToWarehouseID   string
	Quantity        int64
	Status          TransferStatus
	Notes           string
	Actor           string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
