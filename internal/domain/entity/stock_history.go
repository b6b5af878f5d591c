package entity

import "time"

// TransactionType clasifica un asiento del historial de stock.
type TransactionType string

// Tipos de asiento del libro de stock.
const (
	TransactionIn          TransactionType = "IN"
	TransactionOut         TransactionType = "OUT"
	TransactionAdjustment  TransactionType = "ADJUSTMENT"
	TransactionTransferOut TransactionType = "TRANSFER_OUT"
	TransactionTransferIn  TransactionType = "TRANSFER_IN"
)

// Valid indica si el tipo es uno de los conocidos.
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionIn, TransactionOut, TransactionAdjustment, TransactionTransferOut, TransactionTransferIn:
		return true
	}
	return false
}

// Tipos de referencia usados en los asientos.
const (
	ReferenceProductUpdate = "product_update"
	ReferenceTransfer      = "transfer"
	ReferenceManual        = "manual"
)

// StockHistoryEntry es un asiento inmutable del libro de stock.
// Invariante: NewQuantity = PreviousQuantity + QuantityDelta y NewQuantity >= 0.
// WarehouseID nil representa el pool global (sin bodega).
type StockHistoryEntry struct {
	ID               string
	ProductID        string
	WarehouseID      *string
	TransactionType  TransactionType
	QuantityDelta    int64
	PreviousQuantity int64
	NewQuantity      int64
	ReferenceType    string
	ReferenceID      string
	Notes            string
	Actor            string
	CreatedAt        time.Time
}
