package entity

import "time"

// ProductStockLevel es el total corriente de un producto en una bodega (o en el pool global si WarehouseID es nil).
// Vista materializada del libro: CurrentQuantity siempre coincide con el NewQuantity del último asiento de la clave.
type ProductStockLevel struct {
	ProductID       string
	WarehouseID     *string
	CurrentQuantity int64
	UpdatedAt       time.Time
}

// IsGlobal indica si el nivel corresponde al pool sin bodega.
func (l *ProductStockLevel) IsGlobal() bool {
	return l.WarehouseID == nil
}

// WarehouseKey normaliza un id de bodega opcional a la clave de almacenamiento ("" = global).
func WarehouseKey(warehouseID *string) string {
	if warehouseID == nil {
		return ""
	}
	return *warehouseID
}

// WarehouseFromKey es la inversa de WarehouseKey.
func WarehouseFromKey(key string) *string {
	if key == "" {
		return nil
	}
	k := key
	return &k
}

// WarehouseStock cantidad de un producto en una bodega concreta (para resúmenes).
type WarehouseStock struct {
	WarehouseID   string
	WarehouseName string
	Quantity      int64
	UpdatedAt     time.Time
}

// StockSummary desglose por bodega de un producto.
// Total = suma de Warehouses + Unassigned (pool global).
type StockSummary struct {
	ProductID  string
	Warehouses []WarehouseStock
	Unassigned int64
	Total      int64
}
