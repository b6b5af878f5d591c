package entity

// Warehouse vista de solo lectura de una bodega.
type Warehouse struct {
	ID   string
	Name string
}
