// Package memory implementa los puertos de persistencia del motor de stock en memoria.
// Run serializa las transacciones con un único mutex y restaura el estado previo si fn falla,
// lo que da las mismas garantías de atomicidad que el adaptador PostgreSQL en un solo proceso.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/inventario-stock/internal/application/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

type levelKey struct {
	productID string
	warehouse string
}

type transferRow struct {
	t   entity.StockTransfer
	seq int64
}

type alertRow struct {
	a   entity.LowStockAlert
	seq int64
}

type state struct {
	levels    map[levelKey]entity.ProductStockLevel
	history   []entity.StockHistoryEntry
	transfers map[string]transferRow
	alerts    map[string]alertRow
	seq       int64
}

// snapshot copia lo que una transacción puede modificar. El historial es de solo
// inserción, así que basta recordar su largo.
type snapshot struct {
	levels    map[levelKey]entity.ProductStockLevel
	transfers map[string]transferRow
	histLen   int
	seq       int64
}

func (s *state) snapshot() snapshot {
	snap := snapshot{
		levels:    make(map[levelKey]entity.ProductStockLevel, len(s.levels)),
		transfers: make(map[string]transferRow, len(s.transfers)),
		histLen:   len(s.history),
		seq:       s.seq,
	}
	for k, v := range s.levels {
		snap.levels[k] = v
	}
	for k, v := range s.transfers {
		snap.transfers[k] = v
	}
	return snap
}

func (s *state) restore(snap snapshot) {
	s.levels = snap.levels
	s.transfers = snap.transfers
	s.history = s.history[:snap.histLen]
	s.seq = snap.seq
}

// Store estado compartido de todos los repositorios en memoria.
type Store struct {
	mu         sync.Mutex
	st         state
	products   map[string]entity.Product
	warehouses map[string]entity.Warehouse

	// BeforeHistoryInsert permite inyectar fallos al escribir un asiento (tests de atomicidad).
	BeforeHistoryInsert func(entry *entity.StockHistoryEntry) error
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		st: state{
			levels:    map[levelKey]entity.ProductStockLevel{},
			transfers: map[string]transferRow{},
			alerts:    map[string]alertRow{},
		},
		products:   map[string]entity.Product{},
		warehouses: map[string]entity.Warehouse{},
	}
}

var _ inventory.TxRunner = (*Store)(nil)

// Run ejecuta fn con repositorios transaccionales. Si fn devuelve error se descartan todas sus escrituras.
func (s *Store) Run(ctx context.Context, fn func(
	levelRepo repository.StockLevelRepository,
	historyRepo repository.StockHistoryRepository,
	transferRepo repository.StockTransferRepository,
) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.st.snapshot()
	err := fn(&LevelRepo{s: s, inTx: true}, &HistoryRepo{s: s, inTx: true}, &TransferRepo{s: s, inTx: true})
	if err != nil {
		s.st.restore(snap)
		return err
	}
	return nil
}

// AddProduct registra o reemplaza un producto del catálogo.
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// AddWarehouse registra o reemplaza una bodega.
func (s *Store) AddWarehouse(w entity.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warehouses[w.ID] = w
}

// Levels repositorio de niveles fuera de transacción.
func (s *Store) Levels() *LevelRepo { return &LevelRepo{s: s} }

// History repositorio del historial fuera de transacción.
func (s *Store) History() *HistoryRepo { return &HistoryRepo{s: s} }

// Transfers repositorio de traslados fuera de transacción.
func (s *Store) Transfers() *TransferRepo { return &TransferRepo{s: s} }

// Alerts repositorio de alertas.
func (s *Store) Alerts() *AlertRepo { return &AlertRepo{s: s} }

// Products repositorio de productos.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Warehouses repositorio de bodegas.
func (s *Store) Warehouses() *WarehouseRepo { return &WarehouseRepo{s: s} }

// TransferIDs store de identificadores de traslados para el IdAllocator.
func (s *Store) TransferIDs() *TransferIDStore { return &TransferIDStore{s: s} }

// lock toma el mutex salvo dentro de Run, que ya lo tiene.
func (s *Store) lock(inTx bool) func() {
	if inTx {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

func (s *Store) nextSeq() int64 {
	s.st.seq++
	return s.st.seq
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
