package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/inventario-stock/internal/domain"
	"github.com/jhoicas/inventario-stock/internal/domain/entity"
	invrules "github.com/jhoicas/inventario-stock/internal/domain/inventory"
	"github.com/jhoicas/inventario-stock/internal/domain/repository"
)

var (
	_ repository.StockLevelRepository    = (*LevelRepo)(nil)
	_ repository.StockHistoryRepository  = (*HistoryRepo)(nil)
	_ repository.StockTransferRepository = (*TransferRepo)(nil)
	_ repository.LowStockAlertRepository = (*AlertRepo)(nil)
	_ repository.ProductRepository       = (*ProductRepo)(nil)
	_ repository.WarehouseRepository     = (*WarehouseRepo)(nil)
	_ repository.IdentifierStore         = (*TransferIDStore)(nil)
)

// LevelRepo niveles de stock en memoria.
type LevelRepo struct {
	s    *Store
	inTx bool
}

func (r *LevelRepo) Get(_ context.Context, productID string, warehouseID *string) (*entity.ProductStockLevel, error) {
	defer r.s.lock(r.inTx)()
	l, ok := r.s.st.levels[levelKey{productID, entity.WarehouseKey(warehouseID)}]
	if !ok {
		return nil, nil
	}
	l.WarehouseID = cloneString(l.WarehouseID)
	return &l, nil
}

// GetForUpdate crea la fila en cero si no existe. El bloqueo lo da el mutex de Run.
func (r *LevelRepo) GetForUpdate(_ context.Context, productID string, warehouseID *string) (*entity.ProductStockLevel, error) {
	defer r.s.lock(r.inTx)()
	key := levelKey{productID, entity.WarehouseKey(warehouseID)}
	l, ok := r.s.st.levels[key]
	if !ok {
		l = entity.ProductStockLevel{ProductID: productID, WarehouseID: cloneString(warehouseID)}
		r.s.st.levels[key] = l
	}
	l.WarehouseID = cloneString(l.WarehouseID)
	return &l, nil
}

func (r *LevelRepo) Save(_ context.Context, level *entity.ProductStockLevel) error {
	defer r.s.lock(r.inTx)()
	if level.CurrentQuantity < 0 {
		return fmt.Errorf("%w: nivel negativo", domain.ErrInvalidQuantity)
	}
	l := *level
	l.WarehouseID = cloneString(level.WarehouseID)
	r.s.st.levels[levelKey{l.ProductID, entity.WarehouseKey(l.WarehouseID)}] = l
	return nil
}

func (r *LevelRepo) ListByProduct(_ context.Context, productID string) ([]*entity.ProductStockLevel, error) {
	defer r.s.lock(r.inTx)()
	var list []*entity.ProductStockLevel
	for k, l := range r.s.st.levels {
		if k.productID != productID {
			continue
		}
		c := l
		c.WarehouseID = cloneString(l.WarehouseID)
		list = append(list, &c)
	}
	sort.Slice(list, func(i, j int) bool {
		return entity.WarehouseKey(list[i].WarehouseID) < entity.WarehouseKey(list[j].WarehouseID)
	})
	return list, nil
}

// HistoryRepo historial en memoria (append-only).
type HistoryRepo struct {
	s    *Store
	inTx bool
}

func (r *HistoryRepo) Create(_ context.Context, e *entity.StockHistoryEntry) error {
	defer r.s.lock(r.inTx)()
	if hook := r.s.BeforeHistoryInsert; hook != nil {
		if err := hook(e); err != nil {
			return err
		}
	}
	c := *e
	c.WarehouseID = cloneString(e.WarehouseID)
	r.s.st.history = append(r.s.st.history, c)
	return nil
}

// List recorre desde el final: el slice está en orden de inserción.
func (r *HistoryRepo) List(_ context.Context, f repository.HistoryFilter) ([]*entity.StockHistoryEntry, error) {
	defer r.s.lock(r.inTx)()
	var matched []*entity.StockHistoryEntry
	for i := len(r.s.st.history) - 1; i >= 0; i-- {
		e := r.s.st.history[i]
		if f.ProductID != "" && e.ProductID != f.ProductID {
			continue
		}
		if f.WarehouseID != nil && entity.WarehouseKey(e.WarehouseID) != *f.WarehouseID {
			continue
		}
		if f.GlobalOnly && e.WarehouseID != nil {
			continue
		}
		if f.TransactionType != "" && e.TransactionType != f.TransactionType {
			continue
		}
		if f.ReferenceID != "" && e.ReferenceID != f.ReferenceID {
			continue
		}
		if f.From != nil && e.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && e.CreatedAt.After(*f.To) {
			continue
		}
		c := e
		c.WarehouseID = cloneString(e.WarehouseID)
		matched = append(matched, &c)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].CreatedAt.After(matched[j].CreatedAt) })
	return page(matched, f.Limit, f.Offset), nil
}

// TransferRepo traslados en memoria.
type TransferRepo struct {
	s    *Store
	inTx bool
}

func (r *TransferRepo) Create(_ context.Context, t *entity.StockTransfer) error {
	defer r.s.lock(r.inTx)()
	if _, ok := r.s.st.transfers[t.ID]; ok {
		return fmt.Errorf("%w: traslado %s", domain.ErrDuplicate, t.ID)
	}
	r.s.st.transfers[t.ID] = transferRow{t: *t, seq: r.s.nextSeq()}
	return nil
}

func (r *TransferRepo) GetByID(_ context.Context, id string) (*entity.StockTransfer, error) {
	defer r.s.lock(r.inTx)()
	row, ok := r.s.st.transfers[id]
	if !ok {
		return nil, nil
	}
	t := row.t
	return &t, nil
}

func (r *TransferRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockTransfer, error) {
	return r.GetByID(ctx, id)
}

func (r *TransferRepo) Update(_ context.Context, t *entity.StockTransfer) error {
	defer r.s.lock(r.inTx)()
	row, ok := r.s.st.transfers[t.ID]
	if !ok {
		return fmt.Errorf("%w: traslado %s", domain.ErrNotFound, t.ID)
	}
	row.t.Status = t.Status
	row.t.Notes = t.Notes
	row.t.UpdatedAt = t.UpdatedAt
	r.s.st.transfers[t.ID] = row
	return nil
}

func (r *TransferRepo) Delete(_ context.Context, id string) error {
	defer r.s.lock(r.inTx)()
	if _, ok := r.s.st.transfers[id]; !ok {
		return fmt.Errorf("%w: traslado %s", domain.ErrNotFound, id)
	}
	delete(r.s.st.transfers, id)
	return nil
}

func (r *TransferRepo) List(_ context.Context, f repository.TransferFilter) ([]*entity.StockTransfer, error) {
	defer r.s.lock(r.inTx)()
	rows := make([]transferRow, 0, len(r.s.st.transfers))
	for _, row := range r.s.st.transfers {
		t := row.t
		if f.ProductID != "" && t.ProductID != f.ProductID {
			continue
		}
		if f.WarehouseID != "" && t.FromWarehouseID != f.WarehouseID && t.ToWarehouseID != f.WarehouseID {
			continue
		}
		if f.Status != "" && t.Status != f.Status {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].t.CreatedAt.Equal(rows[j].t.CreatedAt) {
			return rows[i].t.CreatedAt.After(rows[j].t.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
	list := make([]*entity.StockTransfer, 0, len(rows))
	for _, row := range rows {
		t := row.t
		list = append(list, &t)
	}
	return page(list, f.Limit, f.Offset), nil
}

// AlertRepo alertas en memoria. Rechaza una segunda alerta activa por clave, como el índice parcial de PostgreSQL.
type AlertRepo struct {
	s *Store
}

func (r *AlertRepo) Create(_ context.Context, a *entity.LowStockAlert) error {
	defer r.s.lock(false)()
	if !a.IsResolved {
		for _, row := range r.s.st.alerts {
			if !row.a.IsResolved && row.a.ProductID == a.ProductID &&
				entity.WarehouseKey(row.a.WarehouseID) == entity.WarehouseKey(a.WarehouseID) {
				return fmt.Errorf("%w: alerta activa para %s", domain.ErrDuplicate, a.ProductID)
			}
		}
	}
	if _, ok := r.s.st.alerts[a.ID]; ok {
		return fmt.Errorf("%w: alerta %s", domain.ErrDuplicate, a.ID)
	}
	c := *a
	c.WarehouseID = cloneString(a.WarehouseID)
	r.s.st.alerts[a.ID] = alertRow{a: c, seq: r.s.nextSeq()}
	return nil
}

func (r *AlertRepo) GetByID(_ context.Context, id string) (*entity.LowStockAlert, error) {
	defer r.s.lock(false)()
	row, ok := r.s.st.alerts[id]
	if !ok {
		return nil, nil
	}
	return copyAlert(row.a), nil
}

func (r *AlertRepo) GetActive(_ context.Context, productID string, warehouseID *string) (*entity.LowStockAlert, error) {
	defer r.s.lock(false)()
	key := entity.WarehouseKey(warehouseID)
	for _, row := range r.s.st.alerts {
		if !row.a.IsResolved && row.a.ProductID == productID && entity.WarehouseKey(row.a.WarehouseID) == key {
			return copyAlert(row.a), nil
		}
	}
	return nil, nil
}

func (r *AlertRepo) Resolve(_ context.Context, id, resolvedBy string, at time.Time) (bool, error) {
	defer r.s.lock(false)()
	row, ok := r.s.st.alerts[id]
	if !ok || row.a.IsResolved {
		return false, nil
	}
	row.a.Resolve(resolvedBy, at)
	r.s.st.alerts[id] = row
	return true, nil
}

func (r *AlertRepo) List(_ context.Context, f repository.AlertFilter) ([]*entity.LowStockAlert, error) {
	defer r.s.lock(false)()
	rows := make([]alertRow, 0, len(r.s.st.alerts))
	for _, row := range r.s.st.alerts {
		a := row.a
		if f.ProductID != "" && a.ProductID != f.ProductID {
			continue
		}
		if f.WarehouseID != nil && entity.WarehouseKey(a.WarehouseID) != *f.WarehouseID {
			continue
		}
		if f.Resolved != nil && a.IsResolved != *f.Resolved {
			continue
		}
		if f.Level != "" && a.AlertLevel != f.Level {
			continue
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].a.CreatedAt.Equal(rows[j].a.CreatedAt) {
			return rows[i].a.CreatedAt.After(rows[j].a.CreatedAt)
		}
		return rows[i].seq > rows[j].seq
	})
	list := make([]*entity.LowStockAlert, 0, len(rows))
	for _, row := range rows {
		list = append(list, copyAlert(row.a))
	}
	return page(list, f.Limit, f.Offset), nil
}

func copyAlert(a entity.LowStockAlert) *entity.LowStockAlert {
	a.WarehouseID = cloneString(a.WarehouseID)
	if a.ResolvedAt != nil {
		at := *a.ResolvedAt
		a.ResolvedAt = &at
	}
	return &a
}

// ProductRepo productos sembrados con AddProduct.
type ProductRepo struct {
	s *Store
}

// GetByID busca un producto.
func (r *ProductRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	defer r.s.lock(false)()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepo) ListMonitored(_ context.Context, limit, offset int) ([]*entity.Product, error) {
	defer r.s.lock(false)()
	var list []*entity.Product
	for _, p := range r.s.products {
		if p.LowStockThreshold > 0 {
			c := p
			list = append(list, &c)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return page(list, limit, offset), nil
}

// WarehouseRepo bodegas sembradas con AddWarehouse.
type WarehouseRepo struct {
	s *Store
}

func (w *WarehouseRepo) GetByID(_ context.Context, id string) (*entity.Warehouse, error) {
	defer w.s.lock(false)()
	wh, ok := w.s.warehouses[id]
	if !ok {
		return nil, nil
	}
	return &wh, nil
}

// TransferIDStore expone los ids de traslados al IdAllocator.
type TransferIDStore struct {
	s *Store
}

func (t *TransferIDStore) MaxSequence(_ context.Context, prefix string) (int64, error) {
	defer t.s.lock(false)()
	var max int64
	for id := range t.s.st.transfers {
		if n, ok := invrules.ParseSequence(prefix, id); ok && n > max {
			max = n
		}
	}
	return max, nil
}

func (t *TransferIDStore) Exists(_ context.Context, id string) (bool, error) {
	defer t.s.lock(false)()
	_, ok := t.s.st.transfers[id]
	return ok, nil
}

func page[T any](list []T, limit, offset int) []T {
	if offset >= len(list) {
		return []T{}
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
