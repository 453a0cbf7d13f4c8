package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
)

// stockRepo con tx == nil solo permite lecturas.
type stockRepo struct {
	s  *Store
	tx *tx
}

func (r *stockRepo) Get(_ context.Context, productID, locationID string) (*entity.StockEntry, error) {
	return r.read(entity.StockKey{ProductID: productID, LocationID: locationID}), nil
}

func (r *stockRepo) read(key entity.StockKey) *entity.StockEntry {
	if r.tx != nil {
		if e, ok := r.tx.stock[key]; ok {
			return &e
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	if e, ok := r.s.stock[key]; ok {
		return &e
	}
	return nil
}

func (r *stockRepo) GetForUpdate(ctx context.Context, productID, locationID string) (*entity.StockEntry, error) {
	if r.tx == nil {
		return nil, errNoTx
	}
	key := entity.StockKey{ProductID: productID, LocationID: locationID}
	if err := r.tx.lock(ctx, key); err != nil {
		return nil, err
	}
	return r.read(key), nil
}

func (r *stockRepo) GetOrCreateForUpdate(ctx context.Context, productID, locationID string) (*entity.StockEntry, error) {
	e, err := r.GetForUpdate(ctx, productID, locationID)
	if err != nil || e != nil {
		return e, err
	}
	created := entity.StockEntry{ProductID: productID, LocationID: locationID, UpdatedAt: r.s.now()}
	r.tx.stock[created.Key()] = created
	return &created, nil
}

func (r *stockRepo) Save(_ context.Context, entry *entity.StockEntry) error {
	if r.tx == nil {
		return errNoTx
	}
	key := entry.Key()
	if _, ok := r.tx.held[key]; !ok {
		return fmt.Errorf("memory: guardar %s/%s sin bloqueo", key.ProductID, key.LocationID)
	}
	r.tx.stock[key] = *entry
	return nil
}

func (r *stockRepo) List(_ context.Context, filter repository.StockFilter) ([]entity.StockEntry, error) {
	r.s.mu.RLock()
	merged := make(map[entity.StockKey]entity.StockEntry, len(r.s.stock))
	for k, e := range r.s.stock {
		merged[k] = e
	}
	r.s.mu.RUnlock()
	if r.tx != nil {
		for k, e := range r.tx.stock {
			merged[k] = e
		}
	}

	out := make([]entity.StockEntry, 0)
	for _, e := range merged {
		if filter.ProductID != "" && e.ProductID != filter.ProductID {
			continue
		}
		if filter.LocationID != "" && e.LocationID != filter.LocationID {
			continue
		}
		if filter.BelowQuantity != nil && e.Quantity >= *filter.BelowQuantity {
			continue
		}
		out = append(out, e)
	}
	slices.SortFunc(out, func(a, b entity.StockEntry) int {
		return cmp.Or(cmp.Compare(a.ProductID, b.ProductID), cmp.Compare(a.LocationID, b.LocationID))
	})
	return out, nil
}

type movementRepo struct {
	s  *Store
	tx *tx
}

func (r *movementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	if r.tx == nil {
		return errNoTx
	}
	m.Seq, m.CreatedAt = r.s.nextSeq()
	cp := *m
	r.tx.movements = append(r.tx.movements, &cp)
	return nil
}

func (r *movementRepo) GetByID(_ context.Context, id string) (*entity.InventoryMovement, error) {
	if r.tx != nil {
		for _, m := range r.tx.movements {
			if m.ID == id {
				cp := *m
				return &cp, nil
			}
		}
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	m, ok := r.s.movByID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (r *movementRepo) ListPage(_ context.Context, filter repository.MovementFilter, beforeSeq int64, limit int) ([]*entity.InventoryMovement, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*entity.InventoryMovement, 0, min(limit, len(r.s.movements)))
	for i := len(r.s.movements) - 1; i >= 0 && len(out) < limit; i-- {
		m := r.s.movements[i]
		if beforeSeq > 0 && m.Seq >= beforeSeq {
			continue
		}
		if !matches(m, filter) {
			continue
		}
		cp := *m
		out = append(out, &cp)
	}
	return out, nil
}

func (r *movementRepo) Totals(_ context.Context, filter repository.MovementFilter) ([]repository.KindTotal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	byKind := make(map[entity.MovementKind]*repository.KindTotal)
	for _, m := range r.s.movements {
		if !matches(m, filter) {
			continue
		}
		t, ok := byKind[m.Kind]
		if !ok {
			t = &repository.KindTotal{Kind: m.Kind}
			byKind[m.Kind] = t
		}
		t.Units += m.Quantity
		t.Count++
	}
	out := make([]repository.KindTotal, 0, len(byKind))
	for _, k := range []entity.MovementKind{entity.MovementKindEntry, entity.MovementKindExit, entity.MovementKindAdjustment} {
		if t, ok := byKind[k]; ok {
			out = append(out, *t)
		}
	}
	return out, nil
}

func matches(m *entity.InventoryMovement, f repository.MovementFilter) bool {
	switch {
	case f.ProductID != "" && m.ProductID != f.ProductID:
		return false
	case f.LocationID != "" && m.SourceID != f.LocationID && m.DestinationID != f.LocationID:
		return false
	case f.Kind != "" && m.Kind != f.Kind:
		return false
	case f.TransferID != "" && m.TransferID != f.TransferID:
		return false
	case f.From != nil && m.CreatedAt.Before(*f.From):
		return false
	case f.To != nil && m.CreatedAt.After(*f.To):
		return false
	}
	return true
}

type transferRepo struct {
	s  *Store
	tx *tx
}

func (r *transferRepo) Create(_ context.Context, t *entity.Transfer) error {
	if r.tx == nil {
		return errNoTx
	}
	for _, staged := range r.tx.transfers {
		if staged.ID == t.ID {
			return fmt.Errorf("traslado %s: %w", t.ID, domain.ErrDuplicate)
		}
	}
	r.s.mu.RLock()
	_, exists := r.s.transfers[t.ID]
	r.s.mu.RUnlock()
	if exists {
		return fmt.Errorf("traslado %s: %w", t.ID, domain.ErrDuplicate)
	}
	r.tx.transfers = append(r.tx.transfers, *t)
	return nil
}

func (r *transferRepo) GetByID(_ context.Context, id string) (*entity.Transfer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.transfers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &t, nil
}

type productRepo struct{ s *Store }

func (r *productRepo) GetByID(_ context.Context, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *productRepo) GetByIDs(_ context.Context, ids []string) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out = append(out, &p)
		}
	}
	return out, nil
}

func (r *productRepo) LeastMoved(_ context.Context, limit int) ([]repository.ProductMovementCount, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	counts := make(map[string]int64, len(r.s.products))
	for _, m := range r.s.movements {
		counts[m.ProductID]++
	}
	out := make([]repository.ProductMovementCount, 0, len(r.s.products))
	for _, p := range r.s.products {
		out = append(out, repository.ProductMovementCount{ProductID: p.ID, Name: p.Name, Movements: counts[p.ID]})
	}
	slices.SortFunc(out, func(a, b repository.ProductMovementCount) int {
		return cmp.Or(cmp.Compare(a.Movements, b.Movements), cmp.Compare(a.Name, b.Name), cmp.Compare(a.ProductID, b.ProductID))
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type locationRepo struct{ s *Store }

func (r *locationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	l, ok := r.s.locations[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *locationRepo) List(_ context.Context) ([]*entity.Location, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]*entity.Location, 0, len(r.s.locations))
	for _, l := range r.s.locations {
		out = append(out, &l)
	}
	slices.SortFunc(out, func(a, b *entity.Location) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
	return out, nil
}
