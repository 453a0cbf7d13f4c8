// Package memory implementa el almacén transaccional en memoria (desarrollo y pruebas).
// Cada (producto, ubicación) tiene su propio bloqueo exclusivo; las escrituras de una transacción
// quedan en espera hasta el commit y se descartan en rollback o panic.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/inventario-tienda/internal/application/inventory"
	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
)

var _ inventory.TxRunner = (*Store)(nil)

// DefaultLockTimeout espera máxima por un bloqueo de fila.
const DefaultLockTimeout = 5 * time.Second

var errNoTx = errors.New("memory: operación de escritura fuera de transacción")

// Store guarda productos, ubicaciones, existencias, movimientos y traslados.
type Store struct {
	mu        sync.RWMutex
	products  map[string]entity.Product
	locations map[string]entity.Location
	stock     map[entity.StockKey]entity.StockEntry
	movements []*entity.InventoryMovement // orden ascendente por Seq
	movByID   map[string]*entity.InventoryMovement
	transfers map[string]entity.Transfer
	seq       int64
	lastAt    time.Time

	lockMu      sync.Mutex
	locks       map[entity.StockKey]chan struct{}
	lockTimeout time.Duration
	now         func() time.Time
}

// Option configura el Store.
type Option func(*Store)

// WithLockTimeout fija la espera máxima por un bloqueo; al vencer se devuelve domain.ErrBusy.
func WithLockTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.lockTimeout = d
		}
	}
}

// WithClock reemplaza el reloj usado para CreatedAt/UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore crea un almacén vacío.
func NewStore(opts ...Option) *Store {
	s := &Store{
		products:    make(map[string]entity.Product),
		locations:   make(map[string]entity.Location),
		stock:       make(map[entity.StockKey]entity.StockEntry),
		movByID:     make(map[string]*entity.InventoryMovement),
		transfers:   make(map[string]entity.Transfer),
		locks:       make(map[entity.StockKey]chan struct{}),
		lockTimeout: DefaultLockTimeout,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddProduct registra (o reemplaza) un producto de referencia.
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	s.products[p.ID] = p
}

// AddLocation registra (o reemplaza) una ubicación.
func (s *Store) AddLocation(l entity.Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[l.ID] = l
}

// Stock repositorio de existencias de solo lectura (fuera de transacción).
func (s *Store) Stock() repository.StockRepository { return &stockRepo{s: s} }

// Movements repositorio de movimientos de solo lectura.
func (s *Store) Movements() repository.InventoryMovementRepository { return &movementRepo{s: s} }

// Transfers repositorio de traslados de solo lectura.
func (s *Store) Transfers() repository.TransferRepository { return &transferRepo{s: s} }

// Products repositorio de productos.
func (s *Store) Products() repository.ProductRepository { return &productRepo{s: s} }

// Locations repositorio de ubicaciones.
func (s *Store) Locations() repository.LocationRepository { return &locationRepo{s: s} }

// Run ejecuta fn con repositorios atados a una transacción. Si fn falla o entra en panic no se
// aplica nada; los bloqueos tomados se liberan siempre.
func (s *Store) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	movRepo repository.InventoryMovementRepository,
	transferRepo repository.TransferRepository,
) error) error {
	t := &tx{
		s:     s,
		held:  make(map[entity.StockKey]chan struct{}),
		stock: make(map[entity.StockKey]entity.StockEntry),
	}
	defer t.release()

	if err := fn(&stockRepo{s: s, tx: t}, &movementRepo{s: s, tx: t}, &transferRepo{s: s, tx: t}); err != nil {
		return err
	}
	return s.commit(t)
}

// tx estado de una transacción en curso.
type tx struct {
	s         *Store
	held      map[entity.StockKey]chan struct{}
	stock     map[entity.StockKey]entity.StockEntry
	movements []*entity.InventoryMovement
	transfers []entity.Transfer
}

// lock toma el bloqueo exclusivo de la llave. Es reentrante dentro de la misma transacción.
func (t *tx) lock(ctx context.Context, key entity.StockKey) error {
	if _, ok := t.held[key]; ok {
		return nil
	}
	sem := t.s.semaphore(key)
	timer := time.NewTimer(t.s.lockTimeout)
	defer timer.Stop()
	select {
	case sem <- struct{}{}:
		t.held[key] = sem
		return nil
	case <-timer.C:
		return fmt.Errorf("bloqueo %s/%s: %w", key.ProductID, key.LocationID, domain.ErrBusy)
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *tx) release() {
	for key, sem := range t.held {
		<-sem
		delete(t.held, key)
	}
}

func (s *Store) semaphore(key entity.StockKey) chan struct{} {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	sem, ok := s.locks[key]
	if !ok {
		sem = make(chan struct{}, 1)
		s.locks[key] = sem
	}
	return sem
}

// nextSeq asigna Seq y CreatedAt crecientes.
func (s *Store) nextSeq() (int64, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	at := s.now()
	if !at.After(s.lastAt) {
		at = s.lastAt.Add(time.Nanosecond)
	}
	s.lastAt = at
	return s.seq, at
}

// commit verifica duplicados y aplica las escrituras en espera de forma atómica.
func (s *Store) commit(t *tx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, tr := range t.transfers {
		if _, ok := s.transfers[tr.ID]; ok {
			return fmt.Errorf("traslado %s: %w", tr.ID, domain.ErrDuplicate)
		}
	}
	for _, m := range t.movements {
		if _, ok := s.movByID[m.ID]; ok {
			return fmt.Errorf("movimiento %s: %w", m.ID, domain.ErrDuplicate)
		}
	}

	for key, e := range t.stock {
		s.stock[key] = e
	}
	for _, tr := range t.transfers {
		s.transfers[tr.ID] = tr
	}
	for _, m := range t.movements {
		s.insertMovementLocked(m)
	}
	return nil
}

func (s *Store) insertMovementLocked(m *entity.InventoryMovement) {
	i := sort.Search(len(s.movements), func(i int) bool {
		return s.movements[i].Seq > m.Seq
	})
	s.movements = append(s.movements, nil)
	copy(s.movements[i+1:], s.movements[i:])
	s.movements[i] = m
	s.movByID[m.ID] = m
}
