package inventory_test

import (
	"context"
	"iter"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-tienda/internal/application/inventory"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/jhoicas/inventario-tienda/internal/infrastructure/memory"
	"github.com/jhoicas/inventario-tienda/pkg/logger"
)

const (
	pCamisa = "prod-camisa"
	pGorra  = "prod-gorra"
	pCinto  = "prod-cinto"

	locAnexo  = "anexo"
	locBodega = "bodega"
	locPiso   = "piso"

	testActor = "empleado-1"
)

func newTestStore(t *testing.T, opts ...memory.Option) *memory.Store {
	t.Helper()
	s := memory.NewStore(opts...)
	s.AddProduct(entity.Product{ID: pCamisa, SKU: "CAM-001", Name: "Camisa", RetailPrice: decimal.NewFromInt(25000)})
	s.AddProduct(entity.Product{ID: pGorra, SKU: "GOR-001", Name: "Gorra", RetailPrice: decimal.RequireFromString("12000.50")})
	s.AddProduct(entity.Product{ID: pCinto, SKU: "CIN-001", Name: "Cinto", RetailPrice: decimal.NewFromInt(8000)})
	s.AddLocation(entity.Location{ID: locAnexo, Name: "Anexo"})
	s.AddLocation(entity.Location{ID: locBodega, Name: "Bodega"})
	s.AddLocation(entity.Location{ID: locPiso, Name: "Piso de venta"})
	return s
}

func newEngine(s *memory.Store, opts ...inventory.Option) *inventory.MovementEngine {
	opts = append([]inventory.Option{inventory.WithLogger(logger.Nop())}, opts...)
	return inventory.NewMovementEngine(s, s.Products(), s.Locations(), opts...)
}

func newQueries(s *memory.Store, cache inventory.StockCache) *inventory.StockQueries {
	return inventory.NewStockQueries(storeRepos(s), cache, logger.Nop())
}

func storeRepos(s *memory.Store) inventory.QueryRepos {
	return inventory.QueryRepos{
		Stock:     s.Stock(),
		Movements: s.Movements(),
		Products:  s.Products(),
		Locations: s.Locations(),
		Transfers: s.Transfers(),
	}
}

func mustApply(t *testing.T, e *inventory.MovementEngine, in inventory.MovementInput) *inventory.MovementResult {
	t.Helper()
	if in.ActorID == "" {
		in.ActorID = testActor
	}
	res, err := e.Apply(context.Background(), in)
	require.NoError(t, err)
	return res
}

func entry(productID, locationID string, qty int) inventory.MovementInput {
	return inventory.MovementInput{ProductID: productID, Quantity: qty, Kind: entity.MovementKindEntry, DestinationID: locationID}
}

func exit(productID, locationID string, qty int) inventory.MovementInput {
	return inventory.MovementInput{ProductID: productID, Quantity: qty, Kind: entity.MovementKindExit, SourceID: locationID}
}

func stockOf(t *testing.T, s *memory.Store, productID, locationID string) int64 {
	t.Helper()
	e, err := s.Stock().Get(context.Background(), productID, locationID)
	require.NoError(t, err)
	if e == nil {
		return 0
	}
	return e.Quantity
}

func collect(t *testing.T, seq iter.Seq2[*entity.InventoryMovement, error]) []*entity.InventoryMovement {
	t.Helper()
	var out []*entity.InventoryMovement
	for m, err := range seq {
		require.NoError(t, err)
		out = append(out, m)
	}
	return out
}

// fakeCache StockCache en memoria que registra las invalidaciones.
type fakeCache struct {
	mu          sync.Mutex
	values      map[entity.StockKey]int64
	versions    map[entity.StockKey]int64
	invalidated []entity.StockKey
	gets        int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		values:   make(map[entity.StockKey]int64),
		versions: make(map[entity.StockKey]int64),
	}
}

func (c *fakeCache) Get(_ context.Context, key entity.StockKey) (int64, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gets++
	v, ok := c.values[key]
	return v, ok, nil
}

// Set escribe sin mirar la generación.
func (c *fakeCache) Set(_ context.Context, key entity.StockKey, qty int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = qty
	return nil
}

func (c *fakeCache) Version(_ context.Context, key entity.StockKey) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.versions[key], nil
}

func (c *fakeCache) Fill(_ context.Context, key entity.StockKey, qty, version int64) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[key] != version {
		return false, nil
	}
	c.values[key] = qty
	return true, nil
}

func (c *fakeCache) Invalidate(_ context.Context, keys ...entity.StockKey) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		c.versions[k]++
		delete(c.values, k)
		c.invalidated = append(c.invalidated, k)
	}
	return nil
}

func (c *fakeCache) cached(key entity.StockKey) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.values[key]
	return v, ok
}
