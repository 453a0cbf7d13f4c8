package inventory

import (
	"cmp"
	"context"
	"iter"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/inventario-tienda/internal/application/dto"
	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
	"github.com/jhoicas/inventario-tienda/pkg/logger"
)

// Valores por defecto de las consultas.
const (
	DefaultCriticalThreshold int64 = 100
	DefaultHistoryPageSize         = 100
	DefaultLeastMovedLimit         = 10

	// stockLookupTimeout tope de la consulta compartida de CurrentStock.
	stockLookupTimeout = 10 * time.Second
)

// QueryRepos repositorios de lectura usados por StockQueries.
type QueryRepos struct {
	Stock     repository.StockRepository
	Movements repository.InventoryMovementRepository
	Products  repository.ProductRepository
	Locations repository.LocationRepository
	Transfers repository.TransferRepository
}

// StockQueries consultas de solo lectura sobre existencias e historial.
type StockQueries struct {
	stockRepo    repository.StockRepository
	movRepo      repository.InventoryMovementRepository
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	transferRepo repository.TransferRepository
	cache        StockCache
	group        singleflight.Group
	threshold    int64
	log          zerolog.Logger
}

// NewStockQueries construye las consultas. cache y log pueden ser nil.
func NewStockQueries(repos QueryRepos, cache StockCache, log *logger.Logger) *StockQueries {
	q := &StockQueries{
		stockRepo:    repos.Stock,
		movRepo:      repos.Movements,
		productRepo:  repos.Products,
		locationRepo: repos.Locations,
		transferRepo: repos.Transfers,
		cache:        cache,
		threshold:    DefaultCriticalThreshold,
		log:          zerolog.Nop(),
	}
	if log != nil {
		q.log = log.Component("stock_queries")
	}
	return q
}

// SetCriticalThreshold cambia el umbral por defecto de existencias críticas.
func (q *StockQueries) SetCriticalThreshold(n int64) {
	if n > 0 {
		q.threshold = n
	}
}

// CurrentStock devuelve la cantidad de un producto en una ubicación (0 si nunca tuvo movimientos).
// Lee primero la caché; las lecturas concurrentes de la misma llave comparten una sola consulta.
func (q *StockQueries) CurrentStock(ctx context.Context, productID, locationID string) (int64, error) {
	if productID == "" || locationID == "" {
		return 0, domain.ErrInvalidInput
	}
	key := entity.StockKey{ProductID: productID, LocationID: locationID}
	if q.cache != nil {
		qty, ok, err := q.cache.Get(ctx, key)
		if err != nil {
			q.log.Warn().Err(err).Msg("leer caché de existencias")
		} else if ok {
			return qty, nil
		}
	}

	// La consulta compartida no depende del contexto de quien la inició;
	// cada llamador deja de esperar cuando se cancela el suyo.
	ch := q.group.DoChan(key.String(), func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stockLookupTimeout)
		defer cancel()
		return q.loadStock(lookupCtx, key)
	})
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return 0, res.Err
		}
		return res.Val.(int64), nil
	}
}

func (q *StockQueries) loadStock(ctx context.Context, key entity.StockKey) (int64, error) {
	fill := q.cache != nil
	var version int64
	if fill {
		v, err := q.cache.Version(ctx, key)
		if err != nil {
			q.log.Warn().Err(err).Msg("leer generación de caché")
			fill = false
		}
		version = v
	}

	product, err := q.productRepo.GetByID(ctx, key.ProductID)
	if err != nil {
		return 0, err
	}
	if product == nil {
		return 0, domain.ErrNotFound
	}
	entry, err := q.stockRepo.Get(ctx, key.ProductID, key.LocationID)
	if err != nil {
		return 0, err
	}
	var qty int64
	if entry != nil {
		qty = entry.Quantity
	}
	if fill {
		stored, err := q.cache.Fill(ctx, key, qty, version)
		switch {
		case err != nil:
			q.log.Warn().Err(err).Msg("escribir caché de existencias")
		case !stored:
			q.log.Debug().Str("key", key.String()).Msg("caché invalidada durante la lectura, no se llena")
		}
	}
	return qty, nil
}

// Movement devuelve un movimiento por ID (domain.ErrNotFound si no existe).
func (q *StockQueries) Movement(ctx context.Context, id string) (*entity.InventoryMovement, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	return q.movRepo.GetByID(ctx, id)
}

// TransferDetail devuelve el traslado y sus movimientos enlazados, débito primero.
func (q *StockQueries) TransferDetail(ctx context.Context, id string) (*entity.Transfer, []*entity.InventoryMovement, error) {
	if id == "" {
		return nil, nil, domain.ErrInvalidInput
	}
	t, err := q.transferRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	movs, err := q.movRepo.ListPage(ctx, repository.MovementFilter{TransferID: id}, 0, 2)
	if err != nil {
		return nil, nil, err
	}
	slices.SortFunc(movs, func(a, b *entity.InventoryMovement) int { return cmp.Compare(a.Seq, b.Seq) })
	return t, movs, nil
}

// Locations lista las ubicaciones por nombre.
func (q *StockQueries) Locations(ctx context.Context) ([]*entity.Location, error) {
	return q.locationRepo.List(ctx)
}

// StockByLocation lista las existencias de un producto en todas sus ubicaciones.
func (q *StockQueries) StockByLocation(ctx context.Context, productID string) ([]entity.StockEntry, error) {
	if productID == "" {
		return nil, domain.ErrInvalidInput
	}
	product, err := q.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return q.stockRepo.List(ctx, repository.StockFilter{ProductID: productID})
}

// MovementHistory recorre el historial del más reciente al más antiguo, por páginas.
// Cada recorrido vuelve a consultar desde el principio; detenerlo antes no deja recursos abiertos.
func (q *StockQueries) MovementHistory(ctx context.Context, filter repository.MovementFilter, pageSize int) iter.Seq2[*entity.InventoryMovement, error] {
	if pageSize <= 0 {
		pageSize = DefaultHistoryPageSize
	}
	return func(yield func(*entity.InventoryMovement, error) bool) {
		var before int64
		for {
			page, err := q.movRepo.ListPage(ctx, filter, before, pageSize)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, m := range page {
				if !yield(m, nil) {
					return
				}
			}
			if len(page) < pageSize {
				return
			}
			before = page[len(page)-1].Seq
		}
	}
}

// MovementTotals unidades y número de movimientos por tipo.
func (q *StockQueries) MovementTotals(ctx context.Context, filter repository.MovementFilter) ([]repository.KindTotal, error) {
	return q.movRepo.Totals(ctx, filter)
}

// LeastMoved productos con menos movimientos registrados.
func (q *StockQueries) LeastMoved(ctx context.Context, limit int) ([]repository.ProductMovementCount, error) {
	if limit <= 0 {
		limit = DefaultLeastMovedLimit
	}
	return q.productRepo.LeastMoved(ctx, limit)
}

// Summary totaliza unidades, productos distintos y valorización a precio detal, y lista las
// existencias críticas (cantidad < threshold). locationID vacío resume todas las ubicaciones.
func (q *StockQueries) Summary(ctx context.Context, locationID string, threshold int64) (*dto.InventorySummaryDTO, error) {
	if threshold <= 0 {
		threshold = q.threshold
	}
	entries, err := q.stockRepo.List(ctx, repository.StockFilter{LocationID: locationID})
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(entries))
	seen := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if _, ok := seen[e.ProductID]; !ok {
			seen[e.ProductID] = struct{}{}
			ids = append(ids, e.ProductID)
		}
	}
	products, err := q.productRepo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entity.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := &dto.InventorySummaryDTO{
		LocationID:      locationID,
		RetailValuation: decimal.Zero,
		Threshold:       threshold,
		Critical:        []dto.CriticalStockDTO{},
	}
	stocked := make(map[string]struct{})
	for _, e := range entries {
		out.TotalUnits += e.Quantity
		if e.Quantity > 0 {
			stocked[e.ProductID] = struct{}{}
		}
		p := byID[e.ProductID]
		if p != nil {
			out.RetailValuation = out.RetailValuation.Add(p.RetailPrice.Mul(decimal.NewFromInt(e.Quantity)))
		}
		if e.Quantity < threshold {
			c := dto.CriticalStockDTO{ProductID: e.ProductID, LocationID: e.LocationID, Quantity: e.Quantity}
			if p != nil {
				c.SKU, c.ProductName = p.SKU, p.Name
			}
			out.Critical = append(out.Critical, c)
		}
	}
	out.ProductCount = len(stocked)
	slices.SortStableFunc(out.Critical, func(a, b dto.CriticalStockDTO) int {
		return cmp.Or(cmp.Compare(a.Quantity, b.Quantity), cmp.Compare(a.ProductID, b.ProductID))
	})
	return out, nil
}
