package postgres

import (
	"context"
	"errors"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const selectStock = `
	SELECT product_id, location_id, quantity, updated_at
	FROM stock WHERE product_id = $1 AND location_id = $2`

// Get obtiene la existencia de un producto en una ubicación; nil si no existe.
func (r *StockRepo) Get(ctx context.Context, productID, locationID string) (*entity.StockEntry, error) {
	return r.scanOne(ctx, "get stock", selectStock, productID, locationID)
}

// GetForUpdate obtiene la existencia y bloquea la fila (SELECT FOR UPDATE); nil si no existe.
func (r *StockRepo) GetForUpdate(ctx context.Context, productID, locationID string) (*entity.StockEntry, error) {
	return r.scanOne(ctx, "get stock for update", selectStock+"\n\tFOR UPDATE", productID, locationID)
}

// GetOrCreateForUpdate inserta la fila con cantidad 0 si no existe y la bloquea.
// ON CONFLICT DO NOTHING resuelve la carrera de dos transacciones creando la misma fila.
func (r *StockRepo) GetOrCreateForUpdate(ctx context.Context, productID, locationID string) (*entity.StockEntry, error) {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock (product_id, location_id, quantity, updated_at)
		VALUES ($1, $2, 0, now())
		ON CONFLICT (product_id, location_id) DO NOTHING`, productID, locationID)
	if err != nil {
		return nil, wrapErr("create stock", err)
	}
	entry, err := r.GetForUpdate(ctx, productID, locationID)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, errors.New("get or create stock: fila no visible después de insertar")
	}
	return entry, nil
}

// Save persiste la cantidad de una fila ya bloqueada.
func (r *StockRepo) Save(ctx context.Context, entry *entity.StockEntry) error {
	_, err := r.q.Exec(ctx, `
		UPDATE stock SET quantity = $3, updated_at = $4
		WHERE product_id = $1 AND location_id = $2`,
		entry.ProductID, entry.LocationID, entry.Quantity, entry.UpdatedAt)
	if err != nil {
		return wrapErr("save stock", err)
	}
	return nil
}

// List lista existencias filtradas, ordenadas por producto y ubicación.
func (r *StockRepo) List(ctx context.Context, filter repository.StockFilter) ([]entity.StockEntry, error) {
	qb := psql.Select("product_id", "location_id", "quantity", "updated_at").
		From("stock").
		OrderBy("product_id", "location_id")
	if filter.ProductID != "" {
		qb = qb.Where("product_id = ?", filter.ProductID)
	}
	if filter.LocationID != "" {
		qb = qb.Where("location_id = ?", filter.LocationID)
	}
	if filter.BelowQuantity != nil {
		qb = qb.Where("quantity < ?", *filter.BelowQuantity)
	}
	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, wrapErr("build list stock", err)
	}
	var rows []stockRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, wrapErr("list stock", err)
	}
	out := make([]entity.StockEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

func (r *StockRepo) scanOne(ctx context.Context, op, sql string, args ...any) (*entity.StockEntry, error) {
	var row stockRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr(op, err)
	}
	e := row.toEntity()
	return &e, nil
}
