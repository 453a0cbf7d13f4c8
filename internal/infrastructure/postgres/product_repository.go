package postgres

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

var productColumns = []string{"id", "sku", "name", "retail_price", "wholesale_price", "dozen_price", "created_at"}

// Upsert inserta o actualiza un producto (carga inicial de catálogo).
func (r *ProductRepo) Upsert(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (id, sku, name, retail_price, wholesale_price, dozen_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			sku = EXCLUDED.sku, name = EXCLUDED.name, retail_price = EXCLUDED.retail_price,
			wholesale_price = EXCLUDED.wholesale_price, dozen_price = EXCLUDED.dozen_price`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.SKU, p.Name, p.RetailPrice, p.WholesalePrice, p.DozenPrice, p.CreatedAt,
	)
	if err != nil {
		return wrapErr("upsert product", err)
	}
	return nil
}

// GetByID obtiene un producto por ID; nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
	sql, args, err := psql.Select(productColumns...).From("products").Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, wrapErr("build get product", err)
	}
	var row productRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get product", err)
	}
	return row.toEntity(), nil
}

// GetByIDs obtiene los productos existentes entre ids.
func (r *ProductRepo) GetByIDs(ctx context.Context, ids []string) ([]*entity.Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	sql, args, err := psql.Select(productColumns...).From("products").Where(squirrel.Eq{"id": ids}).ToSql()
	if err != nil {
		return nil, wrapErr("build get products", err)
	}
	var rows []productRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, wrapErr("get products", err)
	}
	out := make([]*entity.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

// LeastMoved productos ordenados por número de movimientos ascendente (incluye los que no tienen).
func (r *ProductRepo) LeastMoved(ctx context.Context, limit int) ([]repository.ProductMovementCount, error) {
	var rows []struct {
		ProductID string `db:"product_id"`
		Name      string `db:"name"`
		Movements int64  `db:"movements"`
	}
	err := pgxscan.Select(ctx, r.q, &rows, `
		SELECT p.id AS product_id, p.name, COUNT(m.id) AS movements
		FROM products p
		LEFT JOIN inventory_movements m ON m.product_id = p.id
		GROUP BY p.id, p.name
		ORDER BY movements ASC, p.name ASC, p.id ASC
		LIMIT $1`, limit)
	if err != nil {
		return nil, wrapErr("least moved products", err)
	}
	out := make([]repository.ProductMovementCount, 0, len(rows))
	for _, row := range rows {
		out = append(out, repository.ProductMovementCount{ProductID: row.ProductID, Name: row.Name, Movements: row.Movements})
	}
	return out, nil
}
