package postgres

import (
	"context"
	"errors"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo ubicaciones físicas (piso de venta, bodega, anexo).
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

// Upsert inserta o actualiza una ubicación.
func (r *LocationRepo) Upsert(ctx context.Context, l *entity.Location) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO locations (id, name, address) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, address = EXCLUDED.address`,
		l.ID, l.Name, l.Address)
	if err != nil {
		return wrapErr("upsert location", err)
	}
	return nil
}

// GetByID obtiene una ubicación; nil si no existe.
func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	var row locationRow
	err := pgxscan.Get(ctx, r.q, &row, `SELECT id, name, address FROM locations WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrapErr("get location", err)
	}
	return &entity.Location{ID: row.ID, Name: row.Name, Address: row.Address}, nil
}

// List lista las ubicaciones por nombre.
func (r *LocationRepo) List(ctx context.Context) ([]*entity.Location, error) {
	var rows []locationRow
	if err := pgxscan.Select(ctx, r.q, &rows, `SELECT id, name, address FROM locations ORDER BY name, id`); err != nil {
		return nil, wrapErr("list locations", err)
	}
	out := make([]*entity.Location, 0, len(rows))
	for _, row := range rows {
		out = append(out, &entity.Location{ID: row.ID, Name: row.Name, Address: row.Address})
	}
	return out, nil
}
