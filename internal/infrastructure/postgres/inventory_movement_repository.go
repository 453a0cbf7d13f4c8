package postgres

import (
	"context"
	"errors"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste un movimiento; la base asigna seq y created_at.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	query := `
		INSERT INTO inventory_movements
			(id, product_id, kind, reason, role, quantity, source_id, destination_id, balance, transfer_id, actor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING seq, created_at`
	err := r.q.QueryRow(ctx, query,
		m.ID, m.ProductID, string(m.Kind), nullString(string(m.Reason)), nullString(string(m.Role)),
		m.Quantity, nullString(m.SourceID), nullString(m.DestinationID), m.Balance,
		nullString(m.TransferID), nullString(m.ActorID),
	).Scan(&m.Seq, &m.CreatedAt)
	if err != nil {
		return wrapErr("create inventory movement", err)
	}
	return nil
}

// GetByID obtiene un movimiento por ID.
func (r *InventoryMovementRepo) GetByID(ctx context.Context, id string) (*entity.InventoryMovement, error) {
	sql, args, err := psql.Select(movementColumns...).From("inventory_movements").
		Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, wrapErr("build get movement", err)
	}
	var row movementRow
	if err := pgxscan.Get(ctx, r.q, &row, sql, args...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, wrapErr("get movement", err)
	}
	return row.toEntity(), nil
}

// ListPage lista movimientos del más reciente al más antiguo con paginación por seq.
func (r *InventoryMovementRepo) ListPage(ctx context.Context, filter repository.MovementFilter, beforeSeq int64, limit int) ([]*entity.InventoryMovement, error) {
	qb := applyMovementFilter(psql.Select(movementColumns...).From("inventory_movements"), filter).
		OrderBy("seq DESC").
		Limit(uint64(limit))
	if beforeSeq > 0 {
		qb = qb.Where(squirrel.Lt{"seq": beforeSeq})
	}
	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, wrapErr("build list movements", err)
	}
	var rows []movementRow
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, wrapErr("list movements", err)
	}
	out := make([]*entity.InventoryMovement, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toEntity())
	}
	return out, nil
}

// Totals agrupa unidades y número de movimientos por tipo.
func (r *InventoryMovementRepo) Totals(ctx context.Context, filter repository.MovementFilter) ([]repository.KindTotal, error) {
	qb := applyMovementFilter(
		psql.Select("kind", "COALESCE(SUM(quantity), 0) AS units", "COUNT(*) AS count").From("inventory_movements"),
		filter,
	).GroupBy("kind").
		OrderBy("CASE kind WHEN 'entry' THEN 1 WHEN 'exit' THEN 2 ELSE 3 END")
	sql, args, err := qb.ToSql()
	if err != nil {
		return nil, wrapErr("build movement totals", err)
	}
	var rows []struct {
		Kind  string `db:"kind"`
		Units int64  `db:"units"`
		Count int64  `db:"count"`
	}
	if err := pgxscan.Select(ctx, r.q, &rows, sql, args...); err != nil {
		return nil, wrapErr("movement totals", err)
	}
	out := make([]repository.KindTotal, 0, len(rows))
	for _, row := range rows {
		out = append(out, repository.KindTotal{Kind: entity.MovementKind(row.Kind), Units: row.Units, Count: row.Count})
	}
	return out, nil
}

func applyMovementFilter(qb squirrel.SelectBuilder, f repository.MovementFilter) squirrel.SelectBuilder {
	if f.ProductID != "" {
		qb = qb.Where(squirrel.Eq{"product_id": f.ProductID})
	}
	if f.LocationID != "" {
		qb = qb.Where(squirrel.Or{
			squirrel.Eq{"source_id": f.LocationID},
			squirrel.Eq{"destination_id": f.LocationID},
		})
	}
	if f.Kind != "" {
		qb = qb.Where(squirrel.Eq{"kind": string(f.Kind)})
	}
	if f.TransferID != "" {
		qb = qb.Where(squirrel.Eq{"transfer_id": f.TransferID})
	}
	if f.From != nil {
		qb = qb.Where(squirrel.GtOrEq{"created_at": *f.From})
	}
	if f.To != nil {
		qb = qb.Where(squirrel.LtOrEq{"created_at": *f.To})
	}
	return qb
}
