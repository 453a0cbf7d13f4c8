package postgres

import (
	"context"
	"errors"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
)

var _ repository.TransferRepository = (*TransferRepo)(nil)

// TransferRepo registro maestro de traslados.
type TransferRepo struct {
	q Querier
}

// NewTransferRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTransferRepository(q Querier) *TransferRepo {
	return &TransferRepo{q: q}
}

// Create inserta el traslado; un ID repetido devuelve domain.ErrDuplicate.
func (r *TransferRepo) Create(ctx context.Context, t *entity.Transfer) error {
	query := `
		INSERT INTO inventory_transfers (id, product_id, quantity, source_id, destination_id, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.q.Exec(ctx, query,
		t.ID, t.ProductID, t.Quantity, t.SourceID, t.DestinationID, nullString(t.ActorID), t.CreatedAt,
	)
	if err != nil {
		return wrapErr("create transfer", err)
	}
	return nil
}

// GetByID obtiene un traslado por ID.
func (r *TransferRepo) GetByID(ctx context.Context, id string) (*entity.Transfer, error) {
	var row transferRow
	err := pgxscan.Get(ctx, r.q, &row, `
		SELECT id, product_id, quantity, source_id, destination_id, actor_id, created_at
		FROM inventory_transfers WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, wrapErr("get transfer", err)
	}
	return &entity.Transfer{
		ID:            row.ID,
		ProductID:     row.ProductID,
		Quantity:      row.Quantity,
		SourceID:      row.SourceID,
		DestinationID: row.DestinationID,
		ActorID:       deref(row.ActorID),
		CreatedAt:     row.CreatedAt,
	}, nil
}
