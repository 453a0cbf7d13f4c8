package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	inv "github.com/jhoicas/inventario-tienda/internal/domain/inventory"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
)

// stockLedger es la única vía de escritura sobre las existencias.
// Solo vive dentro de TxRunner.Run, por lo que los bloqueos que toma duran toda la transacción.
type stockLedger struct {
	repo repository.StockRepository
	now  func() time.Time
}

func newStockLedger(repo repository.StockRepository, now func() time.Time) *stockLedger {
	return &stockLedger{repo: repo, now: now}
}

// getOrCreate devuelve la fila bloqueada, creándola con cantidad 0 si no existía.
func (l *stockLedger) getOrCreate(ctx context.Context, productID, locationID string) (*entity.StockEntry, error) {
	return l.repo.GetOrCreateForUpdate(ctx, productID, locationID)
}

// lock bloquea una fila existente; nil si no existe.
func (l *stockLedger) lock(ctx context.Context, productID, locationID string) (*entity.StockEntry, error) {
	return l.repo.GetForUpdate(ctx, productID, locationID)
}

// mutate aplica un Delta o un AbsoluteSet y persiste la fila.
func (l *stockLedger) mutate(ctx context.Context, entry *entity.StockEntry, m inv.Mutation) error {
	if err := inv.Apply(entry, m); err != nil {
		return err
	}
	entry.UpdatedAt = l.now()
	return l.repo.Save(ctx, entry)
}
