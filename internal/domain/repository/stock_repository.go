package repository

import (
	"context"

	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
)

// StockFilter filtros para listar existencias.
type StockFilter struct {
	ProductID  string
	LocationID string
	// BelowQuantity: si no es nil, solo entradas con cantidad estrictamente menor.
	BelowQuantity *int64
}

// StockRepository define el puerto para consultar/actualizar existencias por producto+ubicación.
// Las variantes ForUpdate solo tienen sentido dentro de una transacción (TxRunner): el bloqueo
// de fila se mantiene hasta Commit o Rollback.
type StockRepository interface {
	// Get devuelve nil si la entrada no existe.
	Get(ctx context.Context, productID, locationID string) (*entity.StockEntry, error)
	// GetForUpdate bloquea la fila existente; devuelve nil si no existe.
	GetForUpdate(ctx context.Context, productID, locationID string) (*entity.StockEntry, error)
	// GetOrCreateForUpdate crea la fila con cantidad 0 si no existe y la bloquea.
	GetOrCreateForUpdate(ctx context.Context, productID, locationID string) (*entity.StockEntry, error)
	// Save persiste la cantidad de una fila previamente bloqueada.
	Save(ctx context.Context, entry *entity.StockEntry) error
	List(ctx context.Context, filter StockFilter) ([]entity.StockEntry, error)
}
