package inventory

import (
	"context"

	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Garantiza atomicidad para el motor de inventario: si fn devuelve error no se persiste nada
// y los bloqueos de fila se liberan al terminar, en cualquier caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		stockRepo repository.StockRepository,
		movRepo repository.InventoryMovementRepository,
		transferRepo repository.TransferRepository,
	) error) error
}

// StockCache caché de lectura de existencias por (producto, ubicación).
// Cada llave lleva una generación que Invalidate avanza; Fill solo escribe si la
// generación leída antes de consultar el almacén sigue vigente.
type StockCache interface {
	// Get devuelve ok=false si no hay valor en caché.
	Get(ctx context.Context, key entity.StockKey) (qty int64, ok bool, err error)
	Version(ctx context.Context, key entity.StockKey) (int64, error)
	// Fill devuelve false si hubo una invalidación desde que se leyó version.
	Fill(ctx context.Context, key entity.StockKey, qty, version int64) (bool, error)
	Invalidate(ctx context.Context, keys ...entity.StockKey) error
}
