package repository

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
)

// MovementFilter filtros del historial de movimientos. Los campos vacíos no filtran.
type MovementFilter struct {
	ProductID  string
	LocationID string // coincide con origen o destino
	Kind       entity.MovementKind
	TransferID string
	From       *time.Time
	To         *time.Time
}

// KindTotal unidades y número de movimientos de un tipo.
type KindTotal struct {
	Kind  entity.MovementKind
	Units int64
	Count int64
}

// InventoryMovementRepository define el puerto de persistencia para movimientos (solo inserción).
type InventoryMovementRepository interface {
	// Create inserta el movimiento y asigna Seq y CreatedAt.
	Create(ctx context.Context, movement *entity.InventoryMovement) error
	GetByID(ctx context.Context, id string) (*entity.InventoryMovement, error)
	// ListPage devuelve hasta limit movimientos con Seq < beforeSeq (0 = sin cota),
	// del más reciente al más antiguo.
	ListPage(ctx context.Context, filter MovementFilter, beforeSeq int64, limit int) ([]*entity.InventoryMovement, error)
	// Totals agrupa unidades y conteo por tipo.
	Totals(ctx context.Context, filter MovementFilter) ([]KindTotal, error)
}
