package repository

import (
	"context"

	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
)

// ProductMovementCount número de movimientos registrados para un producto.
type ProductMovementCount struct {
	ProductID string
	Name      string
	Movements int64
}

// ProductRepository acceso de solo lectura a productos (referencia externa del motor).
type ProductRepository interface {
	// GetByID devuelve nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	GetByIDs(ctx context.Context, ids []string) ([]*entity.Product, error)
	// LeastMoved lista productos por número de movimientos ascendente (incluye los que no tienen).
	LeastMoved(ctx context.Context, limit int) ([]ProductMovementCount, error)
}
