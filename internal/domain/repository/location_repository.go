package repository

import (
	"context"

	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
)

// LocationRepository acceso de solo lectura a ubicaciones.
type LocationRepository interface {
	// GetByID devuelve nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	List(ctx context.Context) ([]*entity.Location, error)
}
