package repository

import (
	"context"

	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
)

// TransferRepository persiste el registro maestro de traslados.
type TransferRepository interface {
	// Create devuelve domain.ErrDuplicate si el ID ya existe.
	Create(ctx context.Context, transfer *entity.Transfer) error
	GetByID(ctx context.Context, id string) (*entity.Transfer, error)
}
