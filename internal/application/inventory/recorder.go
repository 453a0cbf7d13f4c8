package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
)

// movementRecorder agrega registros inmutables al historial. No valida reglas de negocio
// (eso ocurre antes, en el motor), solo la presencia de las ubicaciones que exige el tipo.
type movementRecorder struct {
	repo repository.InventoryMovementRepository
}

func newMovementRecorder(repo repository.InventoryMovementRepository) *movementRecorder {
	return &movementRecorder{repo: repo}
}

func (r *movementRecorder) append(ctx context.Context, m *entity.InventoryMovement) (*entity.InventoryMovement, error) {
	if !m.Kind.Valid() || m.Quantity <= 0 || m.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	switch m.Kind {
	case entity.MovementKindEntry, entity.MovementKindAdjustment:
		if m.DestinationID == "" {
			return nil, domain.ErrMissingLocation
		}
	case entity.MovementKindExit:
		if m.SourceID == "" {
			return nil, domain.ErrMissingLocation
		}
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	if err := r.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}
