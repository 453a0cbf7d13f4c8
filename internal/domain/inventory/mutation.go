package inventory

import (
	"math"

	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
)

// Mutation cambio a aplicar sobre una entrada de existencias: Delta o AbsoluteSet.
// El tipo cerrado impide combinar un delta con un valor absoluto en la misma llamada.
type Mutation interface {
	apply(current int64) (int64, error)
}

// Delta suma (o resta, si es negativo) a la existencia actual.
type Delta int64

func (d Delta) apply(current int64) (int64, error) {
	if d > 0 && current > math.MaxInt64-int64(d) {
		return 0, domain.ErrInvalidQuantity
	}
	next := current + int64(d)
	if next < 0 {
		return 0, domain.ErrInsufficientStock
	}
	return next, nil
}

// AbsoluteSet reemplaza la existencia por un total fijo (ajustes, conteo físico).
type AbsoluteSet int64

func (a AbsoluteSet) apply(int64) (int64, error) {
	if a < 0 {
		return 0, domain.ErrInvalidQuantity
	}
	return int64(a), nil
}

// Apply aplica la mutación a la entrada. Una mutación nil es un error de programación.
func Apply(entry *entity.StockEntry, m Mutation) error {
	if entry == nil || m == nil {
		panic("inventory: Apply requiere una entrada y una mutación")
	}
	next, err := m.apply(entry.Quantity)
	if err != nil {
		return err
	}
	entry.Quantity = next
	return nil
}
