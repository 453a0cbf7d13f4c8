package inventory

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
)

// Alias en español del vocabulario original de la tienda (ya sin acentos).
var reasonAliases = map[string]entity.MovementReason{
	"devolucion":       entity.ReasonReturnedByCustomer,
	"compra":           entity.ReasonPurchasedFromSupplier,
	"reabastecimiento": entity.ReasonInternalRestock,
	"nuevo":            entity.ReasonNewProduct,
	"venta":            entity.ReasonSale,
	"dano":             entity.ReasonDamage,
	"perdida":          entity.ReasonLoss,
	"correccion":       entity.ReasonCorrection,
	"conteo":           entity.ReasonPhysicalCount,
}

var kindAliases = map[string]entity.MovementKind{
	"entrada":       entity.MovementKindEntry,
	"salida":        entity.MovementKindExit,
	"ajuste":        entity.MovementKindAdjustment,
	"transferencia": entity.MovementKindTransfer,
	"traslado":      entity.MovementKindTransfer,
}

// Reasons devuelve el vocabulario completo de motivos.
func Reasons() []entity.MovementReason {
	return []entity.MovementReason{
		entity.ReasonReturnedByCustomer,
		entity.ReasonPurchasedFromSupplier,
		entity.ReasonInternalRestock,
		entity.ReasonNewProduct,
		entity.ReasonSale,
		entity.ReasonDamage,
		entity.ReasonLoss,
		entity.ReasonCorrection,
		entity.ReasonPhysicalCount,
	}
}

// Classify devuelve el tipo de movimiento que corresponde al motivo.
func Classify(reason entity.MovementReason) (entity.MovementKind, error) {
	switch reason {
	case entity.ReasonReturnedByCustomer, entity.ReasonPurchasedFromSupplier,
		entity.ReasonInternalRestock, entity.ReasonNewProduct:
		return entity.MovementKindEntry, nil
	case entity.ReasonSale, entity.ReasonDamage, entity.ReasonLoss:
		return entity.MovementKindExit, nil
	case entity.ReasonCorrection, entity.ReasonPhysicalCount:
		return entity.MovementKindAdjustment, nil
	}
	return "", domain.ErrUnknownReason
}

// ParseReason normaliza un motivo recibido de un formulario o API.
// Acepta el vocabulario canónico y los alias en español, sin distinguir mayúsculas ni acentos.
func ParseReason(s string) (entity.MovementReason, error) {
	key := normalize(s)
	if key == "" {
		return "", domain.ErrUnknownReason
	}
	if r, ok := reasonAliases[key]; ok {
		return r, nil
	}
	r := entity.MovementReason(key)
	if _, err := Classify(r); err != nil {
		return "", err
	}
	return r, nil
}

// ParseKind normaliza un tipo de movimiento explícito (incluye "transfer").
func ParseKind(s string) (entity.MovementKind, error) {
	key := normalize(s)
	if k, ok := kindAliases[key]; ok {
		return k, nil
	}
	k := entity.MovementKind(key)
	if k.Valid() || k == entity.MovementKindTransfer {
		return k, nil
	}
	return "", domain.ErrInvalidKind
}

// ResolveKind decide el tipo final de un movimiento. Si hay motivo, el tipo se deriva de él
// e ignora el tipo enviado por el llamador.
func ResolveKind(kind, reason string) (entity.MovementKind, entity.MovementReason, error) {
	if strings.TrimSpace(reason) != "" {
		r, err := ParseReason(reason)
		if err != nil {
			return "", "", err
		}
		k, err := Classify(r)
		if err != nil {
			return "", "", err
		}
		return k, r, nil
	}
	k, err := ParseKind(kind)
	if err != nil {
		return "", "", err
	}
	return k, "", nil
}

func normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	folded = strings.ToLower(strings.TrimSpace(folded))
	return strings.NewReplacer("-", "_", " ", "_").Replace(folded)
}
