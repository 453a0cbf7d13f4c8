package inventory

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-tienda/internal/domain"
)

// ParseQuantity convierte la cantidad recibida a un entero positivo.
// Acepta enteros, flotantes sin parte decimal, cadenas numéricas, json.Number y decimal.Decimal.
func ParseQuantity(v any) (int64, error) {
	var n int64
	switch q := v.(type) {
	case int:
		n = int64(q)
	case int32:
		n = int64(q)
	case int64:
		n = q
	case uint:
		if uint64(q) > math.MaxInt64 {
			return 0, domain.ErrInvalidQuantity
		}
		n = int64(q)
	case uint32:
		n = int64(q)
	case uint64:
		if q > math.MaxInt64 {
			return 0, domain.ErrInvalidQuantity
		}
		n = int64(q)
	case float64:
		if math.IsNaN(q) || math.IsInf(q, 0) || q != math.Trunc(q) || q >= math.MaxInt64 || q < math.MinInt64 {
			return 0, domain.ErrInvalidQuantity
		}
		n = int64(q)
	case json.Number:
		return ParseQuantity(string(q))
	case decimal.Decimal:
		if !q.IsInteger() || !q.IsPositive() || q.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
			return 0, domain.ErrInvalidQuantity
		}
		n = q.IntPart()
	case string:
		s := strings.TrimSpace(q)
		parsed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			d, derr := decimal.NewFromString(s)
			if derr != nil {
				return 0, domain.ErrInvalidQuantity
			}
			return ParseQuantity(d)
		}
		n = parsed
	default:
		return 0, domain.ErrInvalidQuantity
	}
	if n <= 0 {
		return 0, domain.ErrInvalidQuantity
	}
	return n, nil
}
