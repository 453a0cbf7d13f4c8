package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto de la tienda. Para el motor de inventario es solo una
// referencia externa: nunca se modifica al registrar movimientos.
type Product struct {
	ID             string
	SKU            string // código de barras o clave interna
	Name           string
	RetailPrice    decimal.Decimal // precio menudeo
	WholesalePrice decimal.Decimal // precio mayoreo
	DozenPrice     decimal.Decimal // precio por docena
	CreatedAt      time.Time
}
