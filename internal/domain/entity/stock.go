package entity

import (
	"strconv"
	"time"
)

// StockEntry representa la existencia actual de un producto en una ubicación.
// Única por (producto, ubicación); se crea en el primer movimiento y nunca se elimina.
type StockEntry struct {
	ProductID  string
	LocationID string
	Quantity   int64
	UpdatedAt  time.Time
}

// StockKey identifica una fila de existencias.
type StockKey struct {
	ProductID  string
	LocationID string
}

// Key devuelve la llave (producto, ubicación) de la entrada.
func (s StockEntry) Key() StockKey {
	return StockKey{ProductID: s.ProductID, LocationID: s.LocationID}
}

// String representación sin ambigüedad: "producto"/"ubicación" entre comillas.
// Dos llaves distintas nunca producen la misma cadena, aunque los IDs contengan separadores.
func (k StockKey) String() string {
	return strconv.Quote(k.ProductID) + "/" + strconv.Quote(k.LocationID)
}
