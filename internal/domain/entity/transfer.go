package entity

import "time"

// Transfer agrupa los dos movimientos (salida en origen, entrada en destino) de un traslado.
type Transfer struct {
	ID            string
	ProductID     string
	Quantity      int64
	SourceID      string
	DestinationID string
	ActorID       string
	CreatedAt     time.Time
}
