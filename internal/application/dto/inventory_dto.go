package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/inventory/movements.
// Si viene reason, el tipo se deriva de él e ignora type.
type RegisterMovementRequest struct {
	ProductID     string `json:"product_id"`
	Quantity      any    `json:"quantity"` // número o cadena numérica
	Type          string `json:"type,omitempty"`
	Reason        string `json:"reason,omitempty"`
	SourceID      string `json:"source_id,omitempty"`
	DestinationID string `json:"destination_id,omitempty"`
	TransferID    string `json:"transfer_id,omitempty"`
}

// TransferRequest body para POST /api/inventory/transfers.
type TransferRequest struct {
	ProductID     string `json:"product_id"`
	Quantity      any    `json:"quantity"`
	SourceID      string `json:"source_id"`
	DestinationID string `json:"destination_id"`
	TransferID    string `json:"transfer_id,omitempty"`
}

// StockDTO existencia de un producto en una ubicación.
type StockDTO struct {
	ProductID  string    `json:"product_id"`
	LocationID string    `json:"location_id"`
	Quantity   int64     `json:"quantity"`
	UpdatedAt  time.Time `json:"updated_at,omitempty"`
}

// MovementDTO registro del historial.
type MovementDTO struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	Kind          string    `json:"kind"`
	Reason        string    `json:"reason,omitempty"`
	Role          string    `json:"role,omitempty"`
	Quantity      int64     `json:"quantity"`
	SourceID      string    `json:"source_id,omitempty"`
	DestinationID string    `json:"destination_id,omitempty"`
	LocationID    string    `json:"location_id"` // ubicación cuyo saldo es Balance
	Balance       int64     `json:"balance"`
	TransferID    string    `json:"transfer_id,omitempty"`
	ActorID       string    `json:"actor_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// MovementResponse respuesta de POST /api/inventory/movements.
// En traslados Stock es el destino y Source el origen.
type MovementResponse struct {
	Kind       string        `json:"kind"`
	Stock      StockDTO      `json:"stock"`
	Source     *StockDTO     `json:"source,omitempty"`
	TransferID string        `json:"transfer_id,omitempty"`
	Movements  []MovementDTO `json:"movements"`
}

// TransferResponse respuesta de POST /api/inventory/transfers.
type TransferResponse struct {
	TransferID  string   `json:"transfer_id,omitempty"`
	Source      StockDTO `json:"source"`
	Destination StockDTO `json:"destination"`
}

// TransferDetailResponse respuesta de GET /api/inventory/transfers/:id.
type TransferDetailResponse struct {
	TransferID    string        `json:"transfer_id"`
	ProductID     string        `json:"product_id"`
	Quantity      int64         `json:"quantity"`
	SourceID      string        `json:"source_id"`
	DestinationID string        `json:"destination_id"`
	ActorID       string        `json:"actor_id,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	Movements     []MovementDTO `json:"movements"` // débito y crédito
}

// LocationDTO ubicación de inventario.
type LocationDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// CurrentStockResponse respuesta de GET /api/inventory/stock/:product_id.
// Con location_id solo se llena Quantity; sin él, Locations.
type CurrentStockResponse struct {
	ProductID  string     `json:"product_id"`
	LocationID string     `json:"location_id,omitempty"`
	Quantity   *int64     `json:"quantity,omitempty"`
	Locations  []StockDTO `json:"locations,omitempty"`
}

// MovementListResponse respuesta de GET /api/inventory/movements.
type MovementListResponse struct {
	Items []MovementDTO `json:"items"`
	Limit int           `json:"limit"`
}

// KindTotalDTO unidades y movimientos por tipo.
type KindTotalDTO struct {
	Kind  string `json:"kind"`
	Units int64  `json:"units"`
	Count int64  `json:"count"`
}

// CriticalStockDTO existencia por debajo del umbral.
type CriticalStockDTO struct {
	ProductID   string `json:"product_id"`
	SKU         string `json:"sku"`
	ProductName string `json:"product_name"`
	LocationID  string `json:"location_id"`
	Quantity    int64  `json:"quantity"`
}

// InventorySummaryDTO respuesta de GET /api/inventory/summary.
type InventorySummaryDTO struct {
	LocationID      string             `json:"location_id,omitempty"`
	TotalUnits      int64              `json:"total_units"`
	ProductCount    int                `json:"product_count"`
	RetailValuation decimal.Decimal    `json:"retail_valuation"` // Σ cantidad × precio detal
	Threshold       int64              `json:"threshold"`
	Critical        []CriticalStockDTO `json:"critical"` // cantidad ascendente
}

// LeastMovedDTO producto con su número de movimientos.
type LeastMovedDTO struct {
	ProductID   string `json:"product_id"`
	ProductName string `json:"product_name"`
	Movements   int64  `json:"movements"`
}
