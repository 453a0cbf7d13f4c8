package postgres

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
)

// Filas de lectura para pgxscan. Las columnas opcionales llegan como *string.

type stockRow struct {
	ProductID  string    `db:"product_id"`
	LocationID string    `db:"location_id"`
	Quantity   int64     `db:"quantity"`
	UpdatedAt  time.Time `db:"updated_at"`
}

func (r stockRow) toEntity() entity.StockEntry {
	return entity.StockEntry{
		ProductID:  r.ProductID,
		LocationID: r.LocationID,
		Quantity:   r.Quantity,
		UpdatedAt:  r.UpdatedAt,
	}
}

type movementRow struct {
	ID            string    `db:"id"`
	Seq           int64     `db:"seq"`
	ProductID     string    `db:"product_id"`
	Kind          string    `db:"kind"`
	Reason        *string   `db:"reason"`
	Role          *string   `db:"role"`
	Quantity      int64     `db:"quantity"`
	SourceID      *string   `db:"source_id"`
	DestinationID *string   `db:"destination_id"`
	Balance       int64     `db:"balance"`
	TransferID    *string   `db:"transfer_id"`
	ActorID       *string   `db:"actor_id"`
	CreatedAt     time.Time `db:"created_at"`
}

var movementColumns = []string{
	"id", "seq", "product_id", "kind", "reason", "role", "quantity",
	"source_id", "destination_id", "balance", "transfer_id", "actor_id", "created_at",
}

func (r movementRow) toEntity() *entity.InventoryMovement {
	return &entity.InventoryMovement{
		ID:            r.ID,
		Seq:           r.Seq,
		ProductID:     r.ProductID,
		Kind:          entity.MovementKind(r.Kind),
		Reason:        entity.MovementReason(deref(r.Reason)),
		Role:          entity.MovementRole(deref(r.Role)),
		Quantity:      r.Quantity,
		SourceID:      deref(r.SourceID),
		DestinationID: deref(r.DestinationID),
		Balance:       r.Balance,
		TransferID:    deref(r.TransferID),
		ActorID:       deref(r.ActorID),
		CreatedAt:     r.CreatedAt,
	}
}

type transferRow struct {
	ID            string    `db:"id"`
	ProductID     string    `db:"product_id"`
	Quantity      int64     `db:"quantity"`
	SourceID      string    `db:"source_id"`
	DestinationID string    `db:"destination_id"`
	ActorID       *string   `db:"actor_id"`
	CreatedAt     time.Time `db:"created_at"`
}

type productRow struct {
	ID             string          `db:"id"`
	SKU            string          `db:"sku"`
	Name           string          `db:"name"`
	RetailPrice    decimal.Decimal `db:"retail_price"`
	WholesalePrice decimal.Decimal `db:"wholesale_price"`
	DozenPrice     decimal.Decimal `db:"dozen_price"`
	CreatedAt      time.Time       `db:"created_at"`
}

func (r productRow) toEntity() *entity.Product {
	return &entity.Product{
		ID:             r.ID,
		SKU:            r.SKU,
		Name:           r.Name,
		RetailPrice:    r.RetailPrice,
		WholesalePrice: r.WholesalePrice,
		DozenPrice:     r.DozenPrice,
		CreatedAt:      r.CreatedAt,
	}
}

type locationRow struct {
	ID      string `db:"id"`
	Name    string `db:"name"`
	Address string `db:"address"`
}
