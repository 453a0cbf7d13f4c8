package entity

import "time"

// MovementKind categoría estructural de un movimiento.
type MovementKind string

// Tipos de movimiento de inventario.
const (
	MovementKindEntry      MovementKind = "entry"      // entrada
	MovementKindExit       MovementKind = "exit"       // salida
	MovementKindAdjustment MovementKind = "adjustment" // ajuste (fija el total)
	// MovementKindTransfer solo es válido en solicitudes; se registra como salida + entrada.
	MovementKindTransfer MovementKind = "transfer"
)

// Valid indica si el tipo puede almacenarse en un registro de movimiento.
func (k MovementKind) Valid() bool {
	switch k {
	case MovementKindEntry, MovementKindExit, MovementKindAdjustment:
		return true
	}
	return false
}

// MovementReason motivo de negocio de un movimiento (vocabulario cerrado).
type MovementReason string

// Motivos posibles.
const (
	ReasonReturnedByCustomer    MovementReason = "returned_by_customer"
	ReasonPurchasedFromSupplier MovementReason = "purchased_from_supplier"
	ReasonInternalRestock       MovementReason = "internal_restock"
	ReasonNewProduct            MovementReason = "new_product"

	ReasonSale   MovementReason = "sale"
	ReasonDamage MovementReason = "damage"
	ReasonLoss   MovementReason = "loss"

	ReasonCorrection    MovementReason = "correction"
	ReasonPhysicalCount MovementReason = "physical_count"
)

// MovementRole papel del movimiento dentro de un traslado.
type MovementRole string

const (
	RoleStandalone     MovementRole = ""
	RoleTransferDebit  MovementRole = "transfer_debit"
	RoleTransferCredit MovementRole = "transfer_credit"
)

// InventoryMovement registro inmutable de auditoría para cada cambio de existencias.
type InventoryMovement struct {
	ID            string
	Seq           int64 // asignado por el almacén; crece con cada registro
	ProductID     string
	Kind          MovementKind
	Reason        MovementReason // vacío si se indicó el tipo sin motivo
	Role          MovementRole
	Quantity      int64 // siempre positiva; en ajustes es el nuevo total
	SourceID      string
	DestinationID string
	Balance       int64 // existencia en la ubicación afectada después del movimiento
	TransferID    string
	ActorID       string
	CreatedAt     time.Time
}

// LocationID devuelve la ubicación cuya existencia cambió con el movimiento.
func (m InventoryMovement) LocationID() string {
	if m.Kind == MovementKindExit {
		return m.SourceID
	}
	return m.DestinationID
}
