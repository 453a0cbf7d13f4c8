package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	inv "github.com/jhoicas/inventario-tienda/internal/domain/inventory"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
)

// TransferInput entrada para un traslado entre ubicaciones.
type TransferInput struct {
	ProductID     string
	Quantity      int64
	SourceID      string
	DestinationID string
	ActorID       string
	TransferID    string // opcional; si se repite se devuelve ErrDuplicate
}

// Transfer mueve unidades de un producto de origen a destino en una sola transacción.
// Devuelve las existencias resultantes en origen y destino.
func (e *MovementEngine) Transfer(ctx context.Context, in TransferInput) (src, dst *entity.StockEntry, err error) {
	ctx, span := tracer.Start(ctx, "inventory.Transfer")
	defer func() { endSpan(span, err) }()
	span.SetAttributes(transferAttrs(in)...)

	res, err := e.applyTransfer(ctx, in)
	if err != nil {
		return nil, nil, err
	}
	return res.Source, res.Stock, nil
}

// applyTransfer registra salida en origen y entrada en destino enlazadas al mismo traslado.
// Las filas se bloquean en orden ascendente de ubicación, sin importar cuál es el origen,
// para que dos traslados opuestos concurrentes no formen un ciclo de espera.
func (e *MovementEngine) applyTransfer(ctx context.Context, in TransferInput) (*MovementResult, error) {
	if in.Quantity <= 0 {
		return nil, domain.ErrInvalidQuantity
	}
	if in.SourceID == "" || in.DestinationID == "" {
		return nil, domain.ErrMissingLocation
	}
	if in.SourceID == in.DestinationID {
		return nil, domain.ErrInvalidTransfer
	}
	if err := e.checkReferences(ctx, in.ProductID, in.SourceID, in.DestinationID); err != nil {
		return nil, err
	}

	transfer := &entity.Transfer{
		ID:            in.TransferID,
		ProductID:     in.ProductID,
		Quantity:      in.Quantity,
		SourceID:      in.SourceID,
		DestinationID: in.DestinationID,
		ActorID:       in.ActorID,
	}
	if transfer.ID == "" {
		transfer.ID = uuid.New().String()
	}

	var (
		src, dst      *entity.StockEntry
		debit, credit *entity.InventoryMovement
	)
	err := e.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		movRepo repository.InventoryMovementRepository,
		transferRepo repository.TransferRepository,
	) error {
		ledger := newStockLedger(stockRepo, e.now)
		var err error
		if sourceFirst(in.SourceID, in.DestinationID) {
			if src, err = ledger.lock(ctx, in.ProductID, in.SourceID); err != nil {
				return err
			}
			if src == nil {
				return domain.ErrInsufficientStock
			}
			if dst, err = ledger.getOrCreate(ctx, in.ProductID, in.DestinationID); err != nil {
				return err
			}
		} else {
			if dst, err = ledger.getOrCreate(ctx, in.ProductID, in.DestinationID); err != nil {
				return err
			}
			if src, err = ledger.lock(ctx, in.ProductID, in.SourceID); err != nil {
				return err
			}
			if src == nil {
				return domain.ErrInsufficientStock
			}
		}
		if src.Quantity < in.Quantity {
			return domain.ErrInsufficientStock
		}

		transfer.CreatedAt = e.now()
		if err = transferRepo.Create(ctx, transfer); err != nil {
			return err
		}

		recorder := newMovementRecorder(movRepo)
		if err = ledger.mutate(ctx, src, inv.Delta(-in.Quantity)); err != nil {
			return err
		}
		debit, err = recorder.append(ctx, &entity.InventoryMovement{
			ProductID:  in.ProductID,
			Kind:       entity.MovementKindExit,
			Role:       entity.RoleTransferDebit,
			Quantity:   in.Quantity,
			SourceID:   in.SourceID,
			Balance:    src.Quantity,
			TransferID: transfer.ID,
			ActorID:    in.ActorID,
		})
		if err != nil {
			return err
		}

		if err = ledger.mutate(ctx, dst, inv.Delta(in.Quantity)); err != nil {
			return err
		}
		credit, err = recorder.append(ctx, &entity.InventoryMovement{
			ProductID:     in.ProductID,
			Kind:          entity.MovementKindEntry,
			Role:          entity.RoleTransferCredit,
			Quantity:      in.Quantity,
			DestinationID: in.DestinationID,
			Balance:       dst.Quantity,
			TransferID:    transfer.ID,
			ActorID:       in.ActorID,
		})
		return err
	})
	if err != nil {
		e.logFailure(err, entity.MovementKindTransfer, in.ProductID)
		return nil, err
	}

	e.invalidate(ctx, src.Key(), dst.Key())
	e.log.Info().
		Str("transfer_id", transfer.ID).
		Str("product_id", in.ProductID).
		Str("source_id", in.SourceID).
		Str("destination_id", in.DestinationID).
		Int64("quantity", in.Quantity).
		Str("actor_id", in.ActorID).
		Msg("traslado registrado")

	return &MovementResult{
		Kind:      entity.MovementKindTransfer,
		Stock:     dst,
		Source:    src,
		Movements: []*entity.InventoryMovement{debit, credit},
		Transfer:  transfer,
	}, nil
}

// sourceFirst indica si la fila de origen va primero en el orden global de bloqueo.
func sourceFirst(sourceID, destinationID string) bool {
	return strings.Compare(sourceID, destinationID) < 0
}

func transferAttrs(in TransferInput) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("inventory.product_id", in.ProductID),
		attribute.String("inventory.source_id", in.SourceID),
		attribute.String("inventory.destination_id", in.DestinationID),
	}
}
