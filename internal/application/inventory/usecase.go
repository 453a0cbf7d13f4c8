package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	inv "github.com/jhoicas/inventario-tienda/internal/domain/inventory"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
	"github.com/jhoicas/inventario-tienda/pkg/logger"
)

var tracer = otel.Tracer("inventario-tienda/inventory")

// MovementEngine registra movimientos de inventario de forma transaccional
// (entrada, salida, ajuste y traslado) con bloqueo de fila y Commit/Rollback.
type MovementEngine struct {
	txRunner     TxRunner
	productRepo  repository.ProductRepository
	locationRepo repository.LocationRepository
	cache        StockCache
	log          zerolog.Logger
	now          func() time.Time
}

// Option configura dependencias opcionales del motor.
type Option func(*MovementEngine)

// WithStockCache invalida la caché de lectura después de cada commit.
func WithStockCache(c StockCache) Option {
	return func(e *MovementEngine) { e.cache = c }
}

// WithLogger asigna el logger de la aplicación.
func WithLogger(l *logger.Logger) Option {
	return func(e *MovementEngine) { e.log = l.Component("inventory") }
}

// WithClock reemplaza el reloj (pruebas).
func WithClock(now func() time.Time) Option {
	return func(e *MovementEngine) { e.now = now }
}

// NewMovementEngine construye el motor.
func NewMovementEngine(
	txRunner TxRunner,
	productRepo repository.ProductRepository,
	locationRepo repository.LocationRepository,
	opts ...Option,
) *MovementEngine {
	e := &MovementEngine{
		txRunner:     txRunner,
		productRepo:  productRepo,
		locationRepo: locationRepo,
		log:          zerolog.Nop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MovementInput entrada para registrar un movimiento.
// Kind o Reason: si viene Reason, el tipo se deriva de él.
// Entrada y ajuste requieren DestinationID; salida requiere SourceID; traslado ambos.
type MovementInput struct {
	ProductID     string
	Quantity      any // se convierte con ParseQuantity
	Kind          entity.MovementKind
	Reason        string
	SourceID      string
	DestinationID string
	ActorID       string
	TransferID    string // solo traslados: ID asignado por el llamador
}

// MovementResult existencias resultantes y registros creados.
// En traslados, Stock es el destino y Source el origen.
type MovementResult struct {
	Kind      entity.MovementKind
	Stock     *entity.StockEntry
	Source    *entity.StockEntry
	Movements []*entity.InventoryMovement
	Transfer  *entity.Transfer
}

// Apply valida la solicitud, abre una transacción, bloquea la fila afectada, aplica el cambio
// y registra el movimiento. Cualquier error deja existencias e historial sin cambios.
func (e *MovementEngine) Apply(ctx context.Context, in MovementInput) (res *MovementResult, err error) {
	ctx, span := tracer.Start(ctx, "inventory.Apply")
	defer func() { endSpan(span, err) }()

	qty, err := inv.ParseQuantity(in.Quantity)
	if err != nil {
		return nil, err
	}
	kind, reason, err := inv.ResolveKind(string(in.Kind), in.Reason)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.String("inventory.kind", string(kind)),
		attribute.String("inventory.product_id", in.ProductID),
	)

	if kind == entity.MovementKindTransfer {
		return e.applyTransfer(ctx, TransferInput{
			ProductID:     in.ProductID,
			Quantity:      qty,
			SourceID:      in.SourceID,
			DestinationID: in.DestinationID,
			ActorID:       in.ActorID,
			TransferID:    in.TransferID,
		})
	}
	if in.TransferID != "" {
		// Un traslado agrupa exactamente dos movimientos creados por el coordinador.
		return nil, domain.ErrInvalidInput
	}

	var locationID string
	switch kind {
	case entity.MovementKindEntry, entity.MovementKindAdjustment:
		locationID = in.DestinationID
	case entity.MovementKindExit:
		locationID = in.SourceID
	}
	if locationID == "" {
		return nil, domain.ErrMissingLocation
	}
	if err := e.checkReferences(ctx, in.ProductID, locationID); err != nil {
		return nil, err
	}

	mov := &entity.InventoryMovement{
		ProductID: in.ProductID,
		Kind:      kind,
		Reason:    reason,
		Quantity:  qty,
		ActorID:   in.ActorID,
	}
	var stock *entity.StockEntry

	err = e.txRunner.Run(ctx, func(
		stockRepo repository.StockRepository,
		movRepo repository.InventoryMovementRepository,
		_ repository.TransferRepository,
	) error {
		ledger := newStockLedger(stockRepo, e.now)
		var err error
		switch kind {
		case entity.MovementKindEntry:
			if stock, err = ledger.getOrCreate(ctx, in.ProductID, locationID); err != nil {
				return err
			}
			if err = ledger.mutate(ctx, stock, inv.Delta(qty)); err != nil {
				return err
			}
			mov.DestinationID = locationID
		case entity.MovementKindExit:
			if stock, err = ledger.lock(ctx, in.ProductID, locationID); err != nil {
				return err
			}
			if stock == nil || stock.Quantity < qty {
				return domain.ErrInsufficientStock
			}
			if err = ledger.mutate(ctx, stock, inv.Delta(-qty)); err != nil {
				return err
			}
			mov.SourceID = locationID
		case entity.MovementKindAdjustment:
			if stock, err = ledger.getOrCreate(ctx, in.ProductID, locationID); err != nil {
				return err
			}
			if err = ledger.mutate(ctx, stock, inv.AbsoluteSet(qty)); err != nil {
				return err
			}
			mov.DestinationID = locationID
		default:
			return domain.ErrInvalidKind
		}
		mov.Balance = stock.Quantity
		_, err = newMovementRecorder(movRepo).append(ctx, mov)
		return err
	})
	if err != nil {
		e.logFailure(err, kind, in.ProductID)
		return nil, err
	}

	e.invalidate(ctx, stock.Key())
	e.log.Info().
		Str("movement_id", mov.ID).
		Str("kind", string(kind)).
		Str("reason", string(reason)).
		Str("product_id", in.ProductID).
		Str("location_id", locationID).
		Int64("quantity", qty).
		Int64("balance", stock.Quantity).
		Str("actor_id", in.ActorID).
		Msg("movimiento registrado")

	return &MovementResult{
		Kind:      kind,
		Stock:     stock,
		Movements: []*entity.InventoryMovement{mov},
	}, nil
}

// checkReferences valida que producto y ubicaciones existan.
func (e *MovementEngine) checkReferences(ctx context.Context, productID string, locationIDs ...string) error {
	if productID == "" {
		return domain.ErrInvalidInput
	}
	product, err := e.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	for _, id := range locationIDs {
		loc, err := e.locationRepo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if loc == nil {
			return domain.ErrNotFound
		}
	}
	return nil
}

// invalidate borra de la caché las existencias tocadas. Un fallo aquí no revierte el commit.
func (e *MovementEngine) invalidate(ctx context.Context, keys ...entity.StockKey) {
	if e.cache == nil {
		return
	}
	if err := e.cache.Invalidate(ctx, keys...); err != nil {
		e.log.Warn().Err(err).Msg("invalidar caché de existencias")
	}
}

func (e *MovementEngine) logFailure(err error, kind entity.MovementKind, productID string) {
	ev := e.log.Debug()
	switch {
	case errors.Is(err, domain.ErrBusy):
		ev = e.log.Warn()
	case !isBusinessError(err):
		ev = e.log.Error()
	}
	ev.Err(err).Str("kind", string(kind)).Str("product_id", productID).Msg("movimiento rechazado")
}

func isBusinessError(err error) bool {
	for _, target := range []error{
		domain.ErrInvalidQuantity, domain.ErrInsufficientStock, domain.ErrUnknownReason,
		domain.ErrInvalidKind, domain.ErrInvalidTransfer, domain.ErrMissingLocation,
		domain.ErrNotFound, domain.ErrDuplicate, domain.ErrInvalidInput,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
