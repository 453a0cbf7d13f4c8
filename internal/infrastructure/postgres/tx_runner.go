package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/inventario-tienda/internal/application/inventory"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
)

var tracer = otel.Tracer("inventario-tienda/postgres")

// Ensure TxRunner implements inventory.TxRunner.
var _ inventory.TxRunner = (*TxRunner)(nil)

// DefaultLockTimeout espera máxima por un bloqueo de fila dentro de la transacción.
const DefaultLockTimeout = 5 * time.Second

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL (READ COMMITTED + SELECT FOR UPDATE).
type TxRunner struct {
	pool        *pgxpool.Pool
	lockTimeout time.Duration
}

// NewTxRunner construye el runner con el pool. lockTimeout <= 0 usa DefaultLockTimeout.
func NewTxRunner(pool *pgxpool.Pool, lockTimeout time.Duration) *TxRunner {
	if lockTimeout <= 0 {
		lockTimeout = DefaultLockTimeout
	}
	return &TxRunner{pool: pool, lockTimeout: lockTimeout}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
// Si un bloqueo no se obtiene dentro de lockTimeout el error es domain.ErrBusy.
func (r *TxRunner) Run(ctx context.Context, fn func(
	stockRepo repository.StockRepository,
	movRepo repository.InventoryMovementRepository,
	transferRepo repository.TransferRepository,
) error) (err error) {
	ctx, span := tracer.Start(ctx, "transaction",
		trace.WithAttributes(attribute.String("tx.isolation", string(pgx.ReadCommitted))))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted, AccessMode: pgx.ReadWrite})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	// Rollback con contexto propio: debe completarse aunque ctx se haya cancelado.
	defer func() { _ = tx.Rollback(context.Background()) }()

	if _, err := tx.Exec(ctx, lockTimeoutStatement(r.lockTimeout)); err != nil {
		return fmt.Errorf("set lock_timeout: %w", err)
	}

	if err := fn(NewStockRepository(tx), NewInventoryMovementRepository(tx), NewTransferRepository(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return wrapErr("commit transaction", err)
	}
	return nil
}

// lockTimeoutStatement redondea hacia arriba al milisegundo: '0ms' en PostgreSQL desactiva el límite.
func lockTimeoutStatement(d time.Duration) string {
	ms := max((d+time.Millisecond-1)/time.Millisecond, 1)
	return fmt.Sprintf("SET LOCAL lock_timeout = '%dms'", int64(ms))
}
