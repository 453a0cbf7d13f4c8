package postgres

import (
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-tienda/internal/domain"
	"github.com/jhoicas/inventario-tienda/internal/domain/entity"
	"github.com/jhoicas/inventario-tienda/internal/domain/repository"
)

func TestWrapErr_CodigosPostgres(t *testing.T) {
	cases := map[string]error{
		codeLockNotAvailable: domain.ErrBusy,
		codeDeadlockDetected: domain.ErrBusy,
		codeUniqueViolation:  domain.ErrDuplicate,
	}
	for code, want := range cases {
		err := wrapErr("op", &pgconn.PgError{Code: code, Message: "x"})
		assert.ErrorIs(t, err, want, code)
	}

	other := errors.New("conexión cerrada")
	err := wrapErr("op", other)
	assert.ErrorIs(t, err, other)
	assert.False(t, domain.IsRetryable(err))
}

func TestApplyMovementFilter(t *testing.T) {
	from := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(24 * time.Hour)
	qb := applyMovementFilter(psql.Select("id").From("inventory_movements"), repository.MovementFilter{
		ProductID:  "camisa",
		LocationID: "bodega",
		Kind:       entity.MovementKindExit,
		TransferID: "tr-1",
		From:       &from,
		To:         &to,
	})

	sql, args, err := qb.ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT id FROM inventory_movements WHERE product_id = $1 AND (source_id = $2 OR destination_id = $3) AND kind = $4 AND transfer_id = $5 AND created_at >= $6 AND created_at <= $7",
		sql)
	assert.Equal(t, []any{"camisa", "bodega", "bodega", "exit", "tr-1", from, to}, args)
}

func TestApplyMovementFilter_Vacio(t *testing.T) {
	sql, args, err := applyMovementFilter(psql.Select("id").From("inventory_movements"), repository.MovementFilter{}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM inventory_movements", sql)
	assert.Empty(t, args)
}

func TestMovementRow_ToEntity(t *testing.T) {
	reason, src := "sale", "piso"
	row := movementRow{
		ID:        "m1",
		Seq:       7,
		ProductID: "camisa",
		Kind:      "exit",
		Reason:    &reason,
		Quantity:  2,
		SourceID:  &src,
		Balance:   5,
	}
	m := row.toEntity()
	assert.Equal(t, entity.ReasonSale, m.Reason)
	assert.Equal(t, entity.RoleStandalone, m.Role)
	assert.Equal(t, "piso", m.LocationID())
	assert.Empty(t, m.DestinationID)
	assert.Equal(t, int64(7), m.Seq)
}

func TestLockTimeoutStatement_RedondeaHaciaArriba(t *testing.T) {
	cases := map[time.Duration]string{
		time.Nanosecond:         "SET LOCAL lock_timeout = '1ms'",
		500 * time.Microsecond:  "SET LOCAL lock_timeout = '1ms'",
		time.Millisecond:        "SET LOCAL lock_timeout = '1ms'",
		1500 * time.Microsecond: "SET LOCAL lock_timeout = '2ms'",
		5 * time.Second:         "SET LOCAL lock_timeout = '5000ms'",
		DefaultLockTimeout + 1:  "SET LOCAL lock_timeout = '5001ms'",
	}
	for d, want := range cases {
		assert.Equal(t, want, lockTimeoutStatement(d), d.String())
	}
}
