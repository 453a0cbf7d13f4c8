package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/inventario-tienda/internal/domain"
)

// Querier lo cumplen *pgxpool.Pool y pgx.Tx; los repositorios funcionan dentro o fuera de una tx.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// psql constructor de consultas con placeholders $n.
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// SQLSTATE relevantes.
const (
	codeUniqueViolation  = "23505"
	codeLockNotAvailable = "55P03"
	codeDeadlockDetected = "40P01"
)

// wrapErr traduce errores de PostgreSQL a errores de dominio y agrega la operación.
// lock_timeout y deadlock se reportan como domain.ErrBusy.
func wrapErr(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeLockNotAvailable, codeDeadlockDetected:
			return fmt.Errorf("%s: %w (%s)", op, domain.ErrBusy, pgErr.Message)
		case codeUniqueViolation:
			return fmt.Errorf("%s: %w", op, domain.ErrDuplicate)
		}
	}
	return fmt.Errorf("%s: %w", op, err)
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
