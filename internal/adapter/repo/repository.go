package repo

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"bloodbank/internal/domain"
	"bloodbank/internal/infra"
	"bloodbank/internal/sqlinline"
)

// RepositoryPG implements domain.Repository on PostgreSQL. Donations are rows
// joined to donors by foreign key; blood type comes from the donor row.
type RepositoryPG struct {
	sql    infra.SQLExecutor
	logger zerolog.Logger
}

// NewRepository creates a PostgreSQL-backed repository. The underlying pool
// belongs to the caller.
func NewRepository(sql infra.SQLExecutor, logger zerolog.Logger) *RepositoryPG {
	return &RepositoryPG{sql: sql, logger: logger}
}

// EnsureSchema creates tables and the blood type lookup when missing.
func (r *RepositoryPG) EnsureSchema(ctx context.Context) error {
	if _, err := r.sql.Exec(ctx, sqlinline.QSchema); err != nil {
		return storeErr("ensure schema", err)
	}
	return nil
}

// Do runs fn inside a single database transaction.
func (r *RepositoryPG) Do(ctx context.Context, fn func(tx domain.Repository) error) error {
	return r.inTx(ctx, func(tx *RepositoryPG) error {
		return fn(tx)
	})
}

// inTx returns fn's error unchanged. Begin and commit failures become store
// errors.
func (r *RepositoryPG) inTx(ctx context.Context, fn func(tx *RepositoryPG) error) error {
	var fnErr error
	err := r.sql.InTx(ctx, func(exec infra.SQLExecutor) error {
		fnErr = fn(&RepositoryPG{sql: exec, logger: r.logger})
		return fnErr
	})
	if err == nil || (fnErr != nil && err == fnErr) {
		return err
	}
	return storeErr("transaction", err)
}

// Close is a no-op; the pool is closed by whoever opened it.
func (r *RepositoryPG) Close() error { return nil }

// storeErr translates driver failures into the domain taxonomy. Errors that
// already belong to the taxonomy pass through untouched.
func storeErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if isDomainErr(err) {
		return err
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, domain.ErrDuplicateKey)
		case "23503":
			return fmt.Errorf("%s: referenced row missing (%s): %w", op, pgErr.ConstraintName, domain.ErrNotFound)
		case "23514", "22P02", "22003":
			return fmt.Errorf("%s: %w", op, domain.Invalid(pgErr.ConstraintName, pgErr.Message))
		}
	}
	return &domain.StoreError{Op: op, Err: err}
}

func isDomainErr(err error) bool {
	for _, target := range []error{
		domain.ErrNotFound,
		domain.ErrDuplicateKey,
		domain.ErrAlreadyUsed,
		domain.ErrAlreadyFulfilled,
		domain.ErrValidation,
		domain.ErrBackingStore,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// uniqueIDs returns ids sorted and de-duplicated.
func uniqueIDs(ids []int64) []int64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}

var (
	_ domain.Repository      = (*RepositoryPG)(nil)
	_ domain.ReferenceLoader = (*RepositoryPG)(nil)
)
