package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrItemInactive      = errors.New("item is inactive")
	ErrStorage           = errors.New("storage error")
)

// classify maps driver errors onto the repository sentinels. Anything it does
// not recognise is a storage error.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInsufficientStock) ||
		errors.Is(err, ErrItemInactive) || errors.Is(err, ErrStorage) {
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.CheckViolation:
			// Only the non-negative counter checks exist, so a violation means the
			// guarded update raced with something that bypassed it.
			return fmt.Errorf("%w: %w", ErrInsufficientStock, err)
		case pgerrcode.ForeignKeyViolation:
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		case pgerrcode.SerializationFailure, pgerrcode.DeadlockDetected, pgerrcode.LockNotAvailable:
			return fmt.Errorf("%w: contention: %w", ErrStorage, err)
		}
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: aborted: %w", ErrStorage, err)
	}
	return fmt.Errorf("%w: %w", ErrStorage, err)
}
