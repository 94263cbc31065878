package service

import (
	"errors"
	"fmt"

	"go-promoter-inventory/internal/repository"
)

var (
	ErrInvalidRequest        = errors.New("invalid request")
	ErrVerificationFailed    = errors.New("could not verify promoter holdings")
	ErrPendingReturnNotFound = errors.New("pending return not found or expired")

	ErrInsufficientStock = repository.ErrInsufficientStock
	ErrNotFound          = repository.ErrNotFound
	ErrItemInactive      = repository.ErrItemInactive
	ErrStorage           = repository.ErrStorage
)

// ErrorKind is the closed set of failure classes callers branch on.
type ErrorKind int

const (
	KindStorage ErrorKind = iota
	KindInvalidRequest
	KindNotFound
	KindItemInactive
	KindInsufficientStock
	KindVerificationFailed
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidRequest:
		return "invalid_request"
	case KindNotFound:
		return "not_found"
	case KindItemInactive:
		return "item_inactive"
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindVerificationFailed:
		return "verification_failed"
	}
	return "storage_error"
}

// KindOf classifies err. Errors outside the known sentinels count as storage errors.
func KindOf(err error) ErrorKind {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return KindInvalidRequest
	case errors.Is(err, ErrVerificationFailed):
		return KindVerificationFailed
	case errors.Is(err, ErrPendingReturnNotFound), errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrItemInactive):
		return KindItemInactive
	case errors.Is(err, ErrInsufficientStock):
		return KindInsufficientStock
	}
	return KindStorage
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
}
