package service

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/buildtrack/internal/repository"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrTransactionFailed = errors.New("transaction failed")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

// classify maps a store or transaction error onto the service taxonomy.
// Errors already carrying a service sentinel pass through; anything else is
// wrapped with fallback.
func classify(err error, fallback error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrPermissionDenied),
		errors.Is(err, ErrTransactionFailed),
		errors.Is(err, ErrStoreUnavailable):
		return err
	case errors.Is(err, repository.ErrNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	}
	return fmt.Errorf("%w: %w", fallback, err)
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
