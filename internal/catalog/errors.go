package catalog

import (
	"errors"
	"fmt"

	"github.com/llehouerou/odeon/internal/mediaid"
)

var (
	// ErrNotReady is returned by queries that need a loaded catalog.
	ErrNotReady = errors.New("catalog not ready")

	// ErrInvalidAddress is returned for malformed addresses and for category
	// roots that need a value to resolve, such as a bare ALBUMS.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrUnknownCategory is returned for well-formed tokens naming no known category.
	ErrUnknownCategory = errors.New("unknown category")

	// ErrSourceUnavailable means the source denied access or produced no result set.
	ErrSourceUnavailable = errors.New("media source unavailable")

	// ErrMalformedRow marks a single undecodable row. Sources wrap it in the
	// error yielded alongside the row; the load skips the row and continues.
	ErrMalformedRow = errors.New("malformed row")
)

// addressError maps an address decode or validation failure to
// ErrUnknownCategory or ErrInvalidAddress, keeping err in the chain.
func addressError(err error) error {
	if mediaid.ReasonOf(err) == mediaid.ReasonUnknownCategory {
		return fmt.Errorf("%w: %w", ErrUnknownCategory, err)
	}
	return fmt.Errorf("%w: %w", ErrInvalidAddress, err)
}
