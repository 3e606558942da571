package airquality

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound means geocoding produced no match for the input.
	ErrNotFound = errors.New("location not found")

	// ErrMissingCoordinates means a Location has no resolvable coordinates
	// even after a backfill attempt.
	ErrMissingCoordinates = errors.New("location has no coordinates")

	// ErrUpstream wraps provider, network, and payload failures.
	ErrUpstream = errors.New("upstream provider failure")

	// ErrValidation marks blank or malformed caller input.
	ErrValidation = errors.New("invalid input")
)

// upstream tags a provider failure so callers can match it with errors.Is.
func upstream(err error) error {
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}
