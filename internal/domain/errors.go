package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrInvalidContract    = errors.New("invalid contract")
	ErrZeroCost           = errors.New("contract has zero total cost")
	ErrNoEligibleItems    = errors.New("no eligible input items")
)

// MissingOutcomeError reports a fitness lookup that found no outcome bucket
// for one of a contract's sources at the computed float factor. Engines
// treat it as an unfit individual rather than a failure.
type MissingOutcomeError struct {
	SourceID string
	StatTrak bool
	Factor   int
}

func (e *MissingOutcomeError) Error() string {
	return fmt.Sprintf("no outcome bucket for source %s (stattrak=%t) at factor %d",
		e.SourceID, e.StatTrak, e.Factor)
}
