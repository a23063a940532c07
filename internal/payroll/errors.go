package payroll

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

var ErrUnknownAction = errors.New("unknown payment action")

// ValidationError lists rejected fields with the reason for each.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// GuardViolation is returned when a payment transition is not allowed from
// the record's current state and balance.
type GuardViolation struct {
	RecordID string
	Action   ActionType
	State    State
	Reste    decimal.Decimal
	Reason   string
}

func (e *GuardViolation) Error() string {
	return fmt.Sprintf("%s refused on record %s (state %s, reste %s): %s",
		e.Action, e.RecordID, e.State, e.Reste.StringFixed(2), e.Reason)
}

// WeekFailure names a week whose records could not be read.
type WeekFailure struct {
	WeekID uint
	Err    error
}

// IncompleteError is returned instead of a partial aggregate.
type IncompleteError struct {
	Failures []WeekFailure
}

func (e *IncompleteError) Error() string {
	ids := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		ids = append(ids, fmt.Sprintf("%d", f.WeekID))
	}
	return fmt.Sprintf("aggregation incomplete: %d week(s) failed to load (%s)",
		len(e.Failures), strings.Join(ids, ", "))
}

func (e *IncompleteError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}
