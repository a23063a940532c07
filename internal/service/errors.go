package service

import "errors"

var (
	// ErrNotFound is returned when a record, week, worker or workplace does
	// not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write clashes with stored state: a
	// duplicate name, an already scheduled worker, or a payment flag changed
	// by another client.
	ErrConflict = errors.New("conflict")
	// ErrInvalidInput is returned for malformed arguments that are not field
	// validation failures (year out of range, unknown direction).
	ErrInvalidInput = errors.New("invalid input")
)
