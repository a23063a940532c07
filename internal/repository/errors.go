package repository

import "errors"

var (
	ErrRecordNotFound    = errors.New("week record not found")
	ErrPaidStateChanged  = errors.New("week record payment state changed concurrently")
	ErrDuplicateRecord   = errors.New("worker already scheduled for this week")
	ErrDuplicateName     = errors.New("workplace name already exists")
	ErrInvalidWorkplace  = errors.New("invalid workplace data")
	ErrInvalidWorker     = errors.New("invalid worker data")
	ErrInvalidWeek       = errors.New("invalid week data")
	ErrInvalidWeekRecord = errors.New("invalid week record data")
)
