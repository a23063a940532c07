package client

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"workshop-payroll-bot/internal/api"
	"workshop-payroll-bot/internal/payroll"
	"workshop-payroll-bot/internal/service"
)

// BackendError is a failed call to the backend: a transport failure or a
// response the client does not map to a domain error.
type BackendError struct {
	Op      string
	Status  int
	Code    string
	Message string
	Err     error
}

func (e *BackendError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("backend %s: %d %s: %s", e.Op, e.Status, e.Code, e.Message)
}

func (e *BackendError) Unwrap() error {
	return e.Err
}

// decodeError turns an error envelope back into the value the service would
// have returned in process.
func decodeError(op string, status int, e *api.Error) error {
	if e == nil {
		return &BackendError{Op: op, Status: status, Message: http.StatusText(status)}
	}

	switch e.Code {
	case api.CodeValidation:
		fields := e.Details
		if fields == nil {
			fields = map[string]string{}
		}
		return &payroll.ValidationError{Fields: fields}
	case api.CodeGuard:
		reste, err := decimal.NewFromString(e.Details[api.DetailReste])
		if err != nil {
			return &BackendError{Op: op, Status: status, Code: e.Code, Message: e.Message, Err: err}
		}
		return &payroll.GuardViolation{
			RecordID: e.Details[api.DetailRecordID],
			Action:   payroll.ActionType(e.Details[api.DetailAction]),
			State:    payroll.State(e.Details[api.DetailState]),
			Reste:    reste,
			Reason:   e.Details[api.DetailReason],
		}
	case api.CodeNotFound:
		return fmt.Errorf("%s: %w", e.Message, service.ErrNotFound)
	case api.CodeConflict:
		return fmt.Errorf("%s: %w", e.Message, service.ErrConflict)
	case api.CodeInvalidInput:
		return fmt.Errorf("%s: %w", e.Message, service.ErrInvalidInput)
	}
	return &BackendError{Op: op, Status: status, Code: e.Code, Message: e.Message}
}
