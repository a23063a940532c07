package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"workshop-payroll-bot/internal/payroll"
	"workshop-payroll-bot/internal/service"
)

// Error codes carried in the envelope.
const (
	CodeValidation   = "validation_error"
	CodeGuard        = "guard_violation"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeInvalidInput = "invalid_input"
	CodeIncomplete   = "aggregation_incomplete"
	CodeInternal     = "internal_error"
)

// Guard detail keys.
const (
	DetailRecordID = "recordId"
	DetailAction   = "action"
	DetailState    = "state"
	DetailReste    = "reste"
	DetailReason   = "reason"
)

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr       *payroll.ValidationError
		guard      *payroll.GuardViolation
		incomplete *payroll.IncompleteError
	)

	switch {
	case errors.As(err, &verr):
		Fail(w, r, http.StatusBadRequest, &Error{Code: CodeValidation, Message: verr.Error(), Details: verr.Fields})
	case errors.As(err, &guard):
		Fail(w, r, http.StatusConflict, &Error{
			Code:    CodeGuard,
			Message: guard.Error(),
			Details: map[string]string{
				DetailRecordID: guard.RecordID,
				DetailAction:   string(guard.Action),
				DetailState:    string(guard.State),
				DetailReste:    guard.Reste.String(),
				DetailReason:   guard.Reason,
			},
		})
	case errors.Is(err, service.ErrNotFound):
		Fail(w, r, http.StatusNotFound, &Error{Code: CodeNotFound, Message: err.Error()})
	case errors.Is(err, service.ErrConflict):
		Fail(w, r, http.StatusConflict, &Error{Code: CodeConflict, Message: err.Error()})
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, payroll.ErrUnknownAction):
		Fail(w, r, http.StatusBadRequest, &Error{Code: CodeInvalidInput, Message: err.Error()})
	case errors.As(err, &incomplete):
		h.logger.WithError(err).WithField("request_id", middleware.GetReqID(r.Context())).Error("Aggregation incomplete")
		Fail(w, r, http.StatusInternalServerError, &Error{Code: CodeIncomplete, Message: err.Error()})
	default:
		h.logger.WithFields(logrus.Fields{
			"request_id": middleware.GetReqID(r.Context()),
			"path":       r.URL.Path,
		}).WithError(err).Error("Request failed")
		Fail(w, r, http.StatusInternalServerError, &Error{Code: CodeInternal, Message: "internal error"})
	}
}
