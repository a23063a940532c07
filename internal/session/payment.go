package session

import (
	"context"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"workshop-payroll-bot/internal/logging"
	"workshop-payroll-bot/internal/payroll"
	"workshop-payroll-bot/internal/service"
)

var (
	// ErrPending is returned when a payment for the record is already in flight.
	ErrPending = errors.New("payment already pending for this record")
	// ErrStale is returned when the chat navigated away before the backend
	// answered. The answer is dropped.
	ErrStale = errors.New("payment response discarded: view changed")
)

// PaymentBackend applies a confirmed payment transition.
type PaymentBackend interface {
	UpdateWeekRecordPayment(ctx context.Context, recordID string, action payroll.ActionType) (*service.RecordView, error)
}

type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusStale     Status = "stale"
)

// Result is the outcome of an asynchronous submission. On failure View is
// nil and the caller keeps showing the record as it was.
type Result struct {
	Status Status
	View   *service.RecordView
	Err    error
}

// PaymentController runs pay and undo round trips. The guard is checked
// locally before anything is sent, a record has at most one submission in
// flight, and the paid flag is only taken from the backend's answer.
type PaymentController struct {
	backend PaymentBackend
	store   *Store
	logger  *logrus.Logger

	mu      sync.Mutex
	pending map[string]struct{}
}

func NewPaymentController(backend PaymentBackend, store *Store) *PaymentController {
	return &PaymentController{
		backend: backend,
		store:   store,
		logger:  logging.New(),
		pending: make(map[string]struct{}),
	}
}

// IsPending reports whether a submission for recordID is in flight. Controls
// for such a record must stay disabled.
func (c *PaymentController) IsPending(recordID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.pending[recordID]
	return ok
}

func (c *PaymentController) begin(key int64, view service.RecordView, action payroll.ActionType) (payroll.PaymentAction, uint64, error) {
	cmd, err := payroll.NewPaymentAction(view.PayrollRecord(), view.Computation, action)
	if err != nil {
		return payroll.PaymentAction{}, 0, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.pending[cmd.RecordID]; ok {
		return payroll.PaymentAction{}, 0, ErrPending
	}
	c.pending[cmd.RecordID] = struct{}{}
	return cmd, c.store.Generation(key), nil
}

func (c *PaymentController) finish(ctx context.Context, key int64, gen uint64, wasPaid bool, cmd payroll.PaymentAction) Result {
	defer func() {
		c.mu.Lock()
		delete(c.pending, cmd.RecordID)
		c.mu.Unlock()
	}()

	updated, err := c.backend.UpdateWeekRecordPayment(ctx, cmd.RecordID, cmd.Type)

	if c.store.Generation(key) != gen {
		c.logger.WithFields(logrus.Fields{
			"record_id": cmd.RecordID,
			"action":    cmd.Type,
			"chat":      key,
		}).Info("Discarding payment response for a view that changed")
		return Result{Status: StatusStale, Err: ErrStale}
	}
	if err != nil {
		c.logger.WithError(err).WithField("record_id", cmd.RecordID).Warn("Payment failed")
		return Result{Status: StatusFailed, Err: err}
	}

	if want := payroll.Apply(wasPaid, cmd.Type); updated.Record != nil && updated.Record.IsPaid != want {
		c.logger.WithFields(logrus.Fields{
			"record_id": cmd.RecordID,
			"expected":  want,
		}).Warn("Backend returned an unexpected paid flag")
	}
	return Result{Status: StatusSucceeded, View: updated}
}

// Submit sends action for the record shown in view and waits for the answer.
func (c *PaymentController) Submit(ctx context.Context, key int64, view service.RecordView, action payroll.ActionType) (*service.RecordView, error) {
	cmd, gen, err := c.begin(key, view, action)
	if err != nil {
		return nil, err
	}
	res := c.finish(ctx, key, gen, view.Record.IsPaid, cmd)
	return res.View, res.Err
}

// SubmitAsync checks the guard and marks the record pending before it
// returns; the round trip runs in the background and its result is delivered
// on the channel.
func (c *PaymentController) SubmitAsync(ctx context.Context, key int64, view service.RecordView, action payroll.ActionType) (<-chan Result, error) {
	cmd, gen, err := c.begin(key, view, action)
	if err != nil {
		return nil, err
	}

	out := make(chan Result, 1)
	go func() {
		defer close(out)
		out <- c.finish(ctx, key, gen, view.Record.IsPaid, cmd)
	}()
	return out, nil
}
