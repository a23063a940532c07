package payroll

import (
	"strings"

	"github.com/shopspring/decimal"
)

type State string

const (
	StateUnpaid State = "UNPAID"
	StatePaid   State = "PAID"
)

type ActionType string

const (
	ActionPay  ActionType = "pay"
	ActionUndo ActionType = "undo"
)

func ParseActionType(s string) (ActionType, error) {
	switch ActionType(strings.ToLower(strings.TrimSpace(s))) {
	case ActionPay:
		return ActionPay, nil
	case ActionUndo:
		return ActionUndo, nil
	}
	return "", ErrUnknownAction
}

// PaymentAction is a request to flip a record's paid flag. It is only ever
// built through NewPaymentAction, after the guard has passed.
type PaymentAction struct {
	RecordID string     `json:"recordId"`
	Type     ActionType `json:"type"`
}

func StateOf(isPaid bool) State {
	if isPaid {
		return StatePaid
	}
	return StateUnpaid
}

// Balance is Reste to the cent. Guards and Due compare on it so that a
// division remainder below a cent never counts as money owed.
func Balance(c Computation) decimal.Decimal {
	return c.Reste.Round(2)
}

// AvailableAction returns the control to offer for a record, if any.
// A record whose Balance is <= 0 is settled by construction and gets no
// control, whatever its paid flag says.
func AvailableAction(c Computation, isPaid bool) (ActionType, bool) {
	if !Balance(c).IsPositive() {
		return "", false
	}
	if isPaid {
		return ActionUndo, true
	}
	return ActionPay, true
}

// CheckTransition enforces the state machine guards:
// pay needs UNPAID and Balance > 0, undo needs PAID and ignores the balance.
func CheckTransition(recordID string, c Computation, isPaid bool, action ActionType) error {
	violation := func(reason string) error {
		return &GuardViolation{
			RecordID: recordID,
			Action:   action,
			State:    StateOf(isPaid),
			Reste:    c.Reste,
			Reason:   reason,
		}
	}

	switch action {
	case ActionPay:
		if isPaid {
			return violation("record is already paid")
		}
		if !Balance(c).IsPositive() {
			return violation("no positive balance to pay")
		}
		return nil
	case ActionUndo:
		if !isPaid {
			return violation("record is not paid")
		}
		return nil
	}
	return ErrUnknownAction
}

// Apply returns the paid flag after a confirmed transition.
func Apply(isPaid bool, action ActionType) bool {
	switch action {
	case ActionPay:
		return true
	case ActionUndo:
		return false
	}
	return isPaid
}

// NewPaymentAction builds the command for a record, or reports why it cannot.
func NewPaymentAction(r Record, c Computation, action ActionType) (PaymentAction, error) {
	if err := CheckTransition(r.ID, c, r.IsPaid, action); err != nil {
		return PaymentAction{}, err
	}
	return PaymentAction{RecordID: r.ID, Type: action}, nil
}

// Due is the amount still shown as owed: zero once the record is paid or
// when the balance is not positive. Reste itself is left untouched.
func Due(c Computation, isPaid bool) decimal.Decimal {
	owed := Balance(c)
	if isPaid || !owed.IsPositive() {
		return decimal.Zero
	}
	return owed
}
