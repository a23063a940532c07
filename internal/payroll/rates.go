package payroll

import "github.com/shopspring/decimal"

// Divisors of the workshop week. A weekly salary covers six working days of
// nine and a half hours each.
const (
	DefaultDaysPerWeek = 6
	DefaultHoursPerDay = 9.5
)

// Schedule holds the divisors used to turn a weekly salary into daily and
// hourly rates.
type Schedule struct {
	DaysPerWeek decimal.Decimal
	HoursPerDay decimal.Decimal
}

// DefaultSchedule is the 6 x 9.5h schedule used everywhere unless configured otherwise.
var DefaultSchedule = Schedule{
	DaysPerWeek: decimal.NewFromInt(DefaultDaysPerWeek),
	HoursPerDay: decimal.NewFromFloat(DefaultHoursPerDay),
}

// NewSchedule builds a schedule from plain numbers. Both values must be positive.
func NewSchedule(daysPerWeek, hoursPerDay float64) (Schedule, error) {
	if daysPerWeek <= 0 || hoursPerDay <= 0 {
		return Schedule{}, &ValidationError{Fields: map[string]string{
			"schedule": "days per week and hours per day must be positive",
		}}
	}
	return Schedule{
		DaysPerWeek: decimal.NewFromFloat(daysPerWeek),
		HoursPerDay: decimal.NewFromFloat(hoursPerDay),
	}, nil
}

// Rates are derived from a weekly salary and never persisted.
type Rates struct {
	Daily  decimal.Decimal `json:"dailyRate"`
	Hourly decimal.Decimal `json:"hourlyRate"`
}

// DeriveRates splits a weekly salary into a daily and an hourly rate.
// Negative salaries are rejected by ValidateRecord before reaching this point.
func (s Schedule) DeriveRates(salaireHebdomadaire decimal.Decimal) Rates {
	daily := salaireHebdomadaire.Div(s.DaysPerWeek)
	return Rates{
		Daily:  daily,
		Hourly: daily.Div(s.HoursPerDay),
	}
}

// DeriveRates uses DefaultSchedule.
func DeriveRates(salaireHebdomadaire decimal.Decimal) Rates {
	return DefaultSchedule.DeriveRates(salaireHebdomadaire)
}
