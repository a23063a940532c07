package payroll

import "github.com/shopspring/decimal"

// Record is the engine's view of one worker's week: the stored values the
// computation depends on, nothing else.
type Record struct {
	ID                  string
	SalaireHebdomadaire decimal.Decimal
	Attendance          Attendance
	Avance              decimal.Decimal
	IsPaid              bool
}

// Computation is the pay derived from a Record.
type Computation struct {
	NormalHours  decimal.Decimal `json:"normalHours"`
	ExtraHours   decimal.Decimal `json:"extraHours"`
	TotalHours   decimal.Decimal `json:"totalHours"`
	DailyRate    decimal.Decimal `json:"dailyRate"`
	HourlyRate   decimal.Decimal `json:"hourlyRate"`
	TotalSalaire decimal.Decimal `json:"totalSalaire"`
	Reste        decimal.Decimal `json:"reste"`
}

// ComputePay derives hours, gross pay and balance from the stored values only.
// Reste may be negative when the advance exceeds what was earned.
// Gross pay divides once by the scheduled hours so a full schedule yields
// exactly the weekly salary; HourlyRate is for display.
func (s Schedule) ComputePay(r Record) Computation {
	rates := s.DeriveRates(r.SalaireHebdomadaire)
	normal := r.Attendance.NormalHours()
	extra := r.Attendance.ExtraHours()
	total := normal.Add(extra)
	salaire := total.Mul(r.SalaireHebdomadaire).Div(s.DaysPerWeek.Mul(s.HoursPerDay))

	return Computation{
		NormalHours:  normal,
		ExtraHours:   extra,
		TotalHours:   total,
		DailyRate:    rates.Daily,
		HourlyRate:   rates.Hourly,
		TotalSalaire: salaire,
		Reste:        salaire.Sub(r.Avance),
	}
}

// ComputePay uses DefaultSchedule.
func ComputePay(r Record) Computation {
	return DefaultSchedule.ComputePay(r)
}
