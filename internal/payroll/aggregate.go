package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// WeekTotal is one week's amount for a workplace. Month is assigned by the
// store when weeks are generated.
type WeekTotal struct {
	WeekID      uint            `json:"weekId"`
	WeekText    string          `json:"weekText"`
	Month       time.Month      `json:"month"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type MonthSummary struct {
	Name        string          `json:"name"`
	Weeks       []WeekTotal     `json:"weeks"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
}

type YearSummary struct {
	Year        int             `json:"year"`
	WorkplaceID uint            `json:"workplaceId"`
	Months      []MonthSummary  `json:"months"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	NextYear    *int            `json:"nextYear"`
	PrevYear    *int            `json:"prevYear"`
}

var monthNames = [12]string{
	"Janvier", "Février", "Mars", "Avril", "Mai", "Juin",
	"Juillet", "Août", "Septembre", "Octobre", "Novembre", "Décembre",
}

func MonthName(m time.Month) string {
	if m < time.January || m > time.December {
		return ""
	}
	return monthNames[m-1]
}

// GroupByWeekMonth groups weeks under the month the store assigned them.
func GroupByWeekMonth(w WeekTotal) string {
	return MonthName(w.Month)
}

// SumWeek is a week's amount: the gross pay of all its records.
func SumWeek(computations []Computation) decimal.Decimal {
	total := decimal.Zero
	for _, c := range computations {
		total = total.Add(c.TotalSalaire)
	}
	return total
}

// AggregateYear sums weeks into months in the order supplied; nothing is
// re-sorted. Each run of consecutive weeks sharing a month becomes one
// MonthSummary, so a month that reappears later starts a new entry.
func AggregateYear(weeks []WeekTotal, groupByMonth func(WeekTotal) string) []MonthSummary {
	months := []MonthSummary{}

	for _, w := range weeks {
		name := groupByMonth(w)
		if n := len(months); n == 0 || months[n-1].Name != name {
			months = append(months, MonthSummary{Name: name, TotalAmount: decimal.Zero})
		}
		last := &months[len(months)-1]
		last.Weeks = append(last.Weeks, w)
		last.TotalAmount = last.TotalAmount.Add(w.TotalAmount)
	}
	return months
}

// YearTotal sums the month totals.
func YearTotal(months []MonthSummary) decimal.Decimal {
	total := decimal.Zero
	for _, m := range months {
		total = total.Add(m.TotalAmount)
	}
	return total
}

// WeekFetch is the outcome of loading one week's records.
type WeekFetch struct {
	Week         WeekTotal
	Computations []Computation
	Err          error
}

// AggregateFetched builds the month list from per-week fetches. If any fetch
// failed nothing is aggregated and an *IncompleteError is returned.
func AggregateFetched(fetches []WeekFetch, groupByMonth func(WeekTotal) string) ([]MonthSummary, decimal.Decimal, error) {
	var failures []WeekFailure
	weeks := make([]WeekTotal, 0, len(fetches))

	for _, f := range fetches {
		if f.Err != nil {
			failures = append(failures, WeekFailure{WeekID: f.Week.WeekID, Err: f.Err})
			continue
		}
		w := f.Week
		w.TotalAmount = SumWeek(f.Computations)
		weeks = append(weeks, w)
	}
	if len(failures) > 0 {
		return nil, decimal.Zero, &IncompleteError{Failures: failures}
	}

	months := AggregateYear(weeks, groupByMonth)
	return months, YearTotal(months), nil
}
