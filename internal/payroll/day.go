package payroll

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Day indexes the working week, Monday first. There is no Sunday.
type Day int

const (
	Monday Day = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

// DaysInWeek is the number of day buckets in a week record.
const DaysInWeek = 6

var dayNames = [DaysInWeek]string{"lundi", "mardi", "mercredi", "jeudi", "vendredi", "samedi"}

func (d Day) String() string {
	if !d.Valid() {
		return "invalide"
	}
	return dayNames[d]
}

func (d Day) Valid() bool {
	return d >= Monday && d <= Saturday
}

// ParseDay accepts the lower-case French day name ("lundi".."samedi").
func ParseDay(name string) (Day, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range dayNames {
		if n == name {
			return Day(i), true
		}
	}
	return 0, false
}

// Days lists the week in order.
func Days() [DaysInWeek]Day {
	return [DaysInWeek]Day{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}
}

// DayHours is one day bucket: regular hours and overtime ("Supp") hours.
type DayHours struct {
	Regular  decimal.Decimal `json:"regular"`
	Overtime decimal.Decimal `json:"overtime"`
}

// Attendance is the week's six day buckets, indexed Monday..Saturday.
type Attendance [DaysInWeek]DayHours

// NormalHours sums the regular hours of the six days.
func (a Attendance) NormalHours() decimal.Decimal {
	total := decimal.Zero
	for _, d := range a {
		total = total.Add(d.Regular)
	}
	return total
}

// ExtraHours sums the overtime hours of the six days.
func (a Attendance) ExtraHours() decimal.Decimal {
	total := decimal.Zero
	for _, d := range a {
		total = total.Add(d.Overtime)
	}
	return total
}
