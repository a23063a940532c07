package weeks

import "time"

// WorkingDays is the length of a working week, Monday to Saturday.
const WorkingDays = 6

// Week is one working week of the calendar.
type Week struct {
	Year   int
	Number int
	Month  time.Month
	Start  time.Time
	End    time.Time
}

// Monday returns midnight UTC of the Monday on or before date.
func Monday(date time.Time) time.Time {
	d := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	offset := (int(d.Weekday()) + 6) % 7
	return d.AddDate(0, 0, -offset)
}

// Of returns the working week containing date. A Sunday belongs to the week
// that ends the day before.
func Of(date time.Time) Week {
	start := Monday(date)
	thursday := start.AddDate(0, 0, 3)
	year, number := thursday.ISOWeek()
	return Week{
		Year:   year,
		Number: number,
		Month:  thursday.Month(),
		Start:  start,
		End:    start.AddDate(0, 0, WorkingDays-1),
	}
}

// ForYear lists the working weeks whose Thursday falls in year, in order.
// These are the ISO weeks of that year: 52 or 53 of them.
func ForYear(year int) []Week {
	// 4 January is always in ISO week 1.
	start := Monday(time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC))

	result := []Week{}
	for monday := start; ; monday = monday.AddDate(0, 0, 7) {
		w := Of(monday)
		if w.Year != year {
			break
		}
		result = append(result, w)
	}
	return result
}
