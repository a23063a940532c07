package models

import (
	"fmt"
	"time"
)

// Week is a Monday–Saturday working week. Month is the month of its
// Thursday and decides which month summary the week is reported under.
type Week struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Year      int       `gorm:"not null;uniqueIndex:idx_week_year_number;index" json:"year"`
	Number    int       `gorm:"not null;uniqueIndex:idx_week_year_number" json:"number"`
	Month     int       `gorm:"not null;check:month >= 1 AND month <= 12" json:"month"`
	StartDate time.Time `gorm:"type:date;not null;index" json:"startDate"`
	EndDate   time.Time `gorm:"type:date;not null" json:"endDate"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"createdAt"`
}

func (Week) TableName() string {
	return "weeks"
}

// Text is the label shown in tables and summaries, e.g. "S02 08/01 - 13/01".
func (w *Week) Text() string {
	return fmt.Sprintf("S%02d %s - %s", w.Number, w.StartDate.Format("02/01"), w.EndDate.Format("02/01"))
}

// MonthOf returns Month as a time.Month.
func (w *Week) MonthOf() time.Month {
	return time.Month(w.Month)
}

func (w *Week) IsValid() bool {
	if w.Year < 2000 || w.Year > 2100 {
		return false
	}
	if w.Number < 1 || w.Number > 53 {
		return false
	}
	if w.Month < 1 || w.Month > 12 {
		return false
	}
	return w.StartDate.Weekday() == time.Monday && w.EndDate.Sub(w.StartDate) == 5*24*time.Hour
}
