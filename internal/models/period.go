package models

import (
	"fmt"
	"time"
)

// Period is a calendar month in a specific year.
type Period struct {
	Year  int
	Month int
}

// PeriodOf returns the period in which t occurs, in t's location.
func PeriodOf(t time.Time) Period {
	year, month, _ := t.Date()
	return Period{Year: year, Month: int(month)}
}

// Valid reports whether the month is 1-12 and the year positive.
func (p Period) Valid() bool {
	return p.Month >= 1 && p.Month <= 12 && p.Year > 0
}

// Before reports whether p is chronologically earlier than other.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

// String returns the period formatted as YYYY-MM.
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}
