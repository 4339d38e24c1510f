package model

import (
	"time"

	"cloud.google.com/go/civil"
)

// YearStart returns January 1st of year.
func YearStart(year int) civil.Date {
	return civil.Date{Year: year, Month: time.January, Day: 1}
}

// YearEnd returns December 31st of year.
func YearEnd(year int) civil.Date {
	return civil.Date{Year: year, Month: time.December, Day: 31}
}

// AddMonths adds n calendar months. Day overflow normalizes the way time.AddDate
// does (January 31st + 1 month is March 3rd or 2nd).
func AddMonths(d civil.Date, n int) civil.Date {
	return civil.DateOf(d.In(time.UTC).AddDate(0, n, 0))
}

// CompareDates returns -1, 0 or +1 when a is before, equal to or after b.
func CompareDates(a, b civil.Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	default:
		return 0
	}
}

// MaxDate returns the later of a and b.
func MaxDate(a, b civil.Date) civil.Date {
	if a.After(b) {
		return a
	}
	return b
}
