package service

import (
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/dkverwaltung/dkledger/internal/domain/model"
)

// DaysPerYear is the length of the stylized 30/360 year.
const DaysPerYear = 360

// DayCount360 counts the days from start to end under the 30E/360 (Eurobond)
// convention: a day-of-month of 31 becomes 30 on both sides, February is not
// adjusted. The interval is half-open, so DayCount360(d, d) is 0.
//
// The convention is not a metric near month ends: 2023-01-30 to 2023-01-31 counts
// 0 days while 2023-02-28 to 2023-03-01 counts 3.
func DayCount360(start, end civil.Date) (int, error) {
	if end.Before(start) {
		return 0, fmt.Errorf("day count %s..%s: %w", start, end, ErrNegativeDayCount)
	}
	return days360(start, end), nil
}

// DaysLeftInYear counts the 30/360 days from d (inclusive) to the end of its
// year: January 1st gives 360, December 30th and 31st give 1.
func DaysLeftInYear(d civil.Date) int {
	return days360(d, model.YearStart(d.Year+1))
}

func days360(start, end civil.Date) int {
	d1, d2 := start.Day, end.Day
	if d1 == 31 {
		d1 = 30
	}
	if d2 == 31 {
		d2 = 30
	}
	return (end.Year-start.Year)*DaysPerYear + (int(end.Month)-int(start.Month))*30 + (d2 - d1)
}
