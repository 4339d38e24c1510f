package service

import "errors"

var (
	// ErrNoApplicableRate is returned when a date precedes the first version of a contract.
	ErrNoApplicableRate = errors.New("no applicable interest rate")
	// ErrNegativeDayCount is returned when the end of a day-count interval lies before its start.
	ErrNegativeDayCount = errors.New("end date before start date")
)
