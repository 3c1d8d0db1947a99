package parser

import (
	"fmt"
	"strings"
	"time"

	"dhan-signal-trader/internal/models"
)

// Contract cycles as of the current exchange calendar:
// NIFTY and SENSEX expire weekly on Thursday, BANKNIFTY monthly on the
// last Tuesday. These change when the exchanges revise contract rules,
// so everything here takes the reference date explicitly and never reads
// the wall clock.

// nextWeekdayOnOrAfter returns the next date >= start falling on weekday.
func nextWeekdayOnOrAfter(start time.Time, weekday time.Weekday) time.Time {
	days := (int(weekday) - int(start.Weekday()) + 7) % 7
	return start.AddDate(0, 0, days)
}

// lastWeekdayOfMonth returns the last given weekday of the month.
func lastWeekdayOfMonth(year int, month time.Month, weekday time.Weekday, loc *time.Location) time.Time {
	firstOfNext := time.Date(year, month+1, 1, 0, 0, 0, 0, loc)
	last := firstOfNext.AddDate(0, 0, -1)
	offset := (int(last.Weekday()) - int(weekday) + 7) % 7
	return last.AddDate(0, 0, -offset)
}

// ResolveExpiry computes the implicit expiry date for an underlying
// relative to refDate. Same-day expiry counts: a NIFTY signal on a
// Thursday resolves to that Thursday.
func ResolveExpiry(underlying models.Underlying, refDate time.Time) (time.Time, error) {
	day := time.Date(refDate.Year(), refDate.Month(), refDate.Day(), 0, 0, 0, 0, refDate.Location())

	switch underlying {
	case models.Nifty, models.Sensex:
		return nextWeekdayOnOrAfter(day, time.Thursday), nil

	case models.BankNifty:
		expiry := lastWeekdayOfMonth(day.Year(), day.Month(), time.Tuesday, day.Location())
		if expiry.Before(day) {
			next := day.AddDate(0, 1, 0)
			expiry = lastWeekdayOfMonth(next.Year(), next.Month(), time.Tuesday, day.Location())
		}
		return expiry, nil
	}

	return time.Time{}, fmt.Errorf("no expiry rule for underlying %q", underlying)
}

var monthsByName = map[string]time.Month{
	"JAN": time.January, "FEB": time.February, "MAR": time.March,
	"APR": time.April, "MAY": time.May, "JUN": time.June,
	"JUL": time.July, "AUG": time.August, "SEP": time.September,
	"OCT": time.October, "NOV": time.November, "DEC": time.December,
}

// explicitExpiryDate turns a parsed "DD MON" pair into a calendar date
// near refDate. A month that already passed rolls into the next year, so
// a "02 JAN" signal sent in late December lands on the coming January.
func explicitExpiryDate(dayNum int, mon string, refDate time.Time) (time.Time, error) {
	month, ok := monthsByName[strings.ToUpper(mon)]
	if !ok {
		return time.Time{}, fmt.Errorf("unknown month token %q", mon)
	}

	expiry := time.Date(refDate.Year(), month, dayNum, 0, 0, 0, 0, refDate.Location())
	if expiry.Day() != dayNum {
		return time.Time{}, fmt.Errorf("invalid day %d for month %s", dayNum, mon)
	}

	msgDay := time.Date(refDate.Year(), refDate.Month(), refDate.Day(), 0, 0, 0, 0, refDate.Location())
	if expiry.Before(msgDay) {
		// More than half a year in the past reads as next year's contract;
		// anything closer is a genuinely expired date and fails validation.
		if msgDay.Sub(expiry) > 182*24*time.Hour {
			expiry = expiry.AddDate(1, 0, 0)
		}
	}
	return expiry, nil
}
