package core

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidDate marks a date that is zero or not in the boundary format.
var ErrInvalidDate = errors.New("invalid date")

// LedgerDateLayout is the day/month/year format used whenever a date
// crosses the storage or display boundary. Internally dates are plain
// UTC-midnight time values; only the boundary speaks DD/MM/YYYY.
const LedgerDateLayout = "02/01/2006"

// Date is a calendar date with day granularity (UTC midnight).
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date in UTC.
func Today() Date {
	now := time.Now().UTC()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

// Equal reports whether both values name the same calendar day.
func (d Date) Equal(o Date) bool {
	return d.Year() == o.Year() && d.YearDay() == o.YearDay()
}

// After reports whether d is a later calendar day than o.
func (d Date) After(o Date) bool {
	return d.Time.After(o.Time)
}

// ParseLedgerDate parses a DD/MM/YYYY boundary string into a Date.
func ParseLedgerDate(s string) (Date, error) {
	t, err := time.Parse(LedgerDateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q is not %s", ErrInvalidDate, s, "DD/MM/YYYY")
	}
	return Date{Time: t}, nil
}

// LedgerFormat renders the date in the DD/MM/YYYY boundary format.
func (d Date) LedgerFormat() string {
	return d.Format(LedgerDateLayout)
}
