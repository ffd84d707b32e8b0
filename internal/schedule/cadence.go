// Package schedule expresses job cadences as RFC 5545 recurrence rules and
// answers "when does this job fire next".
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"
)

// Cadence is a parsed recurrence rule anchored at a start instant.
type Cadence struct {
	rule *rrule.RRule
	spec string
}

// New parses an RRULE string (with or without the "RRULE:" prefix) anchored
// at start.
func New(spec string, start time.Time) (*Cadence, error) {
	trimmed := strings.TrimPrefix(spec, "RRULE:")
	opt, err := rrule.StrToROption(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cadence %q: %w", spec, err)
	}
	opt.Dtstart = start

	rule, err := rrule.NewRRule(*opt)
	if err != nil {
		return nil, fmt.Errorf("failed to build cadence %q: %w", spec, err)
	}
	return &Cadence{rule: rule, spec: trimmed}, nil
}

// Next returns the first firing strictly after the given time.
func (c *Cadence) Next(after time.Time) time.Time {
	return c.rule.After(after, false)
}

func (c *Cadence) String() string {
	return c.spec
}

// Hourly fires at the top of every hour.
func Hourly(start time.Time) (*Cadence, error) {
	return New("FREQ=HOURLY;BYMINUTE=0;BYSECOND=0", start)
}

// Daily fires every day at midnight.
func Daily(start time.Time) (*Cadence, error) {
	return New("FREQ=DAILY;BYHOUR=0;BYMINUTE=0;BYSECOND=0", start)
}

// EverySixHours fires at 00:00, 06:00, 12:00 and 18:00.
func EverySixHours(start time.Time) (*Cadence, error) {
	return New("FREQ=DAILY;BYHOUR=0,6,12,18;BYMINUTE=0;BYSECOND=0", start)
}

// FirstOfMonth fires at midnight on the first day of every month.
func FirstOfMonth(start time.Time) (*Cadence, error) {
	return New("FREQ=MONTHLY;BYMONTHDAY=1;BYHOUR=0;BYMINUTE=0;BYSECOND=0", start)
}
