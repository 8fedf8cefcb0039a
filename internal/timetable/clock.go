package timetable

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	appErrors "github.com/noah-isme/getaroom/pkg/errors"
)

const (
	// Layout12 is the timetable form, e.g. 1:25PM.
	Layout12 = "3:04PM"
	// Layout24 is the storage form, e.g. 13:25.
	Layout24 = "15:04"

	displayLayout = "03:04PM"
	minutesPerDay = 24 * 60
)

// Clock is a wall-clock time of day at minute precision, counted in minutes
// since midnight.
type Clock int

// NewClock builds a Clock from an hour and minute.
func NewClock(hour, minute int) Clock {
	return Clock(hour*60 + minute)
}

// ClockOf returns the time of day of t, truncated to the minute.
func ClockOf(t time.Time) Clock {
	return NewClock(t.Hour(), t.Minute())
}

// ParseClock12 parses a 12-hour time with an AM/PM suffix.
func ParseClock12(raw string) (Clock, error) {
	return parseClock(Layout12, strings.ToUpper(strings.TrimSpace(raw)))
}

// ParseClock24 parses the HH:MM storage form.
func ParseClock24(raw string) (Clock, error) {
	return parseClock(Layout24, strings.TrimSpace(raw))
}

func parseClock(layout, raw string) (Clock, error) {
	t, err := time.Parse(layout, raw)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrMalformedTime.Code, appErrors.ErrMalformedTime.Status, fmt.Sprintf("malformed time %q", raw))
	}
	return ClockOf(t), nil
}

// Hour returns the 0-23 hour component.
func (c Clock) Hour() int { return int(c) / 60 }

// Minute returns the 0-59 minute component.
func (c Clock) Minute() int { return int(c) % 60 }

// Valid reports whether c lies within a single day.
func (c Clock) Valid() bool { return c >= 0 && c < minutesPerDay }

func (c Clock) time() time.Time {
	return time.Date(0, time.January, 1, c.Hour(), c.Minute(), 0, 0, time.UTC)
}

// Format24 renders the HH:MM storage form.
func (c Clock) Format24() string { return c.time().Format(Layout24) }

// Format12 renders the display form, e.g. "02:00PM".
func (c Clock) Format12() string { return c.time().Format(displayLayout) }

func (c Clock) String() string { return c.Format24() }

// Value stores a Clock as its HH:MM form.
func (c Clock) Value() (driver.Value, error) {
	return c.Format24(), nil
}

// Scan reads the HH:MM form written by Value.
func (c *Clock) Scan(src interface{}) error {
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("scan clock: unsupported type %T", src)
	}
	parsed, err := ParseClock24(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalText keeps JSON payloads in the HH:MM form.
func (c Clock) MarshalText() ([]byte, error) {
	return []byte(c.Format24()), nil
}

// UnmarshalText accepts the HH:MM form.
func (c *Clock) UnmarshalText(text []byte) error {
	parsed, err := ParseClock24(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
