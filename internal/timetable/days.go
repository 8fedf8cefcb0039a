package timetable

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
	"unicode"

	"github.com/jmoiron/sqlx/types"
)

// Day is a single-letter weekday code used by the registrar timetable.
type Day string

const (
	Monday    Day = "M"
	Tuesday   Day = "T"
	Wednesday Day = "W"
	Thursday  Day = "R"
	Friday    Day = "F"
	Saturday  Day = "X"
	Sunday    Day = "S"
)

var weekdayCodes = [...]Day{
	time.Sunday:    Sunday,
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
}

// DayForWeekday maps a Go weekday onto its timetable code.
func DayForWeekday(w time.Weekday) Day {
	return weekdayCodes[w]
}

// Valid reports whether d is one of the seven known codes.
func (d Day) Valid() bool {
	for _, code := range weekdayCodes {
		if code == d {
			return true
		}
	}
	return false
}

// Days is an ordered set of day codes. Order carries no meaning for matching.
type Days []Day

// ParseDays reads day letters, ignoring whitespace and repeats.
func ParseDays(raw string) (Days, error) {
	var days Days
	for _, r := range raw {
		if unicode.IsSpace(r) {
			continue
		}
		d := Day(string(r))
		if !d.Valid() {
			return nil, fmt.Errorf("unknown day code %q", r)
		}
		if !days.Contains(d) {
			days = append(days, d)
		}
	}
	return days, nil
}

// Contains reports whether d is in the set.
func (ds Days) Contains(d Day) bool {
	for _, v := range ds {
		if v == d {
			return true
		}
	}
	return false
}

// Value stores the set as a JSON array of letters.
func (ds Days) Value() (driver.Value, error) {
	if ds == nil {
		ds = Days{}
	}
	b, err := json.Marshal([]Day(ds))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan reads the JSON array written by Value.
func (ds *Days) Scan(src interface{}) error {
	if src == nil {
		*ds = nil
		return nil
	}
	var raw types.JSONText
	if err := raw.Scan(src); err != nil {
		return fmt.Errorf("scan days: %w", err)
	}
	var out []Day
	if err := raw.Unmarshal(&out); err != nil {
		return fmt.Errorf("scan days: %w", err)
	}
	*ds = out
	return nil
}
