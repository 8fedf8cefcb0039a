package timetable

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"

	appErrors "github.com/noah-isme/getaroom/pkg/errors"
)

// A matching row reads, for example:
//
//	M W F 12:20PM 1:10PM LITRV 1670
var linePattern = regexp.MustCompile(`(?P<days>(?:[MTWRF]\s?)+)\s*(?P<start>\d\d?:\d\d(?:AM|PM))\s*(?P<end>\d\d?:\d\d(?:AM|PM))\s*(?P<building>\w+) (?P<room>[\w ]*)`)

var (
	groupDays     = linePattern.SubexpIndex("days")
	groupStart    = linePattern.SubexpIndex("start")
	groupEnd      = linePattern.SubexpIndex("end")
	groupBuilding = linePattern.SubexpIndex("building")
	groupRoom     = linePattern.SubexpIndex("room")

	whitespace = regexp.MustCompile(`\s+`)
)

// ErrInvalidEntry marks a row that matched the pattern but cannot describe a
// class meeting.
var ErrInvalidEntry = appErrors.New(appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable entry")

// Entry is one class meeting extracted from a timetable row.
type Entry struct {
	Days     Days   `validate:"required,min=1,dive,oneof=M T W R F X S"`
	Start    Clock  `validate:"gte=0,lt=1440"`
	End      Clock  `validate:"gtfield=Start,lt=1440"`
	Building string `validate:"required"`
	Room     string `validate:"required"`
}

// Normalize flattens a raw row: non-ASCII runes are dropped, whitespace runs
// collapse to a single space and the ends are trimmed.
func Normalize(text string) string {
	ascii, _, err := transform.String(runes.Remove(runes.Predicate(func(r rune) bool {
		return r > unicode.MaxASCII
	})), text)
	if err != nil {
		ascii = text
	}
	return strings.TrimSpace(whitespace.ReplaceAllString(ascii, " "))
}

// Parse extracts an Entry from one flattened row. ok is false when the row
// is not a class meeting; that is not an error.
func Parse(line string) (entry Entry, ok bool, err error) {
	m := linePattern.FindStringSubmatch(line)
	if m == nil {
		return Entry{}, false, nil
	}

	days, err := ParseDays(m[groupDays])
	if err != nil {
		return Entry{}, true, appErrors.Wrap(err, ErrInvalidEntry.Code, ErrInvalidEntry.Status, "invalid day codes")
	}
	start, err := ParseClock12(m[groupStart])
	if err != nil {
		return Entry{}, true, err
	}
	end, err := ParseClock12(m[groupEnd])
	if err != nil {
		return Entry{}, true, err
	}

	entry = Entry{
		Days:     days,
		Start:    start,
		End:      end,
		Building: m[groupBuilding],
		Room:     strings.TrimSpace(m[groupRoom]),
	}
	if err := entry.Check(); err != nil {
		return Entry{}, true, err
	}
	return entry, true, nil
}

// Check enforces the invariants every stored entry must satisfy.
func (e Entry) Check() error {
	switch {
	case len(e.Days) == 0:
		return appErrors.Clone(ErrInvalidEntry, "entry has no meeting days")
	case e.Start >= e.End:
		return appErrors.Clone(ErrInvalidEntry, fmt.Sprintf("start %s is not before end %s", e.Start, e.End))
	case e.Building == "":
		return appErrors.Clone(ErrInvalidEntry, "entry has no building")
	case e.Room == "":
		return appErrors.Clone(ErrInvalidEntry, "entry has no room")
	}
	return nil
}
