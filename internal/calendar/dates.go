package calendar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedTime is returned by ToMinutes for anything that is not "HH:MM".
var ErrMalformedTime = errors.New("malformed time")

// Date is a local calendar day with no time-of-day and no zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates t to the calendar day it falls on in its own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// NewDate normalizes overflowing components the way time.Date does,
// so NewDate(2024, 2, 30) is March 1st.
func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

func (d Date) IsZero() bool { return d == Date{} }

func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

func (d Date) Equal(o Date) bool { return d.Compare(o) == 0 }

func (d Date) SameMonth(year int, month time.Month) bool {
	return d.Year == year && d.Month == month
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// ParseDateKey parses "YYYY-MM-DD" by splitting on '-' and building the day
// from its numeric components. ok is false when any component is not a number.
func ParseDateKey(s string) (Date, bool) {
	parts := strings.Split(strings.TrimSpace(s), "-")
	if len(parts) != 3 {
		return Date{}, false
	}
	var n [3]int
	for i, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return Date{}, false
		}
		n[i] = v
	}
	return NewDate(n[0], time.Month(n[1]), n[2]), true
}

// keyLayouts are tried in order for slot group keys that are not canonical.
var keyLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"Mon Jan 02 2006",
}

// ParseKeyDate resolves a slot group key to a calendar day. Keys come from
// upstream in whatever format it chose; the date part is taken as written.
func ParseKeyDate(key string) (Date, bool) {
	key = strings.TrimSpace(key)
	if d, ok := ParseDateKey(key); ok {
		return d, true
	}
	for _, layout := range keyLayouts {
		if t, err := time.Parse(layout, key); err == nil {
			return DateOf(t), true
		}
	}
	return Date{}, false
}

// IsFutureOrToday reports whether key names today or a later day.
// Unparseable keys are never in the future.
func IsFutureOrToday(key string, today Date) bool {
	d, ok := ParseDateKey(key)
	if !ok {
		return false
	}
	return !d.Before(today)
}

// ToMinutes converts "HH:MM" (an optional ":SS" suffix is ignored) to minutes
// after midnight. Ranges are not validated.
func ToMinutes(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	return h*60 + m, nil
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
