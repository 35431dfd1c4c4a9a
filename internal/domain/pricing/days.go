package pricing

import (
	"strings"
	"time"

	"github.com/go-faster/errors"
)

const (
	dateLayout    = "2006-01-02"
	secondsPerDay = 24 * 60 * 60
)

// ErrInvalidDate is returned by ParseDate for empty or malformed input.
var ErrInvalidDate = errors.New("invalid date")

// ParseDate parses a calendar date in either YYYY-MM-DD or RFC 3339 form and
// returns midnight of that day in UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, errors.Wrapf(ErrInvalidDate, "parse %q", s)
	}
	return TruncateDay(t), nil
}

// TruncateDay returns midnight UTC of the calendar day t falls on in UTC.
func TruncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Days returns the inclusive number of calendar days between start and end.
// Zero dates, and ranges where end precedes start, count as a single day.
func Days(start, end time.Time) int {
	if start.IsZero() || end.IsZero() {
		return 1
	}
	// Whole seconds between UTC midnights: time.Duration would saturate
	// after about 292 years.
	n := (TruncateDay(end).Unix()-TruncateDay(start).Unix())/secondsPerDay + 1
	if n < 1 {
		return 1
	}
	return int(n)
}

// DaysBetween is Days over string dates. Missing or unparseable input yields 1.
func DaysBetween(start, end string) int {
	s, err := ParseDate(start)
	if err != nil {
		return 1
	}
	e, err := ParseDate(end)
	if err != nil {
		return 1
	}
	return Days(s, e)
}
