package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout is the calendar-date form every stored entry uses.
const DateLayout = "2006-01-02"

// ErrInvalidDate indicates that a date string could not be parsed.
var ErrInvalidDate = errors.New("invalid date")

// Layouts carrying an explicit offset (or none at all for a bare date) are
// read as absolute times; bare date-times are read in the local zone.
var (
	absoluteLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05Z0700", "2006-01-02T15:04Z07:00"}
	localLayouts    = []string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02 15:04"}
)

// NormalizeDate parses raw, converts it to an absolute instant and returns
// the UTC calendar date of that instant in YYYY-MM-DD form.
func NormalizeDate(raw string) (string, error) {
	t, err := ParseDate(raw)
	if err != nil {
		return "", err
	}
	return t.UTC().Format(DateLayout), nil
}

// ParseDate parses the date formats accepted from clients and the API.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}
	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}
