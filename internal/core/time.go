package core

import (
	"errors"
	"strings"
	"time"

	"github.com/jinzhu/now"
)

var errNoDate = errors.New("time has no date part")

// NormalizeTime stores every timestamp as UTC with millisecond precision so
// both sqlite and postgres round-trip it unchanged.
func NormalizeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// ParseTime accepts RFC 3339 timestamps and the looser layouts understood by
// jinzhu/now ("2024-01-15", "2024-01-15 10:30"). Zone-less values are UTC.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return NormalizeTime(t), nil
	}
	// jinzhu/now also takes bare clock times ("5", "10:30") as today
	if !strings.ContainsAny(s, "-/") {
		return time.Time{}, errNoDate
	}
	t, err := now.ParseInLocation(time.UTC, s)
	if err != nil {
		return time.Time{}, err
	}
	return NormalizeTime(t), nil
}
