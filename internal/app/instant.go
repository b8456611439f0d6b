package app

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ParseInstant parses RFC 3339 timestamps (fractional seconds optional) and
// plain dates, which are taken as UTC midnight. Instants are returned in UTC
// with millisecond precision.
func ParseInstant(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, dateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Truncate(time.Millisecond), nil
		}
	}
	return time.Time{}, fmt.Errorf("incorrect instant %q: %w", s, ErrInvalidRange)
}
