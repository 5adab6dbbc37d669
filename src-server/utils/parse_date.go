package utils

import (
	"fmt"
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// Accepts RFC 3339 (and its date-only prefixes, read in the configured timezone)
// or a natural-language expression such as "next friday 6pm".
func (as *AppState) ParseDate(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("ParseDate: date is blank")
	}
	loc := as.Config.GetLocation()
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), nil
		}
	}

	result, err := as.When.Parse(s, now.In(loc))
	if err != nil {
		return time.Time{}, fmt.Errorf("ParseDate: %w", err)
	}
	if result == nil {
		return time.Time{}, fmt.Errorf("ParseDate: can't understand %q", s)
	}
	return result.Time.UTC(), nil
}
