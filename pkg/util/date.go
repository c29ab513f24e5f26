package util

import "YieldDesk/pkg/date"

// ParseDateDefault parses YYYY-MM-DD, returning def when s is empty.
// A malformed s is an error, never def.
func ParseDateDefault(s string, def date.Date) (date.Date, error) {
	if s == "" {
		return def, nil
	}
	return date.Parse(s)
}

// ParseDate parses YYYY-MM-DD, treating "" as the zero date.
func ParseDate(s string) (date.Date, error) {
	return ParseDateDefault(s, date.Date{})
}
