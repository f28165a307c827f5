package db

import (
	"database/sql"
	"errors"
	"time"
)

// Timestamps are persisted as UTC text so the same SQL works on both sqlite
// and postgres. The fractional part is fixed-width: RFC3339Nano trims
// trailing zeros, which would make lexicographic ORDER BY diverge from time
// order whenever one fractional part is a prefix of another.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime encodes a timestamp for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// NullableTime encodes an optional timestamp, mapping nil to NULL.
func NullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return FormatTime(*t)
}

// ParseTime decodes a stored timestamp.
func ParseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, value)
}

// ParseNullTime decodes an optional stored timestamp.
func ParseNullTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	t, err := ParseTime(value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
