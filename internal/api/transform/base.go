package transform

import (
	"time"
)

const (
	DefTimeFormat = time.RFC3339
)

// FormatTime renders a timestamp in UTC, nil for nil.
func FormatTime(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}

	s := t.UTC().Format(DefTimeFormat)

	return &s
}
