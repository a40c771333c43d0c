package postgres

import "time"

func nullTime(t *time.Time) interface{} {
	if t == nil || t.IsZero() {
		return nil
	}
	return *t
}

func clampLimit(limit int) int {
	if limit < 0 || limit > 500 {
		return 500
	}
	return limit
}
