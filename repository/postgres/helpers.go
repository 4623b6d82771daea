package postgres

import (
	"encoding/json"
	"time"

	"github.com/fastygo/taskpulse/repository"
)

// rowScanner is satisfied by pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func marshalMap(data map[string]string) []byte {
	if len(data) == 0 {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	return b
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

func nullTimePtr(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// textArray keeps NULL out of array columns.
func textArray(v []string) []string {
	if v == nil {
		return []string{}
	}
	return v
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 100 {
		return 100
	}
	return limit
}

// limitArg returns NULL for unbounded listings, which Postgres treats as no limit.
func limitArg(limit int, unbounded bool) interface{} {
	if unbounded {
		return nil
	}
	return clampLimit(limit)
}

func taskLimit(f repository.TaskFilter) interface{} { return limitArg(f.Limit, f.Unbounded) }
