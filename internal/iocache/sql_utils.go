package iocache

import (
	"fmt"
	"regexp"
	"time"

	"github.com/huangsam/githours/schema"
)

var tableNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// validateTableName rejects anything that is not a plain SQL identifier.
func validateTableName(name string) error {
	if name == "" {
		return fmt.Errorf("table name cannot be empty")
	}
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name: %s (must match pattern %s)", name, tableNamePattern)
	}
	return nil
}

// quoteTableName returns the properly quoted table name for the given backend.
func quoteTableName(name string, backend schema.DatabaseBackend) string {
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf("`%s`", name)
	default: // SQLite and PostgreSQL
		return fmt.Sprintf("%q", name)
	}
}

// placeholders returns n bind parameters in the dialect of the backend.
func placeholders(backend schema.DatabaseBackend, n int) []string {
	out := make([]string, n)
	for i := range out {
		if backend == schema.PostgreSQLBackend {
			out[i] = fmt.Sprintf("$%d", i+1)
		} else {
			out[i] = "?"
		}
	}
	return out
}

// formatTime converts a time.Time to the column representation of the backend.
// SQLite keeps times as RFC3339Nano text.
func formatTime(t time.Time, backend schema.DatabaseBackend) any {
	if backend == schema.SQLiteBackend {
		return t.UTC().Format(time.RFC3339Nano)
	}
	return t
}

// timeScanner reads a time column regardless of how the backend stores it.
type timeScanner struct {
	backend schema.DatabaseBackend
	text    string
	native  time.Time
}

// target returns the destination to pass to Scan.
func (ts *timeScanner) target() any {
	if ts.backend == schema.SQLiteBackend {
		return &ts.text
	}
	return &ts.native
}

// value returns the scanned time.
func (ts *timeScanner) value() (time.Time, error) {
	if ts.backend == schema.SQLiteBackend {
		return time.Parse(time.RFC3339Nano, ts.text)
	}
	return ts.native, nil
}

// nullTimeScanner is timeScanner for nullable columns.
type nullTimeScanner struct {
	backend schema.DatabaseBackend
	text    *string
	native  *time.Time
}

func (ts *nullTimeScanner) target() any {
	if ts.backend == schema.SQLiteBackend {
		return &ts.text
	}
	return &ts.native
}

func (ts *nullTimeScanner) value() (*time.Time, error) {
	if ts.backend != schema.SQLiteBackend {
		return ts.native, nil
	}
	if ts.text == nil {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, *ts.text)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
