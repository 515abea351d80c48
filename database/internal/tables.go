package internal

import (
	"errors"
	"fmt"
	"regexp"
)

// Tables holds configurable table names for file record storage.
type Tables struct {
	Files string `mapstructure:"files"`
}

var tableNamePattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// maxTableNameLen is the PostgreSQL identifier limit; SQLite shares it here.
const maxTableNameLen = 63

// IsValidTableName reports whether name is a lowercase identifier safe to quote into SQL.
func IsValidTableName(name string) bool {
	return len(name) <= maxTableNameLen && tableNamePattern.MatchString(name)
}

// Validate checks that every table name is set and valid.
func (t Tables) Validate() error {
	if t.Files == "" {
		return errors.New("validate tables: files table name cannot be empty")
	}
	if !IsValidTableName(t.Files) {
		return fmt.Errorf("validate tables: invalid files table name %q (want ^[a-z_][a-z0-9_]*$, at most %d chars)", t.Files, maxTableNameLen)
	}
	return nil
}
