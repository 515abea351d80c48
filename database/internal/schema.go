// Package internal holds helpers shared by the SQL backends.
package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Column is the expected or observed shape of one table column.
type Column struct {
	DataType   string
	IsNullable bool
}

// CompareColumns reports every column of expected that is missing from actual
// or differs in type or nullability. Extra columns in actual are allowed.
func CompareColumns(tableName string, expected, actual map[string]Column) error {
	var missing, mismatched []string

	names := make([]string, 0, len(expected))
	for name := range expected {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		want := expected[name]
		got, ok := actual[name]
		if !ok {
			missing = append(missing, name)
			continue
		}

		if got.DataType != want.DataType {
			mismatched = append(mismatched, fmt.Sprintf("%s: expected %s, got %s", name, want.DataType, got.DataType))
		}
		if got.IsNullable != want.IsNullable {
			mismatched = append(mismatched, fmt.Sprintf("%s: expected nullable=%v, got nullable=%v", name, want.IsNullable, got.IsNullable))
		}
	}

	if len(missing) == 0 && len(mismatched) == 0 {
		return nil
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "table %s schema validation failed:\n", tableName)
	if len(missing) > 0 {
		fmt.Fprintf(&msg, "  missing columns: %s\n", strings.Join(missing, ", "))
	}
	if len(mismatched) > 0 {
		msg.WriteString("  mismatched columns:\n")
		for _, m := range mismatched {
			fmt.Fprintf(&msg, "    - %s\n", m)
		}
	}

	return errors.New(msg.String())
}

// EncodeFileInfo serializes file info for storage. Empty info becomes "{}".
func EncodeFileInfo(info map[string]string) ([]byte, error) {
	if len(info) == 0 {
		return []byte("{}"), nil
	}
	return json.Marshal(info)
}

// DecodeFileInfo parses stored file info. An empty object decodes to nil.
func DecodeFileInfo(data []byte) (map[string]string, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var info map[string]string
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("decode file info: %w", err)
	}
	if len(info) == 0 {
		return nil, nil
	}
	return info, nil
}
