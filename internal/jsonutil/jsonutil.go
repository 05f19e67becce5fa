// Package jsonutil holds JSON decoding helpers: positioned decode errors for
// hand-edited layout files and typed access to panel params, which arrive as
// map[string]any after a round trip through JSON.
package jsonutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// UnmarshalWithContext unmarshals data into v. Errors are prefixed with
// context and, for syntax and type errors, the line and column.
func UnmarshalWithContext(data []byte, v any, context string) error {
	err := json.Unmarshal(data, v)
	if err == nil {
		return nil
	}
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		line, col := Position(data, syn.Offset)
		return fmt.Errorf("%s: line %d, column %d: %w", context, line, col, err)
	}
	var typ *json.UnmarshalTypeError
	if errors.As(err, &typ) {
		line, col := Position(data, typ.Offset)
		return fmt.Errorf("%s: line %d, column %d: %w", context, line, col, err)
	}
	return fmt.Errorf("%s: %w", context, err)
}

// Position converts a byte offset in data to a 1-based line and column.
func Position(data []byte, offset int64) (line, col int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	if offset < 0 {
		offset = 0
	}
	prefix := data[:offset]
	line = bytes.Count(prefix, []byte("\n")) + 1
	col = int(offset) - (bytes.LastIndexByte(prefix, '\n') + 1)
	if col == 0 {
		col = 1
	}
	return line, col
}

// GetString returns m[key] if it is a string, otherwise "".
func GetString(m map[string]any, key string) string {
	return GetStringOr(m, key, "")
}

// GetStringOr returns m[key] if it is a string, otherwise def.
func GetStringOr(m map[string]any, key, def string) string {
	if val, ok := m[key].(string); ok {
		return val
	}
	return def
}

// GetInt returns m[key] as an int. JSON numbers decode as float64; whole
// values are accepted, anything else yields def.
func GetInt(m map[string]any, key string, def int) int {
	switch val := m[key].(type) {
	case int:
		return val
	case float64:
		if val == float64(int64(val)) {
			return int(val)
		}
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return int(n)
		}
	}
	return def
}

// GetBool returns m[key] if it is a bool, otherwise def.
func GetBool(m map[string]any, key string, def bool) bool {
	if val, ok := m[key].(bool); ok {
		return val
	}
	return def
}

// ToString renders a decoded JSON value for display. Whole numbers print
// without a fraction.
func ToString(v any) string {
	if v == nil {
		return ""
	}
	switch val := v.(type) {
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%.0f", val)
		}
		return fmt.Sprintf("%g", val)
	case bool:
		return fmt.Sprintf("%t", val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	}
}
