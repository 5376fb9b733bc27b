package feature

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// ValidationError reports user-correctable input problems: required keys that
// were absent and values that could not be coerced. It always lists every
// offending field, not just the first.
type ValidationError struct {
	Missing   []string
	Malformed []string
}

func (e *ValidationError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing fields: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Malformed) > 0 {
		parts = append(parts, "malformed fields: "+strings.Join(e.Malformed, ", "))
	}
	return "validation: " + strings.Join(parts, "; ")
}

// Build validates and coerces a raw field map into a record laid out in exact
// schema order. Empty strings and nulls become the missing sentinel; resolving
// missing values is the imputer's job, never the builder's. Keys not named by
// the schema are dropped. Pure: the raw map is never mutated.
func Build(raw map[string]any, schema Schema) (*Record, error) {
	verr := &ValidationError{}
	rec := NewRecord(len(schema))

	for _, f := range schema {
		rv, present := raw[f.Name]
		if !present {
			if f.Required {
				verr.Missing = append(verr.Missing, f.Name)
				continue
			}
			_ = rec.Append(f.Name, Missing(f.Kind))
			continue
		}

		v, ok := coerce(rv, f.Kind)
		if !ok {
			verr.Malformed = append(verr.Malformed, f.Name)
			continue
		}
		_ = rec.Append(f.Name, v)
	}

	if len(verr.Missing) > 0 || len(verr.Malformed) > 0 {
		return nil, verr
	}
	return rec, nil
}

// coerce converts a raw JSON-like scalar to a typed cell.
func coerce(raw any, kind Kind) (Value, bool) {
	if raw == nil {
		return Missing(kind), true
	}

	switch kind {
	case Numeric:
		if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
			return Missing(kind), true
		}
		n, ok := toFloat(raw)
		if !ok {
			return Value{}, false
		}
		return Num(n), true

	case Binary:
		return coerceBinary(raw)

	case Categorical:
		switch s := raw.(type) {
		case string:
			if strings.TrimSpace(s) == "" {
				return Missing(kind), true
			}
			return Cat(s), true
		default:
			return Cat(fmt.Sprintf("%v", raw)), true
		}
	}
	return Value{}, false
}

// coerceBinary normalizes Yes/No, true/false, and 1/0 (numeric or string) to a
// 0/1 flag. Anything unrecognized falls back to 0, matching the fitted
// pipeline's conservative no-flag treatment.
func coerceBinary(raw any) (Value, bool) {
	switch v := raw.(type) {
	case bool:
		if v {
			return Bin(1), true
		}
		return Bin(0), true
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return Missing(Binary), true
		}
		switch strings.ToLower(s) {
		case "yes", "true", "1":
			return Bin(1), true
		case "no", "false", "0":
			return Bin(0), true
		}
		return Bin(0), true
	default:
		n, ok := toFloat(raw)
		if !ok {
			return Value{}, false
		}
		if n != 0 {
			return Bin(1), true
		}
		return Bin(0), true
	}
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		n, err := v.Float64()
		return n, err == nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return n, err == nil
	}
	return 0, false
}
