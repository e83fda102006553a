// Package domain contains the core data structures and domain logic for the application.
package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// APIDateLayout is the timestamp layout the metrics API emits for "date" fields.
const APIDateLayout = "2006-01-02T15:04:05.000Z"

var dateLayouts = []string{APIDateLayout, time.RFC3339Nano, time.RFC3339, "2006-01-02"}

// Record is a single transient JSON object returned by the metrics API.
// Time-series records look like {"date": ..., "<metric>": n}, categorical
// records like {"project_name": ..., "num_commits": n}.
type Record map[string]any

// Dataset is the array of records returned for one metric.
type Dataset []Record

// Has reports whether the record carries the given field.
func (r Record) Has(key string) bool {
	_, ok := r[key]
	return ok
}

// Float returns the field as a float64. JSON numbers, numeric strings and
// booleans are accepted.
func (r Record) Float(key string) (float64, error) {
	v, ok := r[key]
	if !ok {
		return 0, fmt.Errorf("field %q is missing", key)
	}
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("field %q is not numeric: %w", key, err)
		}
		return f, nil
	case bool:
		if n {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("field %q has non-numeric type %T", key, v)
	}
}

// String returns the field formatted as a string.
func (r Record) String(key string) string {
	v, ok := r[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Time returns the field as a time.Time. Already-converted values are
// returned as is; strings are parsed with the API layout first.
func (r Record) Time(key string) (time.Time, error) {
	v, ok := r[key]
	if !ok {
		return time.Time{}, fmt.Errorf("field %q is missing", key)
	}
	switch t := v.(type) {
	case time.Time:
		return t, nil
	case string:
		return ParseDate(t)
	default:
		return time.Time{}, fmt.Errorf("field %q has non-date type %T", key, v)
	}
}

// ParseDate parses a date string in any of the layouts the API is known to emit.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ConvertDates returns a copy of the dataset with the given field parsed into
// time.Time values. The input is left untouched.
func ConvertDates(data Dataset, key string) (Dataset, error) {
	out := make(Dataset, len(data))
	for i, rec := range data {
		t, err := rec.Time(key)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		cp := make(Record, len(rec))
		for k, v := range rec {
			cp[k] = v
		}
		cp[key] = t
		out[i] = cp
	}
	return out, nil
}
