package openf1

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Record is one loosely-typed provider row.
type Record map[string]any

// Float resolves the first alias present with a usable numeric value.
// JSON numbers arrive as float64; numeric strings are coerced.
func (r Record) Float(aliases ...string) (float64, bool) {
	for _, alias := range aliases {
		raw, ok := r[alias]
		if !ok || raw == nil {
			continue
		}
		switch v := raw.(type) {
		case float64:
			if math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			return v, true
		case int:
			return float64(v), true
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				continue
			}
			return parsed, true
		case bool:
			if v {
				return 1, true
			}
			return 0, true
		}
	}
	return 0, false
}

// Int resolves the first alias holding a whole number.
func (r Record) Int(aliases ...string) (int, bool) {
	f, ok := r.Float(aliases...)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// String resolves the first alias holding a non-empty string.
func (r Record) String(aliases ...string) (string, bool) {
	for _, alias := range aliases {
		raw, ok := r[alias]
		if !ok || raw == nil {
			continue
		}
		if s, isString := raw.(string); isString {
			s = strings.TrimSpace(s)
			if s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// Time resolves the first alias holding a parseable timestamp. Accepted
// layouts cover the provider's observed date encodings.
func (r Record) Time(aliases ...string) (time.Time, bool) {
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.999999",
		"2006-01-02T15:04:05",
		"2006-01-02",
	}
	for _, alias := range aliases {
		raw, ok := r[alias]
		if !ok || raw == nil {
			continue
		}
		s, isString := raw.(string)
		if !isString {
			continue
		}
		s = strings.TrimSpace(s)
		for _, layout := range layouts {
			if ts, err := time.Parse(layout, s); err == nil {
				return ts.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

// RequireFields reports an explicit error naming the first logical field for
// which no alias candidate resolved, instead of silently defaulting. A field
// counts as present when any record resolves it; rows vary within one fetch.
func RequireFields(records []Record, fields map[string][]string) error {
	if len(records) == 0 {
		return nil
	}
	for logical, aliases := range fields {
		if anyRecordResolves(records, aliases) {
			continue
		}
		return fmt.Errorf("%w: no candidate for %q among %v", ErrMissingField, logical, aliases)
	}
	return nil
}

func anyRecordResolves(records []Record, aliases []string) bool {
	for _, record := range records {
		if _, ok := record.Float(aliases...); ok {
			return true
		}
		if _, ok := record.String(aliases...); ok {
			return true
		}
		if _, ok := record.Time(aliases...); ok {
			return true
		}
	}
	return false
}
