package helper

import (
	"math"
	"unicode/utf8"
)

// Truncate returns the first limit runes of s.
// A non-positive limit returns an empty string.
func Truncate(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= limit {
		return s
	}

	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}

// Round3 rounds v to three decimal places. Non-finite values are returned unchanged.
func Round3(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	return math.Round(v*1000) / 1000
}

// CleanNaN recursively replaces NaN and infinite floats with nil so the
// value can be encoded as JSON.
func CleanNaN(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		cleaned := make(map[string]interface{}, len(v))
		for key, value := range v {
			cleaned[key] = CleanNaN(value)
		}
		return cleaned
	case []interface{}:
		cleaned := make([]interface{}, len(v))
		for i, value := range v {
			cleaned[i] = CleanNaN(value)
		}
		return cleaned
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return v
	case float32:
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return nil
		}
		return v
	default:
		return v
	}
}

// FloatOrNil returns nil for non-finite values, v otherwise
func FloatOrNil(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}
