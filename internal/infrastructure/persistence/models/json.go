package models

import (
	"encoding/json"

	"go.uber.org/zap"
)

var modelLogger = zap.L().Named("persistence.models")

// marshalJSON serializes a value to a JSON string, returning the fallback
// when serialization fails.
func marshalJSON(v any, fallback string) string {
	if v == nil {
		return fallback
	}
	data, err := json.Marshal(v)
	if err != nil {
		modelLogger.Warn("failed to serialize JSON column", zap.Error(err))
		return fallback
	}
	// Nil slices and maps serialize to "null", which breaks jsonb defaults
	if string(data) == "null" {
		return fallback
	}
	return string(data)
}

// unmarshalValueMap parses a JSON object column into a map. A missing or
// malformed column yields an empty map so callers never see nil.
func unmarshalValueMap(raw string) map[string]any {
	result := make(map[string]any)
	if raw == "" || raw == "{}" {
		return result
	}
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		modelLogger.Warn("failed to parse JSON object column", zap.String("raw_json", raw), zap.Error(err))
		return make(map[string]any)
	}
	return result
}

// unmarshalStringMap parses a JSON object column with string values.
func unmarshalStringMap(raw string) map[string]string {
	result := make(map[string]string)
	if raw == "" || raw == "{}" {
		return result
	}
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		modelLogger.Warn("failed to parse JSON object column", zap.String("raw_json", raw), zap.Error(err))
		return make(map[string]string)
	}
	return result
}

// unmarshalStringSlice parses a JSON array column of strings.
func unmarshalStringSlice(raw string) []string {
	if raw == "" || raw == "[]" {
		return nil
	}
	var result []string
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		modelLogger.Warn("failed to parse JSON array column", zap.String("raw_json", raw), zap.Error(err))
		return nil
	}
	return result
}

// unmarshalOptionSets parses a JSON column mapping parent values to option lists.
func unmarshalOptionSets(raw string) map[string][]string {
	if raw == "" || raw == "{}" {
		return nil
	}
	result := make(map[string][]string)
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		modelLogger.Warn("failed to parse JSON object column", zap.String("raw_json", raw), zap.Error(err))
		return nil
	}
	return result
}
