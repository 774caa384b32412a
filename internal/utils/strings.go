package utils

import "strings"

// ParseCSV splits a comma-separated string into trimmed non-empty values,
// returning nil when nothing usable remains. Used to parse ticker lists
// supplied via environment variables.
func ParseCSV(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' })

	result := make([]string, 0, len(fields))
	for _, field := range fields {
		if trimmed := strings.TrimSpace(field); trimmed != "" {
			result = append(result, trimmed)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}
