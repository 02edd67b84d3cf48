package enums

import (
	"fmt"
	"slices"
)

func isOneOf[T ~string](values []T, v T) bool {
	return slices.Contains(values, v)
}

func parseOneOf[T ~string](values []T, raw, label string) (T, error) {
	for _, candidate := range values {
		if string(candidate) == raw {
			return candidate, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("invalid %s %q", label, raw)
}

func stringsOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
