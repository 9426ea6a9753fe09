// Package utils provides shared utilities for text, math, and logging.
package utils

import (
	"strconv"
	"strings"
)

// FormatVector renders v as "[a, b, c]". When maxLen is positive and v is longer,
// only the first maxLen components are shown followed by "... (n total)".
func FormatVector(v []float32, maxLen int) string {
	shown := v
	if maxLen > 0 && len(v) > maxLen {
		shown = v[:maxLen]
	}
	var b strings.Builder
	b.WriteByte('[')
	for i, x := range shown {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(strconv.FormatFloat(float64(x), 'g', 6, 32))
	}
	if len(shown) < len(v) {
		b.WriteString(", ... (")
		b.WriteString(strconv.Itoa(len(v)))
		b.WriteString(" total)")
	}
	b.WriteByte(']')
	return b.String()
}

// ParseVector parses a comma-separated list of floats such as "1, 2.5,-3".
func ParseVector(s string) ([]float32, error) {
	s = strings.Trim(strings.TrimSpace(s), "[]")
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}
