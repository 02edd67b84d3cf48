package validators

import (
	"strings"
	"unicode"
)

// SanitizeString trims s, drops control characters, collapses runs of
// whitespace and caps the result at maxRunes runes. Crop and city names are
// often Devanagari or Tamil, so the cap counts runes rather than bytes.
func SanitizeString(s string, maxRunes int) string {
	var b strings.Builder
	b.Grow(len(s))
	count := 0
	space := false
	for _, r := range strings.TrimSpace(s) {
		if maxRunes > 0 && count >= maxRunes {
			break
		}
		switch {
		case unicode.IsSpace(r):
			space = true
			continue
		case unicode.IsControl(r):
			continue
		}
		if space && count > 0 {
			if maxRunes > 0 && count+1 >= maxRunes {
				break
			}
			b.WriteByte(' ')
			count++
		}
		space = false
		b.WriteRune(r)
		count++
	}
	return b.String()
}
