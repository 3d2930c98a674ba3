package textfix

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// LooksCorrupted reports whether s contains a lead character typical for
// UTF-8 bytes that were read as Windows-1252.
func LooksCorrupted(s string) bool {
	return strings.ContainsAny(s, "ÃÂâ")
}

// Recode undoes a whole-string Windows-1252 misdecode: the runes are
// encoded back to single bytes and those bytes are read as UTF-8.
// s is returned unchanged if it does not look corrupted, if it holds a
// rune outside Windows-1252, or if the bytes are not valid UTF-8.
func Recode(s string) string {
	if !LooksCorrupted(s) {
		return s
	}
	raw, err := charmap.Windows1252.NewEncoder().String(s)
	if err != nil {
		return s
	}
	if !utf8.ValidString(raw) {
		return s
	}
	return raw
}

// RecodeValue applies Recode to every string and key of a decoded JSON
// value, rebuilding containers like Value does. Key collisions resolve
// the same way.
func RecodeValue(v any) any {
	switch t := v.(type) {
	case string:
		return Recode(t)
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = RecodeValue(el)
		}
		return out
	case map[string]any:
		return rebuildObject(t, Recode, RecodeValue)
	default:
		return v
	}
}
