// Package textfix repairs mojibake: UTF-8 text that was decoded as
// Windows-1252/Latin-1 somewhere upstream and re-encoded, so that "ø"
// arrives as "Ã¸".
package textfix

import (
	"maps"
	"slices"
	"strings"
)

// replacement is a single literal substitution.
type replacement struct {
	from string
	to   string
}

// table is applied top to bottom. No entry's "from" is a substring of an
// earlier entry's "from", and the stray "Â" deletion runs last so it can
// never eat the lead byte of a longer sequence.
var table = []replacement{
	{"Ã¸", "ø"},
	{"Ã¥", "å"},
	{"Ã¦", "æ"},
	{"Ã˜", "Ø"},
	{"Ã…", "Å"},
	{"Ã†", "Æ"},
	{"â€“", "–"},
	{"â€”", "—"},
	{"â€™", "’"},
	{"â€œ", "“"},
	{"â€�", "”"},
	{"â€¦", "…"},
	{"Â", ""},
}

// String returns s with every table sequence replaced.
//
// The table is re-applied until nothing matches: a deletion or replacement
// can splice two fragments into a fresh "from" sequence ("ÃÂ¸" -> "Ã¸").
// Every substitution shortens the string, so the loop terminates.
func String(s string) string {
	for {
		out := applyOnce(s)
		if out == s {
			return out
		}
		s = out
	}
}

func applyOnce(s string) string {
	for _, r := range table {
		if strings.Contains(s, r.from) {
			s = strings.ReplaceAll(s, r.from, r.to)
		}
	}
	return s
}

// Contains reports whether s still holds any table sequence.
func Contains(s string) bool {
	for _, r := range table {
		if strings.Contains(s, r.from) {
			return true
		}
	}
	return false
}

// Value repairs every string inside a decoded JSON value: strings, slice
// elements, map keys and map values. Maps and slices are rebuilt rather than
// edited in place; the argument is left untouched.
//
// When two keys of one object collapse onto the same repaired key, the
// entry whose key was already clean wins, otherwise the one with the
// smallest original key.
func Value(v any) any {
	switch t := v.(type) {
	case string:
		return String(t)
	case []any:
		out := make([]any, len(t))
		for i, el := range t {
			out[i] = Value(el)
		}
		return out
	case map[string]any:
		return rebuildObject(t, String, Value)
	default:
		return v
	}
}

// rebuildObject copies m with every key passed through key and every value
// through val. Keys are visited in sorted order so collisions resolve the
// same way on every call.
func rebuildObject(m map[string]any, key func(string) string, val func(any) any) map[string]any {
	out := make(map[string]any, len(m))
	for _, k := range slices.Sorted(maps.Keys(m)) {
		fixed := key(k)
		if _, taken := out[fixed]; taken && fixed != k {
			continue
		}
		out[fixed] = val(m[k])
	}
	return out
}
