// Package fixture turns loosely structured feed documents into ordered,
// window-filtered model.Event lists. Everything here is a pure function of
// its arguments.
package fixture

import "fixturecal/internal/model"

// ListKeys returns the field names, in priority order, under which a
// document of the given kind may wrap its record list.
func ListKeys(kind model.Kind) []string {
	switch kind {
	case model.KindWintersport:
		return []string{"events", "items"}
	default:
		return []string{"games", "matches", "items"}
	}
}

// ResolveList locates the record list in doc. A bare list is returned as
// is; otherwise the first candidate key holding a list wins. Anything else
// yields an empty list, never an error.
func ResolveList(doc any, candidateKeys []string) []any {
	if list, ok := doc.([]any); ok {
		return list
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return []any{}
	}
	for _, key := range candidateKeys {
		if list, ok := obj[key].([]any); ok {
			return list
		}
	}
	return []any{}
}
