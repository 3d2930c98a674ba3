package fixture

import (
	"time"

	"fixturecal/internal/model"
)

// Build runs the whole pipeline on a parsed document: locate the records,
// normalize them, keep what the window and query admit, order by time.
func Build(doc any, kind model.Kind, w Window, query string) []model.Event {
	loc := w.Location
	if loc == nil {
		loc = time.UTC
	}

	records := ResolveList(doc, ListKeys(kind))
	events := make([]model.Event, 0, len(records))
	for _, rec := range records {
		events = append(events, Normalize(rec, kind, loc))
	}

	out := Filter(events, w, query)
	SortByWhen(out)
	return out
}
