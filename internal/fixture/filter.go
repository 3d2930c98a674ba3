package fixture

import (
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"fixturecal/internal/model"
)

// Window is the inclusion rule for one filtering pass. It is built fresh
// from the wall clock on every pass.
type Window struct {
	// Start and End are both inclusive.
	Start time.Time
	End   time.Time

	// Year replaces Start/End for tournament events: they are kept if they
	// fall inside this calendar year in Location.
	Year     int
	Location *time.Location
}

// NewWindow returns [now-tolerance, end] with the tournament year and
// display location attached.
func NewWindow(now time.Time, tolerance time.Duration, end time.Time, year int, loc *time.Location) Window {
	if loc == nil {
		loc = time.UTC
	}
	return Window{
		Start:    now.Add(-tolerance),
		End:      end,
		Year:     year,
		Location: loc,
	}
}

// Admits reports whether an event's time satisfies the window. Events
// without a resolved time never pass.
func (w Window) Admits(e model.Event) bool {
	if e.When == nil {
		return false
	}
	if e.Kind == model.KindTournament {
		loc := w.Location
		if loc == nil {
			loc = time.UTC
		}
		return e.When.In(loc).Year() == w.Year
	}
	return !e.When.Before(w.Start) && !e.When.After(w.End)
}

// NormalizeQuery lowercases and trims raw user input.
func NormalizeQuery(raw string) string {
	return strings.TrimSpace(lower(raw))
}

// Matches reports whether the event's display text contains query.
// query must already be normalized; an empty query matches everything.
func Matches(e model.Event, query string) bool {
	if query == "" {
		return true
	}
	return strings.Contains(lower(e.SearchText()), query)
}

// Filter keeps the events admitted by w and matching query, preserving
// order.
func Filter(events []model.Event, w Window, query string) []model.Event {
	out := make([]model.Event, 0, len(events))
	for _, e := range events {
		if !w.Admits(e) || !Matches(e, query) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// lower uses Norwegian casing rules. A Caser holds state, so each call
// gets its own.
func lower(s string) string {
	return cases.Lower(language.Norwegian).String(s)
}
