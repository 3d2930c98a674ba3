package model

import (
	"strings"
	"time"
)

// Kind is the category of a feed. It decides which field names are
// consulted during normalization and which time rule applies when filtering.
type Kind string

const (
	KindFootball    Kind = "football"
	KindHandball    Kind = "handball"
	KindWintersport Kind = "wintersport"
	KindTournament  Kind = "tournament"
)

// Kinds lists every supported kind in display order.
var Kinds = []Kind{KindFootball, KindHandball, KindWintersport, KindTournament}

// ParseKind maps a configured kind name onto the closed set.
func ParseKind(s string) (Kind, bool) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, true
		}
	}
	return "", false
}

// Event is the display-ready record produced from a raw feed record.
// It carries no feed-specific vocabulary; presentation code only ever sees
// these fields.
type Event struct {
	Kind  Kind
	Title string

	// When is nil if no timestamp could be resolved.
	When *time.Time

	// Channel is never empty; see fixture.UnknownChannel.
	Channel string

	// Football / handball.
	Where  []string
	League string

	// Wintersport.
	Location string

	// Tournament.
	Group   string
	City    string
	Stadium string
}

// HasWhen reports whether the event has a resolved instant.
func (e Event) HasWhen() bool {
	return e.When != nil
}

// SearchText joins every display field that applies to the event's kind.
// The result is not lowercased.
func (e Event) SearchText() string {
	parts := []string{e.Title, e.Channel}
	switch e.Kind {
	case KindFootball, KindHandball:
		parts = append(parts, e.Where...)
		parts = append(parts, e.League)
	case KindWintersport:
		parts = append(parts, e.Location)
	case KindTournament:
		parts = append(parts, e.Group, e.City, e.Stadium)
	}
	return strings.Join(parts, " ")
}
