package ics

import (
	"strings"
	"time"
)

// Records parses an iCalendar body and flattens every occurrence into a
// raw feed record, the same loosely typed shape the JSON feeds use:
//
//	start, summary, event, location, stadium, home, away
//
// home/away are only set when the summary reads "Home - Away".
func Records(sourceID string, body []byte, cfg ExpandConfig) ([]any, error) {
	events, err := ParseICS(sourceID, body, cfg.Location)
	if err != nil {
		return nil, err
	}
	occs, err := ExpandOccurrences(events, cfg)
	if err != nil {
		return nil, err
	}

	out := make([]any, 0, len(occs))
	for _, occ := range occs {
		rec := map[string]any{
			"uid":     occ.UID,
			"start":   occ.Start.Format(time.RFC3339),
			"summary": occ.Summary,
			"event":   occ.Summary,
		}
		if occ.Location != "" {
			rec["location"] = occ.Location
			rec["stadium"] = occ.Location
		}
		if home, away, ok := splitTeams(occ.Summary); ok {
			rec["home"] = home
			rec["away"] = away
		}
		out = append(out, rec)
	}
	return out, nil
}

func splitTeams(summary string) (string, string, bool) {
	home, away, found := strings.Cut(summary, " - ")
	if !found {
		return "", "", false
	}
	home, away = strings.TrimSpace(home), strings.TrimSpace(away)
	if home == "" || away == "" {
		return "", "", false
	}
	return home, away, true
}
