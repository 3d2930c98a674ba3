package fixture

import (
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"fixturecal/internal/model"
)

// Display defaults for absent fields.
const (
	TeamPlaceholder   = "TBA"
	SportPlaceholder  = "Vintersport"
	EventPlaceholder  = "Event"
	UnknownChannel    = "Ukjent kanal"
	titleSeparator    = " – "
	epochMillisCutoff = 1e11
)

// Candidate field names per logical field, first present wins.
var (
	whenKeys = map[model.Kind][]string{
		model.KindFootball:    {"kickoff", "start", "time", "datetime", "dateTime", "date"},
		model.KindHandball:    {"kickoff", "start", "time", "datetime", "dateTime", "date"},
		model.KindTournament:  {"kickoff", "start", "time", "datetime", "dateTime", "date"},
		model.KindWintersport: {"start", "time", "datetime", "dateTime", "date"},
	}

	homeKeys    = []string{"home", "homeTeam", "home_name"}
	awayKeys    = []string{"away", "awayTeam", "away_name"}
	sportKeys   = []string{"sport"}
	eventKeys   = []string{"event", "title", "name"}
	channelKeys = []string{"channel", "tv", "broadcast"}
	whereKeys   = []string{"where", "pubs"}
	leagueKeys  = []string{"league", "competition"}
	locKeys     = []string{"location", "venue"}
	groupKeys   = []string{"group"}
	cityKeys    = []string{"city"}
	stadiumKeys = []string{"stadium", "venue"}
)

// zone-less layouts are read in the display location.
var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02T15:04Z07:00",
	}
	localLayouts = []string{
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
		"2006-01-02",
	}
)

// WhenKeys returns the timestamp field names tried for kind.
func WhenKeys(kind model.Kind) []string {
	if keys, ok := whenKeys[kind]; ok {
		return keys
	}
	return whenKeys[model.KindFootball]
}

// Normalize maps a raw record onto a model.Event. It never fails: anything
// missing or malformed becomes an explicit default, and a timestamp that
// cannot be read leaves When nil. loc is used for timestamps that carry no
// offset.
func Normalize(raw any, kind model.Kind, loc *time.Location) model.Event {
	rec, _ := raw.(map[string]any)
	if loc == nil {
		loc = time.UTC
	}

	ev := model.Event{
		Kind:    kind,
		Channel: textOr(rec, channelKeys, UnknownChannel),
		Where:   []string{},
	}

	if v, ok := Lookup(rec, WhenKeys(kind)); ok {
		ev.When = ParseWhen(v, loc)
	}

	switch kind {
	case model.KindWintersport:
		ev.Title = textOr(rec, sportKeys, SportPlaceholder) + titleSeparator + textOr(rec, eventKeys, EventPlaceholder)
		ev.Location = textOr(rec, locKeys, "")
	default:
		ev.Title = textOr(rec, homeKeys, TeamPlaceholder) + titleSeparator + textOr(rec, awayKeys, TeamPlaceholder)
	}

	switch kind {
	case model.KindFootball, model.KindHandball:
		if v, ok := Lookup(rec, whereKeys); ok {
			ev.Where = toList(v)
		}
		ev.League = textOr(rec, leagueKeys, "")
	case model.KindTournament:
		ev.Group = textOr(rec, groupKeys, "")
		ev.City = textOr(rec, cityKeys, "")
		ev.Stadium = textOr(rec, stadiumKeys, "")
	}

	return ev
}

// Lookup returns the value of the first key in keys that is present and
// not empty. nil, blank strings and empty lists count as empty.
func Lookup(rec map[string]any, keys []string) (any, bool) {
	for _, k := range keys {
		v, ok := rec[k]
		if !ok || isEmpty(v) {
			continue
		}
		return v, true
	}
	return nil, false
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	case []any:
		return len(t) == 0
	default:
		return false
	}
}

// ParseWhen reads a timestamp value. Strings are tried as RFC3339 and a few
// common feed layouts, then handed to dateparse if they start with a digit.
// Numbers are epoch milliseconds (or seconds, when too small to be millis).
func ParseWhen(v any, loc *time.Location) *time.Time {
	switch t := v.(type) {
	case float64:
		var ts time.Time
		if t < epochMillisCutoff {
			ts = time.Unix(int64(t), 0)
		} else {
			ts = time.UnixMilli(int64(t))
		}
		return &ts
	case string:
		return parseTimestamp(strings.TrimSpace(t), loc)
	default:
		return nil
	}
}

func parseTimestamp(s string, loc *time.Location) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range zonedLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return &ts
		}
	}
	// Zone-less values are civil times in loc. A bare "2026-05-17" is
	// midnight in loc, not midnight UTC, so it lands on that day's cell.
	for _, layout := range localLayouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return &ts
		}
	}
	if s[0] < '0' || s[0] > '9' {
		return nil
	}
	ts, err := dateparse.ParseIn(s, loc)
	if err != nil {
		return nil
	}
	return &ts
}

func textOr(rec map[string]any, keys []string, def string) string {
	v, ok := Lookup(rec, keys)
	if !ok {
		return def
	}
	if s := toText(v); s != "" {
		return s
	}
	return def
}

func toText(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// toList accepts a list of scalars or a comma-separated string.
func toList(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case []any:
		for _, el := range t {
			if s := toText(el); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, part := range strings.Split(t, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
