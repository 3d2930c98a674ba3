package view

import (
	"strings"
	"time"

	"fixturecal/internal/fixture"
	"fixturecal/internal/model"
)

// Day is one cell of the month grid.
type Day struct {
	Day    int           `json:"day"`
	Date   string        `json:"date"`
	Events []model.Event `json:"-"`
	// Kinds lists each kind present once, in order of first event.
	Kinds []model.Kind `json:"kinds"`
}

// MonthGrid is the data for a calendar page.
type MonthGrid struct {
	Year    int        `json:"year"`
	Month   time.Month `json:"month"`
	Label   string     `json:"label"`
	Headers []string   `json:"headers"`
	// Leading is the number of blank cells before day 1.
	Leading int   `json:"leading"`
	Days    []Day `json:"days"`
}

// ParseWeekStart maps "sunday" to time.Sunday and anything else to
// time.Monday.
func ParseWeekStart(s string) time.Weekday {
	if strings.EqualFold(strings.TrimSpace(s), "sunday") {
		return time.Sunday
	}
	return time.Monday
}

// Month lays out events on the grid for year/month in loc. Events without
// a time are not placed. Each day's events are ordered by time.
func Month(events []model.Event, year int, month time.Month, loc *time.Location, weekStart time.Weekday) MonthGrid {
	if loc == nil {
		loc = time.UTC
	}

	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	daysIn := first.AddDate(0, 1, -1).Day()

	grid := MonthGrid{
		Year:    year,
		Month:   month,
		Label:   fixture.MonthLabel(year, month),
		Headers: make([]string, 0, 7),
		Leading: (int(first.Weekday()) - int(weekStart) + 7) % 7,
		Days:    make([]Day, 0, daysIn),
	}
	for i := range 7 {
		grid.Headers = append(grid.Headers, weekdayHeader(time.Weekday((int(weekStart)+i)%7)))
	}

	byDay := make(map[string][]model.Event)
	for _, e := range events {
		if e.When == nil {
			continue
		}
		key := fixture.DayKey(*e.When, loc)
		byDay[key] = append(byDay[key], e)
	}

	for d := 1; d <= daysIn; d++ {
		key := fixture.DayKey(time.Date(year, month, d, 12, 0, 0, 0, loc), loc)
		list := byDay[key]
		fixture.SortByWhen(list)

		grid.Days = append(grid.Days, Day{
			Day:    d,
			Date:   key,
			Events: list,
			Kinds:  distinctKinds(list),
		})
	}
	return grid
}

func distinctKinds(events []model.Event) []model.Kind {
	out := []model.Kind{}
	seen := make(map[model.Kind]bool)
	for _, e := range events {
		if seen[e.Kind] {
			continue
		}
		seen[e.Kind] = true
		out = append(out, e.Kind)
	}
	return out
}

// weekdayHeader is the column title for d: "LØR".
func weekdayHeader(d time.Weekday) string {
	return strings.ToUpper(strings.TrimSuffix(fixture.WeekdayShort(d), "."))
}
