package fixture

import (
	"fmt"
	"time"

	"github.com/goodsign/monday"
)

// sunday is any Sunday; weekday names are looked up relative to it.
var sunday = time.Date(2026, time.January, 4, 12, 0, 0, 0, time.UTC)

// WeekdayShort abbreviates the Norwegian weekday name to its first three
// letters and a dot: "lør.". It is cut from the full name, not taken from
// monday's short names.
func WeekdayShort(d time.Weekday) string {
	name := []rune(lower(monday.Format(sunday.AddDate(0, 0, int(d)), "Monday", monday.LocaleNbNO)))
	if len(name) > 3 {
		name = name[:3]
	}
	return string(name) + "."
}

// FormatWhen renders t in loc the way a Norwegian locale prints a short
// weekday, day, month and 24h time: "lør. 16.05, 16:00".
func FormatWhen(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return WeekdayShort(t.Weekday()) + " " + t.Format("02.01, 15:04")
}

// FormatLabel is FormatWhen for an optional time; nil gives "".
func FormatLabel(t *time.Time, loc *time.Location) string {
	if t == nil {
		return ""
	}
	return FormatWhen(*t, loc)
}

// DayKey is the civil date of t in loc as YYYY-MM-DD.
func DayKey(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return t.Format(time.DateOnly)
}

// MonthLabel renders "mai 2026".
func MonthLabel(year int, month time.Month) string {
	first := time.Date(year, month, 1, 12, 0, 0, 0, time.UTC)
	return fmt.Sprintf("%s %d", lower(monday.Format(first, "January", monday.LocaleNbNO)), year)
}
