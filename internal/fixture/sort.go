package fixture

import (
	"slices"

	"fixturecal/internal/model"
)

// SortByWhen orders events by time, ascending, in place. Events without a
// time come first. Equal times keep their input order.
func SortByWhen(events []model.Event) {
	slices.SortStableFunc(events, compareWhen)
}

func compareWhen(a, b model.Event) int {
	switch {
	case a.When == nil && b.When == nil:
		return 0
	case a.When == nil:
		return -1
	case b.When == nil:
		return 1
	default:
		return a.When.Compare(*b.When)
	}
}
