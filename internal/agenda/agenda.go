// Package agenda prints a render result to a terminal as a list of cards.
package agenda

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"fixturecal/internal/fixture"
	"fixturecal/internal/model"
	"fixturecal/internal/view"
)

// NoResults is printed when a render succeeds with nothing to show.
const NoResults = "Ingen treff i perioden."

// Write prints res. A failed result prints its message and suggestion and
// nothing else.
func Write(w io.Writer, res view.Result, loc *time.Location) error {
	var b strings.Builder

	if res.Failure != nil {
		b.WriteString(errorStyle.Render("✗ " + res.Failure.Message))
		b.WriteString("\n")
		b.WriteString(metaStyle.Render(res.Failure.Suggestion))
		b.WriteString("\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf("%s (%d)", res.Source.Label, len(res.Events))))
	b.WriteString("\n")

	if res.Empty {
		b.WriteString(metaStyle.Render(NoResults))
		b.WriteString("\n")
	}
	for _, e := range res.Events {
		b.WriteString(Card(e, loc))
		b.WriteString("\n")
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Card renders a single event.
func Card(e model.Event, loc *time.Location) string {
	head := lipgloss.JoinHorizontal(lipgloss.Top,
		titleStyle.Render(e.Title),
		"  ",
		whenStyle.Render(fixture.FormatLabel(e.When, loc)),
	)

	lines := []string{head, badgeStyle.Render(e.Channel)}
	if meta := details(e); meta != "" {
		lines = append(lines, metaStyle.Render(meta))
	}
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// details is the kind-specific secondary line.
func details(e model.Event) string {
	var parts []string
	switch e.Kind {
	case model.KindFootball, model.KindHandball:
		if e.League != "" {
			parts = append(parts, e.League)
		}
		if len(e.Where) > 0 {
			parts = append(parts, strings.Join(e.Where, ", "))
		}
	case model.KindWintersport:
		if e.Location != "" {
			parts = append(parts, e.Location)
		}
	case model.KindTournament:
		if e.Group != "" {
			parts = append(parts, "Gruppe "+e.Group)
		}
		for _, s := range []string{e.Stadium, e.City} {
			if s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, " • ")
}
