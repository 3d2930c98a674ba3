package agenda

import (
	"bytes"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixturecal/internal/model"
	"fixturecal/internal/view"
)

func TestWrite(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Oslo")
	require.NoError(t, err)

	when := time.Date(2026, 5, 16, 14, 0, 0, 0, time.UTC)
	res := view.Result{
		Source: view.Source{ID: "football", Label: "Fotball"},
		Events: []model.Event{{
			Kind:    model.KindFootball,
			Title:   "Odd – Start",
			When:    &when,
			Channel: "TV2",
			Where:   []string{"Gimle Pub"},
			League:  "Eliteserien",
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, res, loc))
	out := buf.String()
	assert.Contains(t, out, "Fotball (1)")
	assert.Contains(t, out, "Odd – Start")
	assert.Contains(t, out, "lør. 16.05, 16:00")
	assert.Contains(t, out, "TV2")
	assert.Contains(t, out, "Eliteserien • Gimle Pub")
	assert.NotContains(t, out, NoResults)
}

func TestWriteEmptyAndFailure(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, view.Result{Source: view.Source{Label: "Håndball"}, Events: []model.Event{}, Empty: true}, time.UTC))
	assert.Contains(t, buf.String(), NoResults)

	buf.Reset()
	require.NoError(t, Write(&buf, view.Result{Failure: &view.Failure{Message: "Kunne ikke laste x.json (404)", Suggestion: "Prøv igjen."}}, time.UTC))
	assert.Contains(t, buf.String(), "Kunne ikke laste x.json (404)")
	assert.Contains(t, buf.String(), "Prøv igjen.")
	assert.NotContains(t, buf.String(), NoResults)
}

func TestDetails(t *testing.T) {
	assert.Equal(t, "Ruhpolding", details(model.Event{Kind: model.KindWintersport, Location: "Ruhpolding"}))
	assert.Equal(t, "Gruppe I • Gillette Stadium • Boston",
		details(model.Event{Kind: model.KindTournament, Group: "I", City: "Boston", Stadium: "Gillette Stadium"}))
	assert.Equal(t, "", details(model.Event{Kind: model.KindHandball, Where: []string{}}))
}
