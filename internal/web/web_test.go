package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixturecal/internal/config"
	"fixturecal/internal/feed"
	"fixturecal/internal/model"
	"fixturecal/internal/view"
)

type stubLoader struct {
	docs map[string]any
	errs map[string]error
}

func (s stubLoader) Load(_ context.Context, src feed.Source) (any, error) {
	if err, ok := s.errs[src.ID]; ok {
		return nil, err
	}
	return s.docs[src.ID], nil
}

func newTestServer(t *testing.T, auth *config.BasicAuthConfig) *Server {
	t.Helper()

	loc, err := time.LoadLocation("Europe/Oslo")
	require.NoError(t, err)

	now := func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	loader := stubLoader{
		docs: map[string]any{
			"football": map[string]any{"games": []any{
				map[string]any{"home": "Odd", "away": "Start", "kickoff": "2026-05-16T16:00:00+02:00", "channel": "TV2 Sport", "where": []any{"Gimle Pub"}},
				map[string]any{"home": "Brann", "away": "Molde", "kickoff": "2026-06-02T18:00:00+02:00"},
			}},
		},
		errs: map[string]error{
			"broken": errors.WithStack(&feed.FetchError{SourceID: "broken", Path: "data/broken.json", Status: 500, Err: errors.New("500")}),
		},
	}
	renderer := view.NewRenderer(loader, view.Options{
		Sources: []view.Source{
			{ID: "football", Label: "Fotball", Kind: model.KindFootball, Path: "data/football.json", Format: feed.FormatJSON},
			{ID: "broken", Label: "Ødelagt", Kind: model.KindHandball, Path: "data/broken.json", Format: feed.FormatJSON},
		},
		Location:       loc,
		BackTolerance:  5 * time.Minute,
		WindowEnd:      time.Date(2026, 12, 31, 23, 59, 59, 0, time.UTC),
		TournamentYear: 2026,
		Now:            now,
	})

	srv := NewServer(renderer, time.Monday, auth)
	srv.now = now
	return srv
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, sonic.ConfigStd.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, &config.BasicAuthConfig{Username: "u", Password: "p"}).Handler()

	rec := get(t, h, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestBasicAuth(t *testing.T) {
	h := newTestServer(t, &config.BasicAuthConfig{Username: "u", Password: "p"}).Handler()

	rec := get(t, h, "/api/sources")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Basic")

	req := httptest.NewRequest(http.MethodGet, "/api/sources", nil)
	req.SetBasicAuth("u", "wrong")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/sources", nil)
	req.SetBasicAuth("u", "p")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSources(t *testing.T) {
	rec := get(t, newTestServer(t, nil).Handler(), "/api/sources")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp sourcesResponse
	decode(t, rec, &resp)
	require.Len(t, resp.Sources, 2)
	assert.Equal(t, "football", resp.Sources[0].ID)
	assert.Equal(t, model.KindFootball, resp.Sources[0].Kind)
	assert.Equal(t, "Europe/Oslo", resp.DisplayTimeZone)
	assert.Equal(t, "monday", resp.WeekStart)
	assert.NotContains(t, rec.Body.String(), "data/football.json")
}

func TestEvents(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := get(t, h, "/api/events?source=football&q=TV2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var resp eventsResponse
	decode(t, rec, &resp)
	assert.Equal(t, "tv2", resp.Query)
	assert.False(t, resp.Empty)
	require.Len(t, resp.Events, 1)

	ev := resp.Events[0]
	assert.Equal(t, "Odd – Start", ev.Title)
	assert.Equal(t, "TV2 Sport", ev.Channel)
	assert.Equal(t, "lør. 16.05, 16:00", ev.WhenLabel)
	assert.Equal(t, "2026-05-16", ev.Day)
	assert.Equal(t, []string{"Gimle Pub"}, ev.Where)
	assert.True(t, ev.When.Equal(time.Date(2026, 5, 16, 14, 0, 0, 0, time.UTC)))
	assert.True(t, resp.RangeStart.Equal(time.Date(2026, 5, 1, 11, 55, 0, 0, time.UTC)))
}

func TestEventsDefaultsToFirstSource(t *testing.T) {
	rec := get(t, newTestServer(t, nil).Handler(), "/api/events")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp eventsResponse
	decode(t, rec, &resp)
	assert.Equal(t, "football", resp.Source.ID)
	assert.Len(t, resp.Events, 2)
}

func TestEventsNoResults(t *testing.T) {
	rec := get(t, newTestServer(t, nil).Handler(), "/api/events?source=football&q=tv3")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp eventsResponse
	decode(t, rec, &resp)
	assert.True(t, resp.Empty)
	assert.NotNil(t, resp.Events)
	assert.Empty(t, resp.Events)
}

func TestEventsErrors(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := get(t, h, "/api/events?source=broken")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var failure view.Failure
	decode(t, rec, &failure)
	assert.Equal(t, "Kunne ikke laste data/broken.json (500)", failure.Message)
	assert.NotEmpty(t, failure.Suggestion)
	assert.NotContains(t, rec.Body.String(), "events")

	rec = get(t, h, "/api/events?source=curling")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/events", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCalendar(t *testing.T) {
	h := newTestServer(t, nil).Handler()

	rec := get(t, h, "/api/calendar?source=football&month=2026-05")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp calendarResponse
	decode(t, rec, &resp)
	assert.Equal(t, 2026, resp.Year)
	assert.Equal(t, 5, resp.Month)
	assert.Equal(t, "mai 2026", resp.Label)
	assert.Equal(t, 4, resp.Leading)
	require.Len(t, resp.Days, 31)
	require.Len(t, resp.Days[15].Events, 1)
	assert.Equal(t, "Odd – Start", resp.Days[15].Events[0].Title)
	assert.Equal(t, []model.Kind{model.KindFootball}, resp.Days[15].Kinds)

	// default month is the current one in the display zone
	rec = get(t, h, "/api/calendar?source=football")
	require.Equal(t, http.StatusOK, rec.Code)
	decode(t, rec, &resp)
	assert.Equal(t, 5, resp.Month)

	rec = get(t, h, "/api/calendar?source=football&month=mai")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
