package web

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/bytedance/sonic"

	"fixturecal/internal/config"
	"fixturecal/internal/fixture"
	appLog "fixturecal/internal/log"
	"fixturecal/internal/model"
	"fixturecal/internal/view"
)

// Server exposes the render path over HTTP as JSON.
type Server struct {
	renderer  *view.Renderer
	auth      *config.BasicAuthConfig
	weekStart time.Weekday
	mux       *http.ServeMux

	now func() time.Time
}

// NewServer constructs a new Server. auth may be nil.
func NewServer(renderer *view.Renderer, weekStart time.Weekday, auth *config.BasicAuthConfig) *Server {
	s := &Server{
		renderer:  renderer,
		auth:      auth,
		weekStart: weekStart,
		mux:       http.NewServeMux(),
		now:       time.Now,
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled")
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	return s.auth != nil && s.auth.Username != "" && s.auth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.auth.Username
	password := s.auth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="fixturecal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/sources", s.handleSources)
	s.mux.HandleFunc("GET /api/events", s.handleEvents)
	s.mux.HandleFunc("GET /api/calendar", s.handleCalendar)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

type sourcesResponse struct {
	Sources         []view.Source `json:"sources"`
	DisplayTimeZone string        `json:"display_timezone"`
	WeekStart       string        `json:"week_start"`
}

// eventDTO is the JSON view of a model.Event. Kind-specific fields are
// omitted when empty.
type eventDTO struct {
	Kind      model.Kind `json:"kind"`
	Title     string     `json:"title"`
	When      time.Time  `json:"when"`
	WhenLabel string     `json:"when_label"`
	Day       string     `json:"day"`
	Channel   string     `json:"channel"`
	Where     []string   `json:"where,omitempty"`
	League    string     `json:"league,omitempty"`
	Location  string     `json:"location,omitempty"`
	Group     string     `json:"group,omitempty"`
	City      string     `json:"city,omitempty"`
	Stadium   string     `json:"stadium,omitempty"`
}

type eventsResponse struct {
	Source          view.Source `json:"source"`
	Query           string      `json:"query"`
	RangeStart      time.Time   `json:"range_start"`
	RangeEnd        time.Time   `json:"range_end"`
	DisplayTimeZone string      `json:"display_timezone"`
	Empty           bool        `json:"empty"`
	Events          []eventDTO  `json:"events"`
}

type dayDTO struct {
	Day    int          `json:"day"`
	Date   string       `json:"date"`
	Kinds  []model.Kind `json:"kinds"`
	Events []eventDTO   `json:"events"`
}

type calendarResponse struct {
	Source  view.Source `json:"source"`
	Query   string      `json:"query"`
	Year    int         `json:"year"`
	Month   int         `json:"month"`
	Label   string      `json:"label"`
	Headers []string    `json:"headers"`
	Leading int         `json:"leading"`
	Days    []dayDTO    `json:"days"`
}

func (s *Server) handleSources(w http.ResponseWriter, _ *http.Request) {
	ws := "monday"
	if s.weekStart == time.Sunday {
		ws = "sunday"
	}
	writeJSON(w, http.StatusOK, sourcesResponse{
		Sources:         s.renderer.Sources(),
		DisplayTimeZone: s.renderer.Location().String(),
		WeekStart:       ws,
	})
}

// handleEvents renders one source.
//
// GET /api/events?source=football&q=tv2
//   - source: source ID (default: first configured source)
//   - q:      free-text filter, case-insensitive
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	res, st, ok := s.render(w, r)
	if !ok {
		return
	}

	win := s.renderer.Window()
	writeJSON(w, http.StatusOK, eventsResponse{
		Source:          res.Source,
		Query:           st.Query,
		RangeStart:      win.Start,
		RangeEnd:        win.End,
		DisplayTimeZone: s.renderer.Location().String(),
		Empty:           res.Empty,
		Events:          s.toDTOs(res.Events),
	})
}

// handleCalendar lays one source out on a month grid.
//
// GET /api/calendar?source=vm2026&month=2026-06&q=
//   - month: YYYY-MM in the display zone (default: current month)
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	loc := s.renderer.Location()

	month := s.now().In(loc)
	if raw := r.URL.Query().Get("month"); raw != "" {
		m, err := time.ParseInLocation("2006-01", raw, loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "month must be YYYY-MM", "Bruk formatet 2026-06.")
			return
		}
		month = m
	}

	res, st, ok := s.render(w, r)
	if !ok {
		return
	}

	grid := view.Month(res.Events, month.Year(), month.Month(), loc, s.weekStart)
	days := make([]dayDTO, 0, len(grid.Days))
	for _, d := range grid.Days {
		days = append(days, dayDTO{
			Day:    d.Day,
			Date:   d.Date,
			Kinds:  d.Kinds,
			Events: s.toDTOs(d.Events),
		})
	}

	writeJSON(w, http.StatusOK, calendarResponse{
		Source:  res.Source,
		Query:   st.Query,
		Year:    grid.Year,
		Month:   int(grid.Month),
		Label:   grid.Label,
		Headers: grid.Headers,
		Leading: grid.Leading,
		Days:    days,
	})
}

// render resolves the request's State and runs the pipeline. On failure
// the error response has been written and ok is false.
func (s *Server) render(w http.ResponseWriter, r *http.Request) (view.Result, view.State, bool) {
	q := r.URL.Query()

	sourceID := q.Get("source")
	if sourceID == "" {
		if all := s.renderer.Sources(); len(all) > 0 {
			sourceID = all[0].ID
		}
	}
	if _, ok := s.renderer.Source(sourceID); !ok {
		writeError(w, http.StatusNotFound, "unknown source", "Se /api/sources for gyldige kilder.")
		return view.Result{}, view.State{}, false
	}

	st := view.NewState(sourceID, q.Get("q"))
	res := s.renderer.Render(r.Context(), st)
	if res.Failure != nil {
		writeJSON(w, http.StatusBadGateway, res.Failure)
		return view.Result{}, st, false
	}

	appLog.Debug("api render", "source", sourceID, "query", st.Query, "events", len(res.Events))
	return res, st, true
}

func (s *Server) toDTOs(events []model.Event) []eventDTO {
	loc := s.renderer.Location()
	out := make([]eventDTO, 0, len(events))
	for _, e := range events {
		dto := eventDTO{
			Kind:     e.Kind,
			Title:    e.Title,
			Channel:  e.Channel,
			Where:    e.Where,
			League:   e.League,
			Location: e.Location,
			Group:    e.Group,
			City:     e.City,
			Stadium:  e.Stadium,
		}
		// Events reaching the presentation layer always carry a time.
		if e.When != nil {
			dto.When = e.When.In(loc)
			dto.WhenLabel = fixture.FormatWhen(*e.When, loc)
			dto.Day = fixture.DayKey(*e.When, loc)
		}
		out = append(out, dto)
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := sonic.ConfigStd.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg, suggestion string) {
	writeJSON(w, status, view.Failure{Message: msg, Suggestion: suggestion})
}
