// Package view is the render path between the feed loader and the
// presentation surfaces. It owns the query snapshot, the per-render window
// and the conversion of pipeline errors into user-facing failures.
package view

import (
	"context"
	"fmt"
	"time"

	"github.com/cockroachdb/errors"

	"fixturecal/internal/feed"
	"fixturecal/internal/fixture"
	appLog "fixturecal/internal/log"
	"fixturecal/internal/model"
)

// Source is a configured document as the render path sees it.
type Source struct {
	ID     string      `json:"id"`
	Label  string      `json:"label"`
	Kind   model.Kind  `json:"kind"`
	Path   string      `json:"-"`
	Format feed.Format `json:"format"`
}

func (s Source) feedSource() feed.Source {
	return feed.Source{ID: s.ID, Path: s.Path, Format: s.Format}
}

// State is the selection a render works from. It is a value: every change
// produces a new State, and a render reads only the State it was given.
type State struct {
	SourceID string
	// Query is lowercased and trimmed.
	Query string
}

// NewState builds a State, normalizing the raw query.
func NewState(sourceID, rawQuery string) State {
	return State{SourceID: sourceID, Query: fixture.NormalizeQuery(rawQuery)}
}

// WithSource returns a copy of s pointing at another source.
func (s State) WithSource(id string) State {
	s.SourceID = id
	return s
}

// WithQuery returns a copy of s with a new, normalized query.
func (s State) WithQuery(raw string) State {
	s.Query = fixture.NormalizeQuery(raw)
	return s
}

// Failure is what the user sees instead of results.
type Failure struct {
	Message    string `json:"error"`
	Suggestion string `json:"suggestion"`
}

// Result is one render. Either Failure is set and Events is nil, or
// Failure is nil and Events holds the ordered matches (Empty when none).
type Result struct {
	Source  Source
	Events  []model.Event
	Empty   bool
	Failure *Failure
}

// Loader is the part of feed.Loader the render path needs.
type Loader interface {
	Load(ctx context.Context, src feed.Source) (any, error)
}

// Options configures a Renderer.
type Options struct {
	Sources []Source

	Location       *time.Location
	BackTolerance  time.Duration
	WindowEnd      time.Time
	TournamentYear int

	// Now defaults to time.Now.
	Now func() time.Time
}

// Renderer runs the pipeline for a State.
type Renderer struct {
	loader Loader
	opts   Options
	byID   map[string]Source
}

// NewRenderer creates a Renderer.
func NewRenderer(loader Loader, opts Options) *Renderer {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	byID := make(map[string]Source, len(opts.Sources))
	for _, s := range opts.Sources {
		byID[s.ID] = s
	}
	return &Renderer{loader: loader, opts: opts, byID: byID}
}

// Sources returns the configured sources in configuration order.
func (r *Renderer) Sources() []Source {
	return append([]Source(nil), r.opts.Sources...)
}

// Source looks up a configured source.
func (r *Renderer) Source(id string) (Source, bool) {
	s, ok := r.byID[id]
	return s, ok
}

// Location is the display zone.
func (r *Renderer) Location() *time.Location {
	return r.opts.Location
}

// Window computes the inclusion window against the current clock.
func (r *Renderer) Window() fixture.Window {
	return fixture.NewWindow(r.opts.Now(), r.opts.BackTolerance, r.opts.WindowEnd, r.opts.TournamentYear, r.opts.Location)
}

// Render loads the selected source and runs the pipeline. Pipeline errors
// never escape: they become Result.Failure and no events are returned.
func (r *Renderer) Render(ctx context.Context, st State) Result {
	src, ok := r.byID[st.SourceID]
	if !ok {
		return Result{Failure: &Failure{
			Message:    fmt.Sprintf("Ukjent kilde %q", st.SourceID),
			Suggestion: "Velg en av kildene i listen.",
		}}
	}

	res := Result{Source: src}

	doc, err := r.loader.Load(ctx, src.feedSource())
	if err != nil {
		appLog.Error("render failed", err, "source", src.ID)
		res.Failure = describe(src, err)
		return res
	}

	res.Events = fixture.Build(doc, src.Kind, r.Window(), st.Query)
	res.Empty = len(res.Events) == 0
	return res
}

func describe(src Source, err error) *Failure {
	var fe *feed.FetchError
	if errors.As(err, &fe) {
		msg := fmt.Sprintf("Kunne ikke laste %s", src.Path)
		if fe.Status != 0 {
			msg = fmt.Sprintf("Kunne ikke laste %s (%d)", src.Path, fe.Status)
		}
		return &Failure{
			Message:    msg,
			Suggestion: "Sjekk nettverket, eller bytt kilde og tilbake for å prøve igjen.",
		}
	}

	var pe *feed.ParseError
	if errors.As(err, &pe) {
		return &Failure{
			Message:    fmt.Sprintf("Kunne ikke lese %s", src.Path),
			Suggestion: "Filen er ikke gyldig. Kjør «fixturecal repair» på datamappen og prøv igjen.",
		}
	}

	return &Failure{
		Message:    fmt.Sprintf("Noe gikk galt med %s", src.Label),
		Suggestion: "Prøv igjen om litt.",
	}
}
