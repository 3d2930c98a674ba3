package main

import (
	"time"

	"github.com/cockroachdb/errors"

	"fixturecal/internal/config"
	"fixturecal/internal/feed"
	"fixturecal/internal/ics"
	appLog "fixturecal/internal/log"
	"fixturecal/internal/model"
	"fixturecal/internal/view"
)

// app is the wiring shared by the subcommands.
type app struct {
	cfg      *config.Config
	loc      *time.Location
	loader   *feed.Loader
	renderer *view.Renderer
	sources  []feed.Source
}

func loadApp() (*app, error) {
	cfg, err := config.Load(global.Config)
	if err != nil {
		return nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	windowEnd, err := cfg.WindowEndTime()
	if err != nil {
		return nil, err
	}

	appLog.Info("effective config",
		"config_path", global.Config,
		"timezone", cfg.Timezone,
		"window_end", windowEnd.Format(time.RFC3339),
		"back_tolerance", cfg.Tolerance(),
		"tournament_year", cfg.TournamentYear,
		"base_url", cfg.BaseURL,
		"data_dir", cfg.DataDir,
		"source_count", len(cfg.Sources),
	)

	loader := feed.NewLoader(feed.Options{
		BaseURL:   cfg.BaseURL,
		DataDir:   cfg.DataDir,
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.Timeout,
		Calendar:  calendarRange(cfg.TournamentYear, windowEnd, loc),
	})

	viewSources := make([]view.Source, 0, len(cfg.Sources))
	feedSources := make([]feed.Source, 0, len(cfg.Sources))
	for _, s := range cfg.Sources {
		kind, ok := model.ParseKind(s.Kind)
		if !ok {
			return nil, errors.Newf("source %q: unknown kind %q", s.ID, s.Kind)
		}
		vs := view.Source{
			ID:     s.ID,
			Label:  s.Label,
			Kind:   kind,
			Path:   s.Path,
			Format: feed.Format(s.Format),
		}
		viewSources = append(viewSources, vs)
		feedSources = append(feedSources, feed.Source{ID: vs.ID, Path: vs.Path, Format: vs.Format})
	}

	renderer := view.NewRenderer(loader, view.Options{
		Sources:        viewSources,
		Location:       loc,
		BackTolerance:  cfg.Tolerance(),
		WindowEnd:      windowEnd,
		TournamentYear: cfg.TournamentYear,
	})

	return &app{
		cfg:      cfg,
		loc:      loc,
		loader:   loader,
		renderer: renderer,
		sources:  feedSources,
	}, nil
}

// calendarRange bounds ICS recurrence expansion: from the start of the
// year before the tournament year to whichever is later of the window end
// and the end of the tournament year.
func calendarRange(year int, windowEnd time.Time, loc *time.Location) ics.ExpandConfig {
	end := time.Date(year, time.December, 31, 23, 59, 59, 0, loc)
	if windowEnd.After(end) {
		end = windowEnd
	}
	return ics.ExpandConfig{
		Location:   loc,
		RangeStart: time.Date(year-1, time.January, 1, 0, 0, 0, 0, loc),
		RangeEnd:   end,
	}
}
