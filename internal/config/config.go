package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Defaults applied by Normalize.
const (
	DefaultListen         = "127.0.0.1:8080"
	DefaultTimezone       = "Europe/Oslo"
	DefaultWeekStart      = "monday"
	DefaultPrewarm        = "*/30 * * * *"
	DefaultBackTolerance  = 5 * time.Minute
	DefaultWindowEnd      = "2026-12-31T23:59:59+01:00"
	DefaultTournamentYear = 2026
	DefaultUserAgent      = "fixturecal/1.0"
	DefaultTimeout        = 15 * time.Second
)

// SourceConfig describes one fixture document.
type SourceConfig struct {
	// ID is the cache key and the value of ?source= in the API.
	ID string `yaml:"id" json:"id" validate:"required"`
	// Label is shown in the UI.
	Label string `yaml:"label" json:"label"`
	// Kind selects field fallbacks and the filtering rule.
	Kind string `yaml:"kind" json:"kind" validate:"required,oneof=football handball wintersport tournament"`
	// Path is relative to base_url / data_dir, or an absolute URL.
	Path string `yaml:"path" json:"path" validate:"required"`
	// Format is "json" (default) or "ics".
	Format string `yaml:"format,omitempty" json:"format,omitempty" validate:"omitempty,oneof=json ics"`
}

// BasicAuthConfig holds HTTP Basic Auth credentials for the API.
type BasicAuthConfig struct {
	Username string `yaml:"username" json:"username" validate:"required"`
	Password string `yaml:"password" json:"password" validate:"required"`
}

// Config is the top-level application configuration.
type Config struct {
	// Listen is the HTTP listen address for the API.
	Listen string `yaml:"listen" json:"listen" validate:"required"`

	// Timezone is the IANA zone events are displayed in and zone-less
	// timestamps are read in.
	Timezone string `yaml:"timezone" json:"timezone" validate:"required"`

	// WeekStart is the first column of the month grid: "monday" or "sunday".
	WeekStart string `yaml:"week_start" json:"week_start" validate:"oneof=monday sunday"`

	// Prewarm is a cron schedule for loading uncached sources in the
	// background. Empty disables the schedule; startup prewarm still runs.
	Prewarm string `yaml:"prewarm" json:"prewarm"`

	// BackTolerance keeps events that started up to this long ago. Absent
	// means DefaultBackTolerance; an explicit 0s keeps only upcoming events.
	BackTolerance *time.Duration `yaml:"back_tolerance" json:"back_tolerance" validate:"omitempty,gte=0"`

	// WindowEnd is the inclusive end of the display window, RFC3339.
	WindowEnd string `yaml:"window_end" json:"window_end" validate:"required"`

	// TournamentYear is the calendar year tournament sources show in full.
	TournamentYear int `yaml:"tournament_year" json:"tournament_year" validate:"gte=1970,lte=9999"`

	// BaseURL is the origin documents are fetched from. Ignored when
	// DataDir is set.
	BaseURL string `yaml:"base_url,omitempty" json:"base_url,omitempty" validate:"required_without=DataDir,omitempty,url"`

	// DataDir serves documents from the local filesystem.
	DataDir string `yaml:"data_dir,omitempty" json:"data_dir,omitempty"`

	UserAgent string        `yaml:"user_agent" json:"user_agent"`
	Timeout   time.Duration `yaml:"timeout" json:"timeout" validate:"gte=0"`

	Sources []SourceConfig `yaml:"sources" json:"sources" validate:"required,min=1,unique=ID,dive"`

	// BasicAuth, if non-nil, enables HTTP Basic Authentication on all
	// endpoints except /health.
	BasicAuth *BasicAuthConfig `yaml:"basic_auth,omitempty" json:"basic_auth,omitempty"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultSources is the source list written on first run.
func DefaultSources() []SourceConfig {
	return []SourceConfig{
		{ID: "football", Label: "Fotball", Kind: "football", Path: "data/football.json", Format: "json"},
		{ID: "handball", Label: "Håndball", Kind: "handball", Path: "data/2026/handball.json", Format: "json"},
		{ID: "wintersport", Label: "Vintersport", Kind: "wintersport", Path: "data/2026/wintersport.json", Format: "json"},
		{ID: "vm2026", Label: "VM 2026", Kind: "tournament", Path: "data/2026/vm2026.json", Format: "json"},
	}
}

// DefaultConfig returns an in-memory default configuration.
func DefaultConfig() *Config {
	return &Config{
		Listen:         DefaultListen,
		Timezone:       DefaultTimezone,
		WeekStart:      DefaultWeekStart,
		Prewarm:        DefaultPrewarm,
		BackTolerance:  durationPtr(DefaultBackTolerance),
		WindowEnd:      DefaultWindowEnd,
		TournamentYear: DefaultTournamentYear,
		DataDir:        ".",
		UserAgent:      DefaultUserAgent,
		Timeout:        DefaultTimeout,
		Sources:        DefaultSources(),
		BasicAuth:      nil,
	}
}

// Normalize fills in missing/zero values so that partially-filled configs
// still behave correctly.
func (c *Config) Normalize() {
	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	c.WeekStart = strings.ToLower(strings.TrimSpace(c.WeekStart))
	switch c.WeekStart {
	case "monday", "sunday":
	default:
		c.WeekStart = DefaultWeekStart
	}
	if c.BackTolerance == nil {
		c.BackTolerance = durationPtr(DefaultBackTolerance)
	}
	if c.WindowEnd == "" {
		c.WindowEnd = DefaultWindowEnd
	}
	if c.TournamentYear == 0 {
		c.TournamentYear = DefaultTournamentYear
	}
	if c.BaseURL == "" && c.DataDir == "" {
		c.DataDir = "."
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Sources == nil {
		c.Sources = []SourceConfig{}
	}
	for i := range c.Sources {
		s := &c.Sources[i]
		s.Kind = strings.ToLower(strings.TrimSpace(s.Kind))
		s.Format = strings.ToLower(strings.TrimSpace(s.Format))
		if s.Format == "" {
			s.Format = "json"
		}
		if s.Label == "" {
			s.Label = s.ID
		}
	}
}

// Tolerance is BackTolerance with the default applied.
func (c *Config) Tolerance() time.Duration {
	if c.BackTolerance == nil {
		return DefaultBackTolerance
	}
	return *c.BackTolerance
}

func durationPtr(d time.Duration) *time.Duration {
	return &d
}

// Validate checks struct tags and the values tags cannot express.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.WindowEndTime(); err != nil {
		return err
	}
	if c.Prewarm != "" {
		if _, err := cron.ParseStandard(c.Prewarm); err != nil {
			return errors.Wrapf(err, "invalid prewarm schedule %q", c.Prewarm)
		}
	}
	return nil
}

// Location loads the display time zone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid timezone %q", c.Timezone)
	}
	return loc, nil
}

// WindowEndTime parses WindowEnd.
func (c *Config) WindowEndTime() (time.Time, error) {
	t, err := time.Parse(time.RFC3339, c.WindowEnd)
	if err != nil {
		return time.Time{}, errors.Wrapf(err, "invalid window_end %q", c.WindowEnd)
	}
	return t, nil
}

// Source looks up a source by ID.
func (c *Config) Source(id string) (SourceConfig, bool) {
	for _, s := range c.Sources {
		if s.ID == id {
			return s, true
		}
	}
	return SourceConfig{}, false
}

// Load loads configuration from the given YAML path.
//
// Behavior:
//   - If the file does not exist, a default config is written with 0600
//     perms and returned.
//   - Otherwise the YAML is read, normalized and validated.
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("config path is empty")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// First run: create default config file.
			cfg := DefaultConfig()
			if err := Save(path, cfg); err != nil {
				// Even if save fails, return cfg with error so caller can decide.
				return cfg, err
			}
			return cfg, nil
		}
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes cfg to path atomically via a temp file and rename. The
// parent directory is created with 0700 and the file ends up 0600.
func Save(path string, cfg *Config) error {
	if path == "" {
		return errors.New("config path is empty")
	}
	if cfg == nil {
		return errors.New("config is nil")
	}

	cfg.Normalize()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.WithStack(err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.WithStack(err)
	}

	tmp, err := os.CreateTemp(dir, ".fixturecal-config-*.tmp")
	if err != nil {
		return errors.WithStack(err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.WithStack(err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return errors.WithStack(err)
	}
	if err := tmp.Close(); err != nil {
		return errors.WithStack(err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return errors.WithStack(err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return errors.WithStack(err)
	}
	return nil
}

// Save delegates to the package-level Save.
func (c *Config) Save(path string) error {
	return Save(path, c)
}
