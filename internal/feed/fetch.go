package feed

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
	"github.com/sourcegraph/conc/pool"

	"fixturecal/internal/ics"
	appLog "fixturecal/internal/log"
	"fixturecal/internal/textfix"
)

// Format is the wire format of a source document.
type Format string

const (
	FormatJSON Format = "json"
	FormatICS  Format = "ics"
)

const prewarmWorkers = 4

// Source identifies one document. ID is the cache key.
type Source struct {
	ID     string
	Path   string
	Format Format
}

// Options configures a Loader.
type Options struct {
	// BaseURL is the origin relative paths are resolved against.
	BaseURL string
	// DataDir, if set, serves relative paths from disk instead of BaseURL.
	DataDir string

	UserAgent string
	Timeout   time.Duration

	// Calendar bounds recurrence expansion for ICS sources.
	Calendar ics.ExpandConfig

	// Client overrides the HTTP client. Tests use this.
	Client *http.Client
}

// Loader fetches, repairs and parses source documents and keeps every
// successfully parsed document for the lifetime of the process.
//
// Two concurrent loads of the same uncached source may both hit the
// network; the last one to finish wins the cache slot. Documents are
// immutable, so either result is fine.
type Loader struct {
	client    *http.Client
	baseURL   string
	userAgent string
	calendar  ics.ExpandConfig

	mu   sync.RWMutex
	docs map[string]any
}

// NewLoader creates a Loader.
func NewLoader(opts Options) *Loader {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}

	client := opts.Client
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if client == nil {
		transport := http.DefaultTransport.(*http.Transport).Clone()
		if opts.DataDir != "" {
			transport.RegisterProtocol("file", http.NewFileTransport(http.Dir(opts.DataDir)))
			baseURL = "file://"
		}
		client = &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
		}
	}

	if opts.Calendar.RangeStart.IsZero() && opts.Calendar.RangeEnd.IsZero() {
		now := time.Now()
		opts.Calendar.RangeStart = now.AddDate(-1, 0, 0)
		opts.Calendar.RangeEnd = now.AddDate(1, 0, 0)
	}

	return &Loader{
		client:    client,
		baseURL:   baseURL,
		userAgent: opts.UserAgent,
		calendar:  opts.Calendar,
		docs:      make(map[string]any),
	}
}

// Load returns the parsed document for src. A cached document is returned
// without touching the network. Otherwise the body is fetched fresh,
// repaired, parsed (falling back to the unrepaired body if the repaired one
// does not parse), deep-repaired and cached.
//
// Errors are *FetchError or *ParseError. Failures are not cached.
func (l *Loader) Load(ctx context.Context, src Source) (any, error) {
	if doc, ok := l.Cached(src.ID); ok {
		return doc, nil
	}

	target := l.resolve(src.Path)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.WithStack(&FetchError{SourceID: src.ID, Path: src.Path, Err: err})
	}
	// Always ask for fresh bytes.
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")
	if l.userAgent != "" {
		req.Header.Set("User-Agent", l.userAgent)
	}

	appLog.Debug("feed fetch start", "source", src.ID, "url", redactURL(target))

	resp, err := l.client.Do(req)
	if err != nil {
		appLog.Error("feed fetch failed", err, "source", src.ID, "url", redactURL(target))
		return nil, errors.WithStack(&FetchError{SourceID: src.ID, Path: src.Path, Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fe := &FetchError{SourceID: src.ID, Path: src.Path, Status: resp.StatusCode, Err: errors.New(resp.Status)}
		appLog.Error("feed fetch non-OK", fe, "source", src.ID, "url", redactURL(target), "status", resp.StatusCode)
		return nil, errors.WithStack(fe)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WithStack(&FetchError{SourceID: src.ID, Path: src.Path, Status: resp.StatusCode, Err: err})
	}

	doc, err := l.decode(src, string(body))
	if err != nil {
		appLog.Error("feed parse failed", err, "source", src.ID, "url", redactURL(target))
		return nil, errors.WithStack(&ParseError{SourceID: src.ID, Err: err})
	}

	doc = textfix.Value(doc)
	l.store(src.ID, doc)

	appLog.Info("feed loaded", "source", src.ID, "url", redactURL(target), "bytes", len(body))
	return doc, nil
}

// decode parses the repaired text first and the original text second.
// The error of the original parse is returned if both fail.
func (l *Loader) decode(src Source, raw string) (any, error) {
	fixed := textfix.String(raw)

	doc, err := l.parse(src, fixed)
	if err == nil {
		return doc, nil
	}
	if fixed == raw {
		return nil, err
	}

	appLog.Info("repaired body did not parse, trying original", "source", src.ID, "err", err.Error())
	return l.parse(src, raw)
}

func (l *Loader) parse(src Source, text string) (any, error) {
	if src.Format == FormatICS {
		return ics.Records(src.ID, []byte(text), l.calendar)
	}

	var doc any
	if err := sonic.ConfigStd.UnmarshalFromString(text, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// Prewarm loads every source with bounded parallelism. Cached sources cost
// nothing. The returned error joins all failures.
func (l *Loader) Prewarm(ctx context.Context, sources []Source) error {
	p := pool.New().WithMaxGoroutines(prewarmWorkers).WithContext(ctx)
	for _, src := range sources {
		p.Go(func(ctx context.Context) error {
			_, err := l.Load(ctx, src)
			return err
		})
	}
	return p.Wait()
}

// Cached returns the cached document for id.
func (l *Loader) Cached(id string) (any, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	doc, ok := l.docs[id]
	return doc, ok
}

// Len reports the number of cached documents.
func (l *Loader) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.docs)
}

func (l *Loader) store(id string, doc any) {
	l.mu.Lock()
	l.docs[id] = doc
	l.mu.Unlock()
}

// resolve turns a source path into a request URL. Absolute URLs are used
// as-is.
func (l *Loader) resolve(path string) string {
	if u, err := url.Parse(path); err == nil && u.Scheme != "" {
		return path
	}
	rel := strings.TrimPrefix(strings.TrimPrefix(path, "./"), "/")
	return l.baseURL + "/" + rel
}

// redactURL keeps scheme, host and path; query strings may carry tokens.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "feed://...(redacted)"
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.User = nil
	return u.String()
}
