package world

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// RequestError reports a non-success HTTP response from a catalog endpoint.
type RequestError struct {
	// URL is the request URL that failed.
	URL string
	// Status is the HTTP status code of the response.
	Status int
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed: %s returned status %d", e.URL, e.Status)
}

// Loader fetches the four static world catalogs over HTTP.
type Loader struct {
	base   string
	locale string
	client *http.Client
	logger *zap.Logger
}

// NewLoader creates a Loader against the given API base URL.
//
// Precondition: base must be a normalized base URL (no trailing slash);
// locale must be a canonical BCP 47 tag; logger must be non-nil.
func NewLoader(base, locale string, timeout time.Duration, logger *zap.Logger) *Loader {
	return &Loader{
		base:   base,
		locale: locale,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Load issues the four catalog reads concurrently and assembles the result.
// Any non-success response fails the whole load with a *RequestError.
//
// Postcondition: Returns a fully-populated *Data or a non-nil error.
func (l *Loader) Load(ctx context.Context) (*Data, error) {
	start := time.Now()

	var (
		locations []Location
		objects   []Object
		commands  []Command
		messages  MessageCatalog
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return l.fetchJSON(ctx, "/world/locations", &locations) })
	g.Go(func() error { return l.fetchJSON(ctx, "/objects", &objects) })
	g.Go(func() error { return l.fetchJSON(ctx, "/commands", &commands) })
	g.Go(func() error { return l.fetchJSON(ctx, "/i18n/"+l.locale+"/messages", &messages) })

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("loading world data: %w", err)
	}

	data := &Data{
		Locations: make(map[string]Location, len(locations)),
		Objects:   make(map[string]Object, len(objects)),
		Commands:  commands,
		Messages:  messages,
	}
	for _, loc := range locations {
		data.Locations[loc.ID] = loc
	}
	for _, obj := range objects {
		data.Objects[obj.ID] = obj
	}

	l.logger.Info("world data loaded",
		zap.Int("locations", len(data.Locations)),
		zap.Int("objects", len(data.Objects)),
		zap.Int("commands", len(data.Commands)),
		zap.Int("messages", len(data.Messages)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return data, nil
}

func (l *Loader) fetchJSON(ctx context.Context, path string, v any) error {
	url := l.base + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request for %s: %w", url, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetching %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &RequestError{URL: url, Status: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", url, err)
	}
	return nil
}
