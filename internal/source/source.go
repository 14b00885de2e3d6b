// Package source fetches event data from the backend proxy in front of
// the promo sheet. Two response shapes exist: the raw sheet grid and a
// pre-normalized event array (the manifest variant).
package source

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/goccy/go-json"

	"github.com/kcmi-rcc/eventboard/internal/event"
	"github.com/kcmi-rcc/eventboard/internal/sheet"
	"github.com/kcmi-rcc/eventboard/internal/util"
)

const defaultTimeout = 15 * time.Second

type Config struct {
	Type    string
	BaseURL string
	SheetID string
	Timeout time.Duration
}

// Source produces a batch of events from one upstream.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]event.Event, error)
}

func NewFromConfig(c Config) (Source, error) {
	client := newClient(c)
	switch c.Type {
	case "sheet":
		return &SheetSource{client: client}, nil
	case "manifest":
		return &ManifestSource{client: client}, nil
	default:
		return nil, fmt.Errorf("unknown source type %s", c.Type)
	}
}

// StatusError is a non-2xx upstream reply, with the body's error field
// when one was provided.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server replied %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("server replied %d", e.Code)
}

type client struct {
	baseURL string
	sheetID string
	http    *http.Client
}

func newClient(c Config) *client {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &client{
		baseURL: c.BaseURL,
		sheetID: c.SheetID,
		http:    util.NewHTTPClient(timeout),
	}
}

func (c *client) get(ctx context.Context) ([]byte, error) {
	reqURL := fmt.Sprintf("%s?id=%s", c.baseURL, url.QueryEscape(c.sheetID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", c.baseURL, err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", c.baseURL, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		serr := &StatusError{Code: resp.StatusCode}
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &e) == nil {
			serr.Message = e.Error
		}
		return nil, serr
	}
	return body, nil
}

// SheetSource fetches the raw grid and runs it through the normalizer.
type SheetSource struct {
	client *client
}

func (s *SheetSource) Name() string { return "sheet" }

func (s *SheetSource) Fetch(ctx context.Context) ([]event.Event, error) {
	body, err := s.client.get(ctx)
	if err != nil {
		return nil, err
	}
	var table struct {
		Values [][]string `json:"values"`
	}
	if err := json.Unmarshal(body, &table); err != nil {
		return nil, fmt.Errorf("invalid sheet response: %w", err)
	}
	// A grid without a header row means the upstream is broken, not that
	// the sheet is empty. Succeeding here would overwrite a good cache
	// slot with nothing.
	if len(table.Values) == 0 {
		return nil, fmt.Errorf("invalid sheet response: no header row")
	}
	return sheet.ParseTable(table.Values), nil
}

// ManifestSource fetches an already-shaped event array.
type ManifestSource struct {
	client *client
}

func (s *ManifestSource) Name() string { return "manifest" }

func (s *ManifestSource) Fetch(ctx context.Context) ([]event.Event, error) {
	body, err := s.client.get(ctx)
	if err != nil {
		return nil, err
	}
	var events []event.Event
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("invalid manifest response: %w", err)
	}
	return events, nil
}
