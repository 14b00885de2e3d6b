// Package ingest drives the fetch → cache → render cycle for the event
// board. Load never returns an error: every path, including total fetch
// failure with an empty cache, ends in a renderer call.
package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/kcmi-rcc/eventboard/internal/cache"
	"github.com/kcmi-rcc/eventboard/internal/event"
	"github.com/kcmi-rcc/eventboard/internal/render"
	"github.com/kcmi-rcc/eventboard/internal/source"
	log "github.com/sirupsen/logrus"
)

const (
	// StaleNotice flags payloads served from an expired cache slot.
	StaleNotice = "Showing previously loaded events. Some details may be out of date."

	errorMessage = "We're having trouble loading events right now. Please try again later."

	backgroundTimeout = 30 * time.Second
)

// Renderer receives the outcome of a load. Exactly one of the two
// methods is called per invocation.
type Renderer interface {
	Render(cards []render.Card, notice string)
	RenderError(message string)
}

type Config struct {
	CacheKey          string
	BackgroundRefresh bool
	RefreshDelay      time.Duration
}

type Loader struct {
	source source.Source
	cache  cache.Store
	config Config
	now    func() time.Time

	mu        sync.Mutex
	inFlight  bool
	scheduled bool
}

func New(src source.Source, store cache.Store, config Config) *Loader {
	if config.CacheKey == "" {
		config.CacheKey = "events"
	}
	return &Loader{source: src, cache: store, config: config, now: time.Now}
}

// SetClock overrides the "today" used for upcoming-event filtering.
func (l *Loader) SetClock(now func() time.Time) {
	l.now = now
}

// Load serves from a fresh cache slot when possible, fetching otherwise.
// A fresh hit optionally schedules a delayed background refresh so the
// next load starts warm. When another fetch is already in flight the
// call is answered from cache (stale allowed) instead of piling a
// second request onto the upstream.
func (l *Loader) Load(ctx context.Context, r Renderer) {
	cached, err := l.cache.Read(ctx, l.config.CacheKey, false)
	if err == nil {
		l.renderUpcoming(r, cached, "")
		if l.config.BackgroundRefresh && l.schedule() {
			go l.backgroundRefresh()
		}
		return
	}

	if !l.begin() {
		log.Debug("load already in flight, answering from cache")
		stale, serr := l.cache.Read(ctx, l.config.CacheKey, true)
		if serr != nil {
			r.RenderError(errorMessage)
			return
		}
		l.renderUpcoming(r, stale, StaleNotice)
		return
	}
	defer l.end()

	l.refresh(ctx, r)
}

// Refresh always fetches, bypassing the fresh-cache check. Scheduled
// refreshers use it to keep the slot warm.
func (l *Loader) Refresh(ctx context.Context, r Renderer) {
	if !l.begin() {
		log.Debug("refresh already in flight, skipping")
		return
	}
	defer l.end()

	l.refresh(ctx, r)
}

// refresh is the fetch-failed fallback chain of the load state machine:
// fetch, cache-write, render; on failure a stale cache read, and only
// when that misses too the error state.
func (l *Loader) refresh(ctx context.Context, r Renderer) {
	events, err := l.source.Fetch(ctx)
	if err != nil {
		log.WithField("source", l.source.Name()).Errorf("failed to fetch events: %v", err)
		stale, serr := l.cache.Read(ctx, l.config.CacheKey, true)
		if serr != nil {
			r.RenderError(errorMessage)
			return
		}
		l.renderUpcoming(r, stale, StaleNotice)
		return
	}

	// The write happens before the render so a reload observes what it
	// was just shown.
	if err := l.cache.Write(ctx, l.config.CacheKey, events); err != nil {
		log.Errorf("failed to cache events: %v", err)
	}
	l.renderUpcoming(r, events, "")
}

func (l *Loader) begin() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inFlight {
		return false
	}
	l.inFlight = true
	return true
}

func (l *Loader) end() {
	l.mu.Lock()
	l.inFlight = false
	l.mu.Unlock()
}

// schedule claims the single background refresh slot. Without it every
// fresh-hit request under concurrent traffic would queue its own
// upstream fetch behind the in-flight guard.
func (l *Loader) schedule() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.scheduled {
		return false
	}
	l.scheduled = true
	return true
}

func (l *Loader) unschedule() {
	l.mu.Lock()
	l.scheduled = false
	l.mu.Unlock()
}

func (l *Loader) renderUpcoming(r Renderer, events []event.Event, notice string) {
	upcoming := event.Upcoming(events, l.now())
	r.Render(render.ProjectAll(upcoming), notice)
}

// backgroundRefresh is a fire-and-forget cycle that hides fetch latency
// from the next page load. Its outcome only touches the cache.
func (l *Loader) backgroundRefresh() {
	defer l.unschedule()
	if l.config.RefreshDelay > 0 {
		time.Sleep(l.config.RefreshDelay)
	}
	ctx, cancel := context.WithTimeout(context.Background(), backgroundTimeout)
	defer cancel()
	l.Refresh(ctx, discardRenderer{})
}

type discardRenderer struct{}

func (discardRenderer) Render(cards []render.Card, _ string) {
	log.Debugf("background refresh rendered %d cards", len(cards))
}

func (discardRenderer) RenderError(message string) {
	log.Debugf("background refresh failed: %s", message)
}
