// Package suggest memoizes autocomplete responses per raw query string
// and debounces lookup bursts through a single cancel-and-replace timer.
// Entries are session-scoped: nothing expires them, they are simply
// discarded when the cache is closed.
package suggest

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusworks/searchkit/pkg/model"
	"github.com/campusworks/searchkit/pkg/observe"
)

// FetchFunc is the suggestion transport boundary.
type FetchFunc func(ctx context.Context, text string, limit int) ([]model.Suggestion, error)

const (
	DefaultDelay = 300 * time.Millisecond
	DefaultLimit = 10
)

// Cache is a keyed suggestion cache with one pending debounce timer.
type Cache struct {
	mu      sync.Mutex
	fetch   FetchFunc
	entries map[string][]model.Suggestion
	timer   *time.Timer
	gen     uint64
	delay   time.Duration
	limit   int
	closed  bool

	ctx     context.Context
	cancel  context.CancelFunc
	logger  zerolog.Logger
	metrics *observe.SearchMetrics
}

// Option configures a Cache.
type Option func(*Cache)

// WithDelay sets the debounce delay for GetDebounced.
func WithDelay(d time.Duration) Option {
	return func(c *Cache) {
		if d > 0 {
			c.delay = d
		}
	}
}

// WithLimit caps the number of suggestions requested per lookup.
func WithLimit(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.limit = n
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Cache) {
		c.logger = logger.With().Str("component", "suggestion-cache").Logger()
	}
}

// WithMetrics attaches hit/miss counters.
func WithMetrics(m *observe.SearchMetrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

// New creates a session-scoped suggestion cache. Call Close on teardown.
func New(fetch FetchFunc, opts ...Option) *Cache {
	c := &Cache{
		fetch:   fetch,
		entries: make(map[string][]model.Suggestion),
		delay:   DefaultDelay,
		limit:   DefaultLimit,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	return c
}

// Get returns suggestions for the exact query string, from cache when
// possible. A hit costs no network call; a miss fetches and stores the
// result keyed by the raw string.
func (c *Cache) Get(ctx context.Context, text string) ([]model.Suggestion, error) {
	c.mu.Lock()
	if cached, ok := c.entries[text]; ok {
		c.mu.Unlock()
		if c.metrics != nil {
			c.metrics.SuggestCacheHits.Inc()
		}
		return append([]model.Suggestion(nil), cached...), nil
	}
	limit := c.limit
	c.mu.Unlock()

	if c.metrics != nil {
		c.metrics.SuggestCacheMisses.Inc()
	}

	suggestions, err := c.fetch(ctx, text, limit)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if !c.closed {
		c.entries[text] = suggestions
	}
	c.mu.Unlock()

	return append([]model.Suggestion(nil), suggestions...), nil
}

// GetDebounced schedules a lookup after the quiet period, cancelling any
// previously scheduled one: bursts of keystrokes produce a single fetch
// for the final string. The callback receives the outcome; it is never
// called for superseded lookups, including a slow fetch overtaken by a
// newer call while in flight.
func (c *Cache) GetDebounced(text string, callback func([]model.Suggestion, error)) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	c.gen++
	gen := c.gen
	c.timer = time.AfterFunc(c.delay, func() {
		suggestions, err := c.Get(c.ctx, text)

		c.mu.Lock()
		superseded := c.closed || gen != c.gen
		c.mu.Unlock()
		if superseded {
			return
		}

		if err != nil {
			c.logger.Debug().Err(err).Str("query", text).Msg("suggestion fetch failed")
		}
		if callback != nil {
			callback(suggestions, err)
		}
	})
}

// Len returns the number of cached query strings.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops all cached entries, keeping the cache usable.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]model.Suggestion)
}

// Close cancels any pending lookup and discards the cache contents.
func (c *Cache) Close() {
	c.mu.Lock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.entries = make(map[string][]model.Suggestion)
	c.mu.Unlock()
	c.cancel()
}
