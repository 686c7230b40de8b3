// Package query implements the search query-state controller: it owns the
// query text, entity-type scope, filter list, facet selections, sort spec
// and pagination cursor, debounces mutations into at most one backend
// request per quiet period, and merges result pages under a staleness
// fence so a slow response can never overwrite fresher results.
package query

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/campusworks/searchkit/pkg/facet"
	"github.com/campusworks/searchkit/pkg/filter"
	"github.com/campusworks/searchkit/pkg/model"
	"github.com/campusworks/searchkit/pkg/observe"
)

// Fetcher is the transport boundary the controller talks to. pkg/client
// implements it over HTTP; tests substitute fakes.
type Fetcher interface {
	Search(ctx context.Context, q model.SearchQuery) (*model.SearchResult, error)
	Suggest(ctx context.Context, text string, limit int) ([]model.Suggestion, error)
	Stats(ctx context.Context) (map[string]int, error)
}

const (
	// FirstPage is the index of the first result page. Pagination is
	// 0-indexed throughout.
	FirstPage = 0

	DefaultPageSize = 20
	DefaultDebounce = 300 * time.Millisecond

	defaultRequestTimeout = 30 * time.Second
)

// State is the user-visible query tuple. The controller keeps two copies:
// the pending snapshot (updated synchronously on every mutation, so
// controlled inputs never lag) and the debounced snapshot (the one
// requests are built from).
type State struct {
	Text       string
	EntityType string
	Filters    []model.FilterCondition
	SortBy     string
	SortOrder  model.SortOrder
	Page       int
	PageSize   int
}

func (s State) clone() State {
	out := s
	out.Filters = append([]model.FilterCondition(nil), s.Filters...)
	return out
}

// snapshot freezes the state together with the facet-derived conditions
// captured at materialization time, so BuildQuery stays a pure function
// of it even while the facet index keeps changing.
type snapshot struct {
	state      State
	facetConds []model.FilterCondition
}

// Controller is the search query state machine. All exported methods are
// safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	fetcher Fetcher
	facets  *facet.Index
	fields  *filter.Model

	pending   State
	debounced snapshot

	debounce       time.Duration
	requestTimeout time.Duration
	timer          *time.Timer
	seq            uint64
	closed         bool

	results   []model.SearchItem
	total     int
	lastCount int
	loading   bool
	errMsg    string
	stats     map[string]int

	ctx      context.Context
	cancel   context.CancelFunc
	onChange func()
	logger   zerolog.Logger
	metrics  *observe.SearchMetrics
}

// Option configures a Controller.
type Option func(*Controller)

// WithDebounce sets the quiet period between the last mutation and the
// request it materializes into.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.debounce = d
		}
	}
}

// WithPageSize sets the initial page size.
func WithPageSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.pending.PageSize = n
		}
	}
}

// WithEntityType sets the initial entity-type scope.
func WithEntityType(entityType string) Option {
	return func(c *Controller) {
		c.pending.EntityType = entityType
	}
}

// WithRequestTimeout bounds each backend call.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.requestTimeout = d
		}
	}
}

// WithLogger attaches a logger; the controller logs at debug level only.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger.With().Str("component", "query-controller").Logger()
	}
}

// WithMetrics attaches controller counters.
func WithMetrics(m *observe.SearchMetrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithOnChange registers a listener invoked after every observable state
// transition. The listener runs outside the controller lock, so it may
// freely read controller state.
func WithOnChange(fn func()) Option {
	return func(c *Controller) {
		c.onChange = fn
	}
}

// WithFacetIndex shares an externally owned facet index.
func WithFacetIndex(ix *facet.Index) Option {
	return func(c *Controller) {
		c.facets = ix
	}
}

// WithFilterModel shares an externally owned filter field model.
func WithFilterModel(m *filter.Model) Option {
	return func(c *Controller) {
		c.fields = m
	}
}

// New creates a controller bound to a fetcher. Call Close when the owning
// view is torn down.
func New(fetcher Fetcher, opts ...Option) *Controller {
	c := &Controller{
		fetcher:        fetcher,
		facets:         facet.New(),
		fields:         filter.NewModel(),
		debounce:       DefaultDebounce,
		requestTimeout: defaultRequestTimeout,
		logger:         zerolog.Nop(),
		pending: State{
			EntityType: string(model.EntityAll),
			Page:       FirstPage,
			PageSize:   DefaultPageSize,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.debounced = snapshot{state: c.pending.clone()}
	return c
}

// Facets exposes the facet index the controller builds queries from.
func (c *Controller) Facets() *facet.Index {
	return c.facets
}

// Fields exposes the filter field model.
func (c *Controller) Fields() *filter.Model {
	return c.fields
}

// SetQuery updates the query text and resets the page cursor.
func (c *Controller) SetQuery(text string) {
	c.mu.Lock()
	c.pending.Text = text
	c.pending.Page = FirstPage
	c.scheduleLocked()
	c.mu.Unlock()
	c.notify()
}

// SetEntityType updates the search scope and resets the page cursor.
func (c *Controller) SetEntityType(entityType string) {
	c.mu.Lock()
	c.pending.EntityType = entityType
	c.pending.Page = FirstPage
	c.scheduleLocked()
	c.mu.Unlock()
	c.notify()
}

// AddFilter appends an explicit filter condition.
func (c *Controller) AddFilter(cond model.FilterCondition) {
	c.mu.Lock()
	c.pending.Filters = append(c.pending.Filters, cond)
	c.pending.Page = FirstPage
	c.scheduleLocked()
	c.mu.Unlock()
	c.notify()
}

// RemoveFilter deletes the condition at index, preserving the relative
// order of the remaining conditions. Out-of-range indexes are ignored.
func (c *Controller) RemoveFilter(index int) {
	c.mu.Lock()
	if index < 0 || index >= len(c.pending.Filters) {
		c.mu.Unlock()
		return
	}
	c.pending.Filters = append(c.pending.Filters[:index], c.pending.Filters[index+1:]...)
	c.pending.Page = FirstPage
	c.scheduleLocked()
	c.mu.Unlock()
	c.notify()
}

// SetFilters replaces the whole filter list in one transition.
func (c *Controller) SetFilters(filters []model.FilterCondition) {
	c.mu.Lock()
	c.pending.Filters = append([]model.FilterCondition(nil), filters...)
	c.pending.Page = FirstPage
	c.scheduleLocked()
	c.mu.Unlock()
	c.notify()
}

// ClearFilters empties the filter list atomically: listeners observe one
// transition, not one per removed condition.
func (c *Controller) ClearFilters() {
	c.mu.Lock()
	c.pending.Filters = nil
	c.pending.Page = FirstPage
	c.scheduleLocked()
	c.mu.Unlock()
	c.notify()
}

// ToggleFacet flips one facet value selection and resets the page cursor.
func (c *Controller) ToggleFacet(key, value string) {
	c.facets.Toggle(key, value)
	c.mu.Lock()
	c.pending.Page = FirstPage
	c.scheduleLocked()
	c.mu.Unlock()
	c.notify()
}

// ClearFacet empties one facet's selection and resets the page cursor.
func (c *Controller) ClearFacet(key string) {
	c.facets.Clear(key)
	c.mu.Lock()
	c.pending.Page = FirstPage
	c.scheduleLocked()
	c.mu.Unlock()
	c.notify()
}

// SetSort updates the sort spec and resets the page cursor.
func (c *Controller) SetSort(field string, order model.SortOrder) {
	c.mu.Lock()
	c.pending.SortBy = field
	c.pending.SortOrder = order
	c.pending.Page = FirstPage
	c.scheduleLocked()
	c.mu.Unlock()
	c.notify()
}

// SetPage moves the page cursor, clamped at the first page.
func (c *Controller) SetPage(page int) {
	c.mu.Lock()
	if page < FirstPage {
		page = FirstPage
	}
	c.pending.Page = page
	c.scheduleLocked()
	c.mu.Unlock()
	c.notify()
}

// SetPageSize updates the page size (minimum 1) and resets the page
// cursor.
func (c *Controller) SetPageSize(size int) {
	c.mu.Lock()
	if size < 1 {
		size = 1
	}
	c.pending.PageSize = size
	c.pending.Page = FirstPage
	c.scheduleLocked()
	c.mu.Unlock()
	c.notify()
}

// LoadMore advances to the next page and fires immediately, bypassing the
// debounce window: it is a deliberate click, not a keystroke burst. The
// fetched page appends to the accumulated results, so the snapshot
// advances from the debounced state, never from pending: a mutation still
// sitting in the debounce window belongs to a different query and must
// not be appended onto this one's pages. Its timer, if armed, stays
// armed; when it fires, the newer sequence fences this page out. No-op
// while a request is in flight or when the last page was short.
func (c *Controller) LoadMore() {
	c.mu.Lock()
	if c.closed || c.loading || c.lastCount != c.debounced.state.PageSize {
		c.mu.Unlock()
		return
	}
	snap := snapshot{
		state:      c.debounced.state.clone(),
		facetConds: append([]model.FilterCondition(nil), c.debounced.facetConds...),
	}
	snap.state.Page++
	c.debounced = snap
	if c.timer == nil {
		c.pending.Page = snap.state.Page
	}
	c.launchLocked(snap)
	c.mu.Unlock()
	c.notify()
}

// Flush materializes the pending snapshot immediately, cancelling any
// pending debounce timer. This is the Enter-key path.
func (c *Controller) Flush() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.stopTimerLocked()
	c.fireLocked()
	c.mu.Unlock()
	c.notify()
}

// Refetch re-issues the request for the current debounced snapshot, e.g.
// as the retry affordance after an error. The empty-query short-circuit
// applies here too.
func (c *Controller) Refetch() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.stopTimerLocked()
	c.launchLocked(c.debounced)
	c.mu.Unlock()
	c.notify()
}

// BuildQuery assembles the canonical request for the debounced snapshot:
// facet selections flattened into equals-conditions after the explicit
// filters. Pure; identical input yields identical output.
func (c *Controller) BuildQuery() model.SearchQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return buildQuery(c.debounced)
}

// LoadStats fetches per-entity-type counts once, best-effort: failures
// are logged and swallowed, never surfaced.
func (c *Controller) LoadStats(ctx context.Context) {
	stats, err := c.fetcher.Stats(ctx)
	if err != nil {
		c.logger.Debug().Err(err).Msg("stats fetch failed")
		return
	}
	c.mu.Lock()
	c.stats = stats
	c.mu.Unlock()
	c.notify()
}

// Close tears the controller down: the pending timer is cancelled and any
// in-flight response is discarded.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.stopTimerLocked()
	c.mu.Unlock()
	c.cancel()
}

// State returns the pending snapshot, which reflects every mutation
// immediately.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending.clone()
}

// Results returns the accumulated result items.
func (c *Controller) Results() []model.SearchItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]model.SearchItem(nil), c.results...)
}

// IsLoading reports whether a request is in flight.
func (c *Controller) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Error returns the visible error message, or "" when the last request
// succeeded.
func (c *Controller) Error() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// TotalResults returns the server's cardinality estimate for the whole
// query.
func (c *Controller) TotalResults() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}

// TotalPages derives the page count from the server total.
func (c *Controller) TotalPages() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return totalPages(c.total, c.debounced.state.PageSize)
}

// HasNextPage reports whether the current page is before the last
// total-derived page.
func (c *Controller) HasNextPage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.debounced.state.Page+1 < totalPages(c.total, c.debounced.state.PageSize)
}

// HasPreviousPage reports whether the current page is past the first.
func (c *Controller) HasPreviousPage() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.debounced.state.Page > FirstPage
}

// HasMore reports whether the last fetched page was full, the heuristic
// LoadMore pages by. A final page that happens to be exactly full costs
// one harmless extra fetch returning zero items.
func (c *Controller) HasMore() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastCount > 0 && c.lastCount == c.debounced.state.PageSize
}

// Stats returns the per-entity-type counts loaded by LoadStats.
func (c *Controller) Stats() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.stats))
	for k, v := range c.stats {
		out[k] = v
	}
	return out
}

// scheduleLocked cancels any pending timer and arms a fresh one. Only the
// final state within a debounce window ever turns into a request.
func (c *Controller) scheduleLocked() {
	if c.closed {
		return
	}
	if c.timer != nil {
		c.timer.Stop()
		if c.metrics != nil {
			c.metrics.MutationsCoalesced.Inc()
		}
	}
	c.timer = time.AfterFunc(c.debounce, c.fire)
}

func (c *Controller) stopTimerLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// fire is the timer callback materializing the pending snapshot.
func (c *Controller) fire() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.timer = nil
	c.fireLocked()
	c.mu.Unlock()
	c.notify()
}

// fireLocked freezes the pending state plus the current facet selections
// into the debounced snapshot and launches the fetch for it.
func (c *Controller) fireLocked() {
	snap := snapshot{
		state:      c.pending.clone(),
		facetConds: c.facets.Conditions(),
	}
	c.debounced = snap
	c.launchLocked(snap)
}

// launchLocked advances the fencing sequence and either short-circuits an
// empty query or starts the fetch goroutine. Advancing the sequence even
// on the short-circuit path guarantees an in-flight response for the
// previous query can no longer commit.
func (c *Controller) launchLocked(snap snapshot) {
	c.seq++

	if strings.TrimSpace(snap.state.Text) == "" {
		c.results = nil
		c.total = 0
		c.lastCount = 0
		c.loading = false
		c.errMsg = ""
		return
	}

	c.loading = true
	c.errMsg = ""
	if c.metrics != nil {
		c.metrics.SearchesIssued.Inc()
	}
	go c.doFetch(c.seq, snap)
}

// doFetch issues one request and commits its outcome only if no newer
// request has superseded it in the meantime.
func (c *Controller) doFetch(seq uint64, snap snapshot) {
	ctx, cancel := context.WithTimeout(c.ctx, c.requestTimeout)
	defer cancel()

	q := buildQuery(snap)
	res, err := c.fetcher.Search(ctx, q)

	c.mu.Lock()
	if c.closed || seq != c.seq {
		c.mu.Unlock()
		if c.metrics != nil {
			c.metrics.StaleDropped.Inc()
		}
		c.logger.Debug().Uint64("seq", seq).Msg("dropping stale search response")
		return
	}

	if err != nil {
		c.results = nil
		c.total = 0
		c.lastCount = 0
		c.loading = false
		c.errMsg = fmt.Sprintf("search failed: %v", err)
		if c.metrics != nil {
			c.metrics.SearchErrors.Inc()
		}
		c.mu.Unlock()
		c.notify()
		return
	}

	if snap.state.Page == FirstPage {
		c.results = append([]model.SearchItem(nil), res.Items...)
	} else {
		c.results = append(c.results, res.Items...)
	}
	c.total = res.Total
	c.lastCount = len(res.Items)
	c.loading = false
	c.errMsg = ""
	c.facets.SetValues(res.Facets)
	c.mu.Unlock()
	c.notify()
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}

func buildQuery(snap snapshot) model.SearchQuery {
	filters := make([]model.FilterCondition, 0, len(snap.state.Filters)+len(snap.facetConds))
	filters = append(filters, snap.state.Filters...)
	filters = append(filters, snap.facetConds...)

	entityType := snap.state.EntityType
	if entityType == string(model.EntityAll) {
		entityType = ""
	}

	return model.SearchQuery{
		Text:       snap.state.Text,
		EntityType: entityType,
		Filters:    filters,
		SortBy:     snap.state.SortBy,
		SortOrder:  snap.state.SortOrder,
		Page:       snap.state.Page,
		PageSize:   snap.state.PageSize,
	}
}

func totalPages(total, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}
