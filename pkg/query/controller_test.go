package query

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusworks/searchkit/pkg/model"
)

const (
	testDebounce = 20 * time.Millisecond
	waitFor      = 2 * time.Second
	tick         = 5 * time.Millisecond
)

// fakeFetcher records every search call and answers via a configurable
// respond function.
type fakeFetcher struct {
	mu      sync.Mutex
	calls   []model.SearchQuery
	respond func(q model.SearchQuery) (*model.SearchResult, error)
	stats   map[string]int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		respond: func(q model.SearchQuery) (*model.SearchResult, error) {
			return &model.SearchResult{Page: q.Page, PageSize: q.PageSize}, nil
		},
	}
}

func (f *fakeFetcher) Search(ctx context.Context, q model.SearchQuery) (*model.SearchResult, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	respond := f.respond
	f.mu.Unlock()
	return respond(q)
}

func (f *fakeFetcher) Suggest(ctx context.Context, text string, limit int) ([]model.Suggestion, error) {
	return nil, nil
}

func (f *fakeFetcher) Stats(ctx context.Context) (map[string]int, error) {
	if f.stats == nil {
		return nil, fmt.Errorf("stats unavailable")
	}
	return f.stats, nil
}

func (f *fakeFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeFetcher) call(i int) model.SearchQuery {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[i]
}

func (f *fakeFetcher) setRespond(fn func(q model.SearchQuery) (*model.SearchResult, error)) {
	f.mu.Lock()
	f.respond = fn
	f.mu.Unlock()
}

func pageOf(prefix string, page, n, total int) *model.SearchResult {
	items := make([]model.SearchItem, n)
	for i := range items {
		items[i] = model.SearchItem{ID: fmt.Sprintf("%s-%d-%d", prefix, page, i), Title: prefix}
	}
	return &model.SearchResult{Items: items, Total: total, Page: page, PageSize: n}
}

func TestDebounceCoalescing(t *testing.T) {
	f := newFakeFetcher()
	c := New(f, WithDebounce(50*time.Millisecond))
	defer c.Close()

	c.SetQuery("j")
	c.SetQuery("jo")
	c.SetQuery("joh")
	c.SetQuery("john")

	require.Eventually(t, func() bool { return f.callCount() == 1 }, waitFor, tick)

	// Quiet period passed; no further requests may appear.
	time.Sleep(3 * 50 * time.Millisecond)
	assert.Equal(t, 1, f.callCount())
	assert.Equal(t, "john", f.call(0).Text)
	assert.Equal(t, FirstPage, f.call(0).Page)
}

func TestPendingStateReflectsKeystrokesImmediately(t *testing.T) {
	f := newFakeFetcher()
	c := New(f, WithDebounce(time.Hour))
	defer c.Close()

	c.SetQuery("jo")
	assert.Equal(t, "jo", c.State().Text)
	assert.Zero(t, f.callCount(), "no fetch before the quiet period elapses")
}

func TestEmptyQueryShortCircuit(t *testing.T) {
	f := newFakeFetcher()
	c := New(f, WithDebounce(testDebounce))
	defer c.Close()

	c.SetQuery("   ")
	c.Flush()
	c.Refetch()

	time.Sleep(3 * testDebounce)
	assert.Zero(t, f.callCount())
	assert.Empty(t, c.Results())
	assert.False(t, c.IsLoading())
	assert.Empty(t, c.Error())
}

func TestPageMergeReplaceAndAppend(t *testing.T) {
	f := newFakeFetcher()
	f.setRespond(func(q model.SearchQuery) (*model.SearchResult, error) {
		return pageOf("student", q.Page, q.PageSize, 45), nil
	})
	c := New(f, WithDebounce(testDebounce))
	defer c.Close()

	c.SetQuery("smith")
	require.Eventually(t, func() bool { return len(c.Results()) == 20 }, waitFor, tick)
	assert.True(t, c.HasMore())

	c.LoadMore()
	require.Eventually(t, func() bool { return len(c.Results()) == 40 }, waitFor, tick)
	require.Equal(t, 2, f.callCount())
	assert.Equal(t, 1, f.call(1).Page)

	first := c.Results()[0]
	assert.Equal(t, "student-0-0", first.ID, "page 0 results stay in front after append")

	// A fresh page-0 search replaces the accumulated results.
	c.SetQuery("jones")
	require.Eventually(t, func() bool {
		return len(c.Results()) == 20 && c.Results()[0].ID == "student-0-0"
	}, waitFor, tick)
	require.Equal(t, 3, f.callCount())
	assert.Equal(t, FirstPage, f.call(2).Page)
}

func TestLoadMoreDuringDebounceKeepsCommittedQuery(t *testing.T) {
	f := newFakeFetcher()
	f.setRespond(func(q model.SearchQuery) (*model.SearchResult, error) {
		return pageOf(q.Text, q.Page, q.PageSize, 45), nil
	})
	c := New(f, WithDebounce(testDebounce))
	defer c.Close()

	c.SetQuery("alpha")
	require.Eventually(t, func() bool { return len(c.Results()) == 20 }, waitFor, tick)

	// A keystroke is still inside the debounce window when the user
	// clicks load-more. The appended page must belong to the committed
	// query, never to the uncommitted keystroke.
	c.SetQuery("beta")
	c.LoadMore()

	require.Eventually(t, func() bool { return f.callCount() == 3 }, waitFor, tick)
	sawAlphaNextPage := false
	for i := 0; i < f.callCount(); i++ {
		q := f.call(i)
		if q.Text == "beta" {
			assert.Equal(t, FirstPage, q.Page, "the pending keystroke starts over at page 0")
		}
		if q.Text == "alpha" && q.Page == 1 {
			sawAlphaNextPage = true
		}
	}
	assert.True(t, sawAlphaNextPage, "load-more pages the committed query")

	// The keystroke's own fetch supersedes everything accumulated.
	require.Eventually(t, func() bool {
		results := c.Results()
		return len(results) == 20 && results[0].ID == "beta-0-0"
	}, waitFor, tick)
	for _, item := range c.Results() {
		assert.Equal(t, "beta", item.Title)
	}
}

func TestScenarioShortFinalPage(t *testing.T) {
	f := newFakeFetcher()
	f.setRespond(func(q model.SearchQuery) (*model.SearchResult, error) {
		return pageOf("john", q.Page, 5, 5), nil
	})
	c := New(f, WithDebounce(testDebounce), WithEntityType("students"))
	defer c.Close()

	c.SetQuery("John")
	require.Eventually(t, func() bool { return len(c.Results()) == 5 }, waitFor, tick)

	assert.False(t, c.HasMore(), "a short page means no more results")
	assert.Equal(t, 5, c.TotalResults())
	assert.Equal(t, 1, c.TotalPages())
	assert.False(t, c.HasNextPage())
	assert.False(t, c.HasPreviousPage())
	assert.Equal(t, "students", f.call(0).EntityType)

	// HasMore is false, so LoadMore is a no-op.
	c.LoadMore()
	time.Sleep(3 * testDebounce)
	assert.Equal(t, 1, f.callCount())
}

func TestStaleResponseImmunity(t *testing.T) {
	release := make(chan struct{})
	f := newFakeFetcher()
	f.setRespond(func(q model.SearchQuery) (*model.SearchResult, error) {
		if q.Text == "alpha" {
			<-release
			return pageOf("alpha", q.Page, 3, 3), nil
		}
		return pageOf("beta", q.Page, 2, 2), nil
	})
	c := New(f, WithDebounce(testDebounce))
	defer c.Close()

	c.SetQuery("alpha")
	require.Eventually(t, func() bool { return f.callCount() == 1 }, waitFor, tick)

	c.SetQuery("beta")
	require.Eventually(t, func() bool { return len(c.Results()) == 2 }, waitFor, tick)

	// Let the slow alpha response arrive after beta already committed.
	close(release)
	time.Sleep(5 * testDebounce)

	results := c.Results()
	require.Len(t, results, 2)
	assert.Equal(t, "beta", results[0].Title)
	assert.Equal(t, 2, c.TotalResults())
}

func TestErrorClearsResultsAtomically(t *testing.T) {
	f := newFakeFetcher()
	f.setRespond(func(q model.SearchQuery) (*model.SearchResult, error) {
		return pageOf("x", q.Page, 5, 5), nil
	})
	c := New(f, WithDebounce(testDebounce))
	defer c.Close()

	c.SetQuery("smith")
	require.Eventually(t, func() bool { return len(c.Results()) == 5 }, waitFor, tick)

	f.setRespond(func(q model.SearchQuery) (*model.SearchResult, error) {
		return nil, fmt.Errorf("connection refused")
	})
	c.Refetch()
	require.Eventually(t, func() bool { return c.Error() != "" }, waitFor, tick)

	assert.Empty(t, c.Results())
	assert.False(t, c.IsLoading())
	assert.Contains(t, c.Error(), "connection refused")

	// The failure must not poison the next request.
	f.setRespond(func(q model.SearchQuery) (*model.SearchResult, error) {
		return pageOf("y", q.Page, 2, 2), nil
	})
	c.Refetch()
	require.Eventually(t, func() bool { return len(c.Results()) == 2 }, waitFor, tick)
	assert.Empty(t, c.Error())
}

func TestBuildQueryMergesFacetConditions(t *testing.T) {
	f := newFakeFetcher()
	c := New(f, WithDebounce(testDebounce))
	defer c.Close()

	explicit := model.FilterCondition{
		Field:    "gpa",
		Operator: model.OpGreaterThan,
		Value:    model.NumberValue(3),
	}
	c.SetQuery("john")
	c.AddFilter(explicit)
	c.ToggleFacet("status", "active")
	c.ToggleFacet("status", "inactive")
	c.Flush()

	q := c.BuildQuery()
	require.Len(t, q.Filters, 3)
	assert.Equal(t, explicit, q.Filters[0], "explicit filters precede facet-derived ones")
	assert.Equal(t, "status", q.Filters[1].Field)
	assert.Equal(t, model.OpEquals, q.Filters[1].Operator)
	assert.Equal(t, model.StringValue("active"), q.Filters[1].Value)
	assert.Equal(t, model.StringValue("inactive"), q.Filters[2].Value)

	// Pure: identical input, identical output.
	assert.Equal(t, q, c.BuildQuery())
}

func TestEntityTypeAllIsOmitted(t *testing.T) {
	f := newFakeFetcher()
	c := New(f, WithDebounce(testDebounce))
	defer c.Close()

	c.SetQuery("john")
	c.Flush()
	assert.Empty(t, c.BuildQuery().EntityType)

	c.SetEntityType("courses")
	c.Flush()
	assert.Equal(t, "courses", c.BuildQuery().EntityType)
}

func TestMutatorsResetPage(t *testing.T) {
	f := newFakeFetcher()
	c := New(f, WithDebounce(time.Hour))
	defer c.Close()

	c.SetPage(4)
	require.Equal(t, 4, c.State().Page)

	tests := []struct {
		name   string
		mutate func()
	}{
		{"SetQuery", func() { c.SetQuery("x") }},
		{"SetEntityType", func() { c.SetEntityType("grades") }},
		{"AddFilter", func() { c.AddFilter(model.FilterCondition{Field: "name", Operator: model.OpContains, Value: model.StringValue("a")}) }},
		{"ClearFilters", func() { c.ClearFilters() }},
		{"ToggleFacet", func() { c.ToggleFacet("status", "active") }},
		{"SetSort", func() { c.SetSort("name", model.SortAsc) }},
		{"SetPageSize", func() { c.SetPageSize(50) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.SetPage(4)
			tt.mutate()
			assert.Equal(t, FirstPage, c.State().Page)
		})
	}
}

func TestSetPageClampsAtFirstPage(t *testing.T) {
	f := newFakeFetcher()
	c := New(f, WithDebounce(time.Hour))
	defer c.Close()

	c.SetPage(-3)
	assert.Equal(t, FirstPage, c.State().Page)

	c.SetPageSize(0)
	assert.Equal(t, 1, c.State().PageSize)
}

func TestRemoveFilterPreservesOrder(t *testing.T) {
	f := newFakeFetcher()
	c := New(f, WithDebounce(time.Hour))
	defer c.Close()

	for _, name := range []string{"a", "b", "c"} {
		c.AddFilter(model.FilterCondition{Field: name, Operator: model.OpEquals, Value: model.StringValue("v")})
	}
	c.RemoveFilter(1)

	st := c.State()
	require.Len(t, st.Filters, 2)
	assert.Equal(t, "a", st.Filters[0].Field)
	assert.Equal(t, "c", st.Filters[1].Field)

	c.RemoveFilter(9)
	assert.Len(t, c.State().Filters, 2)
}

func TestClearFiltersSingleNotification(t *testing.T) {
	f := newFakeFetcher()
	var mu sync.Mutex
	events := 0
	c := New(f, WithDebounce(time.Hour), WithOnChange(func() {
		mu.Lock()
		events++
		mu.Unlock()
	}))
	defer c.Close()

	c.AddFilter(model.FilterCondition{Field: "a", Operator: model.OpEquals, Value: model.StringValue("1")})
	c.AddFilter(model.FilterCondition{Field: "b", Operator: model.OpEquals, Value: model.StringValue("2")})
	c.AddFilter(model.FilterCondition{Field: "c", Operator: model.OpEquals, Value: model.StringValue("3")})

	mu.Lock()
	before := events
	mu.Unlock()

	c.ClearFilters()

	mu.Lock()
	after := events
	mu.Unlock()
	assert.Equal(t, before+1, after, "clearing all filters is one transition, not one per condition")
	assert.Empty(t, c.State().Filters)
}

func TestLoadStatsBestEffort(t *testing.T) {
	f := newFakeFetcher()
	c := New(f, WithDebounce(testDebounce))
	defer c.Close()

	// Failure is swallowed.
	c.LoadStats(context.Background())
	assert.Empty(t, c.Stats())

	f.stats = map[string]int{"students": 8, "courses": 7}
	c.LoadStats(context.Background())
	assert.Equal(t, map[string]int{"students": 8, "courses": 7}, c.Stats())
}

func TestCloseDropsInFlightResponse(t *testing.T) {
	release := make(chan struct{})
	f := newFakeFetcher()
	f.setRespond(func(q model.SearchQuery) (*model.SearchResult, error) {
		<-release
		return pageOf("late", q.Page, 3, 3), nil
	})
	c := New(f, WithDebounce(testDebounce))

	c.SetQuery("slow")
	require.Eventually(t, func() bool { return f.callCount() == 1 }, waitFor, tick)

	c.Close()
	close(release)
	time.Sleep(3 * testDebounce)
	assert.Empty(t, c.Results())
}
