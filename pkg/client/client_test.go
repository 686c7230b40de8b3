package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusworks/searchkit/pkg/model"
)

func TestSearchDecodesEnvelope(t *testing.T) {
	var got model.SearchQuery
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/search", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(model.SearchResponse{
			Success: true,
			Data: &model.SearchResult{
				Items: []model.SearchItem{{ID: "stu-1", EntityType: "students", Title: "John Miller"}},
				Total: 1, Page: 0, PageSize: 20,
			},
		})
	}))
	defer server.Close()

	c, err := NewClient(server.URL)
	require.NoError(t, err)

	result, err := c.Search.Search(context.Background(), model.SearchQuery{
		Text:       "john",
		EntityType: "students",
		Filters: []model.FilterCondition{
			{Field: "status", Operator: model.OpEquals, Value: model.StringValue("active")},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Equal(t, "John Miller", result.Items[0].Title)

	assert.Equal(t, "john", got.Text)
	assert.Equal(t, 20, got.PageSize, "page size default applied client-side")
	require.Len(t, got.Filters, 1)
	assert.Equal(t, model.StringValue("active"), got.Filters[0].Value)
}

func TestSearchMapsErrorEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(model.SearchResponse{
			Success: false,
			Error:   &model.ErrorBody{Code: "VALIDATION_ERROR", Message: "unknown operator"},
		})
	}))
	defer server.Close()

	c, err := NewClient(server.URL)
	require.NoError(t, err)

	_, err = c.Search.Search(context.Background(), model.SearchQuery{Text: "x"})
	require.Error(t, err)

	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsValidation())
	assert.Equal(t, "unknown operator", apiErr.Message)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.ServerCode)
	assert.Equal(t, http.StatusBadRequest, apiErr.Code)
}

func TestRetryOnUnavailable(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(model.SearchResponse{
			Success: true,
			Data:    &model.SearchResult{Total: 0, PageSize: 20},
		})
	}))
	defer server.Close()

	c, err := NewClient(server.URL, WithRetry(3, time.Millisecond))
	require.NoError(t, err)

	_, err = c.Search.Search(context.Background(), model.SearchQuery{Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestValidationErrorsAreNotRetried(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(model.SearchResponse{
			Success: false,
			Error:   &model.ErrorBody{Code: "VALIDATION_ERROR", Message: "bad request"},
		})
	}))
	defer server.Close()

	c, err := NewClient(server.URL, WithRetry(3, time.Millisecond))
	require.NoError(t, err)

	_, err = c.Search.Search(context.Background(), model.SearchQuery{Text: "x"})
	require.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestSuggestAndStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/suggest":
			assert.Equal(t, "joh", r.URL.Query().Get("q"))
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			json.NewEncoder(w).Encode(model.SuggestResponse{
				Success: true,
				Data:    []model.Suggestion{{Text: "John Miller", Type: "students", ID: "stu-1"}},
			})
		case "/api/v1/stats":
			json.NewEncoder(w).Encode(model.StatsResponse{
				Success: true,
				Data:    map[string]int{"students": 8},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	c, err := NewClient(server.URL)
	require.NoError(t, err)

	suggestions, err := c.Suggest.Suggest(context.Background(), "joh", 5)
	require.NoError(t, err)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "John Miller", suggestions[0].Text)

	counts, err := c.Stats.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"students": 8}, counts)
}

func TestBaseURLPathPrefixPreserved(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/search-api/api/v1/search", r.URL.Path)
		json.NewEncoder(w).Encode(model.SearchResponse{
			Success: true,
			Data:    &model.SearchResult{PageSize: 20},
		})
	}))
	defer server.Close()

	// A reverse-proxied deployment mounts the backend under a prefix.
	c, err := NewClient(server.URL + "/search-api")
	require.NoError(t, err)

	_, err = c.Search.Search(context.Background(), model.SearchQuery{Text: "x"})
	require.NoError(t, err)
}

func TestNewClientRejectsBadURL(t *testing.T) {
	_, err := NewClient("://not-a-url")
	assert.Error(t, err)
}

func TestFetcherAdapter(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(model.SearchResponse{
			Success: true,
			Data:    &model.SearchResult{Total: 3, PageSize: 20},
		})
	}))
	defer server.Close()

	c, err := NewClient(server.URL)
	require.NoError(t, err)

	result, err := c.Fetcher().Search(context.Background(), model.SearchQuery{Text: "x"})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Total)
}
