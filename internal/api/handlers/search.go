package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/campusworks/searchkit/internal/api/middleware"
	"github.com/campusworks/searchkit/internal/index"
	"github.com/campusworks/searchkit/internal/security"
	"github.com/campusworks/searchkit/pkg/model"
)

const (
	defaultPageSize = 20
	maxPageSize     = 200
	maxSuggestLimit = 50
)

// SearchHandler serves the search, suggestion and statistics endpoints
// against the record index.
type SearchHandler struct {
	index     *index.Index
	sanitizer *security.QuerySanitizer
	validate  *validator.Validate
}

func NewSearchHandler(ix *index.Index) *SearchHandler {
	return &SearchHandler{
		index:     ix,
		sanitizer: security.NewQuerySanitizer(),
		validate:  validator.New(),
	}
}

// Search handles POST /api/v1/search.
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var q model.SearchQuery
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		middleware.RespondError(w, http.StatusBadRequest, middleware.CodeValidation, "invalid request body: "+err.Error())
		return
	}

	if q.PageSize == 0 {
		q.PageSize = defaultPageSize
	}
	if q.PageSize > maxPageSize {
		q.PageSize = maxPageSize
	}
	if err := h.validate.Struct(q); err != nil {
		middleware.RespondError(w, http.StatusBadRequest, middleware.CodeValidation, err.Error())
		return
	}
	if err := validateFilters(q.Filters); err != nil {
		middleware.RespondError(w, http.StatusBadRequest, middleware.CodeValidation, err.Error())
		return
	}
	q.Text = h.sanitizer.Sanitize(q.Text)

	middleware.Respond(w, http.StatusOK, h.index.Search(q))
}

// Suggest handles GET /api/v1/suggest.
func (h *SearchHandler) Suggest(w http.ResponseWriter, r *http.Request) {
	text := h.sanitizer.Sanitize(r.URL.Query().Get("q"))

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			middleware.RespondError(w, http.StatusBadRequest, middleware.CodeValidation, "limit must be a positive integer")
			return
		}
		limit = n
	}
	if limit > maxSuggestLimit {
		limit = maxSuggestLimit
	}

	suggestions := h.index.Suggest(text, limit)
	if suggestions == nil {
		suggestions = []model.Suggestion{}
	}
	middleware.Respond(w, http.StatusOK, suggestions)
}

// Stats handles GET /api/v1/stats.
func (h *SearchHandler) Stats(w http.ResponseWriter, r *http.Request) {
	middleware.Respond(w, http.StatusOK, h.index.Stats())
}
