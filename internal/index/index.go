// Package index is the in-memory search backend for school records. It
// implements the query contract end to end: tokenized text matching,
// typed filter operators, facet counting, sorting and 0-indexed paging.
// Repeated equals-conditions on one field are OR'd together; conditions
// on different fields are AND'd.
package index

import (
	"sort"
	"strings"
	"sync"

	"github.com/campusworks/searchkit/pkg/model"
)

// Record is one searchable school record.
type Record struct {
	ID         string
	EntityType string
	Title      string
	Fields     map[string]any
}

// Index is a thread-safe in-memory record index.
type Index struct {
	mu          sync.RWMutex
	records     []Record
	facetFields []string
}

// Option configures an Index.
type Option func(*Index)

// WithFacetFields sets which fields are counted into facets.
func WithFacetFields(fields ...string) Option {
	return func(ix *Index) {
		ix.facetFields = fields
	}
}

// New creates an empty index. The default facet fields cover the
// discrete dimensions of the school dataset.
func New(opts ...Option) *Index {
	ix := &Index{
		facetFields: []string{"status", "department", "semester"},
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Add inserts one record.
func (ix *Index) Add(rec Record) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.records = append(ix.records, rec)
}

// AddAll inserts a batch of records.
func (ix *Index) AddAll(recs []Record) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.records = append(ix.records, recs...)
}

// Len returns the number of indexed records.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.records)
}

// Search runs the query and returns one result page with facet counts
// computed over the full filtered set.
func (ix *Index) Search(q model.SearchQuery) *model.SearchResult {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	tokens := tokenize(q.Text)

	type scored struct {
		rec   Record
		score float64
	}
	var matched []scored
	for _, rec := range ix.records {
		if q.EntityType != "" && rec.EntityType != q.EntityType {
			continue
		}
		score, ok := textScore(rec, tokens)
		if !ok {
			continue
		}
		if !matchFilters(rec, q.Filters) {
			continue
		}
		matched = append(matched, scored{rec: rec, score: score})
	}

	facets := make(map[string][]model.FacetValue)
	for _, field := range ix.facetFields {
		counts := make(map[string]int)
		for _, m := range matched {
			if val, ok := stringField(m.rec, field); ok && val != "" {
				counts[val]++
			}
		}
		if len(counts) == 0 {
			continue
		}
		vals := make([]model.FacetValue, 0, len(counts))
		for v, n := range counts {
			vals = append(vals, model.FacetValue{Value: v, Count: n})
		}
		sort.Slice(vals, func(i, j int) bool {
			if vals[i].Count != vals[j].Count {
				return vals[i].Count > vals[j].Count
			}
			return vals[i].Value < vals[j].Value
		})
		facets[field] = vals
	}

	if q.SortBy != "" {
		desc := q.SortOrder == model.SortDesc
		sort.SliceStable(matched, func(i, j int) bool {
			if desc {
				return fieldLess(matched[j].rec, matched[i].rec, q.SortBy)
			}
			return fieldLess(matched[i].rec, matched[j].rec, q.SortBy)
		})
	} else {
		sort.SliceStable(matched, func(i, j int) bool {
			if matched[i].score != matched[j].score {
				return matched[i].score > matched[j].score
			}
			return matched[i].rec.Title < matched[j].rec.Title
		})
	}

	total := len(matched)
	start := q.Page * q.PageSize
	if start > total {
		start = total
	}
	end := start + q.PageSize
	if end > total {
		end = total
	}

	items := make([]model.SearchItem, 0, end-start)
	for _, m := range matched[start:end] {
		items = append(items, model.SearchItem{
			ID:         m.rec.ID,
			EntityType: m.rec.EntityType,
			Title:      m.rec.Title,
			Fields:     m.rec.Fields,
			Score:      m.score,
		})
	}

	return &model.SearchResult{
		Items:    items,
		Total:    total,
		Page:     q.Page,
		PageSize: q.PageSize,
		Facets:   facets,
	}
}

// Suggest returns up to limit title suggestions for the prefix, title
// matches first, then substring matches.
func (ix *Index) Suggest(text string, limit int) []model.Suggestion {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	needle := strings.ToLower(strings.TrimSpace(text))
	if needle == "" || limit <= 0 {
		return nil
	}

	var prefix, substr []model.Suggestion
	seen := make(map[string]struct{})
	for _, rec := range ix.records {
		title := strings.ToLower(rec.Title)
		if _, dup := seen[title]; dup {
			continue
		}
		s := model.Suggestion{Text: rec.Title, Type: rec.EntityType, ID: rec.ID}
		switch {
		case strings.HasPrefix(title, needle):
			seen[title] = struct{}{}
			prefix = append(prefix, s)
		case strings.Contains(title, needle):
			seen[title] = struct{}{}
			substr = append(substr, s)
		}
	}

	out := append(prefix, substr...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Stats returns record counts keyed by entity type.
func (ix *Index) Stats() map[string]int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	counts := make(map[string]int)
	for _, rec := range ix.records {
		counts[rec.EntityType]++
	}
	return counts
}

func tokenize(text string) []string {
	return strings.Fields(strings.ToLower(text))
}

// textScore matches every query token against the record, weighting
// title hits over field hits. Zero tokens match everything.
func textScore(rec Record, tokens []string) (float64, bool) {
	if len(tokens) == 0 {
		return 0, true
	}

	title := strings.ToLower(rec.Title)
	var score float64
	for _, tok := range tokens {
		switch {
		case strings.HasPrefix(title, tok):
			score += 3
		case strings.Contains(title, tok):
			score += 2
		case fieldContains(rec, tok):
			score++
		default:
			return 0, false
		}
	}
	return score, true
}

func fieldContains(rec Record, token string) bool {
	for _, val := range rec.Fields {
		if s, ok := val.(string); ok && strings.Contains(strings.ToLower(s), token) {
			return true
		}
	}
	return false
}
