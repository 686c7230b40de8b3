package history

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/campusworks/searchkit/pkg/model"
)

const (
	savedSearchKey = "saved-searches"

	// MaxSavedPerType bounds saved searches per search type.
	MaxSavedPerType = 10
)

// SavedSearchStore persists named searches, capped per search type. All
// types share one storage key holding a single JSON array.
type SavedSearchStore struct {
	mu      sync.Mutex
	storage Storage
	saved   []model.SavedSearch
	logger  zerolog.Logger
}

// NewSavedSearchStore loads existing saved searches; corrupt storage
// degrades to an empty store.
func NewSavedSearchStore(storage Storage, logger zerolog.Logger) *SavedSearchStore {
	s := &SavedSearchStore{
		storage: storage,
		logger:  logger.With().Str("component", "saved-search-store").Logger(),
	}
	s.saved = s.load()
	return s
}

func (s *SavedSearchStore) load() []model.SavedSearch {
	data, err := s.storage.Read(savedSearchKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn().Err(err).Msg("saved-search storage unreadable, starting empty")
		}
		return nil
	}
	var saved []model.SavedSearch
	if err := json.Unmarshal(data, &saved); err != nil {
		s.logger.Warn().Err(err).Msg("saved-search storage corrupt, starting empty")
		return nil
	}
	return saved
}

// Save stores a named search. Within one search type the newest entries
// win: the list is truncated to MaxSavedPerType, dropping the least
// recently created.
func (s *SavedSearchStore) Save(name, searchType, queryText string, filters []model.FilterCondition) (model.SavedSearch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.SavedSearch{}, errors.New("saved search name is required")
	}

	now := time.Now().UnixMilli()
	entry := model.SavedSearch{
		ID:         uuid.NewString(),
		Name:       name,
		SearchType: searchType,
		Query:      queryText,
		Filters:    append([]model.FilterCondition(nil), filters...),
		CreatedAt:  now,
		LastUsed:   now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.saved = append([]model.SavedSearch{entry}, s.saved...)

	// Enforce the per-type cap, keeping overall order.
	counts := make(map[string]int)
	kept := s.saved[:0]
	for _, sv := range s.saved {
		if counts[sv.SearchType] >= MaxSavedPerType {
			continue
		}
		counts[sv.SearchType]++
		kept = append(kept, sv)
	}
	s.saved = kept
	s.persist()

	return entry, nil
}

// List returns the saved searches for one search type, newest first.
func (s *SavedSearchStore) List(searchType string) []model.SavedSearch {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []model.SavedSearch
	for _, sv := range s.saved {
		if sv.SearchType == searchType {
			out = append(out, sv)
		}
	}
	return out
}

// Touch marks a saved search as used now.
func (s *SavedSearchStore) Touch(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.saved {
		if s.saved[i].ID == id {
			s.saved[i].LastUsed = time.Now().UnixMilli()
			s.persist()
			return true
		}
	}
	return false
}

// Remove deletes one saved search by id.
func (s *SavedSearchStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sv := range s.saved {
		if sv.ID == id {
			s.saved = append(s.saved[:i], s.saved[i+1:]...)
			s.persist()
			return true
		}
	}
	return false
}

func (s *SavedSearchStore) persist() {
	data, err := json.Marshal(s.saved)
	if err != nil {
		s.logger.Error().Err(err).Msg("saved-search marshal failed")
		return
	}
	if err := s.storage.Write(savedSearchKey, data); err != nil {
		s.logger.Warn().Err(err).Msg("saved-search persist failed")
	}
}
