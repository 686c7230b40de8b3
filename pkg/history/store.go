// Package history persists past queries and saved searches in durable
// client storage. Stores are explicitly constructed per session so tests
// can run against isolated instances; corrupt storage always degrades to
// an empty list, never to an error.
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
	historyKey = "search-history"

	// MaxEntries bounds the history list.
	MaxEntries = 10
)

// Store is the append-only, capacity-bounded search history. Most recent
// first; no two entries share the same query text.
type Store struct {
	mu      sync.Mutex
	storage Storage
	entries []model.HistoryEntry
	logger  zerolog.Logger
}

// NewStore loads existing history from storage. A missing or corrupt
// document yields an empty store.
func NewStore(storage Storage, logger zerolog.Logger) *Store {
	s := &Store{
		storage: storage,
		logger:  logger.With().Str("component", "history-store").Logger(),
	}
	s.entries = s.load()
	return s
}

func (s *Store) load() []model.HistoryEntry {
	data, err := s.storage.Read(historyKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn().Err(err).Msg("history storage unreadable, starting empty")
		}
		return nil
	}
	var entries []model.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn().Err(err).Msg("history storage corrupt, starting empty")
		return nil
	}
	if len(entries) > MaxEntries {
		entries = entries[:MaxEntries]
	}
	return entries
}

// Add records a query: any existing entry with the same text is removed,
// the new entry is prepended, and the list truncated to MaxEntries.
// Blank queries are ignored. The full list persists synchronously.
func (s *Store) Add(queryText, entityType string) (model.HistoryEntry, bool) {
	queryText = strings.TrimSpace(queryText)
	if queryText == "" {
		return model.HistoryEntry{}, false
	}

	entry := model.HistoryEntry{
		ID:         uuid.NewString(),
		Query:      queryText,
		EntityType: entityType,
		Timestamp:  time.Now().UnixMilli(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := make([]model.HistoryEntry, 0, len(s.entries)+1)
	kept = append(kept, entry)
	for _, e := range s.entries {
		if e.Query != queryText {
			kept = append(kept, e)
		}
	}
	if len(kept) > MaxEntries {
		kept = kept[:MaxEntries]
	}
	s.entries = kept
	s.persist()

	return entry, true
}

// Entries returns the history, most recent first.
func (s *Store) Entries() []model.HistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.HistoryEntry(nil), s.entries...)
}

// Remove deletes one entry by id.
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, e := range s.entries {
		if e.ID == id {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			s.persist()
			return true
		}
	}
	return false
}

// Clear empties the history.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = nil
	s.persist()
}

// persist writes the full list. A write failure keeps the in-memory list
// intact and is only logged; history loss is preferable to a thrown
// error in an event handler.
func (s *Store) persist() {
	data, err := json.Marshal(s.entries)
	if err != nil {
		s.logger.Error().Err(err).Msg("history marshal failed")
		return
	}
	if err := s.storage.Write(historyKey, data); err != nil {
		s.logger.Warn().Err(err).Msg("history persist failed")
	}
}
