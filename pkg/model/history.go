package model

// HistoryEntry is one remembered query. Timestamp is epoch milliseconds.
type HistoryEntry struct {
	ID         string `json:"id"`
	Query      string `json:"query"`
	EntityType string `json:"entityType,omitempty"`
	Timestamp  int64  `json:"timestamp"`
}

// SavedSearch is a named, reusable query with its filter conditions.
// CreatedAt and LastUsed are epoch milliseconds.
type SavedSearch struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	SearchType string            `json:"searchType"`
	Query      string            `json:"query"`
	Filters    []FilterCondition `json:"filters"`
	CreatedAt  int64             `json:"createdAt"`
	LastUsed   int64             `json:"lastUsed"`
}
