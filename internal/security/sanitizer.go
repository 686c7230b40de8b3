// Package security cleans free-text input at the API edge before it
// reaches the index.
package security

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

const maxQueryLength = 256

// QuerySanitizer strips markup from free-text search input and bounds its
// length. Filter values are typed at the edit boundary and bypass it.
type QuerySanitizer struct {
	policy *bluemonday.Policy
}

func NewQuerySanitizer() *QuerySanitizer {
	return &QuerySanitizer{
		policy: bluemonday.StrictPolicy(),
	}
}

// Sanitize returns the cleaned query text: markup removed, whitespace
// collapsed, length capped.
func (s *QuerySanitizer) Sanitize(text string) string {
	cleaned := s.policy.Sanitize(text)
	cleaned = strings.Join(strings.Fields(cleaned), " ")
	if len(cleaned) > maxQueryLength {
		cleaned = cleaned[:maxQueryLength]
	}
	return cleaned
}
