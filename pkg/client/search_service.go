package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/campusworks/searchkit/pkg/model"
)

// SearchService issues search requests.
type SearchService struct {
	client *Client
}

// Search posts a query and returns the result page. Paging defaults are
// applied client-side so a zero-valued query is still well-formed.
func (s *SearchService) Search(ctx context.Context, q model.SearchQuery) (*model.SearchResult, error) {
	if q.PageSize <= 0 {
		q.PageSize = 20
	}
	if q.Page < 0 {
		q.Page = 0
	}

	path := fmt.Sprintf("%s/search", apiV1BasePath)

	var envelope model.SearchResponse
	if err := s.client.doJSONRequest(ctx, http.MethodPost, path, nil, q, &envelope); err != nil {
		return nil, err
	}
	if !envelope.Success || envelope.Data == nil {
		apiErr := &APIError{Type: ErrorTypeUnknown, Message: "search returned no data"}
		if envelope.Error != nil {
			apiErr.Message = envelope.Error.Message
			apiErr.ServerCode = envelope.Error.Code
		}
		return nil, apiErr
	}
	return envelope.Data, nil
}
