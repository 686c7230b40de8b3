package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/campusworks/searchkit/pkg/model"
)

// SuggestService fetches autocomplete suggestions.
type SuggestService struct {
	client *Client
}

// Suggest returns up to limit suggestions for the query prefix.
func (s *SuggestService) Suggest(ctx context.Context, text string, limit int) ([]model.Suggestion, error) {
	if limit <= 0 {
		limit = 10
	}

	params := url.Values{}
	params.Set("q", text)
	params.Set("limit", strconv.Itoa(limit))

	path := fmt.Sprintf("%s/suggest", apiV1BasePath)

	var envelope model.SuggestResponse
	if err := s.client.doJSONRequest(ctx, http.MethodGet, path, params, nil, &envelope); err != nil {
		return nil, err
	}
	if !envelope.Success {
		apiErr := &APIError{Type: ErrorTypeUnknown, Message: "suggest returned no data"}
		if envelope.Error != nil {
			apiErr.Message = envelope.Error.Message
			apiErr.ServerCode = envelope.Error.Code
		}
		return nil, apiErr
	}
	return envelope.Data, nil
}
