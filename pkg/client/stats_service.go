package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/campusworks/searchkit/pkg/model"
)

// StatsService fetches aggregate counts per entity type.
type StatsService struct {
	client *Client
}

// Counts returns record counts keyed by entity type.
func (s *StatsService) Counts(ctx context.Context) (map[string]int, error) {
	path := fmt.Sprintf("%s/stats", apiV1BasePath)

	var envelope model.StatsResponse
	if err := s.client.doJSONRequest(ctx, http.MethodGet, path, nil, nil, &envelope); err != nil {
		return nil, err
	}
	if !envelope.Success {
		apiErr := &APIError{Type: ErrorTypeUnknown, Message: "stats returned no data"}
		if envelope.Error != nil {
			apiErr.Message = envelope.Error.Message
			apiErr.ServerCode = envelope.Error.Code
		}
		return nil, apiErr
	}
	return envelope.Data, nil
}
