package client

import (
	"context"
	"fmt"

	"github.com/finchdesk/finch/pkg/finch"
)

// SearchClient implements the finch.SearchClient interface.
type SearchClient struct {
	client *Client
}

// Statuses implements finch.SearchClient.Statuses. Extra params such as
// result_type or lang merge with the query.
func (c *SearchClient) Statuses(ctx context.Context, query string, params finch.Params) (*finch.SearchResult, error) {
	merged := finch.Params{"q": query}
	for key, value := range params {
		merged[key] = value
	}

	result, err := c.client.Get(ctx, "search/tweets", merged, nil)
	if err != nil {
		return nil, err
	}

	var searchResult finch.SearchResult

	err = result.Decode(&searchResult)
	if err != nil {
		return nil, fmt.Errorf("decoding search result: %w", err)
	}

	return &searchResult, nil
}
