package client

import (
	"context"
	"fmt"
	"strconv"

	"github.com/finchdesk/finch/internal/constants"
	"github.com/finchdesk/finch/pkg/finch"
)

// StatusesClient implements the finch.StatusesClient interface.
type StatusesClient struct {
	client *Client
}

// HomeTimeline implements finch.StatusesClient.HomeTimeline.
func (c *StatusesClient) HomeTimeline(ctx context.Context, params *finch.TimelineParams) ([]finch.Status, error) {
	return c.timeline(ctx, "statuses/home_timeline", params)
}

// MentionsTimeline implements finch.StatusesClient.MentionsTimeline.
func (c *StatusesClient) MentionsTimeline(ctx context.Context, params *finch.TimelineParams) ([]finch.Status, error) {
	return c.timeline(ctx, "statuses/mentions_timeline", params)
}

// UserTimeline implements finch.StatusesClient.UserTimeline.
func (c *StatusesClient) UserTimeline(ctx context.Context, params *finch.TimelineParams) ([]finch.Status, error) {
	return c.timeline(ctx, "statuses/user_timeline", params)
}

func (c *StatusesClient) timeline(ctx context.Context, path string, params *finch.TimelineParams) ([]finch.Status, error) {
	result, err := c.client.Get(ctx, path, timelineParams(params), nil)
	if err != nil {
		return nil, err
	}

	var statuses []finch.Status

	err = result.Decode(&statuses)
	if err != nil {
		return nil, fmt.Errorf("decoding timeline: %w", err)
	}

	return statuses, nil
}

// Show implements finch.StatusesClient.Show.
func (c *StatusesClient) Show(ctx context.Context, id int64) (*finch.Status, error) {
	return c.statusCall(ctx, "GET", "statuses/show/:id", finch.Params{"id": id})
}

// Update implements finch.StatusesClient.Update. Extra params such as
// in_reply_to_status_id or media_ids merge with the status text.
func (c *StatusesClient) Update(ctx context.Context, text string, params finch.Params) (*finch.Status, error) {
	merged := finch.Params{"status": text}
	for key, value := range params {
		merged[key] = value
	}

	return c.statusCall(ctx, "POST", "statuses/update", merged)
}

// Destroy implements finch.StatusesClient.Destroy.
func (c *StatusesClient) Destroy(ctx context.Context, id int64) (*finch.Status, error) {
	return c.statusCall(ctx, "POST", "statuses/destroy/:id", finch.Params{"id": id})
}

// Retweet implements finch.StatusesClient.Retweet.
func (c *StatusesClient) Retweet(ctx context.Context, id int64) (*finch.Status, error) {
	return c.statusCall(ctx, "POST", "statuses/retweet/:id", finch.Params{"id": id})
}

func (c *StatusesClient) statusCall(ctx context.Context, method, path string, params finch.Params) (*finch.Status, error) {
	var (
		result *finch.Result
		err    error
	)

	if method == "GET" {
		result, err = c.client.Get(ctx, path, params, nil)
	} else {
		result, err = c.client.Post(ctx, path, params, nil)
	}

	if err != nil {
		return nil, err
	}

	var status finch.Status

	err = result.Decode(&status)
	if err != nil {
		return nil, fmt.Errorf("decoding status: %w", err)
	}

	return &status, nil
}

// timelineParams renders the typed timeline parameters, clamping count to
// the server's window.
func timelineParams(params *finch.TimelineParams) finch.Params {
	out := finch.Params{}

	if params == nil {
		return out
	}

	if params.Count > 0 {
		count := params.Count
		if count > constants.MaxTimelineCount {
			count = constants.MaxTimelineCount
		}

		out["count"] = count
	}

	if params.SinceID > 0 {
		out["since_id"] = strconv.FormatInt(params.SinceID, 10)
	}

	if params.MaxID > 0 {
		out["max_id"] = strconv.FormatInt(params.MaxID, 10)
	}

	if params.ScreenName != "" {
		out["screen_name"] = params.ScreenName
	}

	return out
}
