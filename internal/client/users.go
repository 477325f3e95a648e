package client

import (
	"context"
	"fmt"

	"github.com/finchdesk/finch/pkg/finch"
)

// UsersClient implements the finch.UsersClient interface.
type UsersClient struct {
	client *Client
}

// Show implements finch.UsersClient.Show.
func (c *UsersClient) Show(ctx context.Context, screenName string) (*finch.User, error) {
	result, err := c.client.Get(ctx, "users/show", finch.Params{"screen_name": screenName}, nil)
	if err != nil {
		return nil, err
	}

	var user finch.User

	err = result.Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("decoding user: %w", err)
	}

	return &user, nil
}

// Lookup implements finch.UsersClient.Lookup. Screen names are joined with
// commas on the wire.
func (c *UsersClient) Lookup(ctx context.Context, screenNames []string) ([]finch.User, error) {
	result, err := c.client.Get(ctx, "users/lookup", finch.Params{"screen_name": screenNames}, nil)
	if err != nil {
		return nil, err
	}

	var users []finch.User

	err = result.Decode(&users)
	if err != nil {
		return nil, fmt.Errorf("decoding users: %w", err)
	}

	return users, nil
}

// UpdateProfileImage implements finch.UsersClient.UpdateProfileImage. The
// image travels as a multipart form body.
func (c *UsersClient) UpdateProfileImage(ctx context.Context, imageBase64 string) (*finch.User, error) {
	result, err := c.client.Post(ctx, "account/update_profile_image", finch.Params{"image": imageBase64}, nil)
	if err != nil {
		return nil, err
	}

	var user finch.User

	err = result.Decode(&user)
	if err != nil {
		return nil, fmt.Errorf("decoding user: %w", err)
	}

	return &user, nil
}
