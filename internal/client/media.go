package client

import (
	"context"
	"fmt"

	"github.com/finchdesk/finch/internal/upload"
	"github.com/finchdesk/finch/pkg/finch"
)

// MediaClient implements the finch.MediaClient interface.
type MediaClient struct {
	client *Client
}

// Upload implements finch.MediaClient.Upload: a single-call upload for small
// media, sent as a multipart form body.
func (c *MediaClient) Upload(ctx context.Context, mediaBase64 string) (*finch.MediaUploadResult, error) {
	result, err := c.client.Post(ctx, "media/upload", finch.Params{"media_data": mediaBase64}, nil)
	if err != nil {
		return nil, err
	}

	var uploadResult finch.MediaUploadResult

	err = result.Decode(&uploadResult)
	if err != nil {
		return nil, fmt.Errorf("decoding media upload result: %w", err)
	}

	return &uploadResult, nil
}

// UploadChunked implements finch.MediaClient.UploadChunked: the segmented
// INIT, APPEND, FINALIZE sequence for large media.
func (c *MediaClient) UploadChunked(ctx context.Context, filePath, mediaType string) (*finch.MediaUploadResult, error) {
	uploader := upload.New(c.client.currentBuilder(), c.client.executor, upload.Params{
		FilePath:  filePath,
		MediaType: mediaType,
	}, c.client.logger)

	return uploader.Upload(ctx)
}
