// Package upload implements chunked media uploads: an INIT call reserving a
// media id, base64 APPEND calls carrying the file in segments, and a
// FINALIZE call completing the upload.
package upload

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/finchdesk/finch/internal/constants"
	finchhttp "github.com/finchdesk/finch/internal/http"
	"github.com/finchdesk/finch/pkg/finch"
)

const uploadPath = "media/upload"

// Executor performs the individual upload calls.
type Executor interface {
	Do(ctx context.Context, desc *finchhttp.RequestDescriptor, opts *finch.CallOptions) (*finchhttp.Response, error)
}

// Params configures one chunked upload.
type Params struct {
	// FilePath is the media file to upload.
	FilePath string

	// MediaType is the MIME type, e.g. "video/mp4". Required by the INIT
	// call.
	MediaType string

	// MediaCategory optionally hints the server how the media will be used,
	// e.g. "tweet_video".
	MediaCategory string

	// ChunkSize overrides the default segment size. Zero means the default.
	ChunkSize int64
}

// Uploader drives one chunked upload. Create with New, run with Upload.
type Uploader struct {
	builder  *finchhttp.Builder
	executor Executor
	params   Params
	logger   finch.Logger
}

// New creates an uploader.
func New(builder *finchhttp.Builder, executor Executor, params Params, logger finch.Logger) *Uploader {
	if params.ChunkSize <= 0 {
		params.ChunkSize = constants.UploadChunkSize
	}

	return &Uploader{
		builder:  builder,
		executor: executor,
		params:   params,
		logger:   logger,
	}
}

// Upload runs the INIT, APPEND and FINALIZE sequence and returns the
// finalized media. The caller embeds the returned media id in a later post.
func (u *Uploader) Upload(ctx context.Context) (*finch.MediaUploadResult, error) {
	if u.params.FilePath == "" {
		return nil, finch.ErrMediaFileRequired
	}

	file, err := os.Open(u.params.FilePath)
	if err != nil {
		return nil, fmt.Errorf("opening media file: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("inspecting media file: %w", err)
	}

	if info.Size() > constants.UploadMaxBytes {
		return nil, fmt.Errorf("%w: %d bytes", finch.ErrMediaFileTooLarge, info.Size())
	}

	mediaID, err := u.initUpload(ctx, info.Size())
	if err != nil {
		return nil, err
	}

	err = u.appendChunks(ctx, file, mediaID)
	if err != nil {
		return nil, err
	}

	return u.finalize(ctx, mediaID)
}

// initUpload reserves a media id for the coming segments.
func (u *Uploader) initUpload(ctx context.Context, totalBytes int64) (string, error) {
	params := finch.Params{
		"command":     "INIT",
		"media_type":  u.params.MediaType,
		"total_bytes": strconv.FormatInt(totalBytes, 10),
	}

	if u.params.MediaCategory != "" {
		params["media_category"] = u.params.MediaCategory
	}

	resp, err := u.do(ctx, params)
	if err != nil {
		return "", fmt.Errorf("media upload INIT: %w", err)
	}

	var result finch.MediaUploadResult

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return "", finch.NewDecodeError(resp.StatusCode, resp.Body, err)
	}

	if u.logger != nil {
		u.logger.Debug("media upload initialized", map[string]interface{}{
			"media_id":    result.MediaIDString,
			"total_bytes": totalBytes,
		})
	}

	return result.MediaIDString, nil
}

// appendChunks streams the file up in base64 segments with ascending
// indices.
func (u *Uploader) appendChunks(ctx context.Context, file io.Reader, mediaID string) error {
	buf := make([]byte, u.params.ChunkSize)

	for segment := 0; ; segment++ {
		n, readErr := io.ReadFull(file, buf)
		if n > 0 {
			params := finch.Params{
				"command":       "APPEND",
				"media_id":      mediaID,
				"segment_index": segment,
				"media_data":    base64.StdEncoding.EncodeToString(buf[:n]),
			}

			_, err := u.do(ctx, params)
			if err != nil {
				return fmt.Errorf("media upload APPEND segment %d: %w", segment, err)
			}
		}

		if readErr == io.EOF || readErr == io.ErrUnexpectedEOF {
			return nil
		}

		if readErr != nil {
			return fmt.Errorf("reading media file: %w", readErr)
		}
	}
}

// finalize completes the upload and returns the server's media record.
func (u *Uploader) finalize(ctx context.Context, mediaID string) (*finch.MediaUploadResult, error) {
	resp, err := u.do(ctx, finch.Params{
		"command":  "FINALIZE",
		"media_id": mediaID,
	})
	if err != nil {
		return nil, fmt.Errorf("media upload FINALIZE: %w", err)
	}

	var result finch.MediaUploadResult

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return nil, finch.NewDecodeError(resp.StatusCode, resp.Body, err)
	}

	return &result, nil
}

// do builds and executes one multipart upload call.
func (u *Uploader) do(ctx context.Context, params finch.Params) (*finchhttp.Response, error) {
	desc, err := u.builder.Build(ctx, &finchhttp.Request{
		Method: "POST",
		Path:   uploadPath,
		Params: params,
	})
	if err != nil {
		return nil, err
	}

	return u.executor.Do(ctx, desc, nil)
}
