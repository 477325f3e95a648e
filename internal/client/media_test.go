package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaUploadSimple(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/media/upload.json", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "bWVkaWE=", r.FormValue("media_data"))

		_, _ = w.Write([]byte(`{"media_id": 710511363345354753, "media_id_string": "710511363345354753"}`))
	}))
	defer server.Close()

	c, err := New(testConfig(server.URL))
	require.NoError(t, err)

	result, err := c.Media().Upload(context.Background(), "bWVkaWE=")
	require.NoError(t, err)
	assert.Equal(t, "710511363345354753", result.MediaIDString)
}

func TestMediaUploadChunkedThroughClient(t *testing.T) {
	t.Parallel()

	var commands []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		commands = append(commands, r.FormValue("command"))

		_, _ = w.Write([]byte(`{"media_id": 1, "media_id_string": "1"}`))
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("tiny clip"), 0o600))

	c, err := New(testConfig(server.URL))
	require.NoError(t, err)

	result, err := c.Media().UploadChunked(context.Background(), path, "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, "1", result.MediaIDString)

	assert.Equal(t, []string{"INIT", "APPEND", "FINALIZE"}, commands)
}
