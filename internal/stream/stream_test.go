package stream

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	finchhttp "github.com/finchdesk/finch/internal/http"
	"github.com/finchdesk/finch/pkg/finch"
)

func staticDescriptor(rawURL string) DescriptorFunc {
	return func(_ context.Context) (*finchhttp.RequestDescriptor, error) {
		return &finchhttp.RequestDescriptor{
			Method:    "GET",
			URL:       rawURL,
			Header:    http.Header{},
			Streaming: true,
		}, nil
	}
}

func receiveMessage(t *testing.T, s *Stream) json.RawMessage {
	t.Helper()

	select {
	case msg, ok := <-s.Messages():
		require.True(t, ok, "messages channel closed")

		return msg
	case err := <-s.Errs():
		t.Fatalf("unexpected stream error: %v", err)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for stream message")
	}

	return nil
}

func receiveError(t *testing.T, s *Stream) error {
	t.Helper()

	select {
	case err := <-s.Errs():
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for stream error")
	}

	return nil
}

func TestStreamDeliversMessages(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		require.True(t, ok)

		_, _ = w.Write([]byte("{\"id\": 1, \"text\": \"first\"}\r\n"))
		flusher.Flush()

		// Keep-alive newline between messages.
		_, _ = w.Write([]byte("\r\n"))
		flusher.Flush()

		_, _ = w.Write([]byte("{\"id\": 2, \"text\": \"second\"}\r\n"))
		flusher.Flush()

		// Hold the connection open until the client goes away.
		<-r.Context().Done()
	}))
	defer server.Close()

	s := New(finchhttp.NewClient(), staticDescriptor(server.URL), nil)
	defer s.Stop()

	first := receiveMessage(t, s)
	assert.JSONEq(t, `{"id": 1, "text": "first"}`, string(first))

	second := receiveMessage(t, s)
	assert.JSONEq(t, `{"id": 2, "text": "second"}`, string(second))
}

func TestStreamHandleUsableBeforeConnect(t *testing.T) {
	t.Parallel()

	started := make(chan struct{})

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-started

		flusher := w.(http.Flusher)
		_, _ = w.Write([]byte("{\"id\": 7}\r\n"))
		flusher.Flush()

		<-r.Context().Done()
	}))
	defer server.Close()

	s := New(finchhttp.NewClient(), staticDescriptor(server.URL), nil)
	defer s.Stop()

	// Channels are live before the connection exists.
	require.NotNil(t, s.Messages())
	require.NotNil(t, s.Errs())

	close(started)

	msg := receiveMessage(t, s)
	assert.JSONEq(t, `{"id": 7}`, string(msg))
}

func TestStreamSurfacesSetupError(t *testing.T) {
	t.Parallel()

	wantErr := errors.New("missing credentials")
	descriptor := func(_ context.Context) (*finchhttp.RequestDescriptor, error) {
		return nil, wantErr
	}

	s := New(finchhttp.NewClient(), descriptor, nil)
	defer s.Stop()

	err := receiveError(t, s)
	require.Error(t, err)
	assert.ErrorIs(t, err, wantErr)

	// A fatal setup error ends the stream.
	select {
	case _, ok := <-s.Messages():
		assert.False(t, ok)
	case <-time.After(5 * time.Second):
		t.Fatal("messages channel not closed after fatal error")
	}
}

func TestStreamSurfacesRejectedConnection(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors": [{"code": 32, "message": "Could not authenticate you"}]}`))
	}))
	defer server.Close()

	s := New(finchhttp.NewClient(), staticDescriptor(server.URL), nil)
	defer s.Stop()

	err := receiveError(t, s)
	require.Error(t, err)
	assert.True(t, finch.IsApplication(err))
}

func TestStreamReconnectsAfterDrop(t *testing.T) {
	t.Parallel()

	var connections atomic.Int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := connections.Add(1)
		flusher := w.(http.Flusher)

		if n == 1 {
			_, _ = w.Write([]byte("{\"id\": 1}\r\n"))
			flusher.Flush()

			// Drop the connection.
			return
		}

		_, _ = w.Write([]byte("{\"id\": 2}\r\n"))
		flusher.Flush()

		<-r.Context().Done()
	}))
	defer server.Close()

	s := New(finchhttp.NewClient(), staticDescriptor(server.URL), nil)
	defer s.Stop()

	first := receiveMessage(t, s)
	assert.JSONEq(t, `{"id": 1}`, string(first))

	second := receiveMessage(t, s)
	assert.JSONEq(t, `{"id": 2}`, string(second))

	assert.GreaterOrEqual(t, connections.Load(), int32(2))
}

func TestStreamStopClosesChannels(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		_, _ = w.Write([]byte("{\"id\": 1}\r\n"))
		flusher.Flush()

		<-r.Context().Done()
	}))
	defer server.Close()

	s := New(finchhttp.NewClient(), staticDescriptor(server.URL), nil)

	_ = receiveMessage(t, s)

	s.Stop()

	_, ok := <-s.Messages()
	assert.False(t, ok)

	_, ok2 := <-s.Errs()
	assert.False(t, ok2)

	// Stop is idempotent.
	s.Stop()
}
