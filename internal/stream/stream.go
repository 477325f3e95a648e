// Package stream implements long-lived streaming connections with
// handle-first semantics: callers get a usable handle immediately while the
// connection is established in the background.
package stream

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/finchdesk/finch/internal/constants"
	finchhttp "github.com/finchdesk/finch/internal/http"
	"github.com/finchdesk/finch/pkg/finch"
)

// maxLineBytes bounds a single stream message. Entity-heavy messages run
// large, so this is generous.
const maxLineBytes = 1 << 20

// Connector opens one streaming HTTP connection for a resolved descriptor.
type Connector interface {
	OpenStream(ctx context.Context, desc *finchhttp.RequestDescriptor) (*http.Response, error)
}

// DescriptorFunc builds a fresh descriptor per connection attempt so auth
// material (nonce, timestamp, bearer token) is never reused.
type DescriptorFunc func(ctx context.Context) (*finchhttp.RequestDescriptor, error)

// Stream is a live streaming connection. The zero value is not usable; use
// New.
//
// Messages and Errs stay open until Stop is called or a fatal setup error is
// delivered. Slow consumers block the read loop, never drop messages.
type Stream struct {
	connector  Connector
	descriptor DescriptorFunc
	logger     finch.Logger

	messages chan json.RawMessage
	errs     chan error

	ctx    context.Context
	cancel context.CancelFunc

	stopOnce sync.Once
	done     chan struct{}
}

// New returns a handle immediately and starts connecting in the background.
// Configuration errors surface on Errs, not as a return value, so the handle
// can be wired up before any I/O happens.
func New(connector Connector, descriptor DescriptorFunc, logger finch.Logger) *Stream {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Stream{
		connector:  connector,
		descriptor: descriptor,
		logger:     logger,
		messages:   make(chan json.RawMessage),
		errs:       make(chan error, 1),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}

	go s.run()

	return s
}

// Messages delivers parsed stream messages in arrival order.
func (s *Stream) Messages() <-chan json.RawMessage {
	return s.messages
}

// Errs delivers connection and parse errors. The stream keeps reconnecting
// after recoverable errors; a setup error that cannot succeed on retry is
// fatal and ends the stream.
func (s *Stream) Errs() <-chan error {
	return s.errs
}

// Stop tears the connection down and closes both channels. Safe to call
// multiple times and safe to call before the connection is established.
func (s *Stream) Stop() {
	s.stopOnce.Do(func() {
		s.cancel()
		<-s.done
	})
}

// run is the connect/read/reconnect loop.
func (s *Stream) run() {
	defer close(s.done)
	defer close(s.messages)
	defer close(s.errs)

	backoff := constants.StreamBackoffMin

	for {
		if s.ctx.Err() != nil {
			return
		}

		desc, err := s.descriptor(s.ctx)
		if err != nil {
			// Descriptor construction fails on bad input (missing path
			// params, unresolvable credentials), which retrying cannot fix.
			s.deliverErr(fmt.Errorf("configuring stream: %w", err))

			return
		}

		resp, err := s.connector.OpenStream(s.ctx, desc)
		if err != nil {
			if s.ctx.Err() != nil {
				return
			}

			s.deliverErr(err)

			if !s.sleep(backoff) {
				return
			}

			backoff = nextBackoff(backoff)

			continue
		}

		if s.logger != nil {
			s.logger.Debug("stream connected", map[string]interface{}{
				"url": desc.URL,
			})
		}

		backoff = constants.StreamBackoffMin

		err = s.consume(resp)

		_ = resp.Body.Close()

		if s.ctx.Err() != nil {
			return
		}

		if err != nil {
			s.deliverErr(err)
		}

		if !s.sleep(backoff) {
			return
		}

		backoff = nextBackoff(backoff)
	}
}

// consume reads newline-delimited JSON messages until the connection drops.
// Keep-alive blank lines reset the read deadline and are otherwise ignored.
func (s *Stream) consume(resp *http.Response) error {
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	// Close the body when the stream is stopped so the scanner unblocks.
	watchDone := make(chan struct{})
	defer close(watchDone)

	go func() {
		select {
		case <-s.ctx.Done():
			_ = resp.Body.Close()
		case <-watchDone:
		}
	}()

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			// Keep-alive newline.
			continue
		}

		if !json.Valid([]byte(line)) {
			s.deliverErr(finch.NewDecodeError(resp.StatusCode, []byte(line), errors.New("stream message is not valid JSON")))

			continue
		}

		message := json.RawMessage([]byte(line))

		select {
		case s.messages <- message:
		case <-s.ctx.Done():
			return nil
		}
	}

	if err := scanner.Err(); err != nil {
		return finch.NewTransportError(fmt.Errorf("stream read: %w", err))
	}

	// EOF: the server closed an idle or rebalanced connection.
	return nil
}

// deliverErr sends without blocking a stopped stream.
func (s *Stream) deliverErr(err error) {
	select {
	case s.errs <- err:
	case <-s.ctx.Done():
	}
}

// sleep waits out the backoff, returning false when the stream was stopped.
func (s *Stream) sleep(d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-s.ctx.Done():
		return false
	}
}

func nextBackoff(current time.Duration) time.Duration {
	next := current * 2
	if next > constants.StreamBackoffMax {
		return constants.StreamBackoffMax
	}

	return next
}
