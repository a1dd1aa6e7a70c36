package client

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"sourcebot/internal/types"
)

const streamReconnectDelay = 5 * time.Second

// StreamConsumer holds a long-lived SSE connection to the notification
// stream. It reconnects after a fixed delay on any transport error and
// reports connection transitions on States. Control payloads (keepalive,
// connected) are filtered out before delivery.
type StreamConsumer struct {
	url        string
	retryDelay time.Duration
	events     chan map[string]any
	states     chan bool
	cancel     context.CancelFunc
	done       chan struct{}
}

// OpenStream starts consuming the notification stream. Close the consumer on
// teardown; closing is idempotent.
func (c *NotifyClient) OpenStream(ctx context.Context) *StreamConsumer {
	return c.openStream(ctx, streamReconnectDelay)
}

func (c *NotifyClient) openStream(ctx context.Context, retryDelay time.Duration) *StreamConsumer {
	ctx, cancel := context.WithCancel(ctx)
	s := &StreamConsumer{
		url:        c.baseURL + "/api/notifications/stream",
		retryDelay: retryDelay,
		events:     make(chan map[string]any, 256),
		states:     make(chan bool, 8),
		cancel:     cancel,
		done:       make(chan struct{}),
	}
	go s.run(ctx)
	return s
}

// Events delivers decoded stream payloads. The channel is closed after Close.
func (s *StreamConsumer) Events() <-chan map[string]any {
	return s.events
}

// States delivers connection transitions: true on open, false on error.
func (s *StreamConsumer) States() <-chan bool {
	return s.states
}

func (s *StreamConsumer) Close() {
	s.cancel()
	<-s.done
}

func (s *StreamConsumer) run(ctx context.Context) {
	defer close(s.done)
	defer close(s.events)
	for {
		if err := s.consumeOnce(ctx); err != nil && ctx.Err() == nil {
			s.report(false)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.retryDelay):
		}
	}
}

// consumeOnce opens one connection and reads it until it fails. A clean EOF
// is treated the same as an error: the stream is infinite by contract, so any
// end of body means the connection dropped.
func (s *StreamConsumer) consumeOnce(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "text/event-stream")

	// No client timeout here; the stream is expected to stay open forever.
	httpClient := &http.Client{}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeAPIError(resp)
	}

	s.report(true)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if len(dataLines) == 0 {
				continue
			}
			payload := strings.Join(dataLines, "\n")
			dataLines = dataLines[:0]
			var event map[string]any
			if err := json.Unmarshal([]byte(payload), &event); err != nil {
				continue
			}
			if types.IsControlPayload(event) {
				continue
			}
			select {
			case s.events <- event:
			default:
			}
			continue
		}
		if strings.HasPrefix(line, "data:") {
			dataLines = append(dataLines, strings.TrimSpace(line[len("data:"):]))
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	return errStreamClosed
}

// errStreamClosed marks a cleanly ended body so the run loop reconnects.
var errStreamClosed = errors.New("stream closed")

func (s *StreamConsumer) report(connected bool) {
	select {
	case s.states <- connected:
	default:
	}
}
