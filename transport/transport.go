// Package transport implements the HTTP boundary spec.md §6 specifies:
// two POST endpoints accepting length-delimited binary blobs, with
// empty 2xx responses on success. The transport itself is explicitly
// out of scope for the capture/replay core (spec.md §1); this package
// is the minimal byte-sink glue, not a general-purpose HTTP client
// layer.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"
)

// SnapshotSink accepts a complete snapshot payload for delivery.
type SnapshotSink interface {
	SendSnapshot(payload []byte) error
}

// MutationSink accepts one mutation batch for delivery. It satisfies
// mutationstream.Sink.
type MutationSink interface {
	SendMutations(payload []byte) error
}

// HTTPSink POSTs snapshot and mutation payloads to two fixed endpoints.
type HTTPSink struct {
	client            *http.Client
	snapshotEndpoint  string
	mutationEndpoint  string
}

// NewHTTPSink builds an HTTPSink posting to the given endpoints with a
// per-request timeout.
func NewHTTPSink(snapshotEndpoint, mutationEndpoint string, timeout time.Duration) *HTTPSink {
	return &HTTPSink{
		client:           &http.Client{Timeout: timeout},
		snapshotEndpoint: snapshotEndpoint,
		mutationEndpoint: mutationEndpoint,
	}
}

func (s *HTTPSink) post(ctx context.Context, url string, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("transport: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("transport: post %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("transport: post %s: status %d", url, resp.StatusCode)
	}
	return nil
}

// SendSnapshot implements SnapshotSink.
func (s *HTTPSink) SendSnapshot(payload []byte) error {
	return s.post(context.Background(), s.snapshotEndpoint, payload)
}

// SendMutations implements MutationSink.
func (s *HTTPSink) SendMutations(payload []byte) error {
	return s.post(context.Background(), s.mutationEndpoint, payload)
}

// NopSink discards everything it is given. Useful for tests and for a
// session configured without endpoints.
type NopSink struct{}

func (NopSink) SendSnapshot(payload []byte) error  { return nil }
func (NopSink) SendMutations(payload []byte) error { return nil }
