package fanout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// maxPayloadBytes caps how much of an upstream body is read.
const maxPayloadBytes = 1 << 20

// Fetcher resolves a call target into a JSON payload.
type Fetcher interface {
	Fetch(ctx context.Context, target string) (json.RawMessage, error)
}

// HTTPFetcher fetches targets over HTTP GET. The per-call deadline arrives
// through the context; the underlying client carries no timeout of its own.
type HTTPFetcher struct {
	client *http.Client
}

// NewHTTPFetcher creates an HTTPFetcher. A nil client uses a default one.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPFetcher{client: client}
}

// Fetch performs a GET against target and returns the raw JSON body.
func (f *HTTPFetcher) Fetch(ctx context.Context, target string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, ErrRegistry.NewWithCause(CodeCallFailed, err).WithDetail("target", target)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, ErrRegistry.NewWithCause(CodeCallFailed, err).WithDetail("target", target)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ErrRegistry.New(CodeBadStatus).
			WithDetail("target", target).
			WithDetail("status", fmt.Sprintf("%d", resp.StatusCode))
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPayloadBytes))
	if err != nil {
		return nil, ErrRegistry.NewWithCause(CodeCallFailed, err).WithDetail("target", target)
	}
	if !json.Valid(body) {
		return nil, ErrRegistry.New(CodeBadPayload).WithDetail("target", target)
	}

	return json.RawMessage(body), nil
}
