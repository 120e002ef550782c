package datasource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultMaxPayloadBytes caps a single dataset download.
const DefaultMaxPayloadBytes = 256 << 20

// HTTPSource downloads datasets relative to a base URL.
type HTTPSource struct {
	BaseURL string
	Client  *http.Client
	// MaxBytes caps a download; zero means DefaultMaxPayloadBytes.
	MaxBytes int64
}

// NewHTTPSource creates an HTTPSource. A nil client uses http.DefaultClient;
// per-request deadlines come from the caller's context.
func NewHTTPSource(baseURL string, client *http.Client) *HTTPSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPSource{BaseURL: baseURL, Client: client}
}

func (s *HTTPSource) resolve(name string) (string, error) {
	base, err := url.Parse(strings.TrimSuffix(s.BaseURL, "/") + "/")
	if err != nil {
		return "", fmt.Errorf("invalid base URL: %w", err)
	}
	ref := &url.URL{Path: name}
	return base.ResolveReference(ref).String(), nil
}

// Fetch issues a GET for the named dataset.
func (s *HTTPSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	target, err := s.resolve(name)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %s: %w", name, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, name)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Dataset: name, StatusCode: resp.StatusCode, Status: http.StatusText(resp.StatusCode)}
	}

	limit := s.MaxBytes
	if limit <= 0 {
		limit = DefaultMaxPayloadBytes
	}
	// Read one byte past the limit so an oversize body is detected, not cut.
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrPayloadTooLarge, name, limit)
	}
	return data, nil
}

// Ping issues a HEAD against the base URL. Any response counts as reachable.
func (s *HTTPSource) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.BaseURL, nil)
	if err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	resp, err := s.Client.Do(req)
	if err != nil {
		return fmt.Errorf("data source unreachable: %w", err)
	}
	resp.Body.Close()
	return nil
}
