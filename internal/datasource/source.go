// Package datasource fetches raw dataset payloads and caches them for the
// analysis layer. A Source knows where bytes live; the Loader adds caching,
// deduplication of concurrent fetches, timeouts and retries.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
)

// Sentinel errors returned by sources and the loader.
var (
	ErrDatasetNotFound = errors.New("dataset not found")
	ErrFetchTimeout    = errors.New("dataset fetch timed out")
	ErrInvalidName     = errors.New("invalid dataset name")
	ErrPayloadTooLarge = errors.New("dataset payload too large")
)

// Source retrieves the raw bytes of a named dataset.
type Source interface {
	Fetch(ctx context.Context, name string) ([]byte, error)
	Ping(ctx context.Context) error
}

// StatusError reports a non-2xx response from a remote source.
type StatusError struct {
	Dataset    string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("dataset %s: unexpected status %d %s", e.Dataset, e.StatusCode, e.Status)
}

// FetchError is the terminal failure of a load after all attempts.
type FetchError struct {
	Dataset  string
	Attempts int
	Err      error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch dataset %s after %d attempt(s): %v", e.Dataset, e.Attempts, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// DecodeError reports a payload that was fetched but could not be parsed.
type DecodeError struct {
	Dataset string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode dataset %s: %v", e.Dataset, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// FailedDataset returns the dataset named by a FetchError or DecodeError in
// err's chain, or "" when there is none.
func FailedDataset(err error) string {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Dataset
	}
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		return decodeErr.Dataset
	}
	return ""
}

// ValidateName rejects names that are empty or could escape the source root.
func ValidateName(name string) error {
	if name == "" || strings.ContainsAny(name, `\`+"\x00") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	cleaned := path.Clean(name)
	if cleaned != name || path.IsAbs(name) || cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
