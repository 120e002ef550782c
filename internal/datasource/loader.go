package datasource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/stwalsh4118/wardlens/internal/logger"
)

// Loader defaults.
const (
	DefaultTimeout    = 15 * time.Second
	DefaultRetries    = 1
	DefaultRetryDelay = 500 * time.Millisecond
)

// ErrLoaderClosed is returned by loads issued after Close.
var ErrLoaderClosed = errors.New("loader closed")

// LoaderConfig tunes fetch behavior.
type LoaderConfig struct {
	// Timeout bounds a single fetch attempt.
	Timeout time.Duration
	// Retries is the number of extra attempts after the first failure.
	Retries    int
	RetryDelay time.Duration
}

// DefaultLoaderConfig returns the standard timeout and retry policy.
func DefaultLoaderConfig() LoaderConfig {
	return LoaderConfig{
		Timeout:    DefaultTimeout,
		Retries:    DefaultRetries,
		RetryDelay: DefaultRetryDelay,
	}
}

// Loader fetches datasets through a Source, caching raw payloads. Concurrent
// loads of the same dataset share one in-flight fetch.
type Loader struct {
	source Source
	cache  Cache
	cfg    LoaderConfig
	log    *logger.Logger

	group singleflight.Group

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	pending  map[string]bool
	failures map[string]error
}

// NewLoader creates a Loader. A nil cache disables caching, which also means
// Status never reports ready; callers check Caching before relying on it. A
// nil logger discards output.
func NewLoader(source Source, cache Cache, cfg LoaderConfig, log *logger.Logger) *Loader {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cache == nil {
		cache = noCache{}
	}
	if log == nil {
		log = logger.Nop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Loader{
		source:   source,
		cache:    cache,
		cfg:      cfg,
		log:      log.WithComponent("loader"),
		ctx:      ctx,
		cancel:   cancel,
		pending:  make(map[string]bool),
		failures: make(map[string]error),
	}
}

// Source returns the underlying source.
func (l *Loader) Source() Source {
	return l.source
}

// Caching reports whether fetched payloads are kept.
func (l *Loader) Caching() bool {
	_, off := l.cache.(noCache)
	return !off
}

// Cached reports whether the named dataset is in the cache.
func (l *Loader) Cached(name string) bool {
	_, ok := l.cache.Get(name)
	return ok
}

// Load returns the payload for name, fetching it when it is not cached. The
// shared fetch outlives a cancelled caller so other waiters still get it.
func (l *Loader) Load(ctx context.Context, name string) ([]byte, error) {
	if data, ok := l.cache.Get(name); ok {
		return data, nil
	}
	if l.ctx.Err() != nil {
		return nil, ErrLoaderClosed
	}

	ch := l.group.DoChan(name, func() (interface{}, error) {
		return l.fetch(name)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

// LoadAll loads every named dataset concurrently. It fails as soon as any
// dataset fails; no partial result is returned.
func (l *Loader) LoadAll(ctx context.Context, names ...string) (map[string][]byte, error) {
	g, gctx := errgroup.WithContext(ctx)

	var mu sync.Mutex
	out := make(map[string][]byte, len(names))

	for _, name := range names {
		name := name
		g.Go(func() error {
			data, err := l.Load(gctx, name)
			if err != nil {
				return err
			}
			mu.Lock()
			out[name] = data
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// Status reports whether every named dataset is cached. When one is not and
// a background fetch for it has failed, the failure is returned once and
// forgotten so the next call starts over.
func (l *Loader) Status(names ...string) (bool, error) {
	ready := true
	for _, name := range names {
		if !l.Cached(name) {
			ready = false
			break
		}
	}
	if ready {
		return true, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, name := range names {
		if err, ok := l.failures[name]; ok {
			delete(l.failures, name)
			return false, err
		}
	}
	return false, nil
}

// Prefetch starts background loads for every named dataset that is neither
// cached nor already being prefetched.
func (l *Loader) Prefetch(names ...string) {
	for _, name := range names {
		name := name
		if l.Cached(name) {
			continue
		}

		l.mu.Lock()
		if l.pending[name] || l.ctx.Err() != nil {
			l.mu.Unlock()
			continue
		}
		l.pending[name] = true
		delete(l.failures, name)
		l.wg.Add(1)
		l.mu.Unlock()

		go func() {
			defer l.wg.Done()
			_, err := l.Load(l.ctx, name)

			l.mu.Lock()
			defer l.mu.Unlock()
			delete(l.pending, name)
			if err != nil && !errors.Is(err, ErrLoaderClosed) && l.ctx.Err() == nil {
				l.failures[name] = err
			}
		}()
	}
}

// Invalidate drops one dataset from the cache.
func (l *Loader) Invalidate(name string) {
	l.cache.Delete(name)
	l.log.Debug("Dataset invalidated", map[string]interface{}{"dataset": name})
}

// Flush empties the cache and forgets recorded failures.
func (l *Loader) Flush() {
	l.cache.Flush()
	l.mu.Lock()
	clear(l.failures)
	l.mu.Unlock()
	l.log.Info("Dataset cache flushed", nil)
}

// CacheLen returns the number of cached datasets.
func (l *Loader) CacheLen() int {
	return l.cache.Len()
}

// Close cancels in-flight fetches and waits for background prefetches.
func (l *Loader) Close() {
	l.cancel()
	l.wg.Wait()
}

func (l *Loader) fetch(name string) ([]byte, error) {
	// A caller that missed the cache may arrive just after a previous
	// fetch finished.
	if data, ok := l.cache.Get(name); ok {
		return data, nil
	}

	attempts := 1 + l.cfg.Retries
	var lastErr error

	for attempt := 1; attempt <= attempts; attempt++ {
		start := time.Now()
		data, err := l.attempt(name)
		fields := map[string]interface{}{
			"dataset":     name,
			"attempt":     attempt,
			"duration_ms": time.Since(start).Milliseconds(),
		}

		if err == nil {
			l.cache.Set(name, data)
			fields["bytes"] = len(data)
			l.log.Debug("Dataset loaded", fields)
			return data, nil
		}

		lastErr = err
		l.log.Warn("Dataset fetch attempt failed", withError(fields, err))

		if !retryable(err) || l.ctx.Err() != nil {
			attempts = attempt
			break
		}
		if attempt < attempts && l.cfg.RetryDelay > 0 {
			select {
			case <-l.ctx.Done():
				attempts = attempt
			case <-time.After(l.cfg.RetryDelay):
			}
		}
	}

	fetchErr := &FetchError{Dataset: name, Attempts: attempts, Err: lastErr}
	l.log.Error("Dataset unavailable", fetchErr, map[string]interface{}{"dataset": name})
	return nil, fetchErr
}

func (l *Loader) attempt(name string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(l.ctx, l.cfg.Timeout)
	defer cancel()

	data, err := l.source.Fetch(ctx, name)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s after %s", ErrFetchTimeout, name, l.cfg.Timeout)
		}
		if l.ctx.Err() != nil {
			return nil, ErrLoaderClosed
		}
		return nil, err
	}
	return data, nil
}

func retryable(err error) bool {
	return !errors.Is(err, ErrDatasetNotFound) &&
		!errors.Is(err, ErrInvalidName) &&
		!errors.Is(err, ErrPayloadTooLarge) &&
		!errors.Is(err, ErrLoaderClosed)
}

func withError(fields map[string]interface{}, err error) map[string]interface{} {
	fields["error"] = err.Error()
	return fields
}

type noCache struct{}

func (noCache) Get(string) ([]byte, bool) { return nil, false }
func (noCache) Set(string, []byte)        {}
func (noCache) Delete(string)             {}
func (noCache) Flush()                    {}
func (noCache) Len() int                  { return 0 }
