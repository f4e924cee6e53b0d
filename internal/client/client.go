// Package client fetches problem data from the kyopro API. Every response body
// is parsed, its keys are normalized to camelCase and the result is cached
// for a configurable staleness window.
package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/mcncl/kyopro/internal/casing"
	"github.com/mcncl/kyopro/internal/errors"
	"github.com/mcncl/kyopro/internal/models"
	"github.com/mcncl/kyopro/internal/parser"
	"github.com/mcncl/kyopro/internal/problems"
)

// Options controls how the client talks to the API.
type Options struct {
	BaseURL   string
	PageSize  int
	Retries   int           // additional attempts after the first one
	StaleTime time.Duration // how long a cached response is served; 0 disables caching
	Timeout   time.Duration // per request; 0 means no timeout
	Backoff   time.Duration // wait before retry n is n*Backoff
	MaxBody   int64         // largest response body read, in bytes
}

// DefaultOptions mirrors the settings the web front end uses.
func DefaultOptions() Options {
	return Options{
		BaseURL:   "http://localhost:8080",
		PageSize:  10000,
		Retries:   3,
		StaleTime: 5 * time.Minute,
		Timeout:   30 * time.Second,
		Backoff:   500 * time.Millisecond,
		MaxBody:   64 << 20,
	}
}

// Validate checks the options.
func (o Options) Validate() error {
	return validation.ValidateStruct(&o,
		validation.Field(&o.BaseURL, validation.Required, is.RequestURL),
		validation.Field(&o.PageSize, validation.Required, validation.Min(1)),
		validation.Field(&o.Retries, validation.Min(0), validation.Max(10)),
		validation.Field(&o.StaleTime, validation.Min(time.Duration(0))),
		validation.Field(&o.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&o.Backoff, validation.Min(time.Duration(0))),
		validation.Field(&o.MaxBody, validation.Required, validation.Min(int64(1))),
	)
}

// StatusError is returned when the API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Retryable reports whether another attempt may succeed.
func (e *StatusError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

type cacheEntry struct {
	value     models.Value
	fetchedAt time.Time
}

// Client is safe for concurrent use.
type Client struct {
	opts       Options
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time

	group singleflight.Group
	mu    sync.Mutex
	cache map[string]cacheEntry
	// generation is bumped by Invalidate and Clear. A fetch that started
	// under an older generation does not write its result to the cache.
	generation uint64
	inflight   map[string]int
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHTTPClient replaces the HTTP client. Options.Timeout is not applied to it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithClock sets the time source used for cache staleness.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a client after validating opts.
func New(opts Options, options ...Option) (*Client, error) {
	if err := opts.Validate(); err != nil {
		return nil, errors.NewConfigError("invalid API options", err)
	}
	c := &Client{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout},
		logger:     zap.NewNop(),
		now:        time.Now,
		cache:      make(map[string]cacheEntry),
		inflight:   make(map[string]int),
	}
	for _, o := range options {
		o(c)
	}
	return c, nil
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// FetchProblems returns every problem of a platform.
func (c *Client) FetchProblems(ctx context.Context, platform problems.Platform) ([]problems.Problem, error) {
	if platform.Abbr() == "" {
		return nil, errors.NewValidationError(fmt.Sprintf("unknown platform %q", platform), errors.ErrUnknownPlatform)
	}
	value, err := c.FetchValue(ctx, problemsPath(platform), c.problemsQuery())
	if err != nil {
		return nil, err
	}
	return problems.Decode(value)
}

// FetchValue performs a GET on path and returns the normalized response body.
// The returned value is shared with the cache and must not be modified.
func (c *Client) FetchValue(ctx context.Context, path string, query url.Values) (models.Value, error) {
	target := c.url(path, query)

	if v, ok := c.cached(target); ok {
		c.logger.Debug("serving cached response", zap.String("url", target))
		return v, nil
	}

	// The shared fetch must not be canceled by the first caller alone.
	ch := c.group.DoChan(target, func() (interface{}, error) {
		gen := c.begin(target)
		defer c.end(target)
		v, err := c.fetch(context.WithoutCancel(ctx), target)
		if err != nil {
			return nil, err
		}
		c.store(target, v, gen)
		return v, nil
	})

	select {
	case <-ctx.Done():
		return nil, errors.NewFetchError(fmt.Sprintf("GET %s canceled", target), ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(models.Value), nil
	}
}

// Invalidate drops the cached problem list of a platform. A request for it
// that is still running is detached: later callers start a new one and its
// result is not cached.
func (c *Client) Invalidate(platform problems.Platform) {
	target := c.url(problemsPath(platform), c.problemsQuery())
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	delete(c.cache, target)
	c.group.Forget(target)
}

// Clear drops every cached response and detaches running requests.
func (c *Client) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.cache = make(map[string]cacheEntry)
	for target := range c.inflight {
		c.group.Forget(target)
	}
}

func (c *Client) begin(target string) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight[target]++
	return c.generation
}

func (c *Client) end(target string) {
	c.mu.Lock()
	if c.inflight[target]--; c.inflight[target] <= 0 {
		delete(c.inflight, target)
	}
	c.mu.Unlock()
}

// problemsPath routes on the lowercase abbreviation; the API rejects display
// names such as "Atcoder".
func problemsPath(platform problems.Platform) string {
	return "/api/problems/" + url.PathEscape(platform.Abbr())
}

func (c *Client) problemsQuery() url.Values {
	return url.Values{"page_size": []string{strconv.Itoa(c.opts.PageSize)}}
}

func (c *Client) url(path string, query url.Values) string {
	u := strings.TrimRight(c.opts.BaseURL, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) cached(target string) (models.Value, bool) {
	if c.opts.StaleTime <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.cache[target]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.fetchedAt) >= c.opts.StaleTime {
		delete(c.cache, target)
		return nil, false
	}
	return entry.value, true
}

func (c *Client) store(target string, v models.Value, gen uint64) {
	if c.opts.StaleTime <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		return
	}
	c.cache[target] = cacheEntry{value: v, fetchedAt: c.now()}
}

// fetch runs the request with retries. ctx here is detached from the
// caller's cancellation, so the loop stops on a request timeout or when
// attempts run out.
func (c *Client) fetch(ctx context.Context, target string) (models.Value, error) {
	var lastErr error
	for attempt := 0; attempt <= c.opts.Retries; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * c.opts.Backoff
			c.logger.Warn("retrying request",
				zap.String("url", target),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", wait),
				zap.Error(lastErr))
			if err := sleep(ctx, wait); err != nil {
				return nil, errors.NewFetchError(fmt.Sprintf("GET %s canceled", target), err)
			}
		}

		start := time.Now()
		v, err := c.do(ctx, target)
		if err == nil {
			c.logger.Debug("fetched",
				zap.String("url", target),
				zap.Int("attempt", attempt),
				zap.Duration("elapsed", time.Since(start)))
			return v, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}
	return nil, errors.NewFetchError(fmt.Sprintf("GET %s failed", target), lastErr)
}

func (c *Client) do(ctx context.Context, target string) (models.Value, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, permanent{err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() {
		_, _ = io.CopyN(io.Discard, resp.Body, drainLimit)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, URL: target}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxBody+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > c.opts.MaxBody {
		return nil, permanent{fmt.Errorf("%w: more than %d bytes", errors.ErrResponseTooLarge, c.opts.MaxBody)}
	}

	doc, err := parser.ParseBytes(body)
	if err != nil {
		return nil, permanent{err}
	}
	return casing.Normalize(doc.Root), nil
}

// drainLimit bounds how much of an unread body is discarded so the connection
// can be reused.
const drainLimit = 4 << 10

// permanent marks an error that retrying cannot fix.
type permanent struct{ err error }

func (p permanent) Error() string { return p.err.Error() }
func (p permanent) Unwrap() error { return p.err }

func retryable(err error) bool {
	switch e := err.(type) {
	case permanent:
		return false
	case *StatusError:
		return e.Retryable()
	}
	return true
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
