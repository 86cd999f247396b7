// Package fetch walks a paginated REST collection (PostgREST-style offset/limit)
// and returns every row, retrying each page a bounded number of times.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/sethvargo/go-retry"

	"github.com/unkn0wn-root/oddsgrid"
	"github.com/unkn0wn-root/oddsgrid/row"
)

const (
	DefaultPageSize   = 1000
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second
	defaultTimeout    = 30 * time.Second
)

var ErrBaseURL = errors.New("fetch: base URL is required")

// Config configures a Fetcher. Zero values fall back to the defaults above.
type Config struct {
	BaseURL string // e.g. https://xyz.supabase.co/rest/v1/
	APIKey  string // sent as apikey and Authorization: Bearer
	// Headers are added after the defaults and replace any default of the same name.
	Headers http.Header

	PageSize   int
	MaxRetries int           // attempts per page, including the first
	RetryDelay time.Duration // attempt n waits RetryDelay*n before the next try

	Client *http.Client
	Logger oddsgrid.Logger
	Hooks  oddsgrid.Hooks
}

type Fetcher struct {
	base       string
	headers    http.Header
	pageSize   int
	maxRetries int
	retryDelay time.Duration
	client     *http.Client
	log        oddsgrid.Logger
	hooks      oddsgrid.Hooks
}

func New(cfg Config) (*Fetcher, error) {
	if cfg.BaseURL == "" {
		return nil, ErrBaseURL
	}
	f := &Fetcher{
		base:       cfg.BaseURL,
		headers:    DefaultHeaders(cfg.APIKey),
		pageSize:   cfg.PageSize,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		client:     cfg.Client,
		log:        cfg.Logger,
		hooks:      cfg.Hooks,
	}
	for k, vs := range cfg.Headers {
		f.headers[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
	}
	if f.pageSize <= 0 {
		f.pageSize = DefaultPageSize
	}
	if f.maxRetries <= 0 {
		f.maxRetries = DefaultMaxRetries
	}
	if f.retryDelay <= 0 {
		f.retryDelay = DefaultRetryDelay
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: defaultTimeout}
	}
	if f.log == nil {
		f.log = oddsgrid.NopLogger{}
	}
	if f.hooks == nil {
		f.hooks = oddsgrid.NopHooks{}
	}
	return f, nil
}

// DefaultHeaders are the headers a Supabase REST endpoint expects.
func DefaultHeaders(apiKey string) http.Header {
	h := make(http.Header)
	if apiKey != "" {
		h.Set("apikey", apiKey)
		h.Set("Authorization", "Bearer "+apiKey)
	}
	h.Set("Content-Type", "application/json")
	h.Set("Accept", "application/json")
	h.Set("Prefer", "return=representation,count=exact")
	h.Set("Accept-Profile", "public")
	return h
}

// FetchAll requests pages of PageSize until a short or empty page. When a page
// still fails after MaxRetries attempts the walk stops and the rows gathered so
// far are returned together with a *oddsgrid.PageError. A cancelled ctx returns
// the partial rows and ctx.Err().
func (f *Fetcher) FetchAll(ctx context.Context, endpoint string) ([]row.Row, error) {
	var all []row.Row
	offset := 0
	for {
		page, err := f.fetchPageWithRetry(ctx, endpoint, offset)
		if err != nil {
			f.hooks.FetchAborted(endpoint, len(all), err)
			f.log.Error("fetch aborted", oddsgrid.Fields{
				"endpoint": endpoint, "offset": offset, "rows": len(all), "err": err,
			})
			return all, err
		}
		all = append(all, page...)
		if len(page) < f.pageSize {
			break
		}
		offset += f.pageSize
	}
	f.log.Info("fetched rows", oddsgrid.Fields{"endpoint": endpoint, "rows": len(all)})
	return all, nil
}

func (f *Fetcher) fetchPageWithRetry(ctx context.Context, endpoint string, offset int) ([]row.Row, error) {
	var (
		page    []row.Row
		attempt int
		status  int
		lastErr error
	)
	err := retry.Do(ctx, f.backoff(), func(ctx context.Context) error {
		attempt++
		var err error
		page, status, err = f.fetchPage(ctx, endpoint, offset)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		lastErr = err
		f.hooks.FetchRetry(endpoint, offset, attempt, err)
		f.log.Warn("page fetch failed", oddsgrid.Fields{
			"endpoint": endpoint, "offset": offset,
			"attempt": attempt, "max": f.maxRetries, "err": err,
		})
		return retry.RetryableError(err)
	})
	if err == nil {
		return page, nil
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if lastErr == nil {
		lastErr = err
	}
	return nil, &oddsgrid.PageError{
		Endpoint: endpoint,
		Offset:   offset,
		Attempts: attempt,
		Status:   status,
		Err:      lastErr,
	}
}

// backoff waits RetryDelay*n after the n-th failure and allows MaxRetries attempts in total.
func (f *Fetcher) backoff() retry.Backoff {
	n := 0
	linear := retry.BackoffFunc(func() (time.Duration, bool) {
		n++
		return f.retryDelay * time.Duration(n), false
	})
	return retry.WithMaxRetries(uint64(f.maxRetries-1), linear)
}

func (f *Fetcher) pageURL(endpoint string, offset int) string {
	sep := "?"
	if strings.Contains(endpoint, "?") {
		sep = "&"
	}
	return f.base + endpoint + sep +
		"offset=" + strconv.Itoa(offset) + "&limit=" + strconv.Itoa(f.pageSize)
}

func (f *Fetcher) fetchPage(ctx context.Context, endpoint string, offset int) ([]row.Row, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.pageURL(endpoint, offset), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header = f.headers.Clone()

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, resp.StatusCode, fmt.Errorf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	var page []row.Row
	if err := sonic.ConfigStd.Unmarshal(body, &page); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("decode page: %w", err)
	}
	return page, resp.StatusCode, nil
}
