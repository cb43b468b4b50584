// internal/adapters/serpapi/client.go
package serpapi

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"review_aggregator/internal/adapters/observability"
	"review_aggregator/internal/domain"
)

const (
	EngineHotels = "google_hotels"
	EngineMaps   = "google_maps"
)

type Client struct {
	base    string
	hc      *http.Client
	key     string
	rl      *rate.Limiter
	retries int
}

// New builds a SerpApi client. retries is the number of extra attempts on
// 429/5xx; zero means every Search makes exactly one request.
func New(base, key string, rps, retries int) (*Client, error) {
	if key == "" {
		return nil, fmt.Errorf("serpapi: %w", domain.ErrProviderNotConfigured)
	}
	if rps <= 0 {
		rps = 5
	}
	if retries < 0 {
		retries = 0
	}
	return &Client{
		base:    strings.TrimRight(base, "/"),
		hc:      &http.Client{Timeout: 30 * time.Second},
		key:     key,
		rl:      rate.NewLimiter(rate.Limit(rps), rps),
		retries: retries,
	}, nil
}

// Engine picks the SerpApi engine serving a source.
func Engine(src domain.Source) string {
	switch src {
	case domain.GoogleMaps:
		return EngineMaps
	case domain.Booking, domain.TripAdvisor, domain.Unknown:
		return EngineHotels
	}
	return EngineHotels
}

// Params encodes the query string for one search, api key included.
func (c *Client) Params(req domain.SearchRequest) url.Values {
	v := url.Values{}
	v.Set("api_key", c.key)
	engine := Engine(req.Source)
	v.Set("engine", engine)
	if engine == EngineMaps && strings.HasPrefix(req.Query, "ChIJ") {
		v.Set("place_id", req.Query)
	} else {
		v.Set("q", req.Query)
		if engine == EngineMaps {
			v.Set("type", "search")
		}
	}
	if req.Language != "" {
		v.Set("hl", req.Language)
	}
	if req.Region != "" {
		v.Set("gl", req.Region)
	}
	return v
}

// Search runs one search and returns the decoded JSON document.
func (c *Client) Search(ctx context.Context, req domain.SearchRequest) (map[string]any, error) {
	params := c.Params(req)
	u := c.base + "/search.json?" + params.Encode()

	var out map[string]any
	if err := c.get(ctx, params.Get("engine"), u, &out); err != nil {
		return nil, err
	}
	// SerpApi reports empty searches as a 200 with an "error" message.
	if msg, ok := out["error"].(string); ok && msg != "" {
		if strings.Contains(strings.ToLower(msg), "hasn't returned any results") {
			return nil, fmt.Errorf("serpapi: %w: %s", domain.ErrNoResults, msg)
		}
		return nil, fmt.Errorf("serpapi: %s", msg)
	}
	return out, nil
}

// ---- Internals ----

var (
	ErrNotFound     = fmt.Errorf("serpapi: %w", domain.ErrNotFound)
	ErrUnauthorized = fmt.Errorf("serpapi: %w", domain.ErrUnauthorized)
	ErrRateLimited  = fmt.Errorf("serpapi: %w", domain.ErrRateLimited)
)

// get performs a GET with client-side rate limiting, optional retries, and JSON decode into out.
// Retries on 429 and transient 5xx, honoring Retry-After when provided.
func (c *Client) get(ctx context.Context, endpoint, target string, out any) error {
	var lastErr error
	for i := 0; i <= c.retries; i++ {
		if err := c.rl.Wait(ctx); err != nil {
			return err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "review-aggregator/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal("serpapi", endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = redact(err)
			if i < c.retries && sleepCtx(ctx, backoff(i)) {
				continue
			}
			return lastErr
		}
		observability.ObserveExternal("serpapi", endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("serpapi: decode response: %w", err)
			}
			return nil

		case http.StatusNotFound:
			resp.Body.Close()
			return ErrNotFound

		case http.StatusUnauthorized, http.StatusForbidden:
			resp.Body.Close()
			return ErrUnauthorized

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			// Prefer server-provided Retry-After; otherwise exponential backoff.
			wait := retryAfter(resp)
			resp.Body.Close()
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("serpapi: remote %d", resp.StatusCode)
			if resp.StatusCode == http.StatusTooManyRequests {
				lastErr = ErrRateLimited
			}
			if i < c.retries && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			// read a small error body for diagnostics
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("serpapi: bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return lastErr
}

// redact strips the request URL (which carries the api key) from transport errors.
func redact(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return fmt.Errorf("serpapi: %s: %w", ue.Op, ue.Err)
	}
	return err
}

// sleepCtx waits for d or returns early if ctx is done.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After header (seconds or HTTP-date). Returns 0 if absent/invalid.
func retryAfter(resp *http.Response) time.Duration {
	h := resp.Header.Get("Retry-After")
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(strings.TrimSpace(h)); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff returns an exponential backoff delay (200ms, 400ms, 800ms...) with
// up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 200 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	f := float64(b[0]) / 255.0
	j := time.Duration(0.5 * f * float64(base))
	return base + j
}
