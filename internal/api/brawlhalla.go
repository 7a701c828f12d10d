package api

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"
	"time"

	"rank-tracker/internal/apperror"
	"rank-tracker/internal/config"
	"rank-tracker/internal/metrics"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/valyala/fasthttp"
)

const breakerName = "brawlhalla-api"

// BrawlhallaClient talks to the ranked-stats provider. Each call is bounded
// by the configured timeout and is never retried here.
type BrawlhallaClient struct {
	baseURL string
	apiKey  string
	timeout time.Duration
	client  *fasthttp.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
	logger  zerolog.Logger

	rateLimitMu sync.RWMutex
	rateLimit   RateLimitInfo
}

func NewBrawlhallaClient(cfg *config.Config, logger zerolog.Logger) *BrawlhallaClient {
	c := &BrawlhallaClient{
		baseURL: cfg.StatsBaseURL,
		apiKey:  cfg.StatsAPIKey,
		timeout: cfg.ExternalAPITimeout,
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         cfg.ExternalAPITimeout,
			WriteTimeout:        cfg.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger.With().Str("component", "brawlhalla_client").Logger(),
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		// a missing player is an answer, not a provider fault
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, apperror.ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
		},
	})

	return c
}

func (c *BrawlhallaClient) GetRateLimitInfo() RateLimitInfo {
	c.rateLimitMu.RLock()
	defer c.rateLimitMu.RUnlock()
	return c.rateLimit
}

func (c *BrawlhallaClient) updateRateLimit(resp *fasthttp.Response) {
	c.rateLimitMu.Lock()
	defer c.rateLimitMu.Unlock()

	if limit := string(resp.Header.Peek("X-RateLimit-Limit")); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			c.rateLimit.Limit = val
		}
	}
	if remaining := string(resp.Header.Peek("X-RateLimit-Remaining")); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			c.rateLimit.Remaining = val
		}
	}
	if reset := string(resp.Header.Peek("X-RateLimit-Reset")); reset != "" {
		if val, err := strconv.Atoi(reset); err == nil {
			c.rateLimit.Reset = val
		}
	}
}

// GetRanked fetches and decodes a player's ranked summary.
func (c *BrawlhallaClient) GetRanked(ctx context.Context, playerID string) (*RankedResponse, error) {
	body, err := c.GetRankedRaw(ctx, playerID)
	if err != nil {
		return nil, err
	}
	var result RankedResponse
	// unranked players come back as [] rather than an object
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || (trimmed[0] == '[' && json.Valid(trimmed)) {
		return &result, nil
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode ranked response for %s: %v: %w", playerID, err, apperror.ErrUnavailable)
	}
	return &result, nil
}

func (c *BrawlhallaClient) GetRankedRaw(ctx context.Context, playerID string) ([]byte, error) {
	return c.get(ctx, "ranked", fmt.Sprintf("/player/%s/ranked", url.PathEscape(playerID)))
}

func (c *BrawlhallaClient) GetStatsRaw(ctx context.Context, playerID string) ([]byte, error) {
	return c.get(ctx, "stats", fmt.Sprintf("/player/%s/stats", url.PathEscape(playerID)))
}

func (c *BrawlhallaClient) GetRankingsRaw(ctx context.Context, bracket, region string, page int) ([]byte, error) {
	path := fmt.Sprintf("/rankings/%s/%s/%d", url.PathEscape(bracket), url.PathEscape(region), page)
	return c.get(ctx, "rankings", path)
}

func (c *BrawlhallaClient) get(ctx context.Context, endpoint, path string) ([]byte, error) {
	start := time.Now()
	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.doRequest(ctx, path)
	})
	metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.UpstreamRequests.WithLabelValues(endpoint, "rejected").Inc()
			return nil, fmt.Errorf("%s: %v: %w", path, err, apperror.ErrUnavailable)
		}
		metrics.UpstreamRequests.WithLabelValues(endpoint, outcome(err)).Inc()
		c.logger.Warn().Err(err).Str("path", path).Msg("stats request failed")
		return nil, err
	}

	metrics.UpstreamRequests.WithLabelValues(endpoint, "ok").Inc()
	return body, nil
}

func (c *BrawlhallaClient) doRequest(ctx context.Context, path string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + path + "?api_key=" + url.QueryEscape(c.apiKey))
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		if errors.Is(err, fasthttp.ErrTimeout) || errors.Is(err, fasthttp.ErrDialTimeout) {
			return nil, fmt.Errorf("%s: %v: %w", path, err, apperror.ErrTimeout)
		}
		return nil, fmt.Errorf("%s: %v: %w", path, err, apperror.ErrUnavailable)
	}

	c.updateRateLimit(resp)

	switch status := resp.StatusCode(); {
	case status == fasthttp.StatusNotFound:
		return nil, fmt.Errorf("%s: %w", path, apperror.ErrNotFound)
	case status != fasthttp.StatusOK:
		return nil, fmt.Errorf("%s: API error %d: %w", path, status, apperror.ErrUnavailable)
	}

	// resp is returned to the pool on exit
	return append([]byte(nil), resp.Body()...), nil
}

func outcome(err error) string {
	switch {
	case errors.Is(err, apperror.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperror.ErrTimeout):
		return "timeout"
	default:
		return "unavailable"
	}
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
