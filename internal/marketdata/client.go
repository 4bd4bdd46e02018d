// Package marketdata fetches fund quotes from an external price API and
// applies them to the fund universe and every open position.
package marketdata

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"portfolio-rebalancer-go/internal/config"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const maxRetries = 3

// QuoteSource returns the latest prices for a set of symbols.
type QuoteSource interface {
	GetQuotes(ctx context.Context, symbols []string) ([]Quote, error)
}

// Quote is the latest price of one symbol.
type Quote struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// Client is a rate-limited REST client for the quote API.
type Client struct {
	client  *resty.Client
	apiKey  string
	logger  *zap.Logger
	limiter *rate.Limiter
	backoff func(attempt int) time.Duration
}

var _ QuoteSource = (*Client)(nil)

// NewClient creates a quote client from configuration.
func NewClient(cfg config.MarketData, logger *zap.Logger) *Client {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(time.Duration(cfg.TimeoutSeconds) * time.Second)

	// rate.Limit is requests per second.
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateLimitBurst)

	return &Client{
		client:  client,
		apiKey:  cfg.APIKey,
		logger:  logger.Named("marketdata"),
		limiter: limiter,
		backoff: exponentialBackoff,
	}
}

// exponentialBackoff waits 1s, 2s, 4s between attempts.
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(math.Pow(2, float64(attempt))) * time.Second
}

// GetQuotes fetches the latest price of every symbol in one request.
// Symbols the API does not know are simply absent from the result.
func (c *Client) GetQuotes(ctx context.Context, symbols []string) ([]Quote, error) {
	if len(symbols) == 0 {
		return nil, nil
	}

	var quotes []Quote
	newReq := func() *resty.Request {
		req := c.client.R().
			SetContext(ctx).
			SetQueryParam("symbols", strings.Join(symbols, ",")).
			SetHeader("Accept", "application/json").
			SetResult(&quotes)
		if c.apiKey != "" {
			req.SetHeader("X-API-KEY", c.apiKey)
		}
		return req
	}

	if _, err := c.doRequest(ctx, http.MethodGet, "/quotes", newReq); err != nil {
		return nil, fmt.Errorf("failed to get quotes: %w", err)
	}
	return quotes, nil
}

// doRequest executes a request with rate limiting and retries. Throttling
// (429, 418), server errors and network failures are retried; other client
// errors fail immediately.
func (c *Client) doRequest(ctx context.Context, method, url string, newReq func() *resty.Request) (*resty.Response, error) {
	var resp *resty.Response
	var err error

	for i := 0; i < maxRetries; i++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter wait failed: %w", err)
		}

		c.logger.Debug("Executing request", zap.String("method", method), zap.String("url", c.client.BaseURL+url))
		resp, err = newReq().Execute(method, url)

		if err == nil && !resp.IsError() {
			return resp, nil
		}

		shouldRetry := false
		var retryAfter time.Duration

		if err == nil {
			statusCode := resp.StatusCode()
			switch {
			case statusCode == http.StatusTooManyRequests || statusCode == http.StatusTeapot:
				shouldRetry = true
				if seconds, convErr := strconv.Atoi(resp.Header().Get("Retry-After")); convErr == nil {
					retryAfter = time.Duration(seconds) * time.Second
				}
			case statusCode >= http.StatusInternalServerError:
				shouldRetry = true
			}
			err = fmt.Errorf("request failed with status %s: %s", resp.Status(), resp.String())
		} else {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			shouldRetry = true
		}

		if !shouldRetry {
			return nil, err
		}
		if i == maxRetries-1 {
			break
		}
		if retryAfter == 0 {
			retryAfter = c.backoff(i)
		}

		c.logger.Warn("Request failed, retrying",
			zap.Int("attempt", i+1),
			zap.Duration("retry_after", retryAfter),
			zap.Error(err),
		)

		select {
		case <-time.After(retryAfter):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	return nil, fmt.Errorf("request failed after %d attempts: %w", maxRetries, err)
}
