package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"portfolio-rebalancer-go/internal/config"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// setupTestServer creates a test server and a Client configured to use it.
func setupTestServer(handler http.Handler) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)

	c := &Client{
		client:  resty.New().SetBaseURL(server.URL),
		apiKey:  "test_api_key",
		logger:  zap.NewNop(),
		limiter: rate.NewLimiter(rate.Inf, 1), // Allow all requests in tests
		backoff: func(int) time.Duration { return time.Millisecond },
	}
	return c, server
}

func TestGetQuotes(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/quotes", r.URL.Path)
			assert.Equal(t, "VTI,BND", r.URL.Query().Get("symbols"))
			assert.Equal(t, "test_api_key", r.Header.Get("X-API-KEY"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"symbol":"VTI","price":251.5},{"symbol":"BND","price":72.1}]`))
		})
		c, server := setupTestServer(handler)
		defer server.Close()

		quotes, err := c.GetQuotes(context.Background(), []string{"VTI", "BND"})

		require.NoError(t, err)
		assert.Equal(t, []Quote{{Symbol: "VTI", Price: 251.5}, {Symbol: "BND", Price: 72.1}}, quotes)
	})

	t.Run("NoSymbols", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})
		c, server := setupTestServer(handler)
		defer server.Close()

		quotes, err := c.GetQuotes(context.Background(), nil)
		assert.NoError(t, err)
		assert.Empty(t, quotes)
	})

	t.Run("NoAPIKey", func(t *testing.T) {
		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("X-API-KEY"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[]`))
		})
		c, server := setupTestServer(handler)
		defer server.Close()
		c.apiKey = ""

		_, err := c.GetQuotes(context.Background(), []string{"VTI"})
		assert.NoError(t, err)
	})
}

func TestGetQuotes_Retries(t *testing.T) {
	testCases := []struct {
		name      string
		failures  []int
		wantErr   bool
		wantCalls int32
	}{
		{name: "Recovers after server error", failures: []int{http.StatusInternalServerError}, wantCalls: 2},
		{name: "Recovers after throttling", failures: []int{http.StatusTooManyRequests, http.StatusTeapot}, wantCalls: 3},
		{name: "Gives up after three attempts", failures: []int{500, 502, 503}, wantErr: true, wantCalls: 3},
		{name: "Client errors are not retried", failures: []int{http.StatusBadRequest}, wantErr: true, wantCalls: 1},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var calls int32
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := atomic.AddInt32(&calls, 1)
				if int(n) <= len(tc.failures) {
					w.WriteHeader(tc.failures[n-1])
					_, _ = w.Write([]byte(`{"error":"nope"}`))
					return
				}
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`[{"symbol":"VTI","price":100}]`))
			})
			c, server := setupTestServer(handler)
			defer server.Close()

			quotes, err := c.GetQuotes(context.Background(), []string{"VTI"})

			assert.Equal(t, tc.wantCalls, atomic.LoadInt32(&calls))
			if tc.wantErr {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), "failed to get quotes")
				return
			}
			require.NoError(t, err)
			assert.Len(t, quotes, 1)
		})
	}
}

func TestGetQuotes_ContextCancelled(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	c, server := setupTestServer(handler)
	defer server.Close()
	c.backoff = func(int) time.Duration { return time.Minute }

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.GetQuotes(ctx, []string{"VTI"})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNewClient(t *testing.T) {
	cfg := config.MarketData{BaseURL: "https://quotes.example.com/", APIKey: "k", RateLimit: 5, RateLimitBurst: 2, TimeoutSeconds: 3}
	c := NewClient(cfg, zap.NewNop())
	assert.NotNil(t, c)
	assert.Equal(t, "k", c.apiKey)
	assert.Equal(t, "https://quotes.example.com", c.client.BaseURL)
	assert.Equal(t, 2, c.limiter.Burst())
	assert.Equal(t, 2*time.Second, c.backoff(1))
}
