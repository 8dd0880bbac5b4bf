//go:build integration

package main

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/Sternrassler/alert-feed/internal/testutil"
	"github.com/Sternrassler/alert-feed/pkg/client"
	"github.com/Sternrassler/alert-feed/pkg/ratelimit"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedisContainer(t *testing.T) *redis.Client {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("Failed to start Redis container: %v", err)
	}

	host, err := redisC.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}

	port, err := redisC.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr: host + ":" + port.Port(),
	})

	t.Cleanup(func() {
		redisClient.Close()
		redisC.Terminate(ctx)
	})

	return redisClient
}

// newIntegrationServer wires the service against real Redis, with the
// request budget shared through Redis as in production.
func newIntegrationServer(t *testing.T, redisClient *redis.Client, mock *testutil.MockAPI, cacheTTL time.Duration) http.Handler {
	t.Helper()

	clientCfg := client.DefaultConfig(mock.URL(), "alert-feed-integration/1.0")
	clientCfg.Redis = redisClient
	clientCfg.MaxRetries = 3
	clientCfg.InitialBackoff = 10 * time.Millisecond
	clientCfg.MaxBackoff = 50 * time.Millisecond

	apiClient, err := client.New(clientCfg)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	cfg := config{
		PageSize:     20,
		MaxPages:     10,
		FetchTimeout: 5 * time.Second,
		CacheTTL:     cacheTTL,
	}
	return newServer(cfg, redisClient, apiClient.Fetcher()).routes()
}

func serve(t *testing.T, h http.Handler, method, target string) *http.Response {
	t.Helper()
	env := &testEnv{handler: h}
	return env.do(t, method, target, "")
}

// TestFullRequestFlow loads the whole list through cache and rate limiter.
func TestFullRequestFlow(t *testing.T) {
	redisClient := setupRedisContainer(t)
	mock := testutil.NewMockAPI()
	defer mock.Close()

	mock.SetPage("", testutil.MockAlerts(0, 20), "k1")
	mock.SetPage("k1", testutil.MockAlerts(20, 20), "k2")
	mock.SetPage("k2", testutil.MockAlerts(40, 5), "")

	h := newIntegrationServer(t, redisClient, mock, time.Minute)

	resp := serve(t, h, "GET", "/alerts?max_pages=10")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", resp.StatusCode)
	}

	var body alertsResponse
	decodeBody(t, resp, &body)

	if len(body.Items) != 45 || body.HasMore {
		t.Errorf("items = %d hasMore = %v, want 45/false", len(body.Items), body.HasMore)
	}

	// Budget from the mock headers was stored in Redis
	remaining, err := redisClient.Get(context.Background(), ratelimit.RedisKeyRequestsRemaining).Int()
	if err != nil {
		t.Fatalf("Failed to read budget: %v", err)
	}
	if remaining != 100 {
		t.Errorf("requests remaining = %d, want 100", remaining)
	}

	// Second run is served from the page cache
	resp = serve(t, h, "GET", "/alerts?max_pages=10")
	resp.Body.Close()
	if mock.GetRequestCount() != 3 {
		t.Errorf("API requests = %d, want 3", mock.GetRequestCount())
	}
}

// TestRateLimitBlock tests that queries are blocked when the budget is critical.
func TestRateLimitBlock(t *testing.T) {
	redisClient := setupRedisContainer(t)
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetPage("", testutil.MockAlerts(0, 5), "")

	// Seed a critical budget the way another process would have stored it
	tracker := ratelimit.NewTracker(redisClient, zerolog.Nop())
	headers := http.Header{}
	headers.Set(ratelimit.HeaderRemaining, "3")
	headers.Set(ratelimit.HeaderReset, "60")
	if err := tracker.UpdateFromHeaders(context.Background(), headers); err != nil {
		t.Fatalf("Failed to seed budget: %v", err)
	}

	h := newIntegrationServer(t, redisClient, mock, time.Minute)

	resp := serve(t, h, "GET", "/alerts")
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("Expected status 502, got %d", resp.StatusCode)
	}

	var body errorResponse
	decodeBody(t, resp, &body)
	if !strings.Contains(body.Error, "Too many requests") {
		t.Errorf("error = %q, want rate limit message", body.Error)
	}

	if mock.GetRequestCount() != 0 {
		t.Errorf("API requests = %d, want 0 (blocked)", mock.GetRequestCount())
	}
}

// TestRetry5xxErrors tests that 5xx errors are retried before a page fails.
func TestRetry5xxErrors(t *testing.T) {
	redisClient := setupRedisContainer(t)
	mock := testutil.NewMockAPI()
	defer mock.Close()

	mock.QueueResponse(testutil.NewServerErrorResponse())
	mock.QueueResponse(testutil.NewServerErrorResponse())
	mock.SetPage("", testutil.MockAlerts(0, 5), "")

	h := newIntegrationServer(t, redisClient, mock, time.Minute)

	resp := serve(t, h, "GET", "/alerts")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected status 200 after retries, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	if mock.GetRequestCount() != 3 {
		t.Errorf("API requests = %d, want 3 (2 failures + 1 success)", mock.GetRequestCount())
	}
}

// TestNoRetry4xxErrors tests that 4xx errors fail the first page immediately.
func TestNoRetry4xxErrors(t *testing.T) {
	redisClient := setupRedisContainer(t)
	mock := testutil.NewMockAPI()
	defer mock.Close()

	mock.QueueResponse(testutil.NewBadRequestResponse("Unknown argument sortDir"))

	h := newIntegrationServer(t, redisClient, mock, time.Minute)

	resp := serve(t, h, "GET", "/alerts")
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("Expected status 502, got %d", resp.StatusCode)
	}

	var body errorResponse
	decodeBody(t, resp, &body)
	if body.Error != "Unknown argument sortDir" {
		t.Errorf("error = %q", body.Error)
	}
	if mock.GetRequestCount() != 1 {
		t.Errorf("API requests = %d, want 1 (no retry)", mock.GetRequestCount())
	}
}

// TestCacheExpiration tests that pages are fetched again after the TTL.
func TestCacheExpiration(t *testing.T) {
	redisClient := setupRedisContainer(t)
	mock := testutil.NewMockAPI()
	defer mock.Close()
	mock.SetPage("", testutil.MockAlerts(0, 5), "")

	h := newIntegrationServer(t, redisClient, mock, 1*time.Second)

	serve(t, h, "GET", "/alerts").Body.Close()
	serve(t, h, "GET", "/alerts").Body.Close()
	if mock.GetRequestCount() != 1 {
		t.Fatalf("API requests = %d, want 1 before expiry", mock.GetRequestCount())
	}

	time.Sleep(1500 * time.Millisecond)

	serve(t, h, "GET", "/alerts").Body.Close()
	if mock.GetRequestCount() != 2 {
		t.Errorf("API requests = %d, want 2 after expiry", mock.GetRequestCount())
	}
}
