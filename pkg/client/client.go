// Package client provides the GraphQL client for the alerts API with rate
// limiting, retries and error classification.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/Sternrassler/alert-feed/pkg/ratelimit"
	"github.com/go-resty/resty/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Prometheus metrics for query operations.
var (
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alertfeed_queries_total",
		Help: "Total GraphQL queries by operation and status",
	}, []string{"operation", "status"})

	queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "alertfeed_query_duration_seconds",
		Help:    "GraphQL query duration in seconds by operation",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10},
	}, []string{"operation"})

	queryErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "alertfeed_query_errors_total",
		Help: "Total GraphQL query errors by class",
	}, []string{"class"})
)

// ErrorClass represents a classification of query errors.
type ErrorClass string

const (
	// ErrorClassClient represents 4xx client errors.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx server errors and malformed responses.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassRateLimit represents 429 responses.
	ErrorClassRateLimit ErrorClass = "rate_limit"

	// ErrorClassNetwork represents network/timeout errors.
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassGraphQL represents errors reported in the GraphQL "errors" array.
	ErrorClassGraphQL ErrorClass = "graphql"
)

// Client is the alerts API GraphQL client.
type Client struct {
	http        *resty.Client
	rateLimiter *ratelimit.Tracker
	config      Config
	logger      zerolog.Logger
}

// Config holds the client configuration.
type Config struct {
	// Endpoint is the GraphQL endpoint URL (REQUIRED)
	Endpoint string

	// APIKey is sent as X-API-Key when set
	APIKey string

	// User-Agent header (REQUIRED)
	UserAgent string

	// Timeout per HTTP attempt
	Timeout time.Duration

	// Redis shares the request budget across processes (optional)
	Redis *redis.Client

	// Retry overrides; zero values keep the per-class defaults
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultConfig returns a safe default configuration.
func DefaultConfig(endpoint, userAgent string) Config {
	return Config{
		Endpoint:  endpoint,
		UserAgent: userAgent,
		Timeout:   30 * time.Second,
	}
}

// New creates a new alerts API client.
func New(cfg Config) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}

	u, err := url.Parse(cfg.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("endpoint must be an absolute http(s) URL (got %q)", cfg.Endpoint)
	}

	if cfg.UserAgent == "" {
		return nil, fmt.Errorf("user-agent is required")
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	logger := log.With().Str("component", "alerts-client").Logger()

	httpClient := resty.New().
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", cfg.UserAgent).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	if cfg.APIKey != "" {
		httpClient.SetHeader("X-API-Key", cfg.APIKey)
	}

	var rateLimiter *ratelimit.Tracker
	if cfg.Redis != nil {
		rateLimiter = ratelimit.NewTracker(cfg.Redis, logger)
	}

	return &Client{
		http:        httpClient,
		rateLimiter: rateLimiter,
		config:      cfg,
		logger:      logger,
	}, nil
}

type graphQLRequest struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName,omitempty"`
	Variables     map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []GraphQLError  `json:"errors,omitempty"`
}

// Query executes a GraphQL operation and decodes its "data" member into out.
// Any entry in the response "errors" array fails the query.
func (c *Client) Query(ctx context.Context, operation, query string, variables map[string]any, out any) error {
	startTime := time.Now()
	defer func() {
		queryDuration.WithLabelValues(operation).Observe(time.Since(startTime).Seconds())
	}()

	// Step 1: Check the request budget
	if c.rateLimiter != nil {
		allowed, err := c.rateLimiter.ShouldAllowRequest(ctx)
		if err != nil {
			c.logger.Error().Err(err).Msg("Rate limit check failed")
			return fmt.Errorf("rate limit check: %w", err)
		}
		if !allowed {
			c.logger.Warn().
				Str("operation", operation).
				Msg("Query blocked by rate limiter")
			queriesTotal.WithLabelValues(operation, "rate_limited").Inc()
			return ErrRateLimited
		}
	}

	body := graphQLRequest{
		Query:         query,
		OperationName: operation,
		Variables:     variables,
	}

	c.logger.Debug().
		Str("operation", operation).
		Msg("Executing GraphQL query")

	// Step 2: Execute with retry logic
	var envelope graphQLResponse
	err := retryWithBackoff(ctx, c.retryConfig, func() (ErrorClass, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetBody(body).
			Post(c.config.Endpoint)
		if err != nil {
			c.logger.Error().Err(err).Str("operation", operation).Msg("HTTP request failed")
			queryErrorsTotal.WithLabelValues(string(ErrorClassNetwork)).Inc()
			queriesTotal.WithLabelValues(operation, "network_error").Inc()
			return ErrorClassNetwork, &QueryError{
				ErrorClass: ErrorClassNetwork,
				Message:    "request failed",
				Err:        err,
			}
		}

		if c.rateLimiter != nil {
			if err := c.rateLimiter.UpdateFromHeaders(ctx, resp.Header()); err != nil {
				c.logger.Warn().Err(err).Msg("Failed to update rate limit from headers")
			}
		}

		status := resp.StatusCode()
		queriesTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()

		if status >= http.StatusBadRequest {
			errClass := classifyStatus(status)
			queryErrorsTotal.WithLabelValues(string(errClass)).Inc()

			c.logger.Warn().
				Str("operation", operation).
				Int("status", status).
				Str("error_class", string(errClass)).
				Msg("Query HTTP error")

			qe := &QueryError{
				StatusCode: status,
				ErrorClass: errClass,
				Message:    resp.Status(),
			}
			// GraphQL servers often explain 4xx responses in the errors array
			var errBody graphQLResponse
			if json.Unmarshal(resp.Body(), &errBody) == nil {
				qe.GraphQLErrors = errBody.Errors
			}
			return errClass, qe
		}

		envelope = graphQLResponse{}
		if err := json.Unmarshal(resp.Body(), &envelope); err != nil {
			queryErrorsTotal.WithLabelValues(string(ErrorClassServer)).Inc()
			return ErrorClassServer, &QueryError{
				StatusCode: status,
				ErrorClass: ErrorClassServer,
				Message:    "malformed GraphQL response",
				Err:        err,
			}
		}

		if len(envelope.Errors) > 0 {
			queryErrorsTotal.WithLabelValues(string(ErrorClassGraphQL)).Inc()
			c.logger.Warn().
				Str("operation", operation).
				Int("errors", len(envelope.Errors)).
				Str("first_error", envelope.Errors[0].Message).
				Msg("GraphQL query returned errors")
			return ErrorClassGraphQL, &QueryError{
				StatusCode:    status,
				ErrorClass:    ErrorClassGraphQL,
				Message:       "graphql errors",
				GraphQLErrors: envelope.Errors,
			}
		}

		return "", nil
	})
	if err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return &QueryError{
			StatusCode: http.StatusOK,
			ErrorClass: ErrorClassServer,
			Message:    "response contains no data",
		}
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decode %s data: %w", operation, err)
	}

	return nil
}

// retryConfig applies the configured overrides on top of the per-class defaults.
func (c *Client) retryConfig(errorClass ErrorClass) RetryConfig {
	config := RetryConfigForErrorClass(errorClass)
	if c.config.MaxRetries > 0 {
		config.MaxAttempts = c.config.MaxRetries
	}
	if c.config.InitialBackoff > 0 {
		config.InitialBackoff = c.config.InitialBackoff
	}
	if c.config.MaxBackoff > 0 {
		config.MaxBackoff = c.config.MaxBackoff
	}
	return config
}

// classifyStatus categorizes an HTTP error status for observability and handling.
func classifyStatus(status int) ErrorClass {
	switch {
	case status == http.StatusTooManyRequests:
		return ErrorClassRateLimit
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	default:
		return ""
	}
}

// IsRetryable reports whether err is worth retrying later by hand.
func IsRetryable(err error) bool {
	var qe *QueryError
	if errors.As(err, &qe) {
		return shouldRetry(qe.ErrorClass)
	}
	return errors.Is(err, ErrRetryExhausted) || errors.Is(err, ErrRateLimited)
}
