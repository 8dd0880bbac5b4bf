// Package ratelimit tracks the request budget the alerts API reports in its
// X-RateLimit-Remaining and X-RateLimit-Reset headers and gates requests
// before the budget runs out. State lives in Redis so every process sharing
// an API key sees the same budget.
package ratelimit

import (
	"time"
)

// Redis keys for rate limit state storage.
const (
	RedisKeyRequestsRemaining = "alertfeed:rate_limit:requests_remaining"
	RedisKeyResetTimestamp    = "alertfeed:rate_limit:reset_timestamp"
	RedisKeyLastUpdate        = "alertfeed:rate_limit:last_update"
)

// Header names the API reports its budget in.
const (
	HeaderRemaining = "X-RateLimit-Remaining"
	HeaderReset     = "X-RateLimit-Reset"
)

// Thresholds for rate limit decisions.
const (
	// BudgetThresholdCritical blocks all requests when requests remaining falls below this value.
	BudgetThresholdCritical = 5

	// BudgetThresholdWarning applies throttling when requests remaining falls below this value.
	BudgetThresholdWarning = 20

	// BudgetThresholdHealthy indicates normal operation.
	BudgetThresholdHealthy = 50
)

// RateLimitState represents the current request budget.
type RateLimitState struct {
	// RequestsRemaining is the number of requests left in the current window.
	RequestsRemaining int `json:"requests_remaining"`

	// ResetAt is when the window resets (now + X-RateLimit-Reset seconds).
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is when this state was last updated.
	LastUpdate time.Time `json:"last_update"`

	// IsHealthy is true when RequestsRemaining >= BudgetThresholdHealthy.
	IsHealthy bool `json:"is_healthy"`
}

// IsStale returns true if the state data is older than the given duration.
func (s *RateLimitState) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// NeedsCriticalBlock returns true if requests should be blocked.
func (s *RateLimitState) NeedsCriticalBlock() bool {
	return s.RequestsRemaining < BudgetThresholdCritical
}

// NeedsThrottling returns true if requests should be slowed down.
func (s *RateLimitState) NeedsThrottling() bool {
	return s.RequestsRemaining < BudgetThresholdWarning && !s.NeedsCriticalBlock()
}

// TimeUntilReset returns the duration until the window resets.
// Returns 0 if the reset time has already passed.
func (s *RateLimitState) TimeUntilReset() time.Duration {
	duration := time.Until(s.ResetAt)
	if duration < 0 {
		return 0
	}
	return duration
}

// UpdateHealth updates the IsHealthy field based on current RequestsRemaining.
func (s *RateLimitState) UpdateHealth() {
	s.IsHealthy = s.RequestsRemaining >= BudgetThresholdHealthy
}
