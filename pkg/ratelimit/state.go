// Package ratelimit tracks the request quota advertised by the artworks API
// and gates outgoing requests. It reads the X-RateLimit-Remaining,
// X-RateLimit-Limit and X-RateLimit-Reset headers.
package ratelimit

import (
	"time"
)

// RedisKey holds the shared quota state when a Redis client is configured.
const RedisKey = "artsel:rate_limit:state"

// Thresholds for rate limit decisions.
const (
	// ThresholdCritical blocks requests until the window resets.
	ThresholdCritical = 2

	// ThresholdWarning throttles requests.
	ThresholdWarning = 10

	// ThresholdHealthy and above means no restrictions.
	ThresholdHealthy = 30
)

// State is the request quota of the current window.
type State struct {
	// Remaining requests in the current window
	Remaining int `json:"remaining"`

	// Limit is the window size, 0 if the API did not say
	Limit int `json:"limit,omitempty"`

	// ResetAt is when the window resets
	ResetAt time.Time `json:"reset_at"`

	// LastUpdate is when the state was last read from response headers
	LastUpdate time.Time `json:"last_update"`

	// Healthy is true when Remaining >= ThresholdHealthy
	Healthy bool `json:"healthy"`
}

// defaultState is assumed until the API reports a quota.
func defaultState() *State {
	now := time.Now()
	return &State{
		Remaining:  100,
		ResetAt:    now.Add(60 * time.Second),
		LastUpdate: now,
		Healthy:    true,
	}
}

// IsStale returns true if the state is older than maxAge.
func (s *State) IsStale(maxAge time.Duration) bool {
	return time.Since(s.LastUpdate) > maxAge
}

// NeedsCriticalBlock returns true if requests should be blocked.
func (s *State) NeedsCriticalBlock() bool {
	return s.Remaining < ThresholdCritical
}

// NeedsThrottling returns true if requests should be slowed down.
func (s *State) NeedsThrottling() bool {
	return s.Remaining < ThresholdWarning && !s.NeedsCriticalBlock()
}

// TimeUntilReset returns the duration until the window resets, 0 if it already has.
func (s *State) TimeUntilReset() time.Duration {
	if d := time.Until(s.ResetAt); d > 0 {
		return d
	}
	return 0
}

// UpdateHealth recomputes Healthy from Remaining.
func (s *State) UpdateHealth() {
	s.Healthy = s.Remaining >= ThresholdHealthy
}
