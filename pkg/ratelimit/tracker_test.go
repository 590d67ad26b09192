package ratelimit

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newMemoryTracker() *Tracker {
	return NewTracker(nil, zerolog.Nop()).WithThrottleDelay(50 * time.Millisecond)
}

func quotaHeaders(remaining, reset string) http.Header {
	h := http.Header{}
	h.Set(HeaderRemaining, remaining)
	h.Set(HeaderReset, reset)
	return h
}

func TestTracker_DefaultState(t *testing.T) {
	state, err := newMemoryTracker().GetState(context.Background())
	if err != nil {
		t.Fatalf("GetState() error = %v", err)
	}
	if !state.Healthy {
		t.Error("default state should be healthy")
	}
}

func TestUpdateFromHeaders(t *testing.T) {
	tests := []struct {
		name          string
		headers       http.Header
		wantRemaining int
		wantLimit     int
		wantErr       bool
	}{
		{
			name:          "healthy",
			headers:       quotaHeaders("60", "60"),
			wantRemaining: 60,
		},
		{
			name: "with limit",
			headers: func() http.Header {
				h := quotaHeaders("5", "30")
				h.Set(HeaderLimit, "60")
				return h
			}(),
			wantRemaining: 5,
			wantLimit:     60,
		},
		{
			name:    "invalid remaining",
			headers: quotaHeaders("abc", "60"),
			wantErr: true,
		},
		{
			name:    "invalid reset",
			headers: quotaHeaders("10", "soon"),
			wantErr: true,
		},
		{
			name:    "missing reset",
			headers: http.Header{HeaderRemaining: []string{"10"}},
			wantErr: true,
		},
		{
			name: "invalid limit",
			headers: func() http.Header {
				h := quotaHeaders("5", "30")
				h.Set(HeaderLimit, "many")
				return h
			}(),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := newMemoryTracker()
			ctx := context.Background()

			err := tracker.UpdateFromHeaders(ctx, tt.headers)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("UpdateFromHeaders() error = %v", err)
			}

			state, err := tracker.GetState(ctx)
			if err != nil {
				t.Fatalf("GetState() error = %v", err)
			}
			if state.Remaining != tt.wantRemaining {
				t.Errorf("Remaining = %d, want %d", state.Remaining, tt.wantRemaining)
			}
			if state.Limit != tt.wantLimit {
				t.Errorf("Limit = %d, want %d", state.Limit, tt.wantLimit)
			}
		})
	}
}

func TestUpdateFromHeaders_NoQuotaHeaders(t *testing.T) {
	tracker := newMemoryTracker()
	ctx := context.Background()

	if err := tracker.UpdateFromHeaders(ctx, quotaHeaders("1", "60")); err != nil {
		t.Fatal(err)
	}
	if err := tracker.UpdateFromHeaders(ctx, http.Header{}); err != nil {
		t.Fatalf("UpdateFromHeaders() without headers error = %v", err)
	}

	state, _ := tracker.GetState(ctx)
	if state.Remaining != 1 {
		t.Errorf("state changed by a response without quota headers: %d", state.Remaining)
	}
}

func TestShouldAllowRequest(t *testing.T) {
	tests := []struct {
		name         string
		remaining    string
		reset        string
		wantAllowed  bool
		wantThrottle bool
	}{
		{"healthy", "90", "60", true, false},
		{"warning", "5", "60", true, true},
		{"critical", "1", "60", false, false},
		{"critical but window reset", "0", "0", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := newMemoryTracker()
			ctx := context.Background()

			if err := tracker.UpdateFromHeaders(ctx, quotaHeaders(tt.remaining, tt.reset)); err != nil {
				t.Fatal(err)
			}

			start := time.Now()
			allowed, err := tracker.ShouldAllowRequest(ctx)
			elapsed := time.Since(start)

			if err != nil {
				t.Fatalf("ShouldAllowRequest() error = %v", err)
			}
			if allowed != tt.wantAllowed {
				t.Errorf("ShouldAllowRequest() = %v, want %v", allowed, tt.wantAllowed)
			}
			if tt.wantThrottle && elapsed < 40*time.Millisecond {
				t.Errorf("expected throttle delay, returned after %v", elapsed)
			}
		})
	}
}

func TestShouldAllowRequest_ThrottleHonoursContext(t *testing.T) {
	tracker := NewTracker(nil, zerolog.Nop()).WithThrottleDelay(time.Hour)
	if err := tracker.UpdateFromHeaders(context.Background(), quotaHeaders("5", "60")); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	allowed, err := tracker.ShouldAllowRequest(ctx)
	if allowed {
		t.Error("request allowed after context cancellation")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
}
