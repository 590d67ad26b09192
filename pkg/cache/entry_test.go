package cache

import (
	"testing"
	"time"
)

func TestCacheEntry_IsExpired(t *testing.T) {
	tests := []struct {
		name    string
		expires time.Time
		want    bool
	}{
		{"future", time.Now().Add(time.Minute), false},
		{"past", time.Now().Add(-time.Minute), true},
		{"zero", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := &CacheEntry{Expires: tt.expires}
			if got := e.IsExpired(); got != tt.want {
				t.Errorf("IsExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCacheEntry_TTL(t *testing.T) {
	e := &CacheEntry{Expires: time.Now().Add(10 * time.Minute)}
	ttl := e.TTL()
	if ttl <= 9*time.Minute || ttl > 10*time.Minute {
		t.Errorf("TTL() = %v, want about 10m", ttl)
	}

	expired := &CacheEntry{Expires: time.Now().Add(-time.Hour)}
	if got := expired.TTL(); got != 0 {
		t.Errorf("TTL() of expired entry = %v, want 0", got)
	}
}

func TestCacheEntry_CanRevalidate(t *testing.T) {
	tests := []struct {
		name  string
		entry CacheEntry
		want  bool
	}{
		{"etag", CacheEntry{ETag: `"v1"`}, true},
		{"last modified", CacheEntry{LastModified: time.Now()}, true},
		{"no validator", CacheEntry{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.CanRevalidate(); got != tt.want {
				t.Errorf("CanRevalidate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCacheEntry_Age(t *testing.T) {
	e := &CacheEntry{CachedAt: time.Now().Add(-2 * time.Minute)}
	if age := e.Age(); age < 2*time.Minute {
		t.Errorf("Age() = %v, want >= 2m", age)
	}
}
