package redis

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiterRejectsOverLimit(t *testing.T) {
	c, mr := newTestClient(t)
	l := NewRateLimiter(c)
	ctx := context.Background()
	key := "ratelimit:build:127.0.0.1"

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, key, 3, time.Minute)
		if err != nil {
			t.Fatalf("Allow #%d: %v", i+1, err)
		}
		if !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}

	ok, err := l.Allow(ctx, key, 3, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("request over the limit should be rejected")
	}

	members, err := mr.ZMembers(key)
	if err != nil {
		t.Fatal(err)
	}
	if len(members) != 3 {
		t.Errorf("window holds %d entries, want 3", len(members))
	}
	if ttl := mr.TTL(key); ttl <= 0 || ttl > time.Minute {
		t.Errorf("ttl = %v, want within window", ttl)
	}
}

func TestRateLimiterWindowSlides(t *testing.T) {
	c, mr := newTestClient(t)
	l := NewRateLimiter(c)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := base
	l.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if ok, _ := l.Allow(ctx, "k", 2, time.Minute); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if ok, _ := l.Allow(ctx, "k", 2, time.Minute); ok {
		t.Fatal("third request inside the window should be rejected")
	}

	now = base.Add(time.Minute + time.Millisecond)
	ok, err := l.Allow(ctx, "k", 2, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("request after the window should be allowed")
	}
	members, _ := mr.ZMembers("k")
	if len(members) != 1 {
		t.Errorf("window holds %d entries, want 1", len(members))
	}
}

func TestRateLimiterKeysAreIndependent(t *testing.T) {
	c, _ := newTestClient(t)
	l := NewRateLimiter(c)
	ctx := context.Background()

	if ok, _ := l.Allow(ctx, "a", 1, time.Minute); !ok {
		t.Fatal("first request on a should pass")
	}
	if ok, _ := l.Allow(ctx, "b", 1, time.Minute); !ok {
		t.Fatal("first request on b should pass")
	}
	if ok, _ := l.Allow(ctx, "a", 1, time.Minute); ok {
		t.Fatal("second request on a should be rejected")
	}
}
