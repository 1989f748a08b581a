package ratelimit

import (
	"testing"
	"time"
)

func TestLimiterAllow(t *testing.T) {
	l := NewLimiter()
	now := time.Now()

	if !l.Allow("evil.test", 1, 2, now) {
		t.Fatalf("expected first alert allowed")
	}
	if !l.Allow("evil.test", 1, 2, now) {
		t.Fatalf("expected second alert allowed")
	}
	if l.Allow("evil.test", 1, 2, now) {
		t.Fatalf("expected third alert limited")
	}

	later := now.Add(1500 * time.Millisecond)
	if !l.Allow("evil.test", 1, 2, later) {
		t.Fatalf("expected refill to allow after time")
	}
}

func TestLimiterDifferentKeys(t *testing.T) {
	l := NewLimiter()
	now := time.Now()

	if !l.Allow("a.test", 1, 1, now) {
		t.Fatalf("expected first key allowed")
	}
	if !l.Allow("b.test", 1, 1, now) {
		t.Fatalf("expected second key allowed")
	}
}

func TestLimiterDisabled(t *testing.T) {
	l := NewLimiter()
	now := time.Now()
	for i := 0; i < 5; i++ {
		if !l.Allow("a.test", 0, 0, now) {
			t.Fatalf("expected zero rate to disable limiting")
		}
	}
}
