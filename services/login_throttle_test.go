package services

import (
	"context"
	"testing"
	"time"

	"food-truck/db"
)

func TestCooldownSecondsForFailCount(t *testing.T) {
	tests := []struct {
		failCount int
		want      int
	}{
		{0, 1},   // 2^0=1
		{1, 2},   // 2^1=2
		{2, 4},   // 2^2=4
		{3, 8},   // 2^3=8
		{4, 16},  // 2^4=16
		{5, 30},  // 2^5=32 -> cap 30
		{6, 30},  // 2^6=64 -> cap 30
		{10, 30}, // cap 30
		{70, 30}, // overflow -> cap 30
	}
	for _, tt := range tests {
		got := CooldownSecondsForFailCount(tt.failCount)
		if got != tt.want {
			t.Errorf("CooldownSecondsForFailCount(%d) = %d, want %d", tt.failCount, got, tt.want)
		}
	}
}

func TestWaitSeconds(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Second)
	soon := now.Add(1500 * time.Millisecond)
	exact := now

	if got := waitSeconds(nil, now); got != 0 {
		t.Errorf("nil cooldown: got %d", got)
	}
	if got := waitSeconds(&past, now); got != 0 {
		t.Errorf("expired cooldown: got %d", got)
	}
	if got := waitSeconds(&exact, now); got != 0 {
		t.Errorf("cooldown ending now: got %d", got)
	}
	if got := waitSeconds(&soon, now); got != 2 {
		t.Errorf("1.5s cooldown should round up to 2, got %d", got)
	}
}

// Integration test (requires DB). Skips if db.Pool is nil or -short.
func TestLoginThrottle_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping throttle integration test in short mode")
	}
	if db.Pool == nil {
		t.Skip("skipping throttle integration test: no DB pool")
	}
	ctx := context.Background()
	const username = "throttle-test-user"

	defer func() {
		_ = RecordLoginSuccess(ctx, username)
	}()

	_ = RecordLoginSuccess(ctx, username)
	wait, err := LoginThrottleWaitSeconds(ctx, username)
	if err != nil {
		t.Fatalf("LoginThrottleWaitSeconds after success: %v", err)
	}
	if wait != 0 {
		t.Errorf("after success: wait = %d, want 0", wait)
	}

	_ = RecordLoginFailed(ctx, username)
	wait, err = LoginThrottleWaitSeconds(ctx, username)
	if err != nil {
		t.Fatalf("LoginThrottleWaitSeconds after fail: %v", err)
	}
	if wait <= 0 || wait > ThrottleCooldownCapSeconds {
		t.Errorf("after one fail: wait = %d, want in (0, 30]", wait)
	}

	for i := 0; i < 8; i++ {
		_ = RecordLoginFailed(ctx, username)
	}
	wait, _ = LoginThrottleWaitSeconds(ctx, username)
	if wait > ThrottleCooldownCapSeconds+1 {
		t.Errorf("after 9 fails: wait = %d, want <= cap", wait)
	}

	_ = RecordLoginSuccess(ctx, username)
	wait, _ = LoginThrottleWaitSeconds(ctx, username)
	if wait != 0 {
		t.Errorf("after success: wait = %d, want 0", wait)
	}
}
