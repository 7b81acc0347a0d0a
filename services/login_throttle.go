package services

import (
	"context"
	"errors"
	"math"
	"time"

	"food-truck/db"

	"github.com/jackc/pgx/v5"
)

const ThrottleCooldownCapSeconds = 30

// LoginThrottleWaitSeconds returns how many seconds the username must wait before trying again (0 if no cooldown).
func LoginThrottleWaitSeconds(ctx context.Context, username string) (int, error) {
	var cooldownUntil *time.Time
	err := db.Pool.QueryRow(ctx, `
		SELECT cooldown_until FROM login_throttle WHERE username = $1`,
		username,
	).Scan(&cooldownUntil)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return waitSeconds(cooldownUntil, time.Now()), nil
}

func waitSeconds(until *time.Time, now time.Time) int {
	if until == nil || !now.Before(*until) {
		return 0
	}
	return int(until.Sub(now).Seconds()) + 1 // round up
}

// RecordLoginFailed increments fail_count and sets cooldown_until = now() + min(30, 2^fail_count) seconds.
func RecordLoginFailed(ctx context.Context, username string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO login_throttle (username, fail_count, last_failed_at, cooldown_until, updated_at)
		VALUES ($1, 1, now(), now() + (LEAST(30, POWER(2, 1)::int) || ' seconds')::interval, now())
		ON CONFLICT (username) DO UPDATE SET
			fail_count = login_throttle.fail_count + 1,
			last_failed_at = now(),
			cooldown_until = now() + (LEAST(30, POWER(2, LEAST(login_throttle.fail_count + 1, 16))::int) || ' seconds')::interval,
			updated_at = now()`,
		username,
	)
	return err
}

// RecordLoginSuccess resets fail_count and cooldown_until for the username.
func RecordLoginSuccess(ctx context.Context, username string) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO login_throttle (username, fail_count, last_failed_at, cooldown_until, updated_at)
		VALUES ($1, 0, NULL, NULL, now())
		ON CONFLICT (username) DO UPDATE SET
			fail_count = 0,
			last_failed_at = NULL,
			cooldown_until = NULL,
			updated_at = now()`,
		username,
	)
	return err
}

// CooldownSecondsForFailCount returns min(30, 2^failCount).
func CooldownSecondsForFailCount(failCount int) int {
	s := int(math.Pow(2, float64(failCount)))
	if s > ThrottleCooldownCapSeconds || s <= 0 {
		return ThrottleCooldownCapSeconds
	}
	return s
}
