package redis

import (
	"context"
	"fmt"
	"time"
)

const rateLimitKeyPrefix = "ratelimit:"

// Hit counts one request against a fixed window counter and returns the count
// so far in the current window and the time left until it resets.
func (c *Client) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	fullKey := rateLimitKeyPrefix + key

	count, err := c.client.Do(ctx, c.client.B().Incr().Key(fullKey).Build()).AsInt64()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to increment rate limit counter: %w", err)
	}

	if count == 1 {
		if err := c.expire(ctx, fullKey, window); err != nil {
			return 0, 0, err
		}
		return count, window, nil
	}

	ttlMs, err := c.client.Do(ctx, c.client.B().Pttl().Key(fullKey).Build()).AsInt64()
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read rate limit ttl: %w", err)
	}

	// A counter without expiry would never reset.
	if ttlMs < 0 {
		if err := c.expire(ctx, fullKey, window); err != nil {
			return 0, 0, err
		}
		return count, window, nil
	}

	return count, time.Duration(ttlMs) * time.Millisecond, nil
}

func (c *Client) expire(ctx context.Context, key string, window time.Duration) error {
	cmd := c.client.B().Pexpire().Key(key).Milliseconds(window.Milliseconds()).Build()
	if err := c.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("failed to set rate limit window: %w", err)
	}
	return nil
}
