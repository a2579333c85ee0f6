package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"seabreeze/internal/domain/availability"
)

// CalendarCache decorates a calendar strategy with a Redis read-through
// cache. Cache failures degrade to the inner strategy instead of erroring:
// the calendar is a convenience view and booking writes never read it.
type CalendarCache struct {
	Inner  availability.CalendarStrategy
	Client *redis.Client
	TTL    time.Duration
	Logger *slog.Logger
}

func (c *CalendarCache) MonthOverview(ctx context.Context, year int, month time.Month) (map[string]availability.DaySummary, error) {
	key := fmt.Sprintf("calendar:month:%04d-%02d", year, int(month))
	var cached map[string]availability.DaySummary
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}
	fresh, err := c.Inner.MonthOverview(ctx, year, month)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, fresh)
	return fresh, nil
}

func (c *CalendarCache) DayView(ctx context.Context, day time.Time) ([]availability.UnitDay, error) {
	key := "calendar:day:" + day.Format(availability.DateKey)
	var cached []availability.UnitDay
	if c.lookup(ctx, key, &cached) {
		return cached, nil
	}
	fresh, err := c.Inner.DayView(ctx, day)
	if err != nil {
		return nil, err
	}
	c.store(ctx, key, fresh)
	return fresh, nil
}

func (c *CalendarCache) lookup(ctx context.Context, key string, target any) bool {
	raw, err := c.Client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.warn("calendar cache read failed", key, err)
		}
		return false
	}
	if err := json.Unmarshal(raw, target); err != nil {
		c.warn("calendar cache entry corrupt", key, err)
		return false
	}
	return true
}

func (c *CalendarCache) store(ctx context.Context, key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.warn("calendar cache encode failed", key, err)
		return
	}
	if err := c.Client.Set(ctx, key, raw, c.ttl()).Err(); err != nil {
		c.warn("calendar cache write failed", key, err)
	}
}

func (c *CalendarCache) ttl() time.Duration {
	if c.TTL <= 0 {
		return 2 * time.Minute
	}
	return c.TTL
}

func (c *CalendarCache) warn(msg, key string, err error) {
	if c.Logger == nil {
		return
	}
	c.Logger.Warn(msg, "key", key, "error", err)
}

var _ availability.CalendarStrategy = (*CalendarCache)(nil)
