package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/calendar"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/config"
	"github.com/sysu-ecnc-dev/staff-scheduler/backend/internal/domain"
)

const calendarGenerationKey = "calendar:generation"

// calendarCache 缓存日历投影。任何会影响日历的写操作都会使代数加一，旧代数的缓存自然失效
type calendarCache struct {
	rdb       redis.Cmdable
	ttl       time.Duration
	opTimeout time.Duration
}

// rdb 为 nil 时返回 nil，nil 的 calendarCache 上所有操作都是空操作
func newCalendarCache(rdb redis.Cmdable, cfg *config.Config) *calendarCache {
	if rdb == nil {
		return nil
	}
	return &calendarCache{
		rdb:       rdb,
		ttl:       time.Duration(cfg.Calendar.CacheTTL) * time.Second,
		opTimeout: time.Duration(cfg.Redis.OperationExpiration) * time.Second,
	}
}

func (c *calendarCache) generation(ctx context.Context) (int64, error) {
	gen, err := c.rdb.Get(ctx, calendarGenerationKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

func calendarKey(gen int64, viewer domain.Actor, from, to string, filters calendar.Filters) string {
	kinds := make([]string, 0, len(filters.Kinds))
	for _, k := range filters.Kinds {
		kinds = append(kinds, string(k))
	}
	slices.Sort(kinds)
	return fmt.Sprintf("calendar:%d:%d:%s:%s:%t:%s", gen, viewer.UserID, from, to, filters.ShowPendingOnly, strings.Join(kinds, ","))
}

// get 在未命中或 redis 出错时返回 false
func (c *calendarCache) get(ctx context.Context, viewer domain.Actor, from, to string, filters calendar.Filters) (*domain.CalendarProjection, bool) {
	if c == nil {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	gen, err := c.generation(ctx)
	if err != nil {
		slog.Warn("读取日历缓存代数失败", "error", err)
		return nil, false
	}

	data, err := c.rdb.Get(ctx, calendarKey(gen, viewer, from, to, filters)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.Warn("读取日历缓存失败", "error", err)
		}
		return nil, false
	}

	projection := &domain.CalendarProjection{}
	if err := json.Unmarshal(data, projection); err != nil {
		slog.Warn("日历缓存数据损坏", "error", err)
		return nil, false
	}
	return projection, true
}

func (c *calendarCache) set(ctx context.Context, viewer domain.Actor, from, to string, filters calendar.Filters, projection *domain.CalendarProjection) {
	if c == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	data, err := json.Marshal(projection)
	if err != nil {
		slog.Warn("序列化日历投影失败", "error", err)
		return
	}

	gen, err := c.generation(ctx)
	if err != nil {
		slog.Warn("读取日历缓存代数失败", "error", err)
		return
	}

	if err := c.rdb.Set(ctx, calendarKey(gen, viewer, from, to, filters), data, c.ttl).Err(); err != nil {
		slog.Warn("写入日历缓存失败", "error", err)
	}
}

func (c *calendarCache) invalidate(ctx context.Context) {
	if c == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, c.opTimeout)
	defer cancel()

	if err := c.rdb.Incr(ctx, calendarGenerationKey).Err(); err != nil {
		slog.Warn("使日历缓存失效失败", "error", err)
	}
}
