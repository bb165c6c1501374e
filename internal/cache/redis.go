package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Domenick1991/gymvisits/config"
	"github.com/Domenick1991/gymvisits/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type RedisCache struct {
	client      *redis.Client
	subsTTL     time.Duration
	scheduleTTL time.Duration
}

func NewRedisCache(cfg config.RedisConfig, subsTTL, scheduleTTL time.Duration) *RedisCache {
	return &RedisCache{
		client:      redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		subsTTL:     subsTTL,
		scheduleTTL: scheduleTTL,
	}
}

func (c *RedisCache) GetSubscriptions(ctx context.Context, userID uuid.UUID, branchID int64) ([]domain.Subscription, error) {
	data, err := c.client.Get(ctx, subsKey(userID, branchID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var subs []domain.Subscription
	if err := json.Unmarshal(data, &subs); err != nil {
		return nil, err
	}
	return subs, nil
}

func (c *RedisCache) SetSubscriptions(ctx context.Context, userID uuid.UUID, branchID int64, subs []domain.Subscription) error {
	payload, err := json.Marshal(subs)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, subsKey(userID, branchID), payload, c.subsTTL).Err()
}

// InvalidateSubscriptions drops the cached list after a visit debit so the
// next lookup sees the post-debit remaining count.
func (c *RedisCache) InvalidateSubscriptions(ctx context.Context, userID uuid.UUID, branchID int64) error {
	return c.client.Del(ctx, subsKey(userID, branchID)).Err()
}

func (c *RedisCache) GetSchedule(ctx context.Context, branchID int64) ([]domain.ScheduleSlot, error) {
	data, err := c.client.Get(ctx, scheduleKey(branchID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}

	var slots []domain.ScheduleSlot
	if err := json.Unmarshal(data, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

func (c *RedisCache) SetSchedule(ctx context.Context, branchID int64, slots []domain.ScheduleSlot) error {
	payload, err := json.Marshal(slots)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, scheduleKey(branchID), payload, c.scheduleTTL).Err()
}

func subsKey(userID uuid.UUID, branchID int64) string {
	return fmt.Sprintf("cache:subs:%s:branch:%d", userID, branchID)
}

func scheduleKey(branchID int64) string {
	return fmt.Sprintf("cache:schedule:%d", branchID)
}
