package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/shrimpsizemoose/appello/internal/models"
	"github.com/shrimpsizemoose/appello/internal/store"
)

// ReportCache keeps assembled report snapshots in redis as JSON.
type ReportCache struct {
	redis  *redis.Client
	prefix string
	ttl    time.Duration
}

func NewReportCache(client *redis.Client, prefix string, ttl time.Duration) *ReportCache {
	return &ReportCache{redis: client, prefix: prefix, ttl: ttl}
}

func NewReportCacheFromConfig(config *Config) (*ReportCache, error) {
	client, err := connectRedis(config.Cache.RedisURL)
	if err != nil {
		return nil, err
	}
	ttl := time.Duration(config.Cache.TTLSeconds) * time.Second
	return NewReportCache(client, config.Cache.KeyPrefix, ttl), nil
}

func (c *ReportCache) key(reportID int64, order store.Sort) string {
	return fmt.Sprintf("%s:%d:%s", c.prefix, reportID, order)
}

func (c *ReportCache) Get(ctx context.Context, reportID int64, order store.Sort) (*models.ReportSnapshot, error) {
	data, err := c.redis.Get(ctx, c.key(reportID, order)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cached report: %w", err)
	}

	var snapshot models.ReportSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode cached report: %w", err)
	}
	return &snapshot, nil
}

// Set stores the snapshot. A zero ttl keeps it until evicted.
func (c *ReportCache) Set(ctx context.Context, reportID int64, order store.Sort, snapshot *models.ReportSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := c.redis.Set(ctx, c.key(reportID, order), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache report: %w", err)
	}
	return nil
}

func (c *ReportCache) Close() error {
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}
