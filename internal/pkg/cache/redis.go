package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tkaraca/registra/internal/app/models"
	"github.com/tkaraca/registra/internal/config"
	"github.com/tkaraca/registra/internal/pkg/logger"
)

// TreeCache caches built prerequisite trees in Redis. The edge table changes
// rarely (administrative action) while trees are read per advisory request,
// so entries live under a short TTL and are dropped eagerly when an edge of
// the cached course changes.
//
// A nil client disables caching; all methods degrade to no-ops.
type TreeCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewTreeCache connects to Redis if an address is configured. A missing
// address or a failed ping leaves caching disabled rather than failing
// startup.
func NewTreeCache(cfg *config.Config) *TreeCache {
	if cfg.Redis.Addr == "" {
		logger.Info().Msg("Redis address not configured, prerequisite tree caching disabled")
		return &TreeCache{}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("Redis unreachable, prerequisite tree caching disabled")
		return &TreeCache{}
	}

	ttl, err := time.ParseDuration(cfg.Redis.TreeTTL)
	if err != nil {
		ttl = 10 * time.Minute
	}

	logger.Info().Str("addr", cfg.Redis.Addr).Dur("ttl", ttl).Msg("Prerequisite tree caching enabled")
	return &TreeCache{client: client, ttl: ttl}
}

// Enabled reports whether a Redis client is connected
func (c *TreeCache) Enabled() bool {
	return c != nil && c.client != nil
}

func treeKey(courseID int64) string {
	return fmt.Sprintf("prereq:tree:%d", courseID)
}

// GetTree returns the cached tree for a course, if present
func (c *TreeCache) GetTree(ctx context.Context, courseID int64) (*models.PrerequisiteTree, bool) {
	if !c.Enabled() {
		return nil, false
	}

	payload, err := c.client.Get(ctx, treeKey(courseID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn().Err(err).Int64("courseId", courseID).Msg("Failed to read cached prerequisite tree")
		}
		return nil, false
	}

	var tree models.PrerequisiteTree
	if err := json.Unmarshal(payload, &tree); err != nil {
		logger.Warn().Err(err).Int64("courseId", courseID).Msg("Discarding malformed cached prerequisite tree")
		c.client.Del(ctx, treeKey(courseID))
		return nil, false
	}

	return &tree, true
}

// SetTree stores a built tree under the configured TTL
func (c *TreeCache) SetTree(ctx context.Context, courseID int64, tree *models.PrerequisiteTree) {
	if !c.Enabled() {
		return
	}

	payload, err := json.Marshal(tree)
	if err != nil {
		logger.Warn().Err(err).Int64("courseId", courseID).Msg("Failed to encode prerequisite tree for caching")
		return
	}

	if err := c.client.Set(ctx, treeKey(courseID), payload, c.ttl).Err(); err != nil {
		logger.Warn().Err(err).Int64("courseId", courseID).Msg("Failed to cache prerequisite tree")
	}
}

// InvalidateTree drops the cached tree of a course after an edge mutation.
// Trees of courses that reach this one transitively age out via the TTL.
func (c *TreeCache) InvalidateTree(ctx context.Context, courseID int64) {
	if !c.Enabled() {
		return
	}

	if err := c.client.Del(ctx, treeKey(courseID)).Err(); err != nil {
		logger.Warn().Err(err).Int64("courseId", courseID).Msg("Failed to invalidate cached prerequisite tree")
	}
}

// Close releases the Redis connection
func (c *TreeCache) Close() {
	if c.Enabled() {
		_ = c.client.Close()
	}
}
