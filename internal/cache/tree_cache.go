package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"chatlog/internal/model"
)

// TreeCache keeps the sorted user→sessions→chats tree in Redis. A short-TTL
// dirty marker suppresses reads and writes right after a mutation so a slow
// reader cannot re-populate the cache with stale rows.
type TreeCache struct {
	client         *redisv9.Client
	treeTTL        time.Duration
	dirtyMarkerTTL time.Duration
}

func NewTreeCache(client *redisv9.Client, treeTTL, dirtyMarkerTTL time.Duration) *TreeCache {
	if treeTTL <= 0 {
		treeTTL = 60 * time.Second
	}
	if dirtyMarkerTTL <= 0 {
		dirtyMarkerTTL = 5 * time.Second
	}
	return &TreeCache{
		client:         client,
		treeTTL:        treeTTL,
		dirtyMarkerTTL: dirtyMarkerTTL,
	}
}

func (c *TreeCache) GetTree(ctx context.Context, userID uint) (*model.User, bool, error) {
	raw, err := c.client.Get(ctx, c.treeKey(userID)).Result()
	if err == redisv9.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get tree failed: %w", err)
	}

	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, false, fmt.Errorf("unmarshal cached tree failed: %w", err)
	}
	return &user, true, nil
}

func (c *TreeCache) SetTree(ctx context.Context, userID uint, user *model.User) error {
	payload, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal tree cache failed: %w", err)
	}
	if err := c.client.Set(ctx, c.treeKey(userID), payload, c.treeTTL).Err(); err != nil {
		return fmt.Errorf("redis set tree failed: %w", err)
	}
	return nil
}

func (c *TreeCache) Invalidate(ctx context.Context, userID uint) error {
	if err := c.client.Del(ctx, c.treeKey(userID)).Err(); err != nil {
		return fmt.Errorf("redis delete tree failed: %w", err)
	}
	return nil
}

func (c *TreeCache) MarkDirty(ctx context.Context, userID uint) error {
	if err := c.client.Set(ctx, c.dirtyKey(userID), "1", c.dirtyMarkerTTL).Err(); err != nil {
		return fmt.Errorf("redis set dirty marker failed: %w", err)
	}
	return nil
}

func (c *TreeCache) IsDirty(ctx context.Context, userID uint) (bool, error) {
	exists, err := c.client.Exists(ctx, c.dirtyKey(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("redis check dirty marker failed: %w", err)
	}
	return exists > 0, nil
}

func (c *TreeCache) treeKey(userID uint) string {
	return fmt.Sprintf("chatlog:tree:%d", userID)
}

func (c *TreeCache) dirtyKey(userID uint) string {
	return fmt.Sprintf("chatlog:tree:dirty:%d", userID)
}
