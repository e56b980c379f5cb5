package cache

import (
	"context"
	"fmt"
)

// CommunityKeyPrefix formats the cache key of a single community.
const CommunityKeyPrefix = "community:%d"

func CommunityKey(id uint) string {
	return fmt.Sprintf(CommunityKeyPrefix, id)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateCommunity(ctx context.Context, id uint) {
	Invalidate(ctx, CommunityKey(id))
}
