// Package notifications publishes community lifecycle events over Redis pub/sub.
package notifications

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// BroadcastChannel carries every community lifecycle event.
const BroadcastChannel = "communities:events"

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishBroadcast sends an event payload to every subscriber of the events channel.
func (n *Notifier) PublishBroadcast(ctx context.Context, payload string) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, BroadcastChannel, payload).Err()
}

// PublishCommunity sends an event payload to the channel of a single community.
func (n *Notifier) PublishCommunity(ctx context.Context, communityID uint, payload string) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, CommunityChannel(communityID), payload).Err()
}

// CommunityChannel derives the Redis channel name for a community.
func CommunityChannel(communityID uint) string {
	return "communities:community:" + strconv.FormatUint(uint64(communityID), 10)
}
