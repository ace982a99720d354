// Package notify delivers playback events to per-user room channels over
// Redis pub/sub.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/duythanhle/live-beats/core/playback"
	"github.com/duythanhle/live-beats/logger"
)

// nowPlayingTTL bounds how long a cached event outlives its publish; a
// listener joining later than this sees no stale state.
const nowPlayingTTL = 24 * time.Hour

// RedisNotifier implements playback.Notifier. Every publish also refreshes a
// per-user now-playing key so listeners that subscribe after the event can
// catch up on the current state.
type RedisNotifier struct {
	client *redis.Client
}

// NewRedisNotifier creates a notifier on the given Redis client.
func NewRedisNotifier(client *redis.Client) *RedisNotifier {
	return &RedisNotifier{client: client}
}

func nowPlayingKey(userID int64) string {
	return fmt.Sprintf("nowplaying:%d", userID)
}

// Publish sends the event to the topic channel. The now-playing cache write
// is best-effort; a failure there is logged and the publish still counts as
// delivered.
func (n *RedisNotifier) Publish(ctx context.Context, topic string, event playback.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal playback event: %w", err)
	}

	if err := n.client.Publish(ctx, topic, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}

	if event.Track != nil {
		key := nowPlayingKey(event.Track.UserID)
		if err := n.client.Set(ctx, key, payload, nowPlayingTTL).Err(); err != nil {
			logger.Warn("failed to cache now-playing event",
				logger.String("key", key),
				logger.ErrorField(err))
		}
	}

	return nil
}

// LastEvent returns the most recently published event for a user, or nil if
// none is cached.
func (n *RedisNotifier) LastEvent(ctx context.Context, userID int64) (*playback.Event, error) {
	payload, err := n.client.Get(ctx, nowPlayingKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read now-playing event for user %d: %w", userID, err)
	}

	var event playback.Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached event for user %d: %w", userID, err)
	}
	return &event, nil
}

// Subscribe opens a pub/sub subscription on the user's room channel. The
// caller owns the returned PubSub and must Close it.
func (n *RedisNotifier) Subscribe(ctx context.Context, userID int64) *redis.PubSub {
	return n.client.Subscribe(ctx, playback.Topic(userID))
}
