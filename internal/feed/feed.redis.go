// FilePath: internal/feed/feed.redis.go
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/agrisense/farmhub/internal/config"
	"github.com/agrisense/farmhub/internal/models"
	"github.com/redis/go-redis/v9"
	nuts "github.com/vaudience/go-nuts"
)

const publishTimeout = 5 * time.Second

// envelope is the wire format on the Redis channel. The origin id lets
// an instance skip its own messages, otherwise a reading it published
// would be delivered twice locally.
type envelope struct {
	Origin  string         `json:"origin"`
	Reading models.Reading `json:"reading"`
}

// Bridge connects the local feed to a Redis pub/sub channel so sibling
// hub instances deliver each other's readings to their own dashboard
// subscribers.
type Bridge struct {
	feed       *Feed
	client     *redis.Client
	channel    string
	instanceID string
}

// NewBridge creates a bridge over the configured Redis channel
func NewBridge(f *Feed, cfg config.RedisConfig) *Bridge {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	return &Bridge{
		feed:       f,
		client:     client,
		channel:    cfg.Channel,
		instanceID: nuts.NID("hub", 8),
	}
}

// Publish fans out locally and forwards the reading to the Redis
// channel. A Redis failure is logged and never surfaces to the
// ingestion caller.
func (b *Bridge) Publish(reading models.Reading) {
	b.feed.Publish(reading)

	payload, err := json.Marshal(envelope{Origin: b.instanceID, Reading: reading})
	if err != nil {
		nuts.L.Errorf("[FeedBridge] Failed to marshal reading %s: %v", reading.ID, err)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := b.client.Publish(ctx, b.channel, payload).Err(); err != nil {
			nuts.L.Errorf("[FeedBridge] Failed to publish reading %s to redis: %v", reading.ID, err)
		}
	}()
}

// Run consumes the Redis channel and republishes remote readings to
// the local feed. Blocks until the context is cancelled.
func (b *Bridge) Run(ctx context.Context) {
	pubsub := b.client.Subscribe(ctx, b.channel)
	defer pubsub.Close()

	nuts.L.Infof("[FeedBridge] Listening on channel %s as %s", b.channel, b.instanceID)

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env envelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				nuts.L.Warnf("[FeedBridge] Dropping malformed message: %v", err)
				continue
			}
			if env.Origin == b.instanceID {
				continue
			}
			b.feed.Publish(env.Reading)
		}
	}
}

// Close releases the Redis connection
func (b *Bridge) Close() error {
	return b.client.Close()
}
