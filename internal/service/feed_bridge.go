package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"gov-token-booking/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// feedChannel is the Redis pub/sub channel carrying token change events
// between instances.
const feedChannel = "livefeed:tokens"

// feedEnvelope wraps a token change with the publishing instance id so a
// node can skip its own messages (it already applied them locally).
type feedEnvelope struct {
	Origin string       `json:"origin"`
	Token  entity.Token `json:"token"`
}

// FeedBridge fans token changes out across instances through Redis pub/sub,
// so every node's LiveFeed sees bookings and status changes made anywhere.
type FeedBridge struct {
	redisClient *redis.Client
	feed        *LiveFeed
	log         *logrus.Logger
	instanceID  string

	stopChan chan struct{}
	wg       sync.WaitGroup
	stopped  atomic.Bool
}

func NewFeedBridge(redisClient *redis.Client, feed *LiveFeed, log *logrus.Logger) *FeedBridge {
	return &FeedBridge{
		redisClient: redisClient,
		feed:        feed,
		log:         log,
		instanceID:  uuid.New().String(),
		stopChan:    make(chan struct{}),
	}
}

// Start begins consuming remote token events. Call Stop during shutdown.
func (b *FeedBridge) Start(ctx context.Context) {
	b.wg.Add(1)
	go b.consumeLoop(ctx)
}

// Publish broadcasts a local token change to the other instances.
func (b *FeedBridge) Publish(ctx context.Context, token *entity.Token) error {
	env := feedEnvelope{Origin: b.instanceID, Token: *token}
	payload, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("marshal feed envelope: %w", err)
	}
	if err := b.redisClient.Publish(ctx, feedChannel, payload).Err(); err != nil {
		return fmt.Errorf("publish feed event: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the consumer. Safe to call multiple times.
func (b *FeedBridge) Stop() {
	if b.stopped.CompareAndSwap(false, true) {
		close(b.stopChan)
		b.wg.Wait()
		b.log.Info("FeedBridge stopped")
	}
}

func (b *FeedBridge) consumeLoop(ctx context.Context) {
	defer b.wg.Done()

	pubsub := b.redisClient.Subscribe(ctx, feedChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-b.stopChan:
			return
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var env feedEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				b.log.Warnf("Failed to decode feed event: %+v", err)
				continue
			}
			if env.Origin == b.instanceID {
				continue
			}
			b.feed.Publish(&env.Token)
		}
	}
}
