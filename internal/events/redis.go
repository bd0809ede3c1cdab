// Package events spreads stock change messages across server instances
// through a Redis pub/sub channel.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/vikasavnish/mandacarubroker/internal/models"
)

const publishTimeout = 2 * time.Second

// Broadcaster is anything that can fan a message out to local clients
type Broadcaster interface {
	Broadcast(msg models.Message)
}

// RedisPublisher publishes messages to a Redis channel instead of a local hub
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

func NewRedisPublisher(client *redis.Client, channel string) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel}
}

// Broadcast publishes msg. Failures are logged, not returned.
func (p *RedisPublisher) Broadcast(msg models.Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("type", msg.Type).Msg("Failed to encode stock event")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		log.Error().Err(err).Str("channel", p.channel).Str("type", msg.Type).Msg("Failed to publish stock event")
	}
}

// Subscription is a live subscription to a stock events channel
type Subscription struct {
	sub     *redis.PubSub
	channel string
}

// Subscribe subscribes to channel and waits for Redis to confirm it, so a
// returned Subscription is known to be receiving.
func Subscribe(ctx context.Context, client *redis.Client, channel string) (*Subscription, error) {
	sub := client.Subscribe(ctx, channel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return nil, err
	}
	return &Subscription{sub: sub, channel: channel}, nil
}

// Relay hands every message to local until ctx is cancelled. It returns an
// error when the subscription ends for any other reason.
func (s *Subscription) Relay(ctx context.Context, local Broadcaster) error {
	defer s.sub.Close()
	log.Info().Str("channel", s.channel).Msg("Relaying stock events from Redis")

	messages := s.sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return errors.New("redis subscription closed")
			}
			msg, err := Decode(m.Payload)
			if err != nil {
				log.Warn().Err(err).Str("channel", s.channel).Msg("Dropping malformed stock event")
				continue
			}
			local.Broadcast(msg)
		}
	}
}

// Relay subscribes to channel and hands every message to local until ctx is
// cancelled.
func Relay(ctx context.Context, client *redis.Client, channel string, local Broadcaster) error {
	sub, err := Subscribe(ctx, client, channel)
	if err != nil {
		return err
	}
	return sub.Relay(ctx, local)
}

// Fallback sends messages to remote until Degrade is called, and to local
// from then on.
type Fallback struct {
	remote   Broadcaster
	local    Broadcaster
	degraded atomic.Bool
}

func NewFallback(remote, local Broadcaster) *Fallback {
	return &Fallback{remote: remote, local: local}
}

func (f *Fallback) Broadcast(msg models.Message) {
	if f.degraded.Load() {
		f.local.Broadcast(msg)
		return
	}
	f.remote.Broadcast(msg)
}

// Degrade switches delivery to the local broadcaster for good
func (f *Fallback) Degrade() {
	f.degraded.Store(true)
}

// Decode parses a published payload back into a message. Content stays as
// raw JSON so it is forwarded to websocket clients unchanged.
func Decode(payload string) (models.Message, error) {
	var wire struct {
		Type    string          `json:"type"`
		Content json.RawMessage `json:"content"`
	}
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		return models.Message{}, err
	}
	return models.Message{Type: wire.Type, Content: wire.Content}, nil
}
