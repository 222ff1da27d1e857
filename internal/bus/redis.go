// Copyright 2026 Rasul Khiriev
// SPDX-License-Identifier: Apache-2.0

package bus

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MKhiriev/go-vault-trust/internal/config"
	"github.com/MKhiriev/go-vault-trust/internal/logger"
)

// redisBus is the redis-backed [RevocationBus]. Redis pub/sub is fire and
// forget, which matches the at-most-once contract exactly: nothing is
// persisted and offline subscribers miss events.
type redisBus struct {
	client *redis.Client
	logger *logger.Logger
}

func NewRedisBus(ctx context.Context, cfg config.Redis, log *logger.Logger) (RevocationBus, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		log.Err(err).Str("func", "NewRedisBus").Msg("invalid redis url")
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		log.Err(err).Str("func", "NewRedisBus").Msg("error connecting redis (ping)")
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	log.Info().Str("func", "NewRedisBus").Msg("connected to redis successfully")

	return &redisBus{
		client: client,
		logger: log,
	}, nil
}

func (b *redisBus) PublishRevoked(ctx context.Context, event Event) error {
	log := logger.FromContext(ctx)

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal revocation event: %w", err)
	}

	if err := b.client.Publish(ctx, channelFor(event.GrantID), payload).Err(); err != nil {
		log.Err(err).Str("func", "*redisBus.PublishRevoked").Str("grant_id", event.GrantID).Msg("failed to publish revocation")
		return fmt.Errorf("failed to publish revocation: %w", err)
	}

	return nil
}

func (b *redisBus) SubscribeRevoked(ctx context.Context, grantID string) (<-chan Event, func(), error) {
	sub := b.client.Subscribe(ctx, channelFor(grantID))

	// force the subscription to be established before returning, so an
	// event published right after SubscribeRevoked is not lost
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	events := make(chan Event, 1)
	go func() {
		defer close(events)
		for msg := range sub.Channel() {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Err(err).Str("func", "*redisBus.SubscribeRevoked").Str("grant_id", grantID).Msg("malformed revocation payload")
				continue
			}
			select {
			case events <- event:
			default:
				// slow subscriber: drop, the grant status in storage
				// stays authoritative
			}
		}
	}()

	stop := func() { _ = sub.Close() }
	return events, stop, nil
}

func (b *redisBus) Close() error {
	return b.client.Close()
}
