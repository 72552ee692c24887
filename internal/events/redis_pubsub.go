package events

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisPublisher struct {
	client  *redis.Client
	channel string
	log     *zap.Logger
}

func NewRedisPublisher(client *redis.Client, channel string, log *zap.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, channel: channel, log: log}
}

func (p *RedisPublisher) Publish(ctx context.Context, event Event) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.channel, string(data)).Err(); err != nil {
		return err
	}
	p.log.Debug("event published", zap.String("channel", p.channel), zap.String("type", event.Type))
	return nil
}
