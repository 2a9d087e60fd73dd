package actuator

import (
	"context"
	"encoding/json"
	"fmt"

	backend "github.com/redis/go-redis/v9"

	"github.com/gwillem/hanoiarm/pkg/choreo"
)

// Channel names the arm and hand drivers subscribe to.
const (
	TargetChannel = "moveto"
	HandChannel   = "handDriver"
)

// Redis publishes commands as JSON messages over Redis pub/sub.
type Redis struct {
	client        *backend.Client
	targetChannel string
	handChannel   string
}

// RedisOption configures a Redis publisher.
type RedisOption func(*Redis)

// WithChannels overrides the channel names.
func WithChannels(target, hand string) RedisOption {
	return func(r *Redis) {
		r.targetChannel = target
		r.handChannel = hand
	}
}

// NewRedis creates a publisher and checks the connection.
func NewRedis(ctx context.Context, client *backend.Client, opts ...RedisOption) (*Redis, error) {
	r := &Redis{
		client:        client,
		targetChannel: TargetChannel,
		handChannel:   HandChannel,
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: ping redis: %v", choreo.ErrChannelUnavailable, err)
	}
	return r, nil
}

// PublishTarget implements choreo.Publisher.
func (r *Redis) PublishTarget(ctx context.Context, t choreo.Target) error {
	return r.publish(ctx, r.targetChannel, t)
}

// PublishHand implements choreo.Publisher.
func (r *Redis) PublishHand(ctx context.Context, h choreo.HandPos) error {
	return r.publish(ctx, r.handChannel, h)
}

func (r *Redis) publish(ctx context.Context, channel string, msg any) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode %s message: %w", channel, err)
	}
	if err := r.client.Publish(ctx, channel, data).Err(); err != nil {
		return fmt.Errorf("%w: publish %s: %v", choreo.ErrChannelUnavailable, channel, err)
	}
	return nil
}
