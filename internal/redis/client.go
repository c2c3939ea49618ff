package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

type Client struct {
	*redis.Client
}

func NewClient(redisURL string) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &Client{client}, nil
}

func (c *Client) Close() error {
	return c.Client.Close()
}

// SessionKey is the fixed key the single live session lives under.
func SessionKey() string {
	return "firecard:session"
}

// AuthStateKey holds a pending authorization-code flow, keyed by its state
// parameter.
func AuthStateKey(state string) string {
	return fmt.Sprintf("firecard:authstate:%s", state)
}
