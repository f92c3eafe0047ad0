package fiberstore

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Redis implements fiber.Storage with one Redis key per entry, so every entry expires on its
// own.
type Redis struct {
	client *redis.Client
	prefix string
}

var _ fiber.Storage = (*Redis)(nil)

func NewRedis(client *redis.Client, prefix string) *Redis {
	return &Redis{
		client: client,
		prefix: prefix,
	}
}

func (r *Redis) key(k string) string {
	return r.prefix + ":" + k
}

// Get returns nil without an error for a missing key.
func (r *Redis) Get(key string) ([]byte, error) {
	b, err := r.client.Get(context.Background(), r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return b, err
}

func (r *Redis) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	return r.client.Set(context.Background(), r.key(key), val, exp).Err()
}

func (r *Redis) Delete(key string) error {
	return r.client.Del(context.Background(), r.key(key)).Err()
}

// Reset removes every entry under the prefix.
func (r *Redis) Reset() error {
	ctx := context.Background()
	iter := r.client.Scan(ctx, 0, r.prefix+":*", 100).Iterator()
	for iter.Next(ctx) {
		if err := r.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close is a no-op: the client is owned by the fx lifecycle.
func (r *Redis) Close() error {
	return nil
}
