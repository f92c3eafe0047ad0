package infra

import (
	"github.com/go-redsync/redsync/v4"
	redsyncredis "github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

// RedSync serialises profile tree rebuilds across replicas on the shared redis instance.
func RedSync(client *redis.Client) *redsync.Redsync {
	return redsync.New(redsyncredis.NewPool(client))
}
