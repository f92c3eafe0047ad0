package service

import (
	"context"

	"github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"
)

var (
	ErrDatabaseNotReachable = errors.New("database not reachable")
	ErrRedisNotReachable    = errors.New("redis not reachable")
	ErrNATSNotReachable     = errors.New("nats not reachable")
	ErrNoTreePublished      = errors.New("no profile tree published")
)

type Health struct {
	DB          *bun.DB
	Redis       *redis.Client
	NATS        *nats.Conn
	ProfileTree *ProfileTree
}

func NewHealth(db *bun.DB, redisClient *redis.Client, natsConn *nats.Conn, profileTree *ProfileTree) *Health {
	return &Health{
		DB:          db,
		Redis:       redisClient,
		NATS:        natsConn,
		ProfileTree: profileTree,
	}
}

func (s *Health) Ping(ctx context.Context) error {
	if err := s.DB.PingContext(ctx); err != nil {
		return errors.Wrap(ErrDatabaseNotReachable, err.Error())
	}

	if err := s.Redis.Ping(ctx).Err(); err != nil {
		return errors.Wrap(ErrRedisNotReachable, err.Error())
	}

	// nats does automatic ping for 20 seconds interval (configurated at infra/nats.go)
	status := s.NATS.Status()
	if status != nats.CONNECTED && status != nats.DRAINING_PUBS && status != nats.DRAINING_SUBS {
		return errors.Wrap(ErrNATSNotReachable, status.String())
	}

	return nil
}

// Ready reports whether the service can answer match requests.
func (s *Health) Ready(ctx context.Context) error {
	if err := s.Ping(ctx); err != nil {
		return err
	}
	if s.ProfileTree.Current() == nil {
		return ErrNoTreePublished
	}
	return nil
}
