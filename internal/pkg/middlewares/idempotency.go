package middlewares

import (
	"strings"
	"time"

	"github.com/go-redsync/redsync/v4"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/kvv-bao/profiler/internal/pkg/apierr"
	"github.com/kvv-bao/profiler/internal/util/rekuest"
)

type IdempotencyConfig struct {
	// Lifetime is how long a saved response is replayed for.
	Lifetime time.Duration

	// KeyHeader is the request header carrying the idempotency key.
	KeyHeader string

	// KeepResponseHeaders lists the response headers replayed with a saved response. All
	// headers are kept when nil.
	KeepResponseHeaders []string

	// Storage keeps the saved responses.
	Storage fiber.Storage

	RedSync *redsync.Redsync
}

type savedResponse struct {
	StatusCode int               `msgpack:"s"`
	Headers    map[string]string `msgpack:"h"`
	Body       []byte            `msgpack:"b"`
}

// Idempotency replays the saved response of a request whose idempotency key has been seen
// before. Requests sharing a key are serialised with a redsync mutex; failed requests are not
// saved.
func Idempotency(config IdempotencyConfig) fiber.Handler {
	var keep map[string]struct{}
	if config.KeepResponseHeaders != nil {
		keep = make(map[string]struct{}, len(config.KeepResponseHeaders))
		for _, h := range config.KeepResponseHeaders {
			keep[strings.ToLower(h)] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		key := c.Get(config.KeyHeader)
		if key == "" {
			return c.Next()
		}
		if err := rekuest.Validate.Var(key, "max=128,alphanum"); err != nil {
			return apierr.ErrInvalidReq.Msg("invalid idempotency key: at most %d alphanumeric characters are allowed", idempotencyKeyLengthLimit)
		}
		c.Locals(LocalsKeyIdempotencyKey, key)

		if replayed, err := replay(c, config.Storage, key); replayed {
			return err
		}

		mutex := config.RedSync.NewMutex("mutex:idempotency:"+key,
			redsync.WithExpiry(time.Minute),
			redsync.WithTries(5),
			redsync.WithRetryDelay(250*time.Millisecond),
		)
		if err := mutex.LockContext(c.UserContext()); err != nil {
			log.Warn().
				Err(err).
				Str("evt.name", "http.idempotency.lock_failed").
				Str("key", key).
				Msg("idempotency key is held by a concurrent request")
			return apierr.ErrConflict.Msg("a request with the same idempotency key is still being processed")
		}
		defer func() {
			if _, err := mutex.Unlock(); err != nil {
				log.Error().Err(err).Str("evt.name", "http.idempotency.unlock_failed").Str("key", key).Msg("failed to unlock idempotency key")
			}
		}()

		// the request holding the lock before us may have saved its response meanwhile
		if replayed, err := replay(c, config.Storage, key); replayed {
			return err
		}

		if err := c.Next(); err != nil {
			return err
		}

		b, err := msgpack.Marshal(capture(c, keep))
		if err != nil {
			return err
		}
		if err := config.Storage.Set(key, b, config.Lifetime); err != nil {
			log.Error().Err(err).Str("evt.name", "http.idempotency.save_failed").Str("key", key).Msg("failed to save idempotent response")
			return err
		}

		c.Set(HeaderIdempotency, "saved")
		return nil
	}
}

func capture(c *fiber.Ctx, keep map[string]struct{}) savedResponse {
	resp := savedResponse{
		StatusCode: c.Response().StatusCode(),
		Headers:    make(map[string]string),
		Body:       append([]byte(nil), c.Response().Body()...),
	}
	c.Response().Header.VisitAll(func(k, v []byte) {
		name := string(k)
		if keep != nil {
			if _, ok := keep[strings.ToLower(name)]; !ok {
				return
			}
		}
		resp.Headers[name] = string(v)
	})
	return resp
}

func replay(c *fiber.Ctx, storage fiber.Storage, key string) (bool, error) {
	b, err := storage.Get(key)
	if err != nil || b == nil {
		return false, nil
	}

	var resp savedResponse
	if err := msgpack.Unmarshal(b, &resp); err != nil {
		return true, err
	}

	log.Debug().Str("evt.name", "http.idempotency.hit").Str("key", key).Msg("replaying saved response")

	c.Status(resp.StatusCode)
	for k, v := range resp.Headers {
		c.Set(k, v)
	}
	c.Set(HeaderIdempotency, "hit")
	if len(resp.Body) > 0 {
		return true, c.Send(resp.Body)
	}
	return true, nil
}
