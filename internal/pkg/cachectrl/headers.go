package cachectrl

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
)

// OptIn marks a response derived from an immutable snapshot as cacheable for maxAge. It
// reports whether the client already holds this version, in which case the caller should
// answer 304 Not Modified.
func OptIn(ctx *fiber.Ctx, etag string, lastModified time.Time, maxAge time.Duration) (fresh bool) {
	quoted := strconv.Quote(etag)

	ctx.Set(fiber.HeaderCacheControl, "public, max-age="+strconv.Itoa(int(maxAge.Seconds())))
	ctx.Set(fiber.HeaderETag, quoted)
	ctx.Response().Header.SetLastModified(lastModified)

	return ctx.Get(fiber.HeaderIfNoneMatch) == quoted
}

// OptOut prevents any cache from storing the response.
func OptOut(ctx *fiber.Ctx) {
	ctx.Set(fiber.HeaderCacheControl, "no-cache, no-store, must-revalidate")
	ctx.Set(fiber.HeaderPragma, "no-cache")
	ctx.Set(fiber.HeaderExpires, "0")
}
