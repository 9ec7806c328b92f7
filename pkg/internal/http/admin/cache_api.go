package admin

import (
	"github.com/gofiber/fiber/v2"

	"git.hoarder.pics/hoarder/gateway/pkg/internal/cache"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/upstream"
)

// adminFlushCache evicts cached snapshots by tag, or everything the
// gateway knows about when no tags are given. The next reads fall
// through to the backend.
func adminFlushCache(c *fiber.Ctx) error {
	var in struct {
		Tags []string `json:"tags"`
	}
	if err := c.BodyParser(&in); err != nil && len(c.Body()) > 0 {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if len(in.Tags) == 0 {
		in.Tags = []string{
			cache.KindMedium, cache.KindTag, cache.KindTagType,
			cache.KindExternalService, cache.KindSource,
			cache.ListMedia, cache.ListAllTags, cache.ListFlatTags,
			cache.ListTagTypes, cache.ListExternalServices,
		}
	}

	if err := upstream.Cache.Invalidate(c.UserContext(), in.Tags...); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}

	return c.JSON(fiber.Map{"flushed": in.Tags})
}
