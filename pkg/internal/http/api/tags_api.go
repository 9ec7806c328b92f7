package api

import (
	"errors"
	"iter"

	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"git.hoarder.pics/hoarder/gateway/pkg/internal/models"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/queries"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/services"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/upstream"
)

func listTags(c *fiber.Ctx) error {
	var items []models.Tag
	var err error

	if c.QueryBool("flat", false) {
		items, err = queries.FlatTags(c.UserContext(), upstream.Client, upstream.Cache)
	} else {
		items, err = queries.AllTags(c.UserContext(), upstream.Client, upstream.Cache)
	}
	if err != nil {
		return err
	}

	count := len(items)
	if take := c.QueryInt("take", 0); take > 0 || c.QueryInt("offset", 0) > 0 {
		offset := c.QueryInt("offset", 0)
		if take <= 0 {
			take = count
		}
		items = lo.Slice(items, offset, offset+take)
	}

	return c.JSON(fiber.Map{
		"count": count,
		"data":  items,
	})
}

func getTag(c *fiber.Ctx) error {
	item, err := queries.TagByID(c.UserContext(), upstream.Client, upstream.Cache, c.Params("tagId"))
	if err != nil {
		return err
	}

	return c.JSON(item)
}

func getTagBreadcrumb(c *fiber.Ctx) error {
	item, err := queries.TagWithAncestry(c.UserContext(), upstream.Client, upstream.Cache, c.Params("tagId"))
	if errors.Is(err, models.ErrAncestryCycle) {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	if err != nil {
		return err
	}

	var trail iter.Seq[*models.Tag]
	if c.Query("mode") == "parent" {
		trail, err = models.TagParentPath(&item)
	} else {
		trail, err = models.TagAncestors(&item)
	}
	if err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}

	crumbs := make([]models.Tag, 0)
	for cursor := range trail {
		crumb := *cursor
		crumb.Parent = nil
		crumb.Children = nil
		crumbs = append(crumbs, crumb)
	}

	return c.JSON(crumbs)
}

func createTag(c *fiber.Ctx) error {
	var in services.TagDeclaration
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	item, err := services.CreateTag(c.UserContext(), upstream.Client, upstream.Cache, in)
	if err != nil {
		return err
	}

	return c.JSON(item)
}

func updateTag(c *fiber.Ctx) error {
	var in services.TagDeclaration
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	item, err := services.UpdateTag(c.UserContext(), upstream.Client, upstream.Cache, c.Params("tagId"), in)
	if err != nil {
		return err
	}

	return c.JSON(item)
}

func deleteTag(c *fiber.Ctx) error {
	deleted, err := services.DeleteTag(c.UserContext(), upstream.Client, upstream.Cache, c.Params("tagId"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"deleted": deleted})
}

func attachTag(c *fiber.Ctx) error {
	var in services.TaggingInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	item, err := services.AttachTagToMedium(c.UserContext(), upstream.Client, upstream.Cache, c.Params("mediumId"), in)
	if err != nil {
		return err
	}

	return c.JSON(item)
}

func detachTag(c *fiber.Ctx) error {
	var in services.TaggingInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	item, err := services.DetachTagFromMedium(c.UserContext(), upstream.Client, upstream.Cache, c.Params("mediumId"), in)
	if err != nil {
		return err
	}

	return c.JSON(item)
}
