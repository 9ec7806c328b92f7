package api

import (
	"github.com/gofiber/fiber/v2"

	"git.hoarder.pics/hoarder/gateway/pkg/internal/queries"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/services"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/upstream"
)

func listTagTypes(c *fiber.Ctx) error {
	items, err := queries.AllTagTypes(c.UserContext(), upstream.Client, upstream.Cache)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"count": len(items),
		"data":  items,
	})
}

func createTagType(c *fiber.Ctx) error {
	var in services.TagTypeDeclaration
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	item, err := services.CreateTagType(c.UserContext(), upstream.Client, upstream.Cache, in)
	if err != nil {
		return err
	}

	return c.JSON(item)
}

func updateTagType(c *fiber.Ctx) error {
	var in services.TagTypeDeclaration
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	item, err := services.UpdateTagType(c.UserContext(), upstream.Client, upstream.Cache, c.Params("typeId"), in)
	if err != nil {
		return err
	}

	return c.JSON(item)
}

func deleteTagType(c *fiber.Ctx) error {
	deleted, err := services.DeleteTagType(c.UserContext(), upstream.Client, upstream.Cache, c.Params("typeId"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"deleted": deleted})
}
