package api

import (
	"github.com/gofiber/fiber/v2"

	"git.hoarder.pics/hoarder/gateway/pkg/internal/queries"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/services"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/upstream"
)

func listExternalServices(c *fiber.Ctx) error {
	items, err := queries.AllExternalServices(c.UserContext(), upstream.Client, upstream.Cache)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"count": len(items),
		"data":  items,
	})
}

func createExternalService(c *fiber.Ctx) error {
	var in services.ExternalServiceDeclaration
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	item, err := services.CreateExternalService(c.UserContext(), upstream.Client, upstream.Cache, in)
	if err != nil {
		return err
	}

	return c.JSON(item)
}

func updateExternalService(c *fiber.Ctx) error {
	var in services.ExternalServiceDeclaration
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	item, err := services.UpdateExternalService(c.UserContext(), upstream.Client, upstream.Cache, c.Params("serviceId"), in)
	if err != nil {
		return err
	}

	return c.JSON(item)
}

func deleteExternalService(c *fiber.Ctx) error {
	deleted, err := services.DeleteExternalService(c.UserContext(), upstream.Client, upstream.Cache, c.Params("serviceId"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"deleted": deleted})
}

func createSource(c *fiber.Ctx) error {
	var in services.SourceDeclaration
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	item, err := services.CreateSource(c.UserContext(), upstream.Client, upstream.Cache, in)
	if err != nil {
		return err
	}

	return c.JSON(item)
}

func getSource(c *fiber.Ctx) error {
	item, err := queries.SourceByID(c.UserContext(), upstream.Client, upstream.Cache, c.Params("sourceId"))
	if err != nil {
		return err
	}

	return c.JSON(item)
}
