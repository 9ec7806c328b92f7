package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/samber/lo"

	"git.hoarder.pics/hoarder/gateway/pkg/internal/models"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/queries"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/services"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/upstream"
)

func listMedia(c *fiber.Ctx) error {
	take := c.QueryInt("take", 50)
	offset := c.QueryInt("offset", 0)

	var page models.MediumConnection
	var err error

	tagID, typeID, sourceID := c.Query("tag"), c.Query("type"), c.Query("source")
	if len(tagID) > 0 || len(typeID) > 0 || len(sourceID) > 0 {
		page, err = queries.MediaSearch(c.UserContext(), upstream.Client, take+offset, tagID, typeID, sourceID)
	} else {
		page, err = queries.MediaList(c.UserContext(), upstream.Client, upstream.Cache, take+offset)
	}
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"count": page.TotalCount,
		"data":  lo.Slice(page.Edges, offset, offset+take),
	})
}

func getMedium(c *fiber.Ctx) error {
	item, err := queries.MediumByID(c.UserContext(), upstream.Client, upstream.Cache, c.Params("mediumId"))
	if err != nil {
		return err
	}

	return c.JSON(item)
}

func createMedium(c *fiber.Ctx) error {
	var in services.MediumDeclaration
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	item, err := services.CreateMedium(c.UserContext(), upstream.Client, upstream.Cache, in)
	if err != nil {
		return err
	}

	return c.JSON(item)
}

func updateMedium(c *fiber.Ctx) error {
	var in services.MediumRevision
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	item, err := services.UpdateMedium(c.UserContext(), upstream.Client, upstream.Cache, c.Params("mediumId"), in)
	if err != nil {
		return err
	}

	return c.JSON(item)
}

func deleteMedium(c *fiber.Ctx) error {
	deleted, err := services.DeleteMedium(c.UserContext(), upstream.Client, upstream.Cache, c.Params("mediumId"))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"deleted": deleted})
}

// createReplica accepts either a multipart file upload or a JSON body
// naming an originalUrl for the backend to pull. Either way the
// containing medium is refreshed explicitly afterwards; replica
// mutations themselves patch nothing.
func createReplica(c *fiber.Ctx) error {
	mediumID := c.Params("mediumId")

	var replica models.Replica
	if file, err := c.FormFile("file"); err == nil {
		reader, err := file.Open()
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		defer reader.Close()

		replica, err = services.CreateReplica(c.UserContext(), upstream.Client, mediumID, file.Filename, reader)
		if err != nil {
			return err
		}
	} else {
		var in struct {
			OriginalURL string `json:"originalUrl"`
		}
		if err := c.BodyParser(&in); err != nil || len(in.OriginalURL) == 0 {
			return fiber.NewError(fiber.StatusBadRequest, "either a file or an originalUrl is required")
		}

		replica, err = services.CreateReplicaFromURL(c.UserContext(), upstream.Client, mediumID, in.OriginalURL)
		if err != nil {
			return err
		}
	}

	err := queries.Refetch(c.UserContext(), upstream.Client, upstream.Cache, queries.RefetchMediumByID(mediumID))
	if err != nil {
		return err
	}

	return c.JSON(replica)
}

func deleteReplica(c *fiber.Ctx) error {
	mediumID := c.Query("medium")
	if len(mediumID) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "medium is required to refresh the containing medium")
	}

	deleted, err := services.DeleteReplica(c.UserContext(), upstream.Client, c.Params("replicaId"))
	if err != nil {
		return err
	}

	err = queries.Refetch(c.UserContext(), upstream.Client, upstream.Cache, queries.RefetchMediumByID(mediumID))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"deleted": deleted})
}
