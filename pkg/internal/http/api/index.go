package api

import (
	"github.com/gofiber/fiber/v2"

	"git.hoarder.pics/hoarder/gateway/pkg/internal/search"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/upstream"
)

var composers *composerRegistry

func MapAPIs(app *fiber.App, baseURL string) {
	directory := &search.BackendDirectory{
		Gx:    upstream.Client,
		Store: upstream.Cache,
	}
	composers = newComposerRegistry(func() *search.Composer {
		return search.NewComposer(directory)
	})

	api := app.Group(baseURL)
	{
		media := api.Group("/media")
		{
			media.Get("/", listMedia)
			media.Post("/", createMedium)
			media.Get("/:mediumId", getMedium)
			media.Put("/:mediumId", updateMedium)
			media.Delete("/:mediumId", deleteMedium)
			media.Post("/:mediumId/tags", attachTag)
			media.Delete("/:mediumId/tags", detachTag)
			media.Post("/:mediumId/replicas", createReplica)
		}
		api.Delete("/replicas/:replicaId", deleteReplica)

		tags := api.Group("/tags")
		{
			tags.Get("/", listTags)
			tags.Post("/", createTag)
			tags.Get("/:tagId", getTag)
			tags.Get("/:tagId/breadcrumb", getTagBreadcrumb)
			tags.Put("/:tagId", updateTag)
			tags.Delete("/:tagId", deleteTag)
		}

		types := api.Group("/tag-types")
		{
			types.Get("/", listTagTypes)
			types.Post("/", createTagType)
			types.Put("/:typeId", updateTagType)
			types.Delete("/:typeId", deleteTagType)
		}

		external := api.Group("/external-services")
		{
			external.Get("/", listExternalServices)
			external.Post("/", createExternalService)
			external.Put("/:serviceId", updateExternalService)
			external.Delete("/:serviceId", deleteExternalService)
		}

		sources := api.Group("/sources")
		{
			sources.Post("/", createSource)
			sources.Get("/:sourceId", getSource)
		}

		lookup := api.Group("/search")
		{
			lookup.Get("/suggest", suggestOptions)
			lookup.Post("/choose", chooseOption)
			lookup.Post("/clear", clearSearch)
		}
	}
}
