package services

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"git.hoarder.pics/hoarder/gateway/pkg/internal/cache"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/graph"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/models"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/queries"
)

type ExternalServiceDeclaration struct {
	Slug       string  `json:"slug" validate:"required,lowercase"`
	Kind       string  `json:"kind" validate:"required"`
	Name       string  `json:"name" validate:"required"`
	BaseURL    *string `json:"baseUrl" validate:"omitempty,url"`
	URLPattern *string `json:"urlPattern"`
}

const createExternalServiceMutation = `mutation CreateExternalService($slug: String!, $kind: String!, $name: String!, $baseUrl: String, $urlPattern: String) {
	createExternalService(slug: $slug, kind: $kind, name: $name, baseUrl: $baseUrl, urlPattern: $urlPattern) {` + queries.ExternalServiceFields + `}
}`

const updateExternalServiceMutation = `mutation UpdateExternalService($id: ID!, $slug: String, $name: String, $baseUrl: String, $urlPattern: String) {
	updateExternalService(id: $id, slug: $slug, name: $name, baseUrl: $baseUrl, urlPattern: $urlPattern) {` + queries.ExternalServiceFields + `}
}`

const deleteExternalServiceMutation = `mutation DeleteExternalService($id: ID!) {
	deleteExternalService(id: $id) { deleted }
}`

func CreateExternalService(ctx context.Context, gx graph.Runner, st *cache.Store, in ExternalServiceDeclaration) (models.ExternalService, error) {
	if err := validate.Struct(in); err != nil {
		return models.ExternalService{}, err
	}

	var resp struct {
		CreateExternalService *models.ExternalService `json:"createExternalService"`
	}
	err := gx.Run(ctx, createExternalServiceMutation, map[string]any{
		"slug":       in.Slug,
		"kind":       in.Kind,
		"name":       in.Name,
		"baseUrl":    in.BaseURL,
		"urlPattern": in.URLPattern,
	}, &resp)
	if err != nil {
		return models.ExternalService{}, err
	}
	if resp.CreateExternalService == nil {
		return models.ExternalService{}, graph.ErrMissingPayload
	}

	err = queries.Refetch(ctx, gx, st, queries.RefetchAllExternalServices)

	return *resp.CreateExternalService, err
}

// UpdateExternalService never sends a kind: kind is immutable once the
// service exists. A revision naming a different kind than the current
// record is rejected before any mutation is issued.
func UpdateExternalService(ctx context.Context, gx graph.Runner, st *cache.Store, id string, in ExternalServiceDeclaration) (models.ExternalService, error) {
	if err := validate.Struct(in); err != nil {
		return models.ExternalService{}, err
	}

	known, err := queries.AllExternalServices(ctx, gx, st)
	if err != nil {
		return models.ExternalService{}, err
	}
	current, found := lo.Find(known, func(item models.ExternalService) bool {
		return item.ID == id
	})
	if !found {
		return models.ExternalService{}, graph.NotFound(fmt.Sprintf("external service %s has no matching record", id))
	}
	if in.Kind != current.Kind {
		return models.ExternalService{}, fmt.Errorf("kind of an external service is immutable, cannot change %s to %s", current.Kind, in.Kind)
	}

	var resp struct {
		UpdateExternalService *models.ExternalService `json:"updateExternalService"`
	}
	err = gx.Run(ctx, updateExternalServiceMutation, map[string]any{
		"id":         id,
		"slug":       in.Slug,
		"name":       in.Name,
		"baseUrl":    in.BaseURL,
		"urlPattern": in.URLPattern,
	}, &resp)
	if err != nil {
		return models.ExternalService{}, err
	}
	if resp.UpdateExternalService == nil {
		return models.ExternalService{}, graph.ErrMissingPayload
	}

	err = queries.Refetch(ctx, gx, st, queries.RefetchAllExternalServices)

	return *resp.UpdateExternalService, err
}

func DeleteExternalService(ctx context.Context, gx graph.Runner, st *cache.Store, id string) (bool, error) {
	var resp struct {
		DeleteExternalService *struct {
			Deleted bool `json:"deleted"`
		} `json:"deleteExternalService"`
	}
	if err := gx.Run(ctx, deleteExternalServiceMutation, map[string]any{"id": id}, &resp); err != nil {
		return false, err
	}
	if resp.DeleteExternalService == nil {
		return false, graph.ErrMissingPayload
	}

	err := queries.Refetch(ctx, gx, st, queries.RefetchAllExternalServices)

	return resp.DeleteExternalService.Deleted, err
}
