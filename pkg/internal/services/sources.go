package services

import (
	"context"
	"fmt"

	"git.hoarder.pics/hoarder/gateway/pkg/internal/cache"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/graph"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/models"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/queries"
)

type SourceDeclaration struct {
	ExternalServiceID string                  `json:"externalServiceId" validate:"required"`
	ExternalMetadata  models.ExternalMetadata `json:"externalMetadata"`
	URL               *string                 `json:"url" validate:"omitempty,url"`
}

const createSourceMutation = `mutation CreateSource($externalServiceId: ID!, $externalMetadata: ExternalMetadata!, $url: String) {
	createSource(externalServiceId: $externalServiceId, externalMetadata: $externalMetadata, url: $url) {` + queries.SourceFields + `}
}`

func CreateSource(ctx context.Context, gx graph.Runner, st *cache.Store, in SourceDeclaration) (models.Source, error) {
	if err := validate.Struct(in); err != nil {
		return models.Source{}, err
	}
	if len(in.ExternalMetadata.Provider) == 0 {
		return models.Source{}, fmt.Errorf("external metadata has no provider")
	}
	if in.ExternalMetadata.Provider != models.ProviderCustom && len(in.ExternalMetadata.ID) == 0 {
		return models.Source{}, fmt.Errorf("%s metadata requires an id", in.ExternalMetadata.Provider)
	}

	var resp struct {
		CreateSource *models.Source `json:"createSource"`
	}
	err := gx.Run(ctx, createSourceMutation, map[string]any{
		"externalServiceId": in.ExternalServiceID,
		"externalMetadata":  in.ExternalMetadata,
		"url":               in.URL,
	}, &resp)
	if err != nil {
		return models.Source{}, err
	}
	if resp.CreateSource == nil {
		return models.Source{}, graph.ErrMissingPayload
	}

	err = queries.Refetch(ctx, gx, st, queries.RefetchSourceByID(resp.CreateSource.ID))

	return *resp.CreateSource, err
}
