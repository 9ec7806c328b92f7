package services

import (
	"context"

	"github.com/samber/lo"

	"git.hoarder.pics/hoarder/gateway/pkg/internal/cache"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/graph"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/models"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/queries"
)

// Media mutations are the local-patch family: their responses fully
// describe the denormalized by-id entry, so the cache is patched in place
// and no refetch is declared.

type TaggingInput struct {
	TagID  string `json:"tagId" validate:"required"`
	TypeID string `json:"typeId" validate:"required"`
}

type MediumDeclaration struct {
	SourceIDs []string       `json:"sourceIds"`
	Taggings  []TaggingInput `json:"taggings" validate:"dive"`
}

const createMediumMutation = `mutation CreateMedium($sourceIds: [ID!], $taggings: [TaggingInput!]) {
	createMedium(sourceIds: $sourceIds, taggings: $taggings) {` + queries.MediumFields + `}
}`

const updateMediumMutation = `mutation UpdateMedium($id: ID!, $addSourceIds: [ID!], $removeSourceIds: [ID!], $replicaOrder: [ID!]) {
	updateMedium(id: $id, addSourceIds: $addSourceIds, removeSourceIds: $removeSourceIds, replicaOrder: $replicaOrder) {` + queries.MediumFields + `}
}`

const deleteMediumMutation = `mutation DeleteMedium($id: ID!) {
	deleteMedium(id: $id) { deleted }
}`

func CreateMedium(ctx context.Context, gx graph.Runner, st *cache.Store, in MediumDeclaration) (models.Medium, error) {
	if err := validate.Struct(in); err != nil {
		return models.Medium{}, err
	}

	var resp struct {
		CreateMedium *models.Medium `json:"createMedium"`
	}
	err := gx.Run(ctx, createMediumMutation, map[string]any{
		"sourceIds": in.SourceIDs,
		"taggings":  in.Taggings,
	}, &resp)
	if err != nil {
		return models.Medium{}, err
	}
	if resp.CreateMedium == nil {
		return models.Medium{}, graph.ErrMissingPayload
	}

	item := *resp.CreateMedium
	if err := st.WriteByID(ctx, cache.KindMedium, item.ID, item); err != nil {
		return item, err
	}
	err = cache.PatchList(ctx, st, cache.ListMedia, func(page *models.MediumConnection) {
		page.Edges = append([]models.MediumEdge{{Node: item}}, page.Edges...)
		page.TotalCount++
	})

	return item, err
}

type MediumRevision struct {
	AddSourceIDs    []string `json:"addSourceIds"`
	RemoveSourceIDs []string `json:"removeSourceIds"`
	ReplicaOrder    []string `json:"replicaOrder"`
}

func UpdateMedium(ctx context.Context, gx graph.Runner, st *cache.Store, id string, in MediumRevision) (models.Medium, error) {
	var resp struct {
		UpdateMedium *models.Medium `json:"updateMedium"`
	}
	err := gx.Run(ctx, updateMediumMutation, map[string]any{
		"id":              id,
		"addSourceIds":    in.AddSourceIDs,
		"removeSourceIds": in.RemoveSourceIDs,
		"replicaOrder":    in.ReplicaOrder,
	}, &resp)
	if err != nil {
		return models.Medium{}, err
	}
	if resp.UpdateMedium == nil {
		return models.Medium{}, graph.ErrMissingPayload
	}

	item := *resp.UpdateMedium
	err = st.WriteByID(ctx, cache.KindMedium, item.ID, item)

	return item, err
}

// DeleteMedium evicts the medium from the gallery page only when the
// backend confirms the deletion; a deleted=false response leaves the
// cache untouched.
func DeleteMedium(ctx context.Context, gx graph.Runner, st *cache.Store, id string) (bool, error) {
	var resp struct {
		DeleteMedium *struct {
			Deleted bool `json:"deleted"`
		} `json:"deleteMedium"`
	}
	if err := gx.Run(ctx, deleteMediumMutation, map[string]any{"id": id}, &resp); err != nil {
		return false, err
	}
	if resp.DeleteMedium == nil {
		return false, graph.ErrMissingPayload
	}
	if !resp.DeleteMedium.Deleted {
		return false, nil
	}

	if err := st.DeleteByID(ctx, cache.KindMedium, id); err != nil {
		return true, err
	}
	err := cache.PatchList(ctx, st, cache.ListMedia, func(page *models.MediumConnection) {
		dropped := len(page.Edges)
		page.Edges = lo.Reject(page.Edges, func(edge models.MediumEdge, _ int) bool {
			return edge.Node.ID == id
		})
		page.TotalCount -= int64(dropped - len(page.Edges))
	})

	return true, err
}
