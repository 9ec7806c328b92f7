package services

import (
	"context"

	"git.hoarder.pics/hoarder/gateway/pkg/internal/cache"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/graph"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/models"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/queries"
)

// Tag mutations are the refetch-on-complete family. Tag membership and
// ordering in the tag lists depend on server-side computation, so the
// lists are never re-derived locally; instead the declared queries are
// re-executed before the mutation resolves.

type TagDeclaration struct {
	Name     string   `json:"name" validate:"required"`
	Kana     string   `json:"kana"`
	Aliases  []string `json:"aliases"`
	ParentID *string  `json:"parentId"`
}

const createTagMutation = `mutation CreateTag($name: String!, $kana: String!, $aliases: [String!], $parentId: ID) {
	createTag(name: $name, kana: $kana, aliases: $aliases, parentId: $parentId) {` + queries.TagAncestryFields + `}
}`

const updateTagMutation = `mutation UpdateTag($id: ID!, $name: String, $kana: String, $aliases: [String!], $parentId: ID) {
	updateTag(id: $id, name: $name, kana: $kana, aliases: $aliases, parentId: $parentId) {` + queries.TagAncestryFields + `}
}`

const deleteTagMutation = `mutation DeleteTag($id: ID!) {
	deleteTag(id: $id) { deleted }
}`

const attachTagMutation = `mutation AttachTag($mediumId: ID!, $tagId: ID!, $typeId: ID!) {
	attachTag(mediumId: $mediumId, tagId: $tagId, typeId: $typeId) {` + queries.MediumFields + `}
}`

const detachTagMutation = `mutation DetachTag($mediumId: ID!, $tagId: ID!, $typeId: ID!) {
	detachTag(mediumId: $mediumId, tagId: $tagId, typeId: $typeId) {` + queries.MediumFields + `}
}`

func CreateTag(ctx context.Context, gx graph.Runner, st *cache.Store, in TagDeclaration) (models.Tag, error) {
	if err := validate.Struct(in); err != nil {
		return models.Tag{}, err
	}

	var resp struct {
		CreateTag *models.Tag `json:"createTag"`
	}
	err := gx.Run(ctx, createTagMutation, map[string]any{
		"name":     in.Name,
		"kana":     in.Kana,
		"aliases":  in.Aliases,
		"parentId": in.ParentID,
	}, &resp)
	if err != nil {
		return models.Tag{}, err
	}
	if resp.CreateTag == nil {
		return models.Tag{}, graph.ErrMissingPayload
	}

	err = queries.Refetch(ctx, gx, st,
		queries.RefetchAllTags,
		queries.RefetchFlatTags,
	)

	return *resp.CreateTag, err
}

// UpdateTag also covers moving a tag to a new parent.
func UpdateTag(ctx context.Context, gx graph.Runner, st *cache.Store, id string, in TagDeclaration) (models.Tag, error) {
	var resp struct {
		UpdateTag *models.Tag `json:"updateTag"`
	}
	err := gx.Run(ctx, updateTagMutation, map[string]any{
		"id":       id,
		"name":     in.Name,
		"kana":     in.Kana,
		"aliases":  in.Aliases,
		"parentId": in.ParentID,
	}, &resp)
	if err != nil {
		return models.Tag{}, err
	}
	if resp.UpdateTag == nil {
		return models.Tag{}, graph.ErrMissingPayload
	}

	err = queries.Refetch(ctx, gx, st,
		queries.RefetchAllTags,
		queries.RefetchTagByID(id),
		queries.RefetchFlatTags,
	)

	return *resp.UpdateTag, err
}

func DeleteTag(ctx context.Context, gx graph.Runner, st *cache.Store, id string) (bool, error) {
	var resp struct {
		DeleteTag *struct {
			Deleted bool `json:"deleted"`
		} `json:"deleteTag"`
	}
	if err := gx.Run(ctx, deleteTagMutation, map[string]any{"id": id}, &resp); err != nil {
		return false, err
	}
	if resp.DeleteTag == nil {
		return false, graph.ErrMissingPayload
	}
	if !resp.DeleteTag.Deleted {
		return false, nil
	}

	if err := st.DeleteByID(ctx, cache.KindTag, id); err != nil {
		return true, err
	}
	err := queries.Refetch(ctx, gx, st,
		queries.RefetchAllTags,
		queries.RefetchFlatTags,
	)

	return true, err
}

func AttachTagToMedium(ctx context.Context, gx graph.Runner, st *cache.Store, mediumID string, in TaggingInput) (models.Medium, error) {
	if err := validate.Struct(in); err != nil {
		return models.Medium{}, err
	}

	var resp struct {
		AttachTag *models.Medium `json:"attachTag"`
	}
	err := gx.Run(ctx, attachTagMutation, map[string]any{
		"mediumId": mediumID,
		"tagId":    in.TagID,
		"typeId":   in.TypeID,
	}, &resp)
	if err != nil {
		return models.Medium{}, err
	}
	if resp.AttachTag == nil {
		return models.Medium{}, graph.ErrMissingPayload
	}

	err = queries.Refetch(ctx, gx, st,
		queries.RefetchAllTags,
		queries.RefetchTagByID(in.TagID),
		queries.RefetchFlatTags,
	)

	return *resp.AttachTag, err
}

func DetachTagFromMedium(ctx context.Context, gx graph.Runner, st *cache.Store, mediumID string, in TaggingInput) (models.Medium, error) {
	var resp struct {
		DetachTag *models.Medium `json:"detachTag"`
	}
	err := gx.Run(ctx, detachTagMutation, map[string]any{
		"mediumId": mediumID,
		"tagId":    in.TagID,
		"typeId":   in.TypeID,
	}, &resp)
	if err != nil {
		return models.Medium{}, err
	}
	if resp.DetachTag == nil {
		return models.Medium{}, graph.ErrMissingPayload
	}

	err = queries.Refetch(ctx, gx, st,
		queries.RefetchAllTags,
		queries.RefetchTagByID(in.TagID),
		queries.RefetchFlatTags,
	)

	return *resp.DetachTag, err
}
