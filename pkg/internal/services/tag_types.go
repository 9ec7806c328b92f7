package services

import (
	"context"

	"git.hoarder.pics/hoarder/gateway/pkg/internal/cache"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/graph"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/models"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/queries"
)

type TagTypeDeclaration struct {
	Name string `json:"name" validate:"required"`
	Kana string `json:"kana"`
	Slug string `json:"slug" validate:"required,lowercase,alphanum"`
}

const createTagTypeMutation = `mutation CreateTagType($name: String!, $kana: String!, $slug: String!) {
	createTagType(name: $name, kana: $kana, slug: $slug) {` + queries.TagTypeFields + `}
}`

const updateTagTypeMutation = `mutation UpdateTagType($id: ID!, $name: String, $kana: String, $slug: String) {
	updateTagType(id: $id, name: $name, kana: $kana, slug: $slug) {` + queries.TagTypeFields + `}
}`

const deleteTagTypeMutation = `mutation DeleteTagType($id: ID!) {
	deleteTagType(id: $id) { deleted }
}`

// A duplicate slug comes back as a domain-validation error with a machine
// code; it is passed through for field-level feedback, not flattened.
func CreateTagType(ctx context.Context, gx graph.Runner, st *cache.Store, in TagTypeDeclaration) (models.TagType, error) {
	if err := validate.Struct(in); err != nil {
		return models.TagType{}, err
	}

	var resp struct {
		CreateTagType *models.TagType `json:"createTagType"`
	}
	err := gx.Run(ctx, createTagTypeMutation, map[string]any{
		"name": in.Name,
		"kana": in.Kana,
		"slug": in.Slug,
	}, &resp)
	if err != nil {
		return models.TagType{}, err
	}
	if resp.CreateTagType == nil {
		return models.TagType{}, graph.ErrMissingPayload
	}

	err = queries.Refetch(ctx, gx, st, queries.RefetchAllTagTypes)

	return *resp.CreateTagType, err
}

func UpdateTagType(ctx context.Context, gx graph.Runner, st *cache.Store, id string, in TagTypeDeclaration) (models.TagType, error) {
	if err := validate.Struct(in); err != nil {
		return models.TagType{}, err
	}

	var resp struct {
		UpdateTagType *models.TagType `json:"updateTagType"`
	}
	err := gx.Run(ctx, updateTagTypeMutation, map[string]any{
		"id":   id,
		"name": in.Name,
		"kana": in.Kana,
		"slug": in.Slug,
	}, &resp)
	if err != nil {
		return models.TagType{}, err
	}
	if resp.UpdateTagType == nil {
		return models.TagType{}, graph.ErrMissingPayload
	}

	err = queries.Refetch(ctx, gx, st, queries.RefetchAllTagTypes)

	return *resp.UpdateTagType, err
}

func DeleteTagType(ctx context.Context, gx graph.Runner, st *cache.Store, id string) (bool, error) {
	var resp struct {
		DeleteTagType *struct {
			Deleted bool `json:"deleted"`
		} `json:"deleteTagType"`
	}
	if err := gx.Run(ctx, deleteTagTypeMutation, map[string]any{"id": id}, &resp); err != nil {
		return false, err
	}
	if resp.DeleteTagType == nil {
		return false, graph.ErrMissingPayload
	}

	err := queries.Refetch(ctx, gx, st, queries.RefetchAllTagTypes)

	return resp.DeleteTagType.Deleted, err
}
