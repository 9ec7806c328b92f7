// Package queries is the registry of named backend queries. Each query is
// read-through: a cache hit returns the stored snapshot, a miss runs the
// document and writes the snapshot back. Mutations that cannot patch the
// cache locally name their refetch set out of this registry.
package queries

import (
	"context"
	"fmt"

	"git.hoarder.pics/hoarder/gateway/pkg/internal/cache"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/graph"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/models"
)

const TagFields = `
	id
	name
	kana
	aliases
`

// Breadcrumbs need the parent chain; the schema exposes it to a fixed
// depth, so deeper ancestries resolve across successive by-id queries.
const TagAncestryFields = TagFields + `
	parent {` + TagFields + `
		parent {` + TagFields + `
			parent {` + TagFields + `
			}
		}
	}
`

const TagTypeFields = `
	id
	name
	kana
	slug
`

const ExternalServiceFields = `
	id
	slug
	kind
	name
	baseUrl
	urlPattern
`

const SourceFields = `
	id
	url
	externalMetadata
	createdAt
	updatedAt
	externalService {` + ExternalServiceFields + `}
`

const MediumFields = `
	id
	createdAt
	updatedAt
	replicas {
		id
		displayOrder
		originalUrl
		url
		mimeType
		width
		height
		status { phase }
		thumbnail { id width height url createdAt updatedAt }
		createdAt
		updatedAt
	}
	sources {` + SourceFields + `}
	tags {
		tag {` + TagAncestryFields + `}
		type {` + TagTypeFields + `}
	}
`

const (
	allTagsQuery = `query AllTags { allTags {` + TagFields + `
		children {` + TagFields + `
			children {` + TagFields + `}
		}
	} }`
	flatTagsQuery            = `query FlatTags { tags {` + TagAncestryFields + `} }`
	tagQuery                 = `query Tag($id: ID!) { tag(id: $id) {` + TagAncestryFields + `} }`
	allTagTypesQuery         = `query AllTagTypes { tagTypes {` + TagTypeFields + `} }`
	allExternalServicesQuery = `query AllExternalServices { externalServices {` + ExternalServiceFields + `} }`
	sourceQuery              = `query Source($id: ID!) { source(id: $id) {` + SourceFields + `} }`
	mediumQuery              = `query Medium($id: ID!) { medium(id: $id) {` + MediumFields + `} }`
	mediaQuery               = `query Media($first: Int!) { media(first: $first) {
		totalCount
		edges { node {` + MediumFields + `} }
	} }`
)

// Refetcher re-executes one named query and rewrites its snapshot.
type Refetcher func(ctx context.Context, gx graph.Runner, st *cache.Store) error

// Refetch runs every refetcher in order and returns the first failure.
// Mutations with a declared refetch set call this before resolving, so a
// caller chaining on the mutation observes post-refetch state for exactly
// these queries.
func Refetch(ctx context.Context, gx graph.Runner, st *cache.Store, set ...Refetcher) error {
	for _, fetch := range set {
		if err := fetch(ctx, gx, st); err != nil {
			return err
		}
	}
	return nil
}

func readListThrough[T any](ctx context.Context, gx graph.Runner, st *cache.Store, name string, fetch func() (T, error)) (T, error) {
	var cached T
	err := st.ReadList(ctx, name, &cached)
	if err == nil {
		return cached, nil
	}
	if !cache.IsMiss(err) {
		return cached, err
	}
	return fetch()
}

func AllTags(ctx context.Context, gx graph.Runner, st *cache.Store) ([]models.Tag, error) {
	return readListThrough(ctx, gx, st, cache.ListAllTags, func() ([]models.Tag, error) {
		return fetchAllTags(ctx, gx, st)
	})
}

func fetchAllTags(ctx context.Context, gx graph.Runner, st *cache.Store) ([]models.Tag, error) {
	var resp struct {
		AllTags []models.Tag `json:"allTags"`
	}
	if err := gx.Run(ctx, allTagsQuery, nil, &resp); err != nil {
		return nil, err
	}
	if err := st.WriteList(ctx, cache.ListAllTags, resp.AllTags, cache.KindTag); err != nil {
		return nil, err
	}
	return resp.AllTags, nil
}

func RefetchAllTags(ctx context.Context, gx graph.Runner, st *cache.Store) error {
	_, err := fetchAllTags(ctx, gx, st)
	return err
}

func FlatTags(ctx context.Context, gx graph.Runner, st *cache.Store) ([]models.Tag, error) {
	return readListThrough(ctx, gx, st, cache.ListFlatTags, func() ([]models.Tag, error) {
		return fetchFlatTags(ctx, gx, st)
	})
}

func fetchFlatTags(ctx context.Context, gx graph.Runner, st *cache.Store) ([]models.Tag, error) {
	var resp struct {
		Tags []models.Tag `json:"tags"`
	}
	if err := gx.Run(ctx, flatTagsQuery, nil, &resp); err != nil {
		return nil, err
	}
	if err := st.WriteList(ctx, cache.ListFlatTags, resp.Tags, cache.KindTag); err != nil {
		return nil, err
	}
	return resp.Tags, nil
}

func RefetchFlatTags(ctx context.Context, gx graph.Runner, st *cache.Store) error {
	_, err := fetchFlatTags(ctx, gx, st)
	return err
}

func TagByID(ctx context.Context, gx graph.Runner, st *cache.Store, id string) (models.Tag, error) {
	var cached models.Tag
	err := st.ReadByID(ctx, cache.KindTag, id, &cached)
	if err == nil {
		return cached, nil
	}
	if !cache.IsMiss(err) {
		return cached, err
	}
	return fetchTagByID(ctx, gx, st, id)
}

func fetchTagByID(ctx context.Context, gx graph.Runner, st *cache.Store, id string) (models.Tag, error) {
	var resp struct {
		Tag *models.Tag `json:"tag"`
	}
	if err := gx.Run(ctx, tagQuery, map[string]any{"id": id}, &resp); err != nil {
		return models.Tag{}, err
	}
	if resp.Tag == nil {
		return models.Tag{}, graph.NotFound(fmt.Sprintf("tag %s has no matching record", id))
	}
	if err := st.WriteByID(ctx, cache.KindTag, id, *resp.Tag); err != nil {
		return models.Tag{}, err
	}
	return *resp.Tag, nil
}

// TagWithAncestry resolves a tag together with its full parent chain.
// The tag document nests parents to a fixed depth, so when the outermost
// ancestor of a snapshot sits exactly at that boundary it may still have
// parents the snapshot could not carry; those are resolved with further
// by-id reads and spliced onto the chain.
func TagWithAncestry(ctx context.Context, gx graph.Runner, st *cache.Store, id string) (models.Tag, error) {
	root, err := TagByID(ctx, gx, st, id)
	if err != nil {
		return models.Tag{}, err
	}

	const fetchDepth = 3
	seen := map[string]struct{}{root.ID: {}}
	anchor := &root
	for {
		outer, span := anchor, 0
		for outer.Parent != nil {
			outer = outer.Parent
			span++
			if _, ok := seen[outer.ID]; ok {
				return models.Tag{}, models.ErrAncestryCycle
			}
			seen[outer.ID] = struct{}{}
		}
		if span < fetchDepth {
			return root, nil
		}

		refreshed, err := TagByID(ctx, gx, st, outer.ID)
		if err != nil {
			return models.Tag{}, err
		}
		if refreshed.Parent == nil {
			return root, nil
		}
		outer.Parent = refreshed.Parent
		anchor = outer
	}
}

func RefetchTagByID(id string) Refetcher {
	return func(ctx context.Context, gx graph.Runner, st *cache.Store) error {
		_, err := fetchTagByID(ctx, gx, st, id)
		return err
	}
}

func AllTagTypes(ctx context.Context, gx graph.Runner, st *cache.Store) ([]models.TagType, error) {
	return readListThrough(ctx, gx, st, cache.ListTagTypes, func() ([]models.TagType, error) {
		return fetchAllTagTypes(ctx, gx, st)
	})
}

func fetchAllTagTypes(ctx context.Context, gx graph.Runner, st *cache.Store) ([]models.TagType, error) {
	var resp struct {
		TagTypes []models.TagType `json:"tagTypes"`
	}
	if err := gx.Run(ctx, allTagTypesQuery, nil, &resp); err != nil {
		return nil, err
	}
	if err := st.WriteList(ctx, cache.ListTagTypes, resp.TagTypes, cache.KindTagType); err != nil {
		return nil, err
	}
	return resp.TagTypes, nil
}

func RefetchAllTagTypes(ctx context.Context, gx graph.Runner, st *cache.Store) error {
	_, err := fetchAllTagTypes(ctx, gx, st)
	return err
}

func AllExternalServices(ctx context.Context, gx graph.Runner, st *cache.Store) ([]models.ExternalService, error) {
	return readListThrough(ctx, gx, st, cache.ListExternalServices, func() ([]models.ExternalService, error) {
		return fetchAllExternalServices(ctx, gx, st)
	})
}

func fetchAllExternalServices(ctx context.Context, gx graph.Runner, st *cache.Store) ([]models.ExternalService, error) {
	var resp struct {
		ExternalServices []models.ExternalService `json:"externalServices"`
	}
	if err := gx.Run(ctx, allExternalServicesQuery, nil, &resp); err != nil {
		return nil, err
	}
	if err := st.WriteList(ctx, cache.ListExternalServices, resp.ExternalServices, cache.KindExternalService); err != nil {
		return nil, err
	}
	return resp.ExternalServices, nil
}

func RefetchAllExternalServices(ctx context.Context, gx graph.Runner, st *cache.Store) error {
	_, err := fetchAllExternalServices(ctx, gx, st)
	return err
}

func SourceByID(ctx context.Context, gx graph.Runner, st *cache.Store, id string) (models.Source, error) {
	var cached models.Source
	err := st.ReadByID(ctx, cache.KindSource, id, &cached)
	if err == nil {
		return cached, nil
	}
	if !cache.IsMiss(err) {
		return cached, err
	}
	return fetchSourceByID(ctx, gx, st, id)
}

func fetchSourceByID(ctx context.Context, gx graph.Runner, st *cache.Store, id string) (models.Source, error) {
	var resp struct {
		Source *models.Source `json:"source"`
	}
	if err := gx.Run(ctx, sourceQuery, map[string]any{"id": id}, &resp); err != nil {
		return models.Source{}, err
	}
	if resp.Source == nil {
		return models.Source{}, graph.NotFound(fmt.Sprintf("source %s has no matching record", id))
	}
	if err := st.WriteByID(ctx, cache.KindSource, id, *resp.Source); err != nil {
		return models.Source{}, err
	}
	return *resp.Source, nil
}

func RefetchSourceByID(id string) Refetcher {
	return func(ctx context.Context, gx graph.Runner, st *cache.Store) error {
		_, err := fetchSourceByID(ctx, gx, st, id)
		return err
	}
}

func MediumByID(ctx context.Context, gx graph.Runner, st *cache.Store, id string) (models.Medium, error) {
	var cached models.Medium
	err := st.ReadByID(ctx, cache.KindMedium, id, &cached)
	if err == nil {
		return cached, nil
	}
	if !cache.IsMiss(err) {
		return cached, err
	}
	return fetchMediumByID(ctx, gx, st, id)
}

func fetchMediumByID(ctx context.Context, gx graph.Runner, st *cache.Store, id string) (models.Medium, error) {
	var resp struct {
		Medium *models.Medium `json:"medium"`
	}
	if err := gx.Run(ctx, mediumQuery, map[string]any{"id": id}, &resp); err != nil {
		return models.Medium{}, err
	}
	if resp.Medium == nil {
		return models.Medium{}, graph.NotFound(fmt.Sprintf("medium %s has no matching record", id))
	}
	if err := st.WriteByID(ctx, cache.KindMedium, id, *resp.Medium); err != nil {
		return models.Medium{}, err
	}
	return *resp.Medium, nil
}

func RefetchMediumByID(id string) Refetcher {
	return func(ctx context.Context, gx graph.Runner, st *cache.Store) error {
		_, err := fetchMediumByID(ctx, gx, st, id)
		return err
	}
}

// MediaList serves the unfiltered gallery page. The snapshot only counts
// as a hit when it covers the requested window: a shorter cached page
// with more media available on the backend is refetched at the larger
// size instead of being returned truncated.
func MediaList(ctx context.Context, gx graph.Runner, st *cache.Store, first int) (models.MediumConnection, error) {
	var cached models.MediumConnection
	err := st.ReadList(ctx, cache.ListMedia, &cached)
	if err == nil {
		if len(cached.Edges) >= first || int64(len(cached.Edges)) >= cached.TotalCount {
			return cached, nil
		}
		return fetchMediaList(ctx, gx, st, first)
	}
	if !cache.IsMiss(err) {
		return cached, err
	}
	return fetchMediaList(ctx, gx, st, first)
}

func fetchMediaList(ctx context.Context, gx graph.Runner, st *cache.Store, first int) (models.MediumConnection, error) {
	var resp struct {
		Media models.MediumConnection `json:"media"`
	}
	if err := gx.Run(ctx, mediaQuery, map[string]any{"first": first}, &resp); err != nil {
		return models.MediumConnection{}, err
	}
	if err := st.WriteList(ctx, cache.ListMedia, resp.Media, cache.KindMedium); err != nil {
		return models.MediumConnection{}, err
	}
	return resp.Media, nil
}

const mediaSearchQuery = `query MediaSearch($first: Int!, $tagId: ID, $typeId: ID, $sourceId: ID) {
	media(first: $first, tagId: $tagId, typeId: $typeId, sourceId: $sourceId) {
		totalCount
		edges { node {` + MediumFields + `} }
	}
}`

// MediaSearch is the filtered gallery page. Filtered pages are always
// server-computed and never cached or patched; the local-patch recipes
// apply to the unfiltered connection only.
func MediaSearch(ctx context.Context, gx graph.Runner, first int, tagID, typeID, sourceID string) (models.MediumConnection, error) {
	vars := map[string]any{"first": first}
	if len(tagID) > 0 {
		vars["tagId"] = tagID
	}
	if len(typeID) > 0 {
		vars["typeId"] = typeID
	}
	if len(sourceID) > 0 {
		vars["sourceId"] = sourceID
	}

	var resp struct {
		Media models.MediumConnection `json:"media"`
	}
	if err := gx.Run(ctx, mediaSearchQuery, vars, &resp); err != nil {
		return models.MediumConnection{}, err
	}
	return resp.Media, nil
}

func RefetchMediaList(first int) Refetcher {
	return func(ctx context.Context, gx graph.Runner, st *cache.Store) error {
		_, err := fetchMediaList(ctx, gx, st, first)
		return err
	}
}
