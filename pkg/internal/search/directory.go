package search

import (
	"context"

	"github.com/samber/lo"

	"git.hoarder.pics/hoarder/gateway/pkg/internal/cache"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/graph"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/models"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/queries"
)

// BackendDirectory resolves suggestions against the backend. The
// fragment-filtered sources and tags stay server-computed (a filtered
// list is never re-derived from cache); the tag-type source is the full
// cached list, which needs no filtering.
type BackendDirectory struct {
	Gx    graph.Runner
	Store *cache.Store
}

const sourcesByURLQuery = `query SourcesByURL($probe: String!) {
	sourcesByUrl(probe: $probe) {` + queries.SourceFields + `}
}`

const tagsByNameQuery = `query TagsByNameOrAlias($probe: String!) {
	tagsByNameOrAlias(probe: $probe) {` + queries.TagFields + `}
}`

func (d *BackendDirectory) SourcesByURL(ctx context.Context, probe string) ([]Option, error) {
	var resp struct {
		Sources []models.Source `json:"sourcesByUrl"`
	}
	if err := d.Gx.Run(ctx, sourcesByURLQuery, map[string]any{"probe": probe}, &resp); err != nil {
		return nil, err
	}

	return lo.Map(resp.Sources, func(item models.Source, _ int) Option {
		label := item.ExternalService.Name
		if item.URL != nil {
			label = *item.URL
		}
		return Option{Kind: OptionSource, ID: item.ID, Label: label}
	}), nil
}

func (d *BackendDirectory) TagsByNameOrAlias(ctx context.Context, probe string) ([]Option, error) {
	var resp struct {
		Tags []models.Tag `json:"tagsByNameOrAlias"`
	}
	if err := d.Gx.Run(ctx, tagsByNameQuery, map[string]any{"probe": probe}, &resp); err != nil {
		return nil, err
	}

	return lo.Map(resp.Tags, func(item models.Tag, _ int) Option {
		return Option{Kind: OptionTag, ID: item.ID, Label: item.Name, Kana: item.Kana}
	}), nil
}

func (d *BackendDirectory) TagTypes(ctx context.Context) ([]Option, error) {
	types, err := queries.AllTagTypes(ctx, d.Gx, d.Store)
	if err != nil {
		return nil, err
	}

	return lo.Map(types, func(item models.TagType, _ int) Option {
		return Option{Kind: OptionTagType, ID: item.ID, Label: item.Name, Kana: item.Kana}
	}), nil
}
