package queries

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/dgraph-io/ristretto"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.hoarder.pics/hoarder/gateway/pkg/internal/cache"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/graph"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/models"
)

// scriptedRunner answers documents by operation-name substring and keeps
// the call order, so tests can assert which documents ran and how often.
type scriptedRunner struct {
	responses map[string]string
	calls     []string
	lastVars  map[string]any
}

func (r *scriptedRunner) Run(_ context.Context, document string, vars map[string]any, out any) error {
	for name, payload := range r.responses {
		if strings.Contains(document, name) {
			r.calls = append(r.calls, name)
			r.lastVars = vars
			if out == nil {
				return nil
			}
			return jsoniter.Unmarshal([]byte(payload), out)
		}
	}
	return fmt.Errorf("unscripted document: %s", document)
}

func newTestStore(t *testing.T) *cache.Store {
	t.Helper()

	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return cache.New(ristretto_store.NewRistretto(client), client.Wait)
}

func TestAllTags_ReadThrough(t *testing.T) {
	gx := &scriptedRunner{responses: map[string]string{
		"query AllTags": `{"allTags":[{"id":"t1","name":"landscape"}]}`,
	}}
	st := newTestStore(t)
	ctx := context.Background()

	first, err := AllTags(ctx, gx, st)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "landscape", first[0].Name)
	assert.Len(t, gx.calls, 1)

	// The second read is served out of the snapshot.
	second, err := AllTags(ctx, gx, st)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, gx.calls, 1)
}

func TestTagByID_CachesTheRecord(t *testing.T) {
	gx := &scriptedRunner{responses: map[string]string{
		"query Tag(": `{"tag":{"id":"t1","name":"landscape","parent":{"id":"t0","name":"scenery"}}}`,
	}}
	st := newTestStore(t)
	ctx := context.Background()

	got, err := TagByID(ctx, gx, st, "t1")
	require.NoError(t, err)
	require.NotNil(t, got.Parent)
	assert.Equal(t, "scenery", got.Parent.Name)

	_, err = TagByID(ctx, gx, st, "t1")
	require.NoError(t, err)
	assert.Len(t, gx.calls, 1)
}

func TestTagByID_NotFound(t *testing.T) {
	gx := &scriptedRunner{responses: map[string]string{
		"query Tag(": `{"tag":null}`,
	}}

	_, err := TagByID(context.Background(), gx, newTestStore(t), "ghost")
	require.Error(t, err)
	assert.True(t, graph.IsNotFound(err))
}

func TestRefetch_RunsInOrderAndRewrites(t *testing.T) {
	gx := &scriptedRunner{responses: map[string]string{
		"query AllTags":  `{"allTags":[{"id":"t1","name":"renamed"}]}`,
		"query FlatTags": `{"tags":[{"id":"t1","name":"renamed"}]}`,
	}}
	st := newTestStore(t)
	ctx := context.Background()

	err := Refetch(ctx, gx, st, RefetchAllTags, RefetchFlatTags)
	require.NoError(t, err)
	assert.Equal(t, []string{"query AllTags", "query FlatTags"}, gx.calls)

	// The rewritten snapshot serves follow-up reads without new calls.
	tags, err := AllTags(ctx, gx, st)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "renamed", tags[0].Name)
	assert.Len(t, gx.calls, 2)
}

func TestRefetch_StopsOnFirstFailure(t *testing.T) {
	gx := &scriptedRunner{responses: map[string]string{
		"query FlatTags": `{"tags":[]}`,
	}}

	err := Refetch(context.Background(), gx, newTestStore(t), RefetchAllTags, RefetchFlatTags)
	require.Error(t, err)
	assert.Empty(t, gx.calls)
}

func TestMediaList_RefetchesWhenWindowGrows(t *testing.T) {
	gx := &scriptedRunner{responses: map[string]string{
		"query Media(": `{"media":{"totalCount":3,"edges":[{"node":{"id":"m1"}},{"node":{"id":"m2"}}]}}`,
	}}
	st := newTestStore(t)
	ctx := context.Background()

	page, err := MediaList(ctx, gx, st, 2)
	require.NoError(t, err)
	require.Len(t, page.Edges, 2)
	assert.Len(t, gx.calls, 1)

	// Same window hits the snapshot.
	_, err = MediaList(ctx, gx, st, 2)
	require.NoError(t, err)
	assert.Len(t, gx.calls, 1)

	// A wider window with more media on the backend cannot be served
	// from the short snapshot.
	_, err = MediaList(ctx, gx, st, 4)
	require.NoError(t, err)
	assert.Len(t, gx.calls, 2)
}

func TestMediaList_ExhaustedSnapshotStaysCached(t *testing.T) {
	gx := &scriptedRunner{responses: map[string]string{
		"query Media(": `{"media":{"totalCount":2,"edges":[{"node":{"id":"m1"}},{"node":{"id":"m2"}}]}}`,
	}}
	st := newTestStore(t)
	ctx := context.Background()

	_, err := MediaList(ctx, gx, st, 2)
	require.NoError(t, err)

	// The snapshot already holds every medium there is; a wider window
	// has nothing more to fetch.
	page, err := MediaList(ctx, gx, st, 40)
	require.NoError(t, err)
	assert.Len(t, page.Edges, 2)
	assert.Len(t, gx.calls, 1)
}

// tagRegistryRunner answers the by-id tag document from a fixture map, so
// successive ancestry reads can be scripted per id.
type tagRegistryRunner struct {
	byID  map[string]string
	calls []string
}

func (r *tagRegistryRunner) Run(_ context.Context, document string, vars map[string]any, out any) error {
	if !strings.Contains(document, "query Tag(") {
		return fmt.Errorf("unscripted document: %s", document)
	}
	id, _ := vars["id"].(string)
	payload, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("unscripted tag: %s", id)
	}
	r.calls = append(r.calls, id)
	return jsoniter.Unmarshal([]byte(payload), out)
}

func ancestryIDs(t *testing.T, tag models.Tag) []string {
	t.Helper()

	trail, err := models.TagAncestors(&tag)
	require.NoError(t, err)

	var ids []string
	for cursor := range trail {
		ids = append(ids, cursor.ID)
	}
	return ids
}

func TestTagWithAncestry_ShallowChain(t *testing.T) {
	gx := &tagRegistryRunner{byID: map[string]string{
		"t2": `{"tag":{"id":"t2","name":"B","parent":{"id":"t1","name":"A"}}}`,
	}}

	got, err := TagWithAncestry(context.Background(), gx, newTestStore(t), "t2")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2"}, ancestryIDs(t, got))
	assert.Equal(t, []string{"t2"}, gx.calls)
}

func TestTagWithAncestry_ResolvesBeyondFetchDepth(t *testing.T) {
	// The snapshot for t5 carries parents only down to t2; the chain
	// continues with a second by-id read for t2.
	gx := &tagRegistryRunner{byID: map[string]string{
		"t5": `{"tag":{"id":"t5","parent":{"id":"t4","parent":{"id":"t3","parent":{"id":"t2"}}}}}`,
		"t2": `{"tag":{"id":"t2","parent":{"id":"t1"}}}`,
	}}

	got, err := TagWithAncestry(context.Background(), gx, newTestStore(t), "t5")
	require.NoError(t, err)
	assert.Equal(t, []string{"t1", "t2", "t3", "t4", "t5"}, ancestryIDs(t, got))
	assert.Equal(t, []string{"t5", "t2"}, gx.calls)
}

func TestTagWithAncestry_CycleFailsFast(t *testing.T) {
	gx := &tagRegistryRunner{byID: map[string]string{
		"t4": `{"tag":{"id":"t4","parent":{"id":"t3","parent":{"id":"t2","parent":{"id":"t1"}}}}}`,
		"t1": `{"tag":{"id":"t1","parent":{"id":"t4"}}}`,
	}}

	_, err := TagWithAncestry(context.Background(), gx, newTestStore(t), "t4")
	assert.ErrorIs(t, err, models.ErrAncestryCycle)
}

func TestMediaSearch_OmitsEmptyFilters(t *testing.T) {
	gx := &scriptedRunner{responses: map[string]string{
		"query MediaSearch": `{"media":{"totalCount":1,"edges":[{"node":{"id":"m1"}}]}}`,
	}}

	page, err := MediaSearch(context.Background(), gx, 40, "t1", "", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), page.TotalCount)

	assert.Equal(t, "t1", gx.lastVars["tagId"])
	assert.NotContains(t, gx.lastVars, "typeId")
	assert.NotContains(t, gx.lastVars, "sourceId")
}
