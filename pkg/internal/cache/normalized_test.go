package cache

import (
	"context"
	"testing"

	"github.com/dgraph-io/ristretto"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	ID   string
	Name string
}

type page struct {
	Total int64
	Items []record
}

func newTestStore(t *testing.T) *Store {
	t.Helper()

	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	require.NoError(t, err)
	t.Cleanup(client.Close)

	return New(ristretto_store.NewRistretto(client), client.Wait)
}

func TestStore_EntityRoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.WriteByID(ctx, KindTag, "t1", record{ID: "t1", Name: "landscape"}))

	var got record
	require.NoError(t, st.ReadByID(ctx, KindTag, "t1", &got))
	assert.Equal(t, "landscape", got.Name)
}

func TestStore_MissIsDetectable(t *testing.T) {
	st := newTestStore(t)

	var got record
	err := st.ReadByID(context.Background(), KindTag, "absent", &got)
	require.Error(t, err)
	assert.True(t, IsMiss(err))
}

func TestStore_DeleteByID(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.WriteByID(ctx, KindMedium, "m1", record{ID: "m1"}))
	require.NoError(t, st.DeleteByID(ctx, KindMedium, "m1"))

	var got record
	assert.True(t, IsMiss(st.ReadByID(ctx, KindMedium, "m1", &got)))
}

func TestStore_PatchList(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.WriteList(ctx, ListMedia, page{Total: 1, Items: []record{{ID: "old"}}}))

	err := PatchList(ctx, st, ListMedia, func(p *page) {
		p.Items = append([]record{{ID: "new"}}, p.Items...)
		p.Total++
	})
	require.NoError(t, err)

	var got page
	require.NoError(t, st.ReadList(ctx, ListMedia, &got))
	assert.Equal(t, int64(2), got.Total)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "new", got.Items[0].ID)
}

func TestStore_PatchListMissIsNoop(t *testing.T) {
	st := newTestStore(t)

	touched := false
	err := PatchList(context.Background(), st, ListMedia, func(p *page) {
		touched = true
	})
	require.NoError(t, err)
	assert.False(t, touched)
}

func TestStore_InvalidateByTag(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.WriteByID(ctx, KindTag, "t1", record{ID: "t1"}))
	require.NoError(t, st.WriteByID(ctx, KindMedium, "m1", record{ID: "m1"}))

	require.NoError(t, st.Invalidate(ctx, KindTag))

	var got record
	assert.True(t, IsMiss(st.ReadByID(ctx, KindTag, "t1", &got)))
	assert.NoError(t, st.ReadByID(ctx, KindMedium, "m1", &got))
}
