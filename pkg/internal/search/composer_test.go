package search

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDirectory struct {
	sources []Option
	tags    []Option
	types   []Option

	sourceCalls int
	tagCalls    int
	typeCalls   int
}

func (d *stubDirectory) SourcesByURL(context.Context, string) ([]Option, error) {
	d.sourceCalls++
	return d.sources, nil
}

func (d *stubDirectory) TagsByNameOrAlias(context.Context, string) ([]Option, error) {
	d.tagCalls++
	return d.tags, nil
}

func (d *stubDirectory) TagTypes(context.Context) ([]Option, error) {
	d.typeCalls++
	return d.types, nil
}

func TestComposer_TypeThenTagCommitsPair(t *testing.T) {
	c := NewComposer(&stubDirectory{})

	filter, committed := c.Choose(Option{Kind: OptionTagType, ID: "ty-character", Label: "character"})
	assert.False(t, committed)
	assert.Equal(t, Filter{}, filter)
	assert.Equal(t, StateTypeSelected, c.State())

	filter, committed = c.Choose(Option{Kind: OptionTag, ID: "t-alice", Label: "Alice"})
	assert.True(t, committed)
	assert.Equal(t, Filter{TagID: "t-alice", TypeID: "ty-character"}, filter)
	assert.Equal(t, StateIdle, c.State())
}

func TestComposer_TagAloneIsInert(t *testing.T) {
	c := NewComposer(&stubDirectory{})

	_, committed := c.Choose(Option{Kind: OptionTag, ID: "t-alice"})
	assert.False(t, committed)
	assert.Equal(t, StateIdle, c.State())
}

func TestComposer_SourceCommitsOnlyWhenIdle(t *testing.T) {
	c := NewComposer(&stubDirectory{})

	filter, committed := c.Choose(Option{Kind: OptionSource, ID: "s1"})
	assert.True(t, committed)
	assert.Equal(t, Filter{SourceID: "s1"}, filter)

	c.Choose(Option{Kind: OptionTagType, ID: "ty1"})
	_, committed = c.Choose(Option{Kind: OptionSource, ID: "s1"})
	assert.False(t, committed)
	assert.Equal(t, StateTypeSelected, c.State())
}

func TestComposer_SecondTypeChoiceIsIgnored(t *testing.T) {
	c := NewComposer(&stubDirectory{})

	c.Choose(Option{Kind: OptionTagType, ID: "ty1"})
	c.Choose(Option{Kind: OptionTagType, ID: "ty2"})

	filter, committed := c.Choose(Option{Kind: OptionTag, ID: "t1"})
	assert.True(t, committed)
	assert.Equal(t, "ty1", filter.TypeID)
}

func TestComposer_SuggestSortsByKana(t *testing.T) {
	dir := &stubDirectory{
		tags: []Option{
			{Kind: OptionTag, ID: "t-sakura", Label: "桜", Kana: "さくら"},
			{Kind: OptionTag, ID: "t-alice", Label: "アリス", Kana: "ありす"},
			{Kind: OptionTag, ID: "t-umi", Label: "海", Kana: "うみ"},
		},
	}
	c := NewComposer(dir)

	options, err := c.Suggest(context.Background(), "あ")
	require.NoError(t, err)
	require.Len(t, options, 3)
	assert.Equal(t, "t-alice", options[0].ID)
	assert.Equal(t, "t-umi", options[1].ID)
	assert.Equal(t, "t-sakura", options[2].ID)
}

func TestComposer_SuggestDeduplicatesByID(t *testing.T) {
	// A probe matching both a tag's name and one of its aliases must not
	// list the tag twice.
	dir := &stubDirectory{
		tags: []Option{
			{Kind: OptionTag, ID: "t1", Label: "landscape", Kana: "らんどすけーぷ"},
			{Kind: OptionTag, ID: "t1", Label: "scenery", Kana: "らんどすけーぷ"},
		},
	}
	c := NewComposer(dir)

	options, err := c.Suggest(context.Background(), "land")
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, "landscape", options[0].Label)
}

func TestComposer_SuggestGatedAfterTypeChoice(t *testing.T) {
	dir := &stubDirectory{
		sources: []Option{{Kind: OptionSource, ID: "s1", Label: "https://example.com/1"}},
		tags:    []Option{{Kind: OptionTag, ID: "t1", Label: "Alice"}},
		types:   []Option{{Kind: OptionTagType, ID: "ty1", Label: "character"}},
	}
	c := NewComposer(dir)

	c.Choose(Option{Kind: OptionTagType, ID: "ty1"})

	options, err := c.Suggest(context.Background(), "a")
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, OptionTag, options[0].Kind)
	assert.Zero(t, dir.sourceCalls)
	assert.Zero(t, dir.typeCalls)
}

func TestComposer_SuggestMergesAllSourcesWhenIdle(t *testing.T) {
	dir := &stubDirectory{
		sources: []Option{{Kind: OptionSource, ID: "s1", Label: "https://example.com/1"}},
		tags:    []Option{{Kind: OptionTag, ID: "t1", Label: "Alice"}},
		types:   []Option{{Kind: OptionTagType, ID: "ty1", Label: "character"}},
	}
	c := NewComposer(dir)

	options, err := c.Suggest(context.Background(), "a")
	require.NoError(t, err)
	assert.Len(t, options, 3)
	assert.Equal(t, 1, dir.sourceCalls)
	assert.Equal(t, 1, dir.tagCalls)
	assert.Equal(t, 1, dir.typeCalls)
}

func TestComposer_ConcurrentSuggest(t *testing.T) {
	dir := &stubDirectory{
		tags: []Option{
			{Kind: OptionTag, ID: "t-sakura", Label: "桜", Kana: "さくら"},
			{Kind: OptionTag, ID: "t-alice", Label: "アリス", Kana: "ありす"},
			{Kind: OptionTag, ID: "t-umi", Label: "海", Kana: "うみ"},
		},
	}
	c := NewComposer(dir)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				options, err := c.Suggest(context.Background(), "あ")
				assert.NoError(t, err)
				if assert.Len(t, options, 3) {
					assert.Equal(t, "t-alice", options[0].ID)
				}
			}
		}()
	}
	wg.Wait()
}

func TestComposer_EmptyProbeClears(t *testing.T) {
	dir := &stubDirectory{tags: []Option{{Kind: OptionTag, ID: "t1"}}}
	c := NewComposer(dir)

	c.Choose(Option{Kind: OptionTagType, ID: "ty1"})

	options, err := c.Suggest(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, options)
	assert.Equal(t, StateIdle, c.State())
	assert.Zero(t, dir.tagCalls)
}
