// Package search composes the metadata search bar's autocomplete: three
// independent option sources merged into one ranked list, plus the small
// state machine that turns chosen options into gallery filters.
package search

import (
	"context"
	"sort"
	"sync"

	"github.com/samber/lo"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

type OptionKind string

const (
	OptionSource  OptionKind = "source"
	OptionTag     OptionKind = "tag"
	OptionTagType OptionKind = "tag_type"
)

// Option is one autocomplete entry. Kana is the phonetic sort key; Label
// is what the surface renders and the collation fallback.
type Option struct {
	Kind  OptionKind `json:"kind"`
	ID    string     `json:"id"`
	Label string     `json:"label"`
	Kana  string     `json:"kana,omitempty"`
}

// Filter is a committed gallery filter: either a (tag, type) pair or a
// source, never both.
type Filter struct {
	TagID    string `json:"tagId,omitempty"`
	TypeID   string `json:"typeId,omitempty"`
	SourceID string `json:"sourceId,omitempty"`
}

// Directory supplies the three option sources.
type Directory interface {
	SourcesByURL(ctx context.Context, probe string) ([]Option, error)
	TagsByNameOrAlias(ctx context.Context, probe string) ([]Option, error)
	TagTypes(ctx context.Context) ([]Option, error)
}

const (
	StateIdle         = "idle"
	StateTypeSelected = "type_selected"
)

// Composer merges the directory's sources and tracks the selection state:
// Idle until a tag type is chosen, TypeSelected until a tag commits the
// filter pair or the input is cleared.
type Composer struct {
	mu sync.Mutex
	// mu also guards collator: CompareString mutates iterator buffers
	// inside the Collator, so it is not safe for concurrent use.
	directory   Directory
	collator    *collate.Collator
	pendingType *Option
}

func NewComposer(directory Directory) *Composer {
	return &Composer{
		directory: directory,
		collator:  collate.New(language.Japanese, collate.IgnoreCase),
	}
}

func (c *Composer) State() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pendingType != nil {
		return StateTypeSelected
	}
	return StateIdle
}

// Clear empties the input: any pending type selection is dropped and the
// composer returns to Idle.
func (c *Composer) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pendingType = nil
}

// Suggest returns the ranked option list for a probe. With a type
// selected only tags are offered; otherwise sources, tags and tag types
// are merged, deduplicated by id and ordered by the kana collation.
func (c *Composer) Suggest(ctx context.Context, probe string) ([]Option, error) {
	if len(probe) == 0 {
		c.Clear()
		return nil, nil
	}

	c.mu.Lock()
	gated := c.pendingType != nil
	c.mu.Unlock()

	tags, err := c.directory.TagsByNameOrAlias(ctx, probe)
	if err != nil {
		return nil, err
	}

	options := tags
	if !gated {
		sources, err := c.directory.SourcesByURL(ctx, probe)
		if err != nil {
			return nil, err
		}
		types, err := c.directory.TagTypes(ctx)
		if err != nil {
			return nil, err
		}
		options = append(append(sources, tags...), types...)
	}

	options = lo.UniqBy(options, func(opt Option) string {
		return opt.ID
	})

	c.mu.Lock()
	sort.SliceStable(options, func(i, j int) bool {
		return c.collator.CompareString(sortKey(options[i]), sortKey(options[j])) < 0
	})
	c.mu.Unlock()

	return options, nil
}

func sortKey(opt Option) string {
	if len(opt.Kana) > 0 {
		return opt.Kana
	}
	return opt.Label
}

// Choose feeds one selected option through the state machine. The
// returned filter is only meaningful when committed is true; a tag type
// selection returns committed=false and arms the next tag choice.
func (c *Composer) Choose(opt Option) (filter Filter, committed bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch opt.Kind {
	case OptionTagType:
		if c.pendingType != nil {
			return Filter{}, false
		}
		pending := opt
		c.pendingType = &pending
		return Filter{}, false
	case OptionTag:
		if c.pendingType == nil {
			return Filter{}, false
		}
		filter = Filter{TagID: opt.ID, TypeID: c.pendingType.ID}
		c.pendingType = nil
		return filter, true
	case OptionSource:
		if c.pendingType != nil {
			return Filter{}, false
		}
		return Filter{SourceID: opt.ID}, true
	}

	return Filter{}, false
}
