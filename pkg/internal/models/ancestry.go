package models

import (
	"errors"
	"iter"
)

// ErrAncestryCycle is returned when a tag snapshot claims to be its own
// ancestor. The backend guarantees the hierarchy is a tree, but snapshots
// arrive from outside the process, so the walk refuses to trust that.
var ErrAncestryCycle = errors.New("tag ancestry contains a cycle")

// TagAncestors walks the parent chain of tag and returns its ancestry as a
// sequence ordered from the outermost ancestor down to tag itself. A tag
// with no (or not loaded) parent yields a single-element sequence. The
// sequence is finite and can be ranged over any number of times.
func TagAncestors(tag *Tag) (iter.Seq[*Tag], error) {
	var chain []*Tag
	seen := make(map[string]struct{})
	for cursor := tag; cursor != nil; cursor = cursor.Parent {
		if _, ok := seen[cursor.ID]; ok {
			return nil, ErrAncestryCycle
		}
		seen[cursor.ID] = struct{}{}
		chain = append(chain, cursor)
	}

	return func(yield func(*Tag) bool) {
		for idx := len(chain) - 1; idx >= 0; idx-- {
			if !yield(chain[idx]) {
				return
			}
		}
	}, nil
}

// TagParentPath is the "parent breadcrumb" mode of TagAncestors: the
// ancestry of the immediate parent only. A root tag yields an empty
// sequence.
func TagParentPath(tag *Tag) (iter.Seq[*Tag], error) {
	if tag == nil || tag.Parent == nil {
		return func(yield func(*Tag) bool) {}, nil
	}
	if tag.Parent.ID == tag.ID {
		return nil, ErrAncestryCycle
	}
	return TagAncestors(tag.Parent)
}
