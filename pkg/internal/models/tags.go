package models

// Tag is a hierarchical label attachable to media. The client only ever
// holds immutable snapshots of tags; the canonical record lives in the
// backend. Parent is nil both for root tags and when the ancestry was not
// requested by the query that produced the snapshot.
type Tag struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Kana    string   `json:"kana"`
	Aliases []string `json:"aliases"`

	Parent   *Tag  `json:"parent,omitempty"`
	Children []Tag `json:"children,omitempty"`
}

// TagType is a classification axis for tag attachment, e.g. "character"
// or "series". Its lifecycle is independent from Tag.
type TagType struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kana string `json:"kana"`
	Slug string `json:"slug" validate:"lowercase"`
}

// Tagging is one (tag, type) attachment on a medium.
type Tagging struct {
	Tag  Tag     `json:"tag"`
	Type TagType `json:"type"`
}
