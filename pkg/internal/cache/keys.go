package cache

// The cache key space. Entity snapshots live under kind#id, query
// snapshots under list#name; every entry is additionally tagged so whole
// families can be invalidated at once.
const (
	KindMedium          = "medium"
	KindTag             = "tag"
	KindTagType         = "tag-type"
	KindExternalService = "external-service"
	KindSource          = "source"
)

const (
	ListMedia            = "media"
	ListAllTags          = "tags"
	ListFlatTags         = "tags-flat"
	ListTagTypes         = "tag-types"
	ListExternalServices = "external-services"
)
