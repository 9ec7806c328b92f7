package models

import "time"

// Replica processing phases, driven entirely by the backend. READY and
// ERROR are terminal from this side; the client never initiates a
// transition.
const (
	ReplicaPhaseReady      = "READY"
	ReplicaPhaseProcessing = "PROCESSING"
	ReplicaPhaseError      = "ERROR"
)

type ReplicaStatus struct {
	Phase string `json:"phase" validate:"oneof=READY PROCESSING ERROR"`
}

type Thumbnail struct {
	ID        string    `json:"id"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Replica is one uploaded file instance belonging to a Medium.
type Replica struct {
	ID           string        `json:"id"`
	DisplayOrder int           `json:"displayOrder"`
	Thumbnail    *Thumbnail    `json:"thumbnail,omitempty"`
	OriginalURL  string        `json:"originalUrl"`
	URL          *string       `json:"url,omitempty"`
	MimeType     *string       `json:"mimeType,omitempty"`
	Width        *int          `json:"width,omitempty"`
	Height       *int          `json:"height,omitempty"`
	Status       ReplicaStatus `json:"status"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// Medium is the central catalogued item: an ordered list of replicas plus
// associations to sources and (tag, type) pairs.
type Medium struct {
	ID        string    `json:"id"`
	Replicas  []Replica `json:"replicas,omitempty"`
	Sources   []Source  `json:"sources,omitempty"`
	Tags      []Tagging `json:"tags,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type MediumEdge struct {
	Node Medium `json:"node"`
}

// MediumConnection is the cached page of the media gallery. Membership is
// the only thing patched locally; ordering and counts beyond the prepend
// and evict recipes stay server-computed.
type MediumConnection struct {
	TotalCount int64        `json:"totalCount"`
	Edges      []MediumEdge `json:"edges"`
}
