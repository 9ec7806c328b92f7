package models

import (
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/samber/lo"
)

// ExternalService describes a platform media originate from. Kind is
// immutable once the service has been created.
type ExternalService struct {
	ID         string  `json:"id"`
	Slug       string  `json:"slug" validate:"lowercase"`
	Kind       string  `json:"kind" validate:"required"`
	Name       string  `json:"name"`
	BaseURL    *string `json:"baseUrl,omitempty"`
	URLPattern *string `json:"urlPattern,omitempty"`
}

// The closed set of metadata providers. "custom" carries an arbitrary
// value; every other provider carries an id and optionally a creator id.
const (
	ProviderBluesky     = "bluesky"
	ProviderFantia      = "fantia"
	ProviderMastodon    = "mastodon"
	ProviderMisskey     = "misskey"
	ProviderNijie       = "nijie"
	ProviderPixiv       = "pixiv"
	ProviderPixivFanbox = "pixiv_fanbox"
	ProviderPleroma     = "pleroma"
	ProviderSeiga       = "seiga"
	ProviderSkeb        = "skeb"
	ProviderThreads     = "threads"
	ProviderWebsite     = "website"
	ProviderX           = "x"
	ProviderXfolio      = "xfolio"
	ProviderCustom      = "custom"
)

var ExternalProviders = []string{
	ProviderBluesky, ProviderFantia, ProviderMastodon, ProviderMisskey,
	ProviderNijie, ProviderPixiv, ProviderPixivFanbox, ProviderPleroma,
	ProviderSeiga, ProviderSkeb, ProviderThreads, ProviderWebsite,
	ProviderX, ProviderXfolio, ProviderCustom,
}

// ExternalMetadata is the tagged union keyed by service kind. On the wire
// it is a single-key object, e.g. {"pixiv":{"id":"123","creatorId":"45"}}
// or {"custom":<any value>}. Unknown keys are rejected at the boundary
// instead of being carried along structurally.
type ExternalMetadata struct {
	Provider  string              `json:"-" validate:"required"`
	ID        string              `json:"-"`
	CreatorID *string             `json:"-"`
	Custom    jsoniter.RawMessage `json:"-"`
}

type providerRecord struct {
	ID        string  `json:"id"`
	CreatorID *string `json:"creatorId,omitempty"`
}

func (m ExternalMetadata) MarshalJSON() ([]byte, error) {
	if len(m.Provider) == 0 {
		return nil, fmt.Errorf("external metadata has no provider")
	}
	if m.Provider == ProviderCustom {
		return jsoniter.Marshal(map[string]jsoniter.RawMessage{ProviderCustom: m.Custom})
	}
	return jsoniter.Marshal(map[string]providerRecord{
		m.Provider: {ID: m.ID, CreatorID: m.CreatorID},
	})
}

func (m *ExternalMetadata) UnmarshalJSON(data []byte) error {
	var raw map[string]jsoniter.RawMessage
	if err := jsoniter.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 1 {
		return fmt.Errorf("external metadata must carry exactly one provider key, got %d", len(raw))
	}

	for provider, value := range raw {
		if !lo.Contains(ExternalProviders, provider) {
			return fmt.Errorf("unknown external metadata provider: %s", provider)
		}
		m.Provider = provider
		if provider == ProviderCustom {
			m.Custom = value
			return nil
		}
		var record providerRecord
		if err := jsoniter.Unmarshal(value, &record); err != nil {
			return fmt.Errorf("malformed %s metadata: %v", provider, err)
		}
		m.ID = record.ID
		m.CreatorID = record.CreatorID
	}

	return nil
}

// Source links a medium to where it was found on an external service.
type Source struct {
	ID               string           `json:"id"`
	ExternalService  ExternalService  `json:"externalService"`
	ExternalMetadata ExternalMetadata `json:"externalMetadata"`
	URL              *string          `json:"url,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}
