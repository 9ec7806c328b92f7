// Package upstream holds the process-wide handles to the backend: the
// GraphQL client and the normalized cache in front of it.
package upstream

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"git.hoarder.pics/hoarder/gateway/pkg/internal/cache"
	"git.hoarder.pics/hoarder/gateway/pkg/internal/graph"
)

var (
	Client *graph.Client
	Cache  *cache.Store
)

// Initialize wires the backend client and the cache. The backend origin
// is required; a gateway without it cannot do anything useful.
func Initialize() error {
	origin := viper.GetString("api_url")
	if len(origin) == 0 {
		return fmt.Errorf("API_URL is not set")
	}

	Client = graph.NewClient(strings.TrimRight(origin, "/"))

	if err := cache.NewStore(); err != nil {
		return fmt.Errorf("unable to build cache store: %v", err)
	}
	Cache = cache.New(cache.S, cache.R.Wait)

	return nil
}

// Origin returns the backend origin the proxy layer forwards to.
func Origin() string {
	return strings.TrimRight(viper.GetString("api_url"), "/")
}
