package services

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/dgraph-io/ristretto"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
	jsoniter "github.com/json-iterator/go"
	"github.com/stretchr/testify/require"

	"git.hoarder.pics/hoarder/gateway/pkg/internal/cache"
)

// scriptedRunner answers documents by operation-name substring and keeps
// the call order. An unscripted document is a test failure surfaced as an
// error, which doubles as the proof that a read never left the cache.
type scriptedRunner struct {
	responses map[string]string
	calls     []string
}

func (r *scriptedRunner) Run(_ context.Context, document string, vars map[string]any, out any) error {
	for name, payload := range r.responses {
		if strings.Contains(document, name) {
			r.calls = append(r.calls, name)
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
