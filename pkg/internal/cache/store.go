package cache

import (
	"github.com/dgraph-io/ristretto"
	"github.com/eko/gocache/lib/v4/store"
	ristretto_store "github.com/eko/gocache/store/ristretto/v4"
)

var (
	S store.StoreInterface
	R *ristretto.Cache
)

func NewStore() error {
	client, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e7,
		MaxCost:     1 << 29,
		BufferItems: 64,
	})
	if err != nil {
		return err
	}

	R = client
	S = ristretto_store.NewRistretto(client)

	return nil
}
