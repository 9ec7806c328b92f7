package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	gocache "github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"
)

// Store is the normalized client-side cache: backend entities keyed by id
// plus snapshots of named list queries. It is the only shared mutable
// resource in the process; every write settles before returning so a read
// issued after a write on the same goroutine always observes it.
type Store struct {
	marshal *marshaler.Marshaler
	wait    func()
	ttl     time.Duration
}

// New wraps a gocache backing store. The wait callback flushes the
// backing store's write buffers (ristretto applies sets asynchronously);
// pass nil for stores with synchronous writes.
func New(backing store.StoreInterface, wait func()) *Store {
	manager := gocache.New[any](backing)
	return &Store{
		marshal: marshaler.New(manager),
		wait:    wait,
		ttl:     15 * time.Minute,
	}
}

func (s *Store) settle() {
	if s.wait != nil {
		s.wait()
	}
}

func entityKey(kind, id string) string {
	return fmt.Sprintf("%s#%s", kind, id)
}

func listKey(name string) string {
	return fmt.Sprintf("list#%s", name)
}

// IsMiss reports whether err only means the key was absent.
func IsMiss(err error) bool {
	var missing *store.NotFound
	return errors.As(err, &missing)
}

func (s *Store) ReadByID(ctx context.Context, kind, id string, out any) error {
	_, err := s.marshal.Get(ctx, entityKey(kind, id), out)
	return err
}

func (s *Store) WriteByID(ctx context.Context, kind, id string, value any, tags ...string) error {
	err := s.marshal.Set(
		ctx,
		entityKey(kind, id),
		value,
		store.WithExpiration(s.ttl),
		store.WithCost(1),
		store.WithTags(append(tags, kind)),
	)
	s.settle()
	return err
}

func (s *Store) DeleteByID(ctx context.Context, kind, id string) error {
	err := s.marshal.Delete(ctx, entityKey(kind, id))
	s.settle()
	return err
}

func (s *Store) ReadList(ctx context.Context, name string, out any) error {
	_, err := s.marshal.Get(ctx, listKey(name), out)
	return err
}

func (s *Store) WriteList(ctx context.Context, name string, value any, tags ...string) error {
	err := s.marshal.Set(
		ctx,
		listKey(name),
		value,
		store.WithExpiration(s.ttl),
		store.WithCost(1),
		store.WithTags(append(tags, name)),
	)
	s.settle()
	return err
}

// Invalidate evicts every entry carrying any of the given tags.
func (s *Store) Invalidate(ctx context.Context, tags ...string) error {
	err := s.marshal.Invalidate(ctx, store.WithInvalidateTags(tags))
	s.settle()
	return err
}

// PatchList applies an in-place recipe to a cached list snapshot and
// writes it back. A cache miss is not an error: there is nothing to patch
// and the next read-through will fetch a fresh snapshot anyway.
func PatchList[T any](ctx context.Context, s *Store, name string, patch func(*T)) error {
	var snapshot T
	if err := s.ReadList(ctx, name, &snapshot); err != nil {
		if IsMiss(err) {
			return nil
		}
		return err
	}

	patch(&snapshot)

	return s.WriteList(ctx, name, snapshot)
}
