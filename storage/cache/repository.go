// Package cache keeps the campus records as JSON blobs in a core.KVStore,
// seeding each blob with sample data the first time it is read.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/campuscopilot/core"
)

var NowFunc = time.Now // mockable

type options struct {
	healCorrupt bool
}

type Option func(*options)

// WithHealCorrupt makes a repository overwrite an undecodable blob with its seed.
// By default the blob is left as is and the seed is only returned.
func WithHealCorrupt(heal bool) Option {
	return func(o *options) { o.healCorrupt = heal }
}

// Repository stores a list of T under one blob key. It does no locking: concurrent
// SaveAll calls race and the last write wins.
type Repository[T any] struct {
	kv        core.KVStore
	key       string
	seed      func(now time.Time) []T
	rehydrate func(T) T
	logger    core.Logger
	opts      options
}

func NewRepository[T any](
	kv core.KVStore,
	key string,
	seed func(now time.Time) []T,
	rehydrate func(T) T,
	logger core.Logger,
	opts ...Option,
) *Repository[T] {
	repo := &Repository[T]{
		kv:        kv,
		key:       key,
		seed:      seed,
		rehydrate: rehydrate,
		logger:    logger,
	}
	for _, opt := range opts {
		opt(&repo.opts)
	}
	return repo
}

func (r *Repository[T]) Key() string {
	return r.key
}

// GetAll returns the stored list. A missing blob is seeded and the seed returned; an
// unreadable or corrupt blob is logged and the seed returned without being stored
// (unless healing is on).
func (r *Repository[T]) GetAll(ctx context.Context) []T {
	raw, ok, err := r.kv.Get(ctx, r.key)
	if err != nil {
		r.logger.Error(fmt.Sprintf("reading %s", r.key), err)
		return r.seed(NowFunc())
	}

	if !ok {
		seed := r.seed(NowFunc())
		_ = r.SaveAll(ctx, seed) // logged
		return seed
	}

	var items []T
	if err = json.Unmarshal([]byte(raw), &items); err != nil {
		r.logger.Error(fmt.Sprintf("decoding %s", r.key), errors.Wrap(err, "corrupt blob"))
		seed := r.seed(NowFunc())
		if r.opts.healCorrupt {
			_ = r.SaveAll(ctx, seed)
		}
		return seed
	}
	if items == nil {
		items = []T{}
	}
	for i := range items {
		items[i] = r.rehydrate(items[i])
	}
	return items
}

// SaveAll overwrites the stored list.
func (r *Repository[T]) SaveAll(ctx context.Context, items []T) error {
	if items == nil {
		items = []T{}
	}
	if err := saveJSON(ctx, r.kv, r.key, items); err != nil {
		r.logger.Error(fmt.Sprintf("saving %s", r.key), err)
		return core.E(core.KindStorage, "cache.SaveAll", err)
	}
	return nil
}

func saveJSON(ctx context.Context, kv core.KVStore, key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encoding %s", key)
	}
	return kv.Set(ctx, key, string(b))
}

// ClearAll removes every cache blob.
func ClearAll(ctx context.Context, kv core.KVStore) error {
	return kv.Remove(ctx, core.AllBlobKeys...)
}
