// Package bridge pushes local records to the remote document store and delivers live
// full-collection snapshots to subscribers.
package bridge

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/sourcegraph/conc"
	"github.com/sourcegraph/conc/panics"

	"github.com/trezcool/campuscopilot/core"
)

type Bridge struct {
	store  core.DocumentStore
	logger core.Logger

	wg     conc.WaitGroup
	mu     sync.Mutex
	subs   map[uint64]*subscription
	nextID uint64
	closed bool
}

type subscription struct {
	collection string
	cancel     context.CancelFunc
	stopped    atomic.Bool
}

func (s *subscription) stop() {
	s.stopped.Store(true)
	s.cancel()
}

func New(store core.DocumentStore, logger core.Logger) *Bridge {
	return &Bridge{
		store:  store,
		logger: logger,
		subs:   make(map[uint64]*subscription),
	}
}

// remoteErr keeps typed errors and classifies everything else as a network failure.
func remoteErr(op string, err error) error {
	var e *core.Error
	if errors.As(err, &e) {
		return err
	}
	var vErr *core.ValidationError
	if errors.As(err, &vErr) {
		return err
	}
	return core.E(core.KindNetwork, op, err)
}

// Create writes record as a new document of collection and returns its id.
// Any client-side "id" is dropped; the store assigns the id and stamps createdAt.
func (b *Bridge) Create(ctx context.Context, collection string, record interface{}) (string, error) {
	const op = "bridge.Create"
	data, err := core.EncodeData(record)
	if err != nil {
		return "", core.E(core.KindValidation, op, err)
	}
	doc, err := b.store.Create(ctx, collection, data)
	if err != nil {
		return "", remoteErr(op, err)
	}
	return doc.ID, nil
}

// Set writes record as the document collection/id, replacing its data.
func (b *Bridge) Set(ctx context.Context, collection, id string, record interface{}) (core.Document, error) {
	const op = "bridge.Set"
	data, err := core.EncodeData(record)
	if err != nil {
		return core.Document{}, core.E(core.KindValidation, op, err)
	}
	doc, err := b.store.Set(ctx, collection, id, data)
	if err != nil {
		return core.Document{}, remoteErr(op, err)
	}
	return doc, nil
}

func (b *Bridge) Get(ctx context.Context, collection, id string) (core.Document, error) {
	doc, err := b.store.Get(ctx, collection, id)
	if err != nil {
		return core.Document{}, remoteErr("bridge.Get", err)
	}
	return doc, nil
}

// List reads the whole collection once.
func (b *Bridge) List(ctx context.Context, collection string) ([]core.Document, error) {
	docs, err := b.store.List(ctx, collection)
	if err != nil {
		return nil, remoteErr("bridge.List", err)
	}
	return docs, nil
}

func (b *Bridge) Delete(ctx context.Context, collection, id string) error {
	if err := b.store.Delete(ctx, collection, id); err != nil {
		return remoteErr("bridge.Delete", err)
	}
	return nil
}

// Subscribe calls onChange with the complete collection once, then after every change.
// Each subscription has its own watch and goroutine; calling the returned function stops
// further callbacks of this subscription only. A panicking callback is logged.
func (b *Bridge) Subscribe(collection string, onChange func([]core.Document)) (unsubscribe func(), err error) {
	const op = "bridge.Subscribe"
	if b.isClosed() {
		return nil, core.E(core.KindInternal, op, "bridge closed")
	}

	ctx, cancel := context.WithCancel(context.Background())
	snapshots, err := b.store.Watch(ctx, collection)
	if err != nil {
		cancel()
		return nil, remoteErr(op, err)
	}
	sub := &subscription{collection: collection, cancel: cancel}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		cancel()
		return nil, core.E(core.KindInternal, op, "bridge closed")
	}
	id := b.nextID
	b.nextID++
	b.subs[id] = sub
	// counted before Close can Wait
	b.wg.Go(func() {
		b.run(ctx, sub, snapshots, onChange)
	})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			sub.stop()
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}, nil
}

func (b *Bridge) run(ctx context.Context, sub *subscription, snapshots <-chan []core.Document, onChange func([]core.Document)) {
	for {
		select {
		case <-ctx.Done():
			return
		case docs, ok := <-snapshots:
			if !ok {
				if ctx.Err() == nil {
					b.logger.Warn(fmt.Sprintf("watch on %s ended", sub.collection))
				}
				return
			}
			if sub.stopped.Load() {
				return
			}
			b.deliver(sub.collection, docs, onChange)
		}
	}
}

func (b *Bridge) deliver(collection string, docs []core.Document, onChange func([]core.Document)) {
	var pc panics.Catcher
	pc.Try(func() { onChange(docs) })
	if r := pc.Recovered(); r != nil {
		b.logger.Error(fmt.Sprintf("subscriber of %s panicked", collection), r.AsError())
	}
}

// Subscriptions returns the number of live subscriptions.
func (b *Bridge) Subscriptions() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Bridge) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Close stops every subscription and waits for their goroutines to return.
func (b *Bridge) Close() {
	b.mu.Lock()
	b.closed = true
	for id, sub := range b.subs {
		sub.stop()
		delete(b.subs, id)
	}
	b.mu.Unlock()
	b.wg.Wait()
}

// SubscribeTo is Subscribe with documents decoded into T (the document id becomes the
// "id" field). Documents that do not decode are logged and skipped. Records with a
// Rehydrate() T method are rehydrated.
func SubscribeTo[T any](b *Bridge, collection string, onChange func([]T)) (unsubscribe func(), err error) {
	return b.Subscribe(collection, func(docs []core.Document) {
		onChange(decodeAll[T](b.logger, collection, docs))
	})
}

// ListOf is List with documents decoded into T.
func ListOf[T any](ctx context.Context, b *Bridge, collection string) ([]T, error) {
	docs, err := b.List(ctx, collection)
	if err != nil {
		return nil, err
	}
	return decodeAll[T](b.logger, collection, docs), nil
}

func decodeAll[T any](logger core.Logger, collection string, docs []core.Document) []T {
	items := make([]T, 0, len(docs))
	for _, doc := range docs {
		var item T
		if err := doc.Decode(&item); err != nil {
			logger.Warn(fmt.Sprintf("skipping %s/%s", collection, doc.ID), err)
			continue
		}
		if r, ok := any(item).(interface{ Rehydrate() T }); ok {
			item = r.Rehydrate()
		}
		items = append(items, item)
	}
	return items
}
