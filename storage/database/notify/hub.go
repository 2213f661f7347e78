// Package notify fans out collection change signals to snapshot watchers.
package notify

import (
	"context"
	"sync"

	"github.com/trezcool/campuscopilot/core"
)

// ListFunc reads the current state of a collection.
type ListFunc func(ctx context.Context) ([]core.Document, error)

type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan struct{}]struct{})}
}

func (h *Hub) subscribe(collection string) (chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[collection] == nil {
		h.subs[collection] = make(map[chan struct{}]struct{})
	}
	h.subs[collection][ch] = struct{}{}
	return ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subs[collection], ch)
		if len(h.subs[collection]) == 0 {
			delete(h.subs, collection)
		}
	}
}

// Publish signals that collection changed. It never blocks: pending signals are merged.
func (h *Hub) Publish(collection string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[collection] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// Watchers returns the number of active watchers of collection.
func (h *Hub) Watchers(collection string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[collection])
}

// Watch sends list's result once, then again after every Publish of collection, until ctx
// is done. The channel holds at most one snapshot: an unread snapshot is replaced by the
// newer one. A failed re-list is skipped; the next change lists again.
func (h *Hub) Watch(ctx context.Context, collection string, list ListFunc) (<-chan []core.Document, error) {
	// subscribe first so that no change between the initial list and the loop is missed
	signals, unsubscribe := h.subscribe(collection)
	docs, err := list(ctx)
	if err != nil {
		unsubscribe()
		return nil, err
	}

	out := make(chan []core.Document, 1)
	out <- docs
	go func() {
		defer close(out)
		defer unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case <-signals:
				docs, err := list(ctx)
				if err != nil {
					continue
				}
				select {
				case <-out: // stale
				default:
				}
				select {
				case out <- docs:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
