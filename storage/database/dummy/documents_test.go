package dummydb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/campuscopilot/core"
)

func newStore(t *testing.T) core.DocumentStore {
	db, err := Open()
	require.NoError(t, err)
	return NewDocumentStore(db)
}

func TestDocumentStore_CRUD(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	stamp := time.Date(2025, time.January, 5, 8, 0, 0, 0, time.UTC)
	NowFunc = func() time.Time { return stamp }
	defer func() { NowFunc = time.Now }()

	created, err := store.Create(ctx, core.EventsCollection, map[string]interface{}{
		"id":    "client-id",
		"title": "Orientation",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "client-id", created.ID, "ids are assigned by the store")
	assert.Equal(t, stamp, created.CreatedAt)
	assert.Equal(t, map[string]interface{}{"title": "Orientation"}, created.Data)

	got, err := store.Get(ctx, core.EventsCollection, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	second, err := store.Create(ctx, core.EventsCollection, map[string]interface{}{"title": "Career fair"})
	require.NoError(t, err)

	docs, err := store.List(ctx, core.EventsCollection)
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, created.ID, docs[0].ID, "creation order")
	assert.Equal(t, second.ID, docs[1].ID)

	updated, err := store.Set(ctx, core.EventsCollection, created.ID, map[string]interface{}{"title": "Orientation day"})
	require.NoError(t, err)
	assert.Equal(t, "Orientation day", updated.Data["title"])
	assert.Equal(t, stamp, updated.CreatedAt)

	require.NoError(t, store.Delete(ctx, core.EventsCollection, created.ID))
	_, err = store.Get(ctx, core.EventsCollection, created.ID)
	assert.True(t, core.IsKind(err, core.KindNotFound))
	assert.True(t, core.IsKind(store.Delete(ctx, core.EventsCollection, created.ID), core.KindNotFound))

	empty, err := store.List(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestDocumentStore_ReturnedDataIsACopy(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	doc, err := store.Create(ctx, core.NotificationsCollection, map[string]interface{}{"title": "a"})
	require.NoError(t, err)
	doc.Data["title"] = "mutated"

	got, err := store.Get(ctx, core.NotificationsCollection, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Data["title"])
}

func TestDocumentStore_Watch(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := newStore(t)

	_, err := store.Create(ctx, core.AssignmentsCollection, map[string]interface{}{"title": "first"})
	require.NoError(t, err)

	snapshots, err := store.Watch(ctx, core.AssignmentsCollection)
	require.NoError(t, err)
	assert.Len(t, <-snapshots, 1)

	_, err = store.Create(ctx, core.AssignmentsCollection, map[string]interface{}{"title": "second"})
	require.NoError(t, err)

	select {
	case docs := <-snapshots:
		assert.Len(t, docs, 2)
	case <-time.After(time.Second):
		t.Fatal("no snapshot after create")
	}
}
