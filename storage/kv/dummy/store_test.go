package dummykv

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/campuscopilot/core"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	store := New()

	_, ok, err := store.Get(ctx, core.UserDataKey)
	assert.NoError(t, err)
	assert.False(t, ok)

	assert.NoError(t, store.Set(ctx, core.UserDataKey, `{"id":"1"}`))
	assert.NoError(t, store.Set(ctx, core.ClubsKey, `[]`))
	assert.ElementsMatch(t, []string{core.UserDataKey, core.ClubsKey}, store.Keys())

	errBoom := errors.New("boom")
	store.FailOn[core.ClubsKey] = errBoom
	err = store.Remove(ctx, core.ClubsKey, core.UserDataKey)
	assert.ErrorIs(t, err, errBoom)
	assert.ElementsMatch(t, []string{core.ClubsKey}, store.Keys(), "other keys are still removed")
}
