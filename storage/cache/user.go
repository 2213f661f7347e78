package cache

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/trezcool/campuscopilot/core"
	"github.com/trezcool/campuscopilot/core/user"
)

// UserStore keeps the signed-in user's profile. It has no seed.
type UserStore struct {
	kv     core.KVStore
	logger core.Logger
}

var _ user.ProfileCache = (*UserStore)(nil) // interface compliance check

func NewUserStore(kv core.KVStore, logger core.Logger) *UserStore {
	return &UserStore{kv: kv, logger: logger}
}

// Get returns nil when no profile is cached or it cannot be read.
func (s *UserStore) Get(ctx context.Context) *user.User {
	var usr user.User
	found, err := getJSON(ctx, s.kv, core.UserDataKey, &usr)
	if err != nil {
		s.logger.Error("reading user data", err)
		return nil
	}
	if !found {
		return nil
	}
	return &usr
}

func (s *UserStore) Save(ctx context.Context, usr user.User) error {
	if err := saveJSON(ctx, s.kv, core.UserDataKey, usr); err != nil {
		s.logger.Error("saving user data", err, usr)
		return core.E(core.KindStorage, "cache.SaveUser", err)
	}
	return nil
}

func (s *UserStore) ClearAll(ctx context.Context) error {
	return ClearAll(ctx, s.kv)
}

// getJSON decodes the blob at key into v. found reports whether the blob exists, so that
// an error with found=true means the blob is corrupt.
func getJSON(ctx context.Context, kv core.KVStore, key string, v interface{}) (found bool, err error) {
	raw, ok, err := kv.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	if err = json.Unmarshal([]byte(raw), v); err != nil {
		return true, errors.Wrapf(err, "decoding %s", key)
	}
	return true, nil
}
