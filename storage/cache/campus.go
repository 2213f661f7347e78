package cache

import (
	"context"
	"time"

	"github.com/trezcool/campuscopilot/core"
	"github.com/trezcool/campuscopilot/core/campus"
)

func NewEventRepository(kv core.KVStore, logger core.Logger, opts ...Option) *Repository[campus.Event] {
	return NewRepository(kv, core.EventsKey, campus.SeedEvents, campus.Event.Rehydrate, logger, opts...)
}

func NewAssignmentRepository(kv core.KVStore, logger core.Logger, opts ...Option) *Repository[campus.Assignment] {
	return NewRepository(kv, core.AssignmentsKey, campus.SeedAssignments, campus.Assignment.Rehydrate, logger, opts...)
}

func NewClubRepository(kv core.KVStore, logger core.Logger, opts ...Option) *Repository[campus.Club] {
	seed := func(time.Time) []campus.Club { return campus.SeedClubs() }
	return NewRepository(kv, core.ClubsKey, seed, campus.Club.Rehydrate, logger, opts...)
}

func NewNotificationRepository(kv core.KVStore, logger core.Logger, opts ...Option) *Repository[campus.Notification] {
	return NewRepository(kv, core.NotificationsKey, campus.SeedNotifications, campus.Notification.Rehydrate, logger, opts...)
}

// SettingsStore keeps the device Settings, defaulting them on first read.
type SettingsStore struct {
	kv     core.KVStore
	logger core.Logger
	opts   options
}

func NewSettingsStore(kv core.KVStore, logger core.Logger, opts ...Option) *SettingsStore {
	store := &SettingsStore{kv: kv, logger: logger}
	for _, opt := range opts {
		opt(&store.opts)
	}
	return store
}

func (s *SettingsStore) Get(ctx context.Context) campus.Settings {
	settings := campus.DefaultSettings() // fields missing from the blob keep their default
	found, err := getJSON(ctx, s.kv, core.SettingsKey, &settings)
	switch {
	case err != nil && found: // corrupt
		s.logger.Error("decoding settings", err)
		if s.opts.healCorrupt {
			_ = s.Save(ctx, campus.DefaultSettings())
		}
		return campus.DefaultSettings()
	case err != nil:
		s.logger.Error("reading settings", err)
		return campus.DefaultSettings()
	case !found:
		settings = campus.DefaultSettings()
		_ = s.Save(ctx, settings) // logged
	}
	return settings
}

func (s *SettingsStore) Save(ctx context.Context, settings campus.Settings) error {
	if err := saveJSON(ctx, s.kv, core.SettingsKey, settings); err != nil {
		s.logger.Error("saving settings", err)
		return core.E(core.KindStorage, "cache.SaveSettings", err)
	}
	return nil
}
