package core

import "context"

// Blob keys of the local cache.
const (
	EventsKey        = "events"
	AssignmentsKey   = "assignments"
	ClubsKey         = "clubs"
	NotificationsKey = "notifications"
	SettingsKey      = "settings"
	UserDataKey      = "userData"
)

// AllBlobKeys lists every blob the cache owns; logout removes all of them.
var AllBlobKeys = []string{
	EventsKey,
	AssignmentsKey,
	ClubsKey,
	NotificationsKey,
	SettingsKey,
	UserDataKey,
}

// KVStore is the on-device string key-value store backing the cache.
// Get reports ok=false when the key is absent.
// Remove is not atomic across keys: a failure leaves earlier removals in place.
type KVStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
}
