package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
)

// Remote collections.
const (
	UsersCollection         = "users"
	EventsCollection        = "events"
	AssignmentsCollection   = "assignments"
	NotificationsCollection = "notifications"
)

// CreatedAtField is the server timestamp stamped when a document is first written.
const CreatedAtField = "createdAt"

// Document is a record of the remote document store.
type Document struct {
	ID        string                 `json:"id"`
	Data      map[string]interface{} `json:"data"`
	CreatedAt time.Time              `json:"createdAt"`
}

// Flatten returns the document data with "id" and "createdAt" set from the document.
func (d Document) Flatten() map[string]interface{} {
	m := make(map[string]interface{}, len(d.Data)+2)
	for k, v := range d.Data {
		m[k] = v
	}
	m["id"] = d.ID
	if !d.CreatedAt.IsZero() {
		m[CreatedAtField] = d.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	return m
}

// Decode unmarshals the flattened document into v.
func (d Document) Decode(v interface{}) error {
	b, err := json.Marshal(d.Flatten())
	if err != nil {
		return errors.Wrap(err, "encoding document")
	}
	return errors.Wrap(json.Unmarshal(b, v), "decoding document")
}

// EncodeData turns a record into document data. The client "id" and any "createdAt" are
// dropped: the store assigns both.
func EncodeData(record interface{}) (map[string]interface{}, error) {
	b, err := json.Marshal(record)
	if err != nil {
		return nil, errors.Wrap(err, "encoding record")
	}
	data := make(map[string]interface{})
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, errors.Wrap(err, "record is not an object")
	}
	delete(data, "id")
	delete(data, CreatedAtField)
	return data, nil
}

// DocumentStore is the remote backend's document API.
//
// Watch sends the current collection first, then one full snapshot after every write to
// the collection. A watcher that falls behind only sees the latest snapshot. The channel is
// closed when ctx is done.
type DocumentStore interface {
	Create(ctx context.Context, collection string, data map[string]interface{}) (Document, error)
	Set(ctx context.Context, collection, id string, data map[string]interface{}) (Document, error)
	Get(ctx context.Context, collection, id string) (Document, error)
	List(ctx context.Context, collection string) ([]Document, error)
	Delete(ctx context.Context, collection, id string) error
	Watch(ctx context.Context, collection string) (<-chan []Document, error)
}

// IdentityProvider authenticates email/password accounts and returns their opaque uid.
type IdentityProvider interface {
	SignUp(ctx context.Context, email, password string) (uid string, err error)
	SignIn(ctx context.Context, email, password string) (uid string, err error)
	SignOut(ctx context.Context) error
}
