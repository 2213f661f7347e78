package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/trezcool/campuscopilot/core"
	"github.com/trezcool/campuscopilot/storage/database/notify"
)

type documentStore struct {
	db  *documentTable
	hub *notify.Hub
}

var _ core.DocumentStore = (*documentStore)(nil) // interface compliance check

func NewDocumentStore(db *DB) core.DocumentStore {
	return &documentStore{db: db.documents, hub: db.hub}
}

func copyDoc(doc *core.Document) core.Document {
	data := make(map[string]interface{}, len(doc.Data))
	for k, v := range doc.Data {
		data[k] = v
	}
	return core.Document{ID: doc.ID, Data: data, CreatedAt: doc.CreatedAt}
}

func (s *documentStore) coll(name string) *collection {
	c, ok := s.db.collections[name]
	if !ok {
		c = &collection{docs: make(map[string]*core.Document)}
		s.db.collections[name] = c
	}
	return c
}

func (s *documentStore) write(collection, id string, data map[string]interface{}) core.Document {
	s.db.Lock()
	c := s.coll(collection)
	doc, exists := c.docs[id]
	if !exists {
		doc = &core.Document{ID: id, CreatedAt: NowFunc().UTC()}
		c.docs[id] = doc
		c.order = append(c.order, id)
	}
	doc.Data = copyDoc(&core.Document{Data: data}).Data
	delete(doc.Data, "id")
	delete(doc.Data, core.CreatedAtField)
	out := copyDoc(doc)
	s.db.Unlock()

	s.hub.Publish(collection)
	return out
}

func (s *documentStore) Create(ctx context.Context, collection string, data map[string]interface{}) (core.Document, error) {
	if err := ctx.Err(); err != nil {
		return core.Document{}, err
	}
	return s.write(collection, uuid.NewString(), data), nil
}

func (s *documentStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) (core.Document, error) {
	if err := ctx.Err(); err != nil {
		return core.Document{}, err
	}
	if id == "" {
		return core.Document{}, core.E(core.KindValidation, "dummydb.Set", "document id is required")
	}
	return s.write(collection, id, data), nil
}

func (s *documentStore) Get(ctx context.Context, collection, id string) (core.Document, error) {
	if err := ctx.Err(); err != nil {
		return core.Document{}, err
	}
	s.db.RLock()
	defer s.db.RUnlock()

	if c, ok := s.db.collections[collection]; ok {
		if doc, ok := c.docs[id]; ok {
			return copyDoc(doc), nil
		}
	}
	return core.Document{}, core.E(core.KindNotFound, "dummydb.Get", "document not found")
}

func (s *documentStore) List(ctx context.Context, collection string) ([]core.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.db.RLock()
	defer s.db.RUnlock()

	c, ok := s.db.collections[collection]
	if !ok {
		return []core.Document{}, nil
	}
	docs := make([]core.Document, 0, len(c.order))
	for _, id := range c.order {
		docs = append(docs, copyDoc(c.docs[id]))
	}
	return docs, nil
}

func (s *documentStore) Delete(ctx context.Context, collection, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.db.Lock()
	c, ok := s.db.collections[collection]
	if !ok || c.docs[id] == nil {
		s.db.Unlock()
		return core.E(core.KindNotFound, "dummydb.Delete", "document not found")
	}
	delete(c.docs, id)
	for i, docID := range c.order {
		if docID == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	s.db.Unlock()

	s.hub.Publish(collection)
	return nil
}

func (s *documentStore) Watch(ctx context.Context, collection string) (<-chan []core.Document, error) {
	return s.hub.Watch(ctx, collection, func(ctx context.Context) ([]core.Document, error) {
		return s.List(ctx, collection)
	})
}
