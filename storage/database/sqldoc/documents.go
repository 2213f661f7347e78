// Package sqldoc stores remote documents and identities in a SQL database.
package sqldoc

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/campuscopilot/core"
	"github.com/trezcool/campuscopilot/storage/database"
	"github.com/trezcool/campuscopilot/storage/database/notify"
)

var NowFunc = time.Now // mockable

const documentsTable = "documents"

type documentRow struct {
	Collection string `db:"collection"`
	ID         string `db:"id"`
	Data       string `db:"data"`
	CreatedAt  int64  `db:"created_at"`
}

func (row documentRow) document() (core.Document, error) {
	doc := core.Document{ID: row.ID, CreatedAt: time.Unix(0, row.CreatedAt).UTC()}
	if err := json.Unmarshal([]byte(row.Data), &doc.Data); err != nil {
		return core.Document{}, errors.Wrapf(err, "decoding document %s/%s", row.Collection, row.ID)
	}
	if doc.Data == nil {
		doc.Data = make(map[string]interface{})
	}
	return doc, nil
}

type documentStore struct {
	db  *sqlx.DB
	sb  sq.StatementBuilderType
	hub *notify.Hub
}

var _ core.DocumentStore = (*documentStore)(nil) // interface compliance check

// NewDocumentStore returns a document store over the migrated db. Watchers are only
// notified of the writes made through a store sharing the same hub.
func NewDocumentStore(db *sqlx.DB, engine string, hub *notify.Hub) core.DocumentStore {
	return &documentStore{db: db, sb: database.Builder(engine), hub: hub}
}

func storageErr(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return core.E(core.KindStorage, op, err)
}

func encode(data map[string]interface{}) (string, error) {
	clean := make(map[string]interface{}, len(data))
	for k, v := range data {
		if k == "id" || k == core.CreatedAtField {
			continue
		}
		clean[k] = v
	}
	raw, err := json.Marshal(clean)
	return string(raw), err
}

func (s *documentStore) get(ctx context.Context, q sqlx.QueryerContext, collection, id string) (documentRow, error) {
	query, args, err := s.sb.
		Select("collection", "id", "data", "created_at").
		From(documentsTable).
		Where(sq.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return documentRow{}, errors.Wrap(err, "building query")
	}
	var row documentRow
	err = sqlx.GetContext(ctx, q, &row, query, args...)
	return row, err
}

// upsert writes data under collection/id. created_at is only set by the first write.
func (s *documentStore) upsert(ctx context.Context, op, collection, id string, data map[string]interface{}) (core.Document, error) {
	raw, err := encode(data)
	if err != nil {
		return core.Document{}, core.E(core.KindValidation, op, err)
	}

	query, args, err := s.sb.
		Insert(documentsTable).
		Columns("collection", "id", "data", "created_at").
		Values(collection, id, raw, NowFunc().UnixNano()).
		Suffix("ON CONFLICT (collection, id) DO UPDATE SET data = excluded.data").
		ToSql()
	if err != nil {
		return core.Document{}, core.E(core.KindInternal, op, err)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return core.Document{}, storageErr(op, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return core.Document{}, storageErr(op, errors.Wrap(err, "writing document"))
	}
	row, err := s.get(ctx, tx, collection, id)
	if err != nil {
		return core.Document{}, storageErr(op, errors.Wrap(err, "reading written document"))
	}
	if err = tx.Commit(); err != nil {
		return core.Document{}, storageErr(op, err)
	}

	doc, err := row.document()
	if err != nil {
		return core.Document{}, core.E(core.KindInternal, op, err)
	}
	s.hub.Publish(collection)
	return doc, nil
}

func (s *documentStore) Create(ctx context.Context, collection string, data map[string]interface{}) (core.Document, error) {
	return s.upsert(ctx, "sqldoc.Create", collection, uuid.NewString(), data)
}

func (s *documentStore) Set(ctx context.Context, collection, id string, data map[string]interface{}) (core.Document, error) {
	const op = "sqldoc.Set"
	if id == "" {
		return core.Document{}, core.E(core.KindValidation, op, "document id is required")
	}
	return s.upsert(ctx, op, collection, id, data)
}

func (s *documentStore) Get(ctx context.Context, collection, id string) (core.Document, error) {
	const op = "sqldoc.Get"
	row, err := s.get(ctx, s.db, collection, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return core.Document{}, core.E(core.KindNotFound, op, "document not found")
		}
		return core.Document{}, storageErr(op, err)
	}
	doc, err := row.document()
	if err != nil {
		return core.Document{}, core.E(core.KindInternal, op, err)
	}
	return doc, nil
}

// List returns the documents of collection in creation order.
func (s *documentStore) List(ctx context.Context, collection string) ([]core.Document, error) {
	const op = "sqldoc.List"
	query, args, err := s.sb.
		Select("collection", "id", "data", "created_at").
		From(documentsTable).
		Where(sq.Eq{"collection": collection}).
		OrderBy(core.OrderByClauses(core.CreationOrder...)...).
		ToSql()
	if err != nil {
		return nil, core.E(core.KindInternal, op, err)
	}

	var rows []documentRow
	if err = s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, storageErr(op, err)
	}
	docs := make([]core.Document, 0, len(rows))
	for _, row := range rows {
		doc, err := row.document()
		if err != nil {
			return nil, core.E(core.KindInternal, op, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (s *documentStore) Delete(ctx context.Context, collection, id string) error {
	const op = "sqldoc.Delete"
	query, args, err := s.sb.
		Delete(documentsTable).
		Where(sq.Eq{"collection": collection, "id": id}).
		ToSql()
	if err != nil {
		return core.E(core.KindInternal, op, err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return storageErr(op, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.E(core.KindNotFound, op, "document not found")
	}
	s.hub.Publish(collection)
	return nil
}

func (s *documentStore) Watch(ctx context.Context, collection string) (<-chan []core.Document, error) {
	return s.hub.Watch(ctx, collection, func(ctx context.Context) ([]core.Document, error) {
		return s.List(ctx, collection)
	})
}
