// Package dummydb is an in-memory remote backend: a document store, an identity provider
// and the demo identity store.
package dummydb

import (
	"sync"
	"time"

	"github.com/trezcool/campuscopilot/core"
	"github.com/trezcool/campuscopilot/core/user"
	"github.com/trezcool/campuscopilot/storage/database/notify"
)

var NowFunc = time.Now // mockable

type (
	DB struct {
		documents  *documentTable
		identities *identityTable
		hub        *notify.Hub
	}

	documentTable struct {
		sync.RWMutex
		collections map[string]*collection
	}

	collection struct {
		order []string // creation order
		docs  map[string]*core.Document
	}

	identityTable struct {
		sync.RWMutex
		table map[string]*user.Account // by lower-cased email
	}
)

func Open() (*DB, error) {
	db := &DB{
		documents:  &documentTable{collections: make(map[string]*collection)},
		identities: &identityTable{table: make(map[string]*user.Account)},
		hub:        notify.NewHub(),
	}
	return db, nil
}
