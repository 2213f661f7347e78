// Package dummykv is an in-memory core.KVStore.
package dummykv

import (
	"context"
	"sync"

	"github.com/trezcool/campuscopilot/core"
)

type Store struct {
	sync.RWMutex
	table map[string]string

	// FailOn makes every operation on the listed keys fail with the mapped error.
	FailOn map[string]error
}

var _ core.KVStore = (*Store)(nil) // interface compliance check

func New() *Store {
	return &Store{table: make(map[string]string), FailOn: make(map[string]error)}
}

func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	s.RLock()
	defer s.RUnlock()
	if err := s.FailOn[key]; err != nil {
		return "", false, err
	}
	v, ok := s.table[key]
	return v, ok, nil
}

func (s *Store) Set(_ context.Context, key, value string) error {
	s.Lock()
	defer s.Unlock()
	if err := s.FailOn[key]; err != nil {
		return err
	}
	s.table[key] = value
	return nil
}

func (s *Store) Remove(_ context.Context, keys ...string) error {
	s.Lock()
	defer s.Unlock()
	var firstErr error
	for _, key := range keys {
		if err := s.FailOn[key]; err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		delete(s.table, key)
	}
	return firstErr
}

// Keys returns the stored keys.
func (s *Store) Keys() []string {
	s.RLock()
	defer s.RUnlock()
	keys := make([]string, 0, len(s.table))
	for k := range s.table {
		keys = append(keys, k)
	}
	return keys
}
