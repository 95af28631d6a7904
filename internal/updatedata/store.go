// Movici Simulation Core
// Copyright 2026 Movici Simulation Core Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/movici/simulation-core

// Package updatedata implements the Update-Data Service: a
// single-instance in-memory store for the opaque update blobs models
// PUT and GET during a run, backed by an in-memory badger instance for
// per-key transactional atomicity.
package updatedata

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/movici/simulation-core/internal/dataset"
)

// ErrKeyNotFound is returned by Get when key has no stored blob.
var ErrKeyNotFound = errors.New("updatedata: key not found")

// Store is the Update-Data Service's backing store: opaque per-key
// blobs, serializable per-key write atomicity courtesy of badger
// transactions, and prefix-scoped CLEAR.
type Store struct {
	db *badger.DB
}

// NewStore opens an in-memory badger instance. The Update-Data Service
// is single-instance and never persists across restarts.
func NewStore() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("updatedata: open badger: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the underlying badger instance.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores data under key, overwriting any existing blob. Only the
// producing model is expected to ever write its own keys; the service
// itself does not enforce that - the Connector's key-prefix convention
// does.
func (s *Store) Put(key string, data []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

// Get retrieves the blob stored under key. When mask is non-nil, the
// blob is decoded as a dataset.Update, projected through mask (a pure,
// deterministic function of the blob and the mask), and re-encoded
// before returning - the stored bytes themselves are never mutated.
func (s *Store) Get(key string, mask map[string]map[string][]string) ([]byte, error) {
	var raw []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrKeyNotFound
		}
		if err != nil {
			return fmt.Errorf("updatedata: get %q: %w", key, err)
		}
		return item.Value(func(val []byte) error {
			raw = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	if mask == nil {
		return raw, nil
	}

	u, err := dataset.ParseUpdate(raw, dataset.Schema{})
	if err != nil {
		return nil, fmt.Errorf("updatedata: decode blob for masking: %w", err)
	}
	projected, err := u.Project(mask).Encode()
	if err != nil {
		return nil, fmt.Errorf("updatedata: encode projected blob: %w", err)
	}
	return projected, nil
}

// Clear removes every key starting with prefix. Called by each model
// once per NEW_TIME against its own key prefix.
func (s *Store) Clear(prefix string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		var keys [][]byte
		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, append([]byte(nil), it.Item().Key()...))
		}
		for _, k := range keys {
			if err := txn.Delete(k); err != nil {
				return fmt.Errorf("updatedata: delete %q: %w", k, err)
			}
		}
		return nil
	})
}
