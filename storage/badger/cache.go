// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/pagefind/core"
	"github.com/poiesic/pagefind/storage"
)

// ExtractionCache implements storage.ExtractionCache on BadgerDB.
type ExtractionCache struct {
	backend     *Backend
	ownsBackend bool
	logger      *slog.Logger
}

// NewExtractionCache opens (or creates) a cache database in dir.
//
// Returns storage.ExtractionCache interface to enforce abstraction.
func NewExtractionCache(dir string) (storage.ExtractionCache, error) {
	backend, err := OpenBackend(dir, false)
	if err != nil {
		return nil, err
	}
	return newExtractionCache(backend, true), nil
}

// NewExtractionCacheWithBackend creates a cache on an already-open backend.
// The caller keeps ownership of the backend and must close it.
func NewExtractionCacheWithBackend(backend *Backend) storage.ExtractionCache {
	return newExtractionCache(backend, false)
}

func newExtractionCache(backend *Backend, owns bool) *ExtractionCache {
	return &ExtractionCache{
		backend:     backend,
		ownsBackend: owns,
		logger:      slog.Default().With("component", "extraction-cache"),
	}
}

// Get returns the cached result for id, or nil on a miss.
func (c *ExtractionCache) Get(ctx context.Context, id core.ID) (*core.DocumentExtractionResult, error) {
	if c.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var result *core.DocumentExtractionResult
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeExtractionKey(id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			result, err = storage.UnmarshalExtractionResult(val)
			return err
		})
	}, false)

	if errors.Is(err, badger.ErrKeyNotFound) {
		c.logger.Debug("cache miss", "id", id)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.logger.Debug("cache hit", "id", id, "pages", len(result.Pages))
	return result, nil
}

// Put stores result under result.ID.
func (c *ExtractionCache) Put(ctx context.Context, result *core.DocumentExtractionResult) error {
	if c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data := storage.MarshalExtractionResult(result)
	return c.backend.WithTx(func(tx *badger.Txn) error {
		return tx.Set(makeExtractionKey(result.ID), data)
	}, true)
}

// Delete removes the entry for id.
func (c *ExtractionCache) Delete(ctx context.Context, id core.ID) error {
	if c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return c.backend.WithTx(func(tx *badger.Txn) error {
		return tx.Delete(makeExtractionKey(id))
	}, true)
}

// IDs returns the document IDs currently cached.
func (c *ExtractionCache) IDs(ctx context.Context) ([]core.ID, error) {
	if c.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var ids []core.ID
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(extractionPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			if id, ok := extractionIDFromKey(iter.Item().Key()); ok {
				ids = append(ids, id)
			}
		}
		return nil
	}, false)
	return ids, err
}

// Close closes the backend if the cache opened it.
func (c *ExtractionCache) Close() error {
	if !c.ownsBackend || c.backend.IsClosed() {
		return nil
	}
	return c.backend.Close()
}
