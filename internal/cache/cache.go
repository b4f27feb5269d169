package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/jonathan/fragrance-customizer/internal/types"
)

const recipeKeyPrefix = "recipe:"

// RecipeCache is a BadgerDB-backed recipe cache. Safe for concurrent use.
type RecipeCache struct {
	db  *badger.DB
	ttl time.Duration
}

// Open opens (or creates) a cache in dir. Entries expire after ttl; zero keeps them forever.
func Open(dir string, ttl time.Duration) (*RecipeCache, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	return open(opts, ttl)
}

// OpenInMemory opens a cache that lives only for the life of the process.
func OpenInMemory(ttl time.Duration) (*RecipeCache, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	return open(opts, ttl)
}

func open(opts badger.Options, ttl time.Duration) (*RecipeCache, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, &Error{Op: "open", Cause: err}
	}
	return &RecipeCache{db: db, ttl: ttl}, nil
}

// Close flushes and closes the underlying database.
func (c *RecipeCache) Close() error {
	return c.db.Close()
}

// Get returns the cached recipe for key. The second result is false on a miss.
func (c *RecipeCache) Get(ctx context.Context, key string) (*types.Recipe, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	var recipe types.Recipe
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(recipeKeyPrefix + key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &recipe)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, &Error{Op: "get", Key: key, Cause: err}
	}
	return &recipe, true, nil
}

// Put stores recipe under key, replacing any previous entry.
func (c *RecipeCache) Put(ctx context.Context, key string, recipe types.Recipe) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(recipe)
	if err != nil {
		return &Error{Op: "put", Key: key, Cause: fmt.Errorf("marshal recipe: %w", err)}
	}

	err = c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(recipeKeyPrefix+key), data)
		if c.ttl > 0 {
			entry = entry.WithTTL(c.ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return &Error{Op: "put", Key: key, Cause: err}
	}
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (c *RecipeCache) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := c.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(recipeKeyPrefix + key))
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return &Error{Op: "delete", Key: key, Cause: err}
	}
	return nil
}
