package cache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/goliatone/go-cjkspacing/pkg/interfaces"
)

const bucketJoined = "joined"

// openTimeout bounds how long Open waits for another process holding the
// database lock.
const openTimeout = time.Second

// Bolt is a CacheProvider persisted in a bbolt database file.
type Bolt struct {
	db   *bolt.DB
	path string
}

var _ interfaces.CacheProvider = (*Bolt)(nil)

// Open opens or creates the database at path, creating parent directories as
// needed.
func Open(path string) (*Bolt, error) {
	if path == "" {
		return nil, fmt.Errorf("cache: path is required")
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("cache: create directory %s: %w", dir, err)
		}
	}
	db, err := bolt.Open(path, 0o644, &bolt.Options{Timeout: openTimeout})
	if err != nil {
		return nil, fmt.Errorf("cache: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketJoined))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: initialize %s: %w", path, err)
	}
	return &Bolt{db: db, path: path}, nil
}

// Path returns the database file location.
func (b *Bolt) Path() string { return b.path }

func (b *Bolt) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	var (
		value string
		ok    bool
	)
	err := b.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(bucketJoined)).Get([]byte(key))
		if v == nil {
			return nil
		}
		// v is only valid inside the transaction.
		value, ok = string(v), true
		return nil
	})
	return value, ok, err
}

func (b *Bolt) Set(ctx context.Context, key string, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketJoined)).Put([]byte(key), []byte(value))
	})
}

func (b *Bolt) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(bucketJoined)).Delete([]byte(key))
	})
}

func (b *Bolt) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return b.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketJoined)); err != nil {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketJoined))
		return err
	})
}

// Close releases the database file.
func (b *Bolt) Close() error {
	return b.db.Close()
}
