// Package bolt implements db.Store on a local bbolt file, for single-node
// deployments that want the embedding cache to survive restarts without Redis.
package bolt

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"go.etcd.io/bbolt"

	"github.com/kailas-cloud/recodex/internal/db"
)

// Compile-time check: Store implements db.Store.
var _ db.Store = (*Store)(nil)

const (
	defaultBucket = "embeddings"
	// every value is prefixed with its expiry as unix nanoseconds, 0 for none
	headerSize = 8
)

// Config holds the bbolt file location.
type Config struct {
	Path        string
	Bucket      string
	OpenTimeout time.Duration
}

// Store implements db.Store on bbolt. Expired entries are dropped lazily on read.
type Store struct {
	db     *bbolt.DB
	bucket []byte
	now    func() time.Time
}

// NewStore opens (or creates) the bbolt file.
func NewStore(cfg Config) (*Store, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("path is required")
	}
	bucket := cfg.Bucket
	if bucket == "" {
		bucket = defaultBucket
	}
	timeout := cfg.OpenTimeout
	if timeout <= 0 {
		timeout = time.Second
	}

	bdb, err := bbolt.Open(cfg.Path, 0o600, &bbolt.Options{Timeout: timeout})
	if err != nil {
		return nil, &db.Error{Op: db.OpOpen, Err: err}
	}
	err = bdb.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucket))
		return err //nolint:wrapcheck // wrapped below
	})
	if err != nil {
		_ = bdb.Close()
		return nil, &db.Error{Op: db.OpOpen, Err: err}
	}

	return &Store{db: bdb, bucket: []byte(bucket), now: time.Now}, nil
}

// Ping checks that the file is still open.
func (s *Store) Ping(_ context.Context) error {
	err := s.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(s.bucket) == nil {
			return errors.New("bucket missing")
		}
		return nil
	})
	if err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// WaitForReady returns immediately once the file is open; it exists for parity with network stores.
func (s *Store) WaitForReady(ctx context.Context, _ time.Duration) error {
	return s.Ping(ctx)
}

// Close releases the file lock.
func (s *Store) Close() {
	_ = s.db.Close()
}

// Get retrieves a value by key. The returned slice is a copy.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	var data []byte
	expired := false
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(s.bucket).Get([]byte(key))
		if v == nil {
			return db.ErrKeyNotFound
		}
		if len(v) < headerSize {
			return fmt.Errorf("corrupt entry: %d bytes", len(v))
		}
		if exp := int64(binary.BigEndian.Uint64(v[:headerSize])); exp != 0 && s.now().UnixNano() >= exp {
			expired = true
			return db.ErrKeyNotFound
		}
		data = make([]byte, len(v)-headerSize)
		copy(data, v[headerSize:])
		return nil
	})
	if expired {
		_ = s.Del(context.Background(), key)
	}
	if errors.Is(err, db.ErrKeyNotFound) {
		return nil, db.ErrKeyNotFound
	}
	if err != nil {
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
	return data, nil
}

// Set stores a value without expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.SetWithTTL(ctx, key, value, 0)
}

// SetWithTTL stores a value that expires after ttl. A non-positive ttl means no expiry.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var exp int64
	if ttl > 0 {
		exp = s.now().Add(ttl).UnixNano()
	}
	buf := make([]byte, headerSize+len(value))
	binary.BigEndian.PutUint64(buf[:headerSize], uint64(exp))
	copy(buf[headerSize:], value)

	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Put([]byte(key), buf) //nolint:wrapcheck // wrapped below
	})
	if err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}

// Del removes a key. Deleting a missing key is not an error.
func (s *Store) Del(_ context.Context, key string) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(s.bucket).Delete([]byte(key)) //nolint:wrapcheck // wrapped below
	})
	if err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}
