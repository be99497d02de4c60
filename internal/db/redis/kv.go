package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/recodex/internal/db"
)

// Get returns the raw bytes stored at key, or db.ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Do(ctx, s.client.B().Get().Key(key).Build()).AsBytes()
	switch {
	case err == nil:
		return data, nil
	case rueidis.IsRedisNil(err):
		return nil, db.ErrKeyNotFound
	default:
		return nil, &db.Error{Op: db.OpGet, Err: err}
	}
}

// Set stores value at key with no expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.set(ctx, key, value, 0)
}

// SetWithTTL stores value at key. Redis expiry has second granularity, so ttl is
// truncated; a ttl under one second (or non-positive) stores without expiry.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return s.set(ctx, key, value, ttl.Truncate(time.Second))
}

// Del removes key with UNLINK, so large values are reclaimed off the main thread.
func (s *Store) Del(ctx context.Context, key string) error {
	if err := s.client.Do(ctx, s.client.B().Unlink().Key(key).Build()).Error(); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

func (s *Store) set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var cmd rueidis.Completed
	v := s.client.B().Set().Key(key).Value(rueidis.BinaryString(value))
	if ttl > 0 {
		cmd = v.Ex(ttl).Build()
	} else {
		cmd = v.Build()
	}
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return &db.Error{Op: db.OpSet, Err: err}
	}
	return nil
}
