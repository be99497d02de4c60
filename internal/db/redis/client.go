// Package redis backs the embedding cache with Redis or Valkey through rueidis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/recodex/internal/db"
)

var _ db.Store = (*Store)(nil)

const (
	defaultClientName  = "recodex"
	defaultDialTimeout = 5 * time.Second

	readyPollMin = 50 * time.Millisecond
	readyPollMax = time.Second
)

// Config holds connection parameters. Valkey speaks the same protocol, so the
// same config serves both.
type Config struct {
	Addrs       []string
	Username    string
	Password    string
	DB          int
	ClientName  string        // CLIENT SETNAME value; "recodex" when empty
	DialTimeout time.Duration // 5s when zero
}

// Store is a rueidis-backed cache. Client-side caching is off: every value is
// written once and read by key, so tracking invalidations buys nothing.
type Store struct {
	client rueidis.Client
}

// NewStore connects to the first reachable address in cfg.Addrs.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("redis: at least one address is required")
	}
	if cfg.DB < 0 {
		return nil, fmt.Errorf("redis: invalid db index %d", cfg.DB)
	}
	name := cfg.ClientName
	if name == "" {
		name = defaultClientName
	}
	dial := cfg.DialTimeout
	if dial <= 0 {
		dial = defaultDialTimeout
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		ClientName:   name,
		Dialer:       net.Dialer{Timeout: dial},
		DisableCache: true,
	})
	if err != nil {
		return nil, &db.Error{Op: db.OpOpen, Err: err}
	}
	return &Store{client: client}, nil
}

// Ping sends PING and reports any failure as a db.Error.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// WaitForReady pings with a doubling interval until the server answers or timeout elapses.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	wait := readyPollMin
	for {
		err := s.Ping(ctx)
		if err == nil {
			return nil
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("redis not ready after %s (last error: %v): %w", timeout, err, ctx.Err())
		case <-timer.C:
		}
		wait = min(wait*2, readyPollMax)
	}
}

// Close releases all connections.
func (s *Store) Close() {
	s.client.Close()
}
