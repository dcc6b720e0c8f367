// Package collection keeps the last fetched records of each entity page per
// session, and discards refreshes that were overtaken by a newer one.
package collection

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// ErrMiss is returned by Load when nothing is cached.
var ErrMiss = errors.New("collection: not cached")

// storeIfLatest writes the payload only when the caller's sequence number is
// still the newest one issued for the scope.
var storeIfLatest = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current == ARGV[1] then
	redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
	redis.call('PEXPIRE', KEYS[1], ARGV[3])
	return 1
end
return 0
`)

// Scope identifies the collection of one entity page in one session.
type Scope struct {
	SessionID string
	Entity    string
}

func (s Scope) seqKey() string  { return "collection:" + s.SessionID + ":" + s.Entity + ":seq" }
func (s Scope) dataKey() string { return "collection:" + s.SessionID + ":" + s.Entity + ":data" }

// Store caches collections in Redis.
type Store struct {
	client *redis.Client
	ttl    time.Duration
	misses singleflight.Group
}

// NewStore constructs a Store. Cached collections expire after ttl.
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &Store{client: client, ttl: ttl}
}

// Outcome tells the caller what happened to its refresh.
type Outcome int

const (
	// Stored means the fetched collection became the current one.
	Stored Outcome = iota
	// Superseded means a newer refresh was issued while this one was in
	// flight; the newer stored collection is returned when available.
	Superseded
)

// Refresh fetches the collection and stores it if no newer refresh was issued
// in the meantime.
func Refresh[T any](ctx context.Context, s *Store, scope Scope, fetch func(context.Context) ([]T, error)) ([]T, Outcome, error) {
	seq, err := s.client.Incr(ctx, scope.seqKey()).Result()
	if err != nil {
		return nil, Stored, fmt.Errorf("collection: issue sequence: %w", err)
	}

	records, err := fetch(ctx)
	if err != nil {
		return nil, Stored, err
	}
	if records == nil {
		records = []T{}
	}
	payload, err := json.Marshal(records)
	if err != nil {
		return nil, Stored, fmt.Errorf("collection: encode: %w", err)
	}

	ok, err := storeIfLatest.Run(ctx, s.client,
		[]string{scope.seqKey(), scope.dataKey()},
		strconv.FormatInt(seq, 10), payload, s.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return nil, Stored, fmt.Errorf("collection: store: %w", err)
	}
	if ok == 1 {
		return records, Stored, nil
	}

	newer, err := Load[T](ctx, s, scope)
	switch {
	case err == nil:
		return newer, Superseded, nil
	case errors.Is(err, ErrMiss):
		// The newer refresh has not landed yet; render this response
		// without caching it.
		return records, Superseded, nil
	default:
		return nil, Superseded, err
	}
}

// Load returns the cached collection or ErrMiss.
func Load[T any](ctx context.Context, s *Store, scope Scope) ([]T, error) {
	raw, err := s.client.Get(ctx, scope.dataKey()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("collection: load: %w", err)
	}
	var records []T
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("collection: decode: %w", err)
	}
	return records, nil
}

// LoadOrRefresh returns the cached collection, fetching it on a miss.
// Concurrent misses for the same scope share one fetch. The shared fetch is
// detached from the caller that started it; each caller stops waiting when
// its own context ends.
func LoadOrRefresh[T any](ctx context.Context, s *Store, scope Scope, fetch func(context.Context) ([]T, error)) ([]T, error) {
	records, err := Load[T](ctx, s, scope)
	if err == nil {
		return records, nil
	}
	if !errors.Is(err, ErrMiss) {
		return nil, err
	}
	shared := context.WithoutCancel(ctx)
	ch := s.misses.DoChan(scope.dataKey(), func() (any, error) {
		fetched, _, err := Refresh(shared, s, scope, fetch)
		return fetched, err
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]T), nil
	}
}

// Clear drops every cached collection of a session.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	iter := s.client.Scan(ctx, 0, "collection:"+sessionID+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("collection: scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}
