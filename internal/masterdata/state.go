package masterdata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/masterdesk/internal/form"
	"github.com/odyssey-erp/masterdesk/internal/listview"
)

const (
	defaultSaveTimeout = 2 * time.Minute
	maxStateAttempts   = 64
)

// ErrStateContention is returned when an update lost every optimistic retry.
var ErrStateContention = errors.New("masterdata: page state contended")

// PageState is the per-session state of one entity page.
type PageState struct {
	Controls  listview.Controls   `json:"controls"`
	Selection *listview.Selection `json:"selection"`
	Form      form.State          `json:"form"`
}

func newPageState(autoClose time.Duration) *PageState {
	return &PageState{
		Controls:  listview.DefaultControls(),
		Selection: listview.NewSelection(),
		Form:      form.State{AutoClose: autoClose},
	}
}

// StateStore keeps page states in Redis. Writes go through Update, which
// applies a change to the latest stored state under WATCH so concurrent
// requests of one session never drop each other's changes.
type StateStore struct {
	client      *redis.Client
	ttl         time.Duration
	saveTimeout time.Duration
	now         func() time.Time
}

// StateOption configures a StateStore.
type StateOption func(*StateStore)

// WithSaveTimeout sets how long a form may stay saving before the flag is
// treated as abandoned.
func WithSaveTimeout(d time.Duration) StateOption {
	return func(s *StateStore) {
		if d > 0 {
			s.saveTimeout = d
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) StateOption {
	return func(s *StateStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStateStore constructs a StateStore.
func NewStateStore(client *redis.Client, ttl time.Duration, opts ...StateOption) *StateStore {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	s := &StateStore{client: client, ttl: ttl, saveTimeout: defaultSaveTimeout, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func stateKey(sessionID, entity string) string {
	return "page:" + sessionID + ":" + entity
}

// Load returns the stored state, or a fresh one.
func (s *StateStore) Load(ctx context.Context, sessionID, entity string, autoClose time.Duration) (*PageState, error) {
	raw, err := s.client.Get(ctx, stateKey(sessionID, entity)).Bytes()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("masterdata: load page state: %w", err)
	}
	return s.decode(raw, autoClose), nil
}

// Update applies change to the latest stored state and stores the result.
// The change is retried from a fresh read when another request wrote the
// state in between, so it must not have side effects outside the state. An
// error returned by change aborts the update and is returned as is, together
// with the state it was applied to.
func (s *StateStore) Update(ctx context.Context, sessionID, entity string, autoClose time.Duration, change func(*PageState) error) (*PageState, error) {
	key := stateKey(sessionID, entity)
	for range maxStateAttempts {
		var (
			state     *PageState
			changeErr error
		)
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			raw, err := tx.Get(ctx, key).Bytes()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			state = s.decode(raw, autoClose)
			if changeErr = change(state); changeErr != nil {
				return nil
			}
			data, err := json.Marshal(state)
			if err != nil {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Set(ctx, key, data, s.ttl)
				return nil
			})
			return err
		}, key)
		switch {
		case errors.Is(err, redis.TxFailedErr):
			continue
		case err != nil:
			return nil, fmt.Errorf("masterdata: update page state: %w", err)
		default:
			return state, changeErr
		}
	}
	return nil, ErrStateContention
}

// decode reads a stored state. Missing or unreadable data gives a fresh
// state; an abandoned in-flight save is cleared.
func (s *StateStore) decode(raw []byte, autoClose time.Duration) *PageState {
	state := newPageState(autoClose)
	if len(raw) == 0 {
		return state
	}
	if err := json.Unmarshal(raw, state); err != nil {
		return newPageState(autoClose)
	}
	if state.Selection == nil {
		state.Selection = listview.NewSelection()
	}
	if state.Controls.PageSize <= 0 {
		state.Controls.PageSize = listview.DefaultPageSize
	}
	state.Form.AutoClose = autoClose
	state.Form.Recover(s.now(), s.saveTimeout)
	return state
}

// Clear drops every page state of a session.
func (s *StateStore) Clear(ctx context.Context, sessionID string) error {
	iter := s.client.Scan(ctx, 0, "page:"+sessionID+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("masterdata: scan page states: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}
