package listview

import (
	"context"
	"encoding/json"
	"log/slog"
)

// Selection is the set of record keys checked by the user. It is kept apart
// from the derived view, so rows stay selected while paging, filtering or
// sorting hides them.
type Selection struct {
	keys  []string
	index map[string]struct{}
}

// NewSelection builds a selection holding keys.
func NewSelection(keys ...string) *Selection {
	s := &Selection{}
	for _, key := range keys {
		s.Add(key)
	}
	return s
}

// Has reports whether key is selected.
func (s *Selection) Has(key string) bool {
	if s == nil || s.index == nil {
		return false
	}
	_, ok := s.index[key]
	return ok
}

// Add selects key. Adding a selected key is a no-op.
func (s *Selection) Add(key string) {
	if s.Has(key) {
		return
	}
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	s.index[key] = struct{}{}
	s.keys = append(s.keys, key)
}

// Remove deselects key.
func (s *Selection) Remove(key string) {
	if !s.Has(key) {
		return
	}
	delete(s.index, key)
	for i, k := range s.keys {
		if k == key {
			s.keys = append(s.keys[:i:i], s.keys[i+1:]...)
			break
		}
	}
}

// Toggle flips the membership of key.
func (s *Selection) Toggle(key string) {
	if s.Has(key) {
		s.Remove(key)
		return
	}
	s.Add(key)
}

// AllSelected reports whether every key of the current page is selected.
// An empty page is never "all selected".
func (s *Selection) AllSelected(pageKeys []string) bool {
	if len(pageKeys) == 0 {
		return false
	}
	for _, key := range pageKeys {
		if !s.Has(key) {
			return false
		}
	}
	return true
}

// ToggleAll removes the page keys when all of them are selected and adds the
// missing ones otherwise.
func (s *Selection) ToggleAll(pageKeys []string) {
	if s.AllSelected(pageKeys) {
		for _, key := range pageKeys {
			s.Remove(key)
		}
		return
	}
	for _, key := range pageKeys {
		s.Add(key)
	}
}

// Keys returns the selected keys in selection order.
func (s *Selection) Keys() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len returns the number of selected keys.
func (s *Selection) Len() int {
	if s == nil {
		return 0
	}
	return len(s.keys)
}

// Clear empties the selection.
func (s *Selection) Clear() {
	s.keys = nil
	s.index = nil
}

// MarshalJSON encodes the selection as a list of keys.
func (s *Selection) MarshalJSON() ([]byte, error) {
	keys := s.Keys()
	if keys == nil {
		keys = []string{}
	}
	return json.Marshal(keys)
}

// UnmarshalJSON decodes a list of keys.
func (s *Selection) UnmarshalJSON(data []byte) error {
	var keys []string
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	s.Clear()
	for _, key := range keys {
		s.Add(key)
	}
	return nil
}

// Pick returns the records whose key is in keys, in collection order.
func Pick[T any](records []T, keys []string, key func(T) string) []T {
	wanted := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		wanted[k] = struct{}{}
	}
	out := make([]T, 0, len(keys))
	for _, rec := range records {
		if _, ok := wanted[key(rec)]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// Failure describes a key a bulk action could not process.
type Failure struct {
	Key    string `json:"key"`
	Reason string `json:"reason"`
}

// BulkResult reports the outcome of a bulk action per key.
type BulkResult struct {
	Succeeded []string  `json:"succeeded"`
	Failed    []Failure `json:"failed"`
}

// Partial reports whether at least one key failed.
func (r BulkResult) Partial() bool {
	return len(r.Failed) > 0
}

// FailedKeys lists the keys that failed.
func (r BulkResult) FailedKeys() []string {
	keys := make([]string, len(r.Failed))
	for i, f := range r.Failed {
		keys[i] = f.Key
	}
	return keys
}

// DeleteFunc deletes the record identified by key.
type DeleteFunc func(ctx context.Context, key string) error

// BulkDelete calls del once per key, one at a time. A failing key is logged
// and recorded; it never stops the remaining deletions.
func BulkDelete(ctx context.Context, logger *slog.Logger, keys []string, del DeleteFunc) BulkResult {
	var result BulkResult
	for _, key := range keys {
		if err := del(ctx, key); err != nil {
			if logger != nil {
				logger.Warn("bulk delete failed", slog.String("key", key), slog.Any("error", err))
			}
			result.Failed = append(result.Failed, Failure{Key: key, Reason: err.Error()})
			continue
		}
		result.Succeeded = append(result.Succeeded, key)
	}
	return result
}
