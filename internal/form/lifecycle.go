// Package form models the add / view / edit dialog shared by the entity pages.
package form

import (
	"errors"
	"time"
)

// Mode is the state of an entity form.
type Mode string

const (
	Closed Mode = ""
	Add    Mode = "add"
	View   Mode = "view"
	Edit   Mode = "edit"
)

var (
	// ErrSaving is returned when a close is attempted while a save is in flight.
	ErrSaving = errors.New("form: save in progress")
	// ErrReadOnly is returned when saving a form opened for viewing.
	ErrReadOnly = errors.New("form: form is read-only")
	// ErrClosed is returned when saving a form that is not open.
	ErrClosed = errors.New("form: form is closed")
)

// ParseMode maps a request value to a Mode. Unknown values map to Closed.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case Add, View, Edit:
		return Mode(s)
	}
	return Closed
}

// State is the persisted state of one form.
type State struct {
	Mode Mode `json:"mode,omitempty"`
	// Key identifies the record in view and edit mode.
	Key    string `json:"key,omitempty"`
	Saving bool   `json:"saving,omitempty"`
	// SavingSince is when the in-flight save started.
	SavingSince time.Time `json:"saving_since,omitempty"`
	// Saved is set after a successful save and cleared by the next edit.
	Saved bool `json:"saved,omitempty"`
	// AutoClose closes the form this long after a successful save. Zero
	// keeps the form open until the user dismisses it.
	AutoClose time.Duration     `json:"auto_close,omitempty"`
	ClosesAt  time.Time         `json:"closes_at,omitempty"`
	Values    map[string]string `json:"values,omitempty"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// IsOpen reports whether the form is showing.
func (s *State) IsOpen() bool { return s.Mode != Closed }

// ReadOnly reports whether inputs render disabled.
func (s *State) ReadOnly() bool { return s.Mode == View }

// CanSubmit reports whether the form renders a submit action.
func (s *State) CanSubmit() bool {
	return (s.Mode == Add || s.Mode == Edit) && !s.Saving
}

// Holds reports whether the form is open in mode for key. Add forms have no key.
func (s *State) Holds(mode Mode, key string) bool {
	return s.Mode == mode && (mode != Edit || s.Key == key)
}

// Open shows the form in mode for key with the given initial values. Opening
// while a save is in flight is refused like a close.
func (s *State) Open(mode Mode, key string, values map[string]string) error {
	if s.Saving {
		return ErrSaving
	}
	autoClose := s.AutoClose
	*s = State{Mode: mode, AutoClose: autoClose}
	if mode == Closed {
		return nil
	}
	if mode != Add {
		s.Key = key
	}
	s.Values = copyValues(values)
	return nil
}

// Close hides the form unless a save is in flight.
func (s *State) Close() error {
	if s.Saving {
		return ErrSaving
	}
	autoClose := s.AutoClose
	*s = State{AutoClose: autoClose}
	return nil
}

// BeginSave marks a save as in flight with the submitted values.
func (s *State) BeginSave(values map[string]string, now time.Time) error {
	switch s.Mode {
	case Closed:
		return ErrClosed
	case View:
		return ErrReadOnly
	}
	if s.Saving {
		return ErrSaving
	}
	s.Saving = true
	s.SavingSince = now
	s.Saved = false
	s.Errors = nil
	if values != nil {
		s.Values = copyValues(values)
	}
	return nil
}

// Settle ends the in-flight save. On failure the form stays open with its
// values; fieldErrors, when given, are shown next to the inputs. On success
// with AutoClose set the form is scheduled to close.
func (s *State) Settle(err error, fieldErrors map[string]string, now time.Time) {
	s.Saving = false
	s.SavingSince = time.Time{}
	if err != nil {
		s.Saved = false
		s.Errors = fieldErrors
		return
	}
	s.Saved = true
	s.Errors = nil
	if s.AutoClose > 0 {
		s.ClosesAt = now.Add(s.AutoClose)
	}
}

// Expire closes the form when its auto-close deadline has passed. It reports
// whether the form was closed.
func (s *State) Expire(now time.Time) bool {
	if s.Saving || s.ClosesAt.IsZero() || now.Before(s.ClosesAt) {
		return false
	}
	_ = s.Close()
	return true
}

// Recover clears an in-flight flag older than maxAge, left behind by a save
// that never settled. The form stays open with its values. It reports whether
// the flag was cleared.
func (s *State) Recover(now time.Time, maxAge time.Duration) bool {
	if !s.Saving || maxAge <= 0 || now.Sub(s.SavingSince) < maxAge {
		return false
	}
	s.Saving = false
	s.SavingSince = time.Time{}
	return true
}

// Value returns the current value of a field.
func (s *State) Value(field string) string { return s.Values[field] }

// Error returns the validation message of a field.
func (s *State) Error(field string) string { return s.Errors[field] }

func copyValues(values map[string]string) map[string]string {
	if len(values) == 0 {
		return map[string]string{}
	}
	out := make(map[string]string, len(values))
	for k, v := range values {
		out[k] = v
	}
	return out
}
