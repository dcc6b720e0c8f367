package masterdata

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/masterdesk/internal/backend"
	"github.com/odyssey-erp/masterdesk/internal/listview"
)

// FieldKind selects the input rendered for a form field.
type FieldKind string

const (
	KindText     FieldKind = "text"
	KindNumber   FieldKind = "number"
	KindEmail    FieldKind = "email"
	KindTextArea FieldKind = "textarea"
	KindSelect   FieldKind = "select"
)

// Option is one choice of a select field. Label is a message key.
type Option struct {
	Value string
	Label string
}

// Field describes one input of an entity form.
type Field struct {
	Name  string
	Label string
	Kind  FieldKind
	// Rules are go-playground/validator tags applied to the submitted value.
	Rules string
	// Key marks the identifying field. It is read-only when editing.
	Key bool
	// Generated fields are assigned by the backend and hidden when adding.
	Generated bool
	// ReadOnly fields are shown but never submitted.
	ReadOnly bool
	MaxLen   int
	Options  []Option
}

// Required reports whether the field carries the required rule.
func (f Field) Required() bool {
	for _, rule := range strings.Split(f.Rules, ",") {
		if rule == "required" {
			return true
		}
	}
	return false
}

// Source is the remote store of one entity kind.
type Source[T any] interface {
	List(ctx context.Context, creds backend.Credentials) ([]T, error)
	Create(ctx context.Context, creds backend.Credentials, values map[string]string) error
	Update(ctx context.Context, creds backend.Credentials, key string, values map[string]string) error
	Delete(ctx context.Context, creds backend.Credentials, key string) error
}

// Entity configures the page of one entity kind.
type Entity[T any] struct {
	// Name is the route segment and cache scope, e.g. "units". It is also
	// the prefix of the entity's message keys.
	Name       string
	Definition listview.Definition[T]
	Fields     []Field
	// Values maps a record to form values keyed by Field.Name.
	Values func(T) map[string]string
	// Display names a record in confirmations.
	Display   func(T) string
	Source    Source[T]
	SheetName string
	FileName  string
	// AutoClose closes the form this long after a successful save.
	AutoClose time.Duration
}

// TitleKey is the message key of the page title.
func (e *Entity[T]) TitleKey() string { return e.Name + ".title" }

// NounKey is the message key naming one record.
func (e *Entity[T]) NounKey() string { return e.Name + ".noun" }

// SearchKey is the message key of the search placeholder.
func (e *Entity[T]) SearchKey() string { return e.Name + ".search" }

// Find returns the record with key.
func (e *Entity[T]) Find(records []T, key string) (T, bool) {
	for _, rec := range records {
		if e.Definition.Key(rec) == key {
			return rec, true
		}
	}
	var zero T
	return zero, false
}

// FieldErrors maps field names to message keys.
type FieldErrors map[string]string

var validate = validator.New()

// Validate checks submitted values against the field rules of mode. Only
// fields the form shows are checked.
func (e *Entity[T]) Validate(values map[string]string, adding bool) FieldErrors {
	errs := FieldErrors{}
	for _, f := range e.Fields {
		if f.Rules == "" || f.ReadOnly || (adding && f.Generated) || (!adding && f.Key) {
			continue
		}
		err := validate.Var(strings.TrimSpace(values[f.Name]), f.Rules)
		if err == nil {
			continue
		}
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			errs[f.Name] = messageForTag(fieldErrs[0].Tag())
		} else {
			errs[f.Name] = "form.invalid"
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func messageForTag(tag string) string {
	switch tag {
	case "required":
		return "form.required"
	case "max":
		return "form.too_long"
	case "numeric", "number":
		return "form.number"
	case "email":
		return "form.email"
	case "oneof":
		return "form.invalid"
	default:
		return "form.invalid"
	}
}

// Submitted collects the values of the editable fields from a form lookup.
func (e *Entity[T]) Submitted(get func(string) string) map[string]string {
	values := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		if f.ReadOnly {
			continue
		}
		values[f.Name] = strings.TrimSpace(get(f.Name))
	}
	return values
}
