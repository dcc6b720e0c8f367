package units

import (
	"context"
	"strings"

	"github.com/odyssey-erp/masterdesk/internal/backend"
)

// Gateway is the part of backend.Client used by the repository.
type Gateway interface {
	ListUnits(ctx context.Context, creds backend.Credentials) ([]backend.UnitDTO, error)
	InsertUnit(ctx context.Context, creds backend.Credentials, name string) error
	UpdateUnit(ctx context.Context, creds backend.Credentials, code, name string) error
	DeleteUnit(ctx context.Context, creds backend.Credentials, code string) error
}

// Repository reads and writes unit codes through the API.
type Repository struct {
	gateway Gateway
}

// NewRepository constructs a Repository.
func NewRepository(gateway Gateway) *Repository {
	return &Repository{gateway: gateway}
}

// List returns every unit code.
func (r *Repository) List(ctx context.Context, creds backend.Credentials) ([]Unit, error) {
	rows, err := r.gateway.ListUnits(ctx, creds)
	if err != nil {
		return nil, err
	}
	units := make([]Unit, 0, len(rows))
	for _, row := range rows {
		units = append(units, Unit{
			Code:    row.UnitCD,
			Name:    row.UnitNM,
			Creator: row.UserID,
			Deleted: strings.TrimSpace(row.IsDel) == "1",
		})
	}
	return units, nil
}

// Create adds a unit code. The API assigns the code.
func (r *Repository) Create(ctx context.Context, creds backend.Credentials, values map[string]string) error {
	return r.gateway.InsertUnit(ctx, creds, values[FieldName])
}

// Update renames the unit code identified by code.
func (r *Repository) Update(ctx context.Context, creds backend.Credentials, code string, values map[string]string) error {
	return r.gateway.UpdateUnit(ctx, creds, code, values[FieldName])
}

// Delete removes the unit code identified by code.
func (r *Repository) Delete(ctx context.Context, creds backend.Credentials, code string) error {
	return r.gateway.DeleteUnit(ctx, creds, code)
}
