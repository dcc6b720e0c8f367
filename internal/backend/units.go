package backend

import (
	"context"
	"net/http"
)

const unitsPath = "/api/ProductUnitInfo"

// UnitDTO is a unit code as returned by the API.
type UnitDTO struct {
	UnitCD string `json:"UNIT_CD"`
	UnitNM string `json:"UNIT_NM"`
	IsDel  string `json:"ISDEL"`
	UserID string `json:"USERID"`
}

// ListUnits returns every unit code.
func (c *Client) ListUnits(ctx context.Context, creds Credentials) ([]UnitDTO, error) {
	env, err := c.do(ctx, creds, call{
		op:       "units.list",
		method:   http.MethodGet,
		path:     unitsPath + "/getAll",
		fallback: "cannot load unit codes",
	})
	if err != nil {
		return nil, err
	}
	return decodeResult[UnitDTO](env)
}

// InsertUnit creates a unit code; the API assigns the code.
func (c *Client) InsertUnit(ctx context.Context, creds Credentials, name string) error {
	_, err := c.do(ctx, creds, call{
		op:       "units.insert",
		method:   http.MethodPost,
		path:     unitsPath + "/insert",
		body:     map[string]string{"productUnitName": name},
		fallback: "cannot create unit code",
	})
	return err
}

// UpdateUnit renames the unit code identified by code.
func (c *Client) UpdateUnit(ctx context.Context, creds Credentials, code, name string) error {
	_, err := c.do(ctx, creds, call{
		op:       "units.update",
		method:   http.MethodPost,
		path:     unitsPath + "/update",
		body:     map[string]string{"productUnitCD": code, "productUnitName": name},
		fallback: "cannot update unit code",
	})
	return err
}

// DeleteUnit removes the unit code identified by code.
func (c *Client) DeleteUnit(ctx context.Context, creds Credentials, code string) error {
	_, err := c.do(ctx, creds, call{
		op:       "units.delete",
		method:   http.MethodPost,
		path:     unitsPath + "/delete",
		body:     map[string]string{"productUnitCD": code},
		fallback: "cannot delete unit code",
	})
	return err
}
