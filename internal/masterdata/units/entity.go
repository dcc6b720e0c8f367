// Package units configures the unit-of-measure code page.
package units

import (
	"time"

	"github.com/odyssey-erp/masterdesk/internal/listview"
	"github.com/odyssey-erp/masterdesk/internal/masterdata"
)

// Column identifies a table column.
type Column = listview.ColumnID

const (
	ColCode Column = "code"
	ColName Column = "name"
)

const autoClose = 2 * time.Second

// Definition is the table of unit codes.
func Definition() listview.Definition[Unit] {
	return listview.Definition[Unit]{
		Columns: []listview.Column[Unit]{
			{ID: ColCode, Label: "units.col.code", Sortable: true, Value: func(u Unit) listview.Value { return listview.Text(u.Code) }},
			{ID: ColName, Label: "units.col.name", Sortable: true, Value: func(u Unit) listview.Value { return listview.Text(u.Name) }},
		},
		Key: func(u Unit) string { return u.Code },
		Searchable: []func(Unit) string{
			func(u Unit) string { return u.Code },
			func(u Unit) string { return u.Name },
		},
	}
}

// Entity returns the page configuration backed by source.
func Entity(source masterdata.Source[Unit]) *masterdata.Entity[Unit] {
	return &masterdata.Entity[Unit]{
		Name:       "units",
		Definition: Definition(),
		Fields:     fields,
		Values:     values,
		Display:    display,
		Source:     source,
		SheetName:  "DonViTinh",
		FileName:   "quan-ly-don-vi-tinh.xlsx",
		AutoClose:  autoClose,
	}
}

func display(u Unit) string {
	if u.Name != "" {
		return u.Name
	}
	return u.Code
}
