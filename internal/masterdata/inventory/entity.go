// Package inventory configures the inventory item page.
package inventory

import (
	"github.com/odyssey-erp/masterdesk/internal/listview"
	"github.com/odyssey-erp/masterdesk/internal/masterdata"
)

// Column identifies a table column.
type Column = listview.ColumnID

const (
	ColStore      Column = "store"
	ColKind       Column = "kind"
	ColDepartment Column = "department"
	ColCode       Column = "code"
	ColName       Column = "name"
	ColNameEN     Column = "name_en"
	ColNameKOR    Column = "name_kor"
	ColUnit       Column = "unit"
)

func column(id Column, label string, get func(Item) string) listview.Column[Item] {
	return listview.Column[Item]{
		ID:       id,
		Label:    label,
		Sortable: true,
		Value:    func(it Item) listview.Value { return listview.Text(get(it)) },
	}
}

// Definition is the inventory table.
func Definition() listview.Definition[Item] {
	return listview.Definition[Item]{
		Columns: []listview.Column[Item]{
			column(ColStore, "inventory.col.store", func(it Item) string { return it.Store }),
			column(ColKind, "inventory.col.kind", func(it Item) string { return it.Kind }),
			column(ColDepartment, "inventory.col.department", func(it Item) string { return it.Department }),
			column(ColCode, "inventory.col.code", func(it Item) string { return it.Code }),
			column(ColName, "inventory.col.name", func(it Item) string { return it.Name }),
			column(ColNameEN, "inventory.col.name_en", func(it Item) string { return it.NameEN }),
			column(ColNameKOR, "inventory.col.name_kor", func(it Item) string { return it.NameKOR }),
			column(ColUnit, "inventory.col.unit", func(it Item) string { return it.StockUnit }),
		},
		Key: func(it Item) string { return it.Code },
		Searchable: []func(Item) string{
			func(it Item) string { return it.Name },
			func(it Item) string { return it.Code },
			func(it Item) string { return it.Store },
		},
	}
}

// Entity returns the page configuration backed by source.
func Entity(source masterdata.Source[Item]) *masterdata.Entity[Item] {
	return &masterdata.Entity[Item]{
		Name:       "inventory",
		Definition: Definition(),
		Fields:     fields,
		Values:     values,
		Display:    display,
		Source:     source,
		SheetName:  "HangTonKho",
		FileName:   "quan-ly-hang-ton-kho.xlsx",
	}
}

func display(it Item) string {
	if it.Name != "" {
		return it.Name
	}
	return it.Code
}
