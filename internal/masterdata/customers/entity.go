// Package customers configures the customer page.
package customers

import (
	"github.com/odyssey-erp/masterdesk/internal/listview"
	"github.com/odyssey-erp/masterdesk/internal/masterdata"
)

// Column identifies a table column.
type Column = listview.ColumnID

const (
	ColCode     Column = "code"
	ColUserCode Column = "user_code"
	ColName     Column = "name"
	ColNameEN   Column = "name_en"
	ColNameKOR  Column = "name_kor"
	ColEmail    Column = "email"
	ColTel      Column = "tel"
)

func text(get func(Customer) string) func(Customer) listview.Value {
	return func(c Customer) listview.Value { return listview.Text(get(c)) }
}

// Definition is the customer table.
func Definition() listview.Definition[Customer] {
	return listview.Definition[Customer]{
		Columns: []listview.Column[Customer]{
			{ID: ColCode, Label: "customers.col.code", Sortable: true, Value: text(func(c Customer) string { return c.Code })},
			{ID: ColUserCode, Label: "customers.col.user_code", Sortable: true, Value: text(func(c Customer) string { return c.UserCode })},
			{ID: ColName, Label: "customers.col.name", Sortable: true, Value: text(func(c Customer) string { return c.Name })},
			{ID: ColNameEN, Label: "customers.col.name_en", Sortable: true, Value: text(func(c Customer) string { return c.NameEN })},
			{ID: ColNameKOR, Label: "customers.col.name_kor", Sortable: true, Value: text(func(c Customer) string { return c.NameKOR })},
			{ID: ColEmail, Label: "customers.col.email", Sortable: true, Value: text(func(c Customer) string { return c.Email })},
			{ID: ColTel, Label: "customers.col.tel", Sortable: true, Value: text(func(c Customer) string { return c.Tel })},
		},
		Key: func(c Customer) string { return c.Code },
		Searchable: []func(Customer) string{
			func(c Customer) string { return c.Name },
			func(c Customer) string { return c.Code },
			func(c Customer) string { return c.TaxCode },
		},
	}
}

// Entity returns the page configuration backed by source.
func Entity(source masterdata.Source[Customer]) *masterdata.Entity[Customer] {
	return &masterdata.Entity[Customer]{
		Name:       "customers",
		Definition: Definition(),
		Fields:     fields,
		Values:     values,
		Display:    display,
		Source:     source,
		SheetName:  "KhachHang",
		FileName:   "quan-ly-khach-hang.xlsx",
	}
}

func display(c Customer) string {
	if c.Name != "" {
		return c.Name
	}
	return c.Code
}
