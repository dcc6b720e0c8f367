// Package listview derives the rows of an entity table from a fetched
// collection: filter, sort, paginate, then select and export.
package listview

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Value is a single cell value, either text or a number.
type Value struct {
	Text    string
	Number  float64
	Numeric bool
}

// Text wraps a string cell.
func Text(s string) Value { return Value{Text: s} }

// Number wraps a numeric cell.
func Number(n float64) Value { return Value{Number: n, Numeric: true} }

// String renders the value for display and export.
func (v Value) String() string {
	if v.Numeric {
		return strconv.FormatFloat(v.Number, 'f', -1, 64)
	}
	return v.Text
}

// Cell returns the value as a spreadsheet cell.
func (v Value) Cell() any {
	if v.Numeric {
		return v.Number
	}
	return v.Text
}

// Column describes one table column of T.
type Column[T any] struct {
	ID       ColumnID
	Label    string
	Value    func(T) Value
	Sortable bool
}

// Definition configures the table of one entity kind.
type Definition[T any] struct {
	Columns []Column[T]
	// Key extracts the identifying field used for selection and mutations.
	Key func(T) string
	// Searchable lists the fields matched against the search term.
	Searchable []func(T) string
}

// View is the derived table content for one render.
type View[T any] struct {
	Rows       []T
	Columns    []Column[T]
	Total      int
	Filtered   int
	Page       int
	PageSize   int
	TotalPages int
}

// Column returns the column with the given id.
func (d *Definition[T]) Column(id ColumnID) (Column[T], bool) {
	for _, col := range d.Columns {
		if col.ID == id {
			return col, true
		}
	}
	return Column[T]{}, false
}

// Keys returns the keys of records in order.
func (d *Definition[T]) Keys(records []T) []string {
	keys := make([]string, len(records))
	for i, rec := range records {
		keys[i] = d.Key(rec)
	}
	return keys
}

// Compute filters, sorts and paginates records. It never mutates records or
// controls, and an unknown sort column leaves rows in filtered order.
// Strings are compared with the collation of tag.
func (d *Definition[T]) Compute(records []T, c Controls, tag language.Tag) View[T] {
	filtered := d.filter(records, c.Search)
	sorted := d.sort(filtered, c.Sort, tag)

	pageSize := c.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	page := c.Page
	if page < 1 {
		page = 1
	}
	start := (page - 1) * pageSize
	end := start + pageSize
	if start > len(sorted) {
		start = len(sorted)
	}
	if end > len(sorted) {
		end = len(sorted)
	}

	cols := make([]Column[T], 0, len(d.Columns))
	for _, col := range d.Columns {
		if c.Visible(col.ID) {
			cols = append(cols, col)
		}
	}

	return View[T]{
		Rows:       sorted[start:end],
		Columns:    cols,
		Total:      len(records),
		Filtered:   len(sorted),
		Page:       page,
		PageSize:   pageSize,
		TotalPages: TotalPages(len(sorted), pageSize),
	}
}

func (d *Definition[T]) filter(records []T, term string) []T {
	if term == "" {
		out := make([]T, len(records))
		copy(out, records)
		return out
	}
	fold := cases.Fold()
	needle := fold.String(term)
	out := make([]T, 0, len(records))
	for _, rec := range records {
		for _, field := range d.Searchable {
			if strings.Contains(fold.String(field(rec)), needle) {
				out = append(out, rec)
				break
			}
		}
	}
	return out
}

func (d *Definition[T]) sort(rows []T, by *Sort, tag language.Tag) []T {
	if by == nil {
		return rows
	}
	col, ok := d.Column(by.Column)
	if !ok || !col.Sortable || col.Value == nil {
		return rows
	}
	coll := collate.New(tag, collate.IgnoreCase, collate.IgnoreDiacritics, collate.IgnoreWidth)
	sign := 1
	if by.Direction == Desc {
		sign = -1
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return sign*compare(coll, col.Value(rows[i]), col.Value(rows[j])) < 0
	})
	return rows
}

// compare orders two cells. Mixed kinds compare equal so the stable sort keeps
// their original order.
func compare(coll *collate.Collator, a, b Value) int {
	switch {
	case a.Numeric && b.Numeric:
		switch {
		case a.Number < b.Number:
			return -1
		case a.Number > b.Number:
			return 1
		}
		return 0
	case !a.Numeric && !b.Numeric:
		return coll.CompareString(a.Text, b.Text)
	}
	return 0
}
