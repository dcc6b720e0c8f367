package listview

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

type item struct {
	Code  string
	Name  string
	Store string
	Qty   float64
}

const (
	colCode  ColumnID = "code"
	colName  ColumnID = "name"
	colQty   ColumnID = "qty"
	colStore ColumnID = "store"
)

func itemDefinition() *Definition[item] {
	return &Definition[item]{
		Columns: []Column[item]{
			{ID: colCode, Label: "Code", Value: func(i item) Value { return Text(i.Code) }, Sortable: true},
			{ID: colName, Label: "Name", Value: func(i item) Value { return Text(i.Name) }, Sortable: true},
			{ID: colQty, Label: "Qty", Value: func(i item) Value { return Number(i.Qty) }, Sortable: true},
			{ID: colStore, Label: "Store", Value: func(i item) Value { return Text(i.Store) }},
		},
		Key: func(i item) string { return i.Code },
		Searchable: []func(item) string{
			func(i item) string { return i.Code },
			func(i item) string { return i.Name },
		},
	}
}

func numbered(n int) []item {
	out := make([]item, n)
	for i := range out {
		out[i] = item{Code: fmt.Sprintf("P%02d", i), Name: fmt.Sprintf("Product %02d", i), Qty: float64(i)}
	}
	return out
}

func TestComputeEmptySearchKeepsEverything(t *testing.T) {
	def := itemDefinition()
	records := numbered(7)
	c := DefaultControls()
	c.PageSize = 100

	view := def.Compute(records, c, language.English)
	assert.Equal(t, len(records), view.Filtered)
	assert.Equal(t, def.Keys(records), def.Keys(view.Rows))
}

func TestComputeSearchIsCaseInsensitiveOnSearchableFields(t *testing.T) {
	def := itemDefinition()
	records := []item{
		{Code: "A1", Name: "Bàn gỗ", Store: "kho"},
		{Code: "B2", Name: "Ghế nhựa", Store: "KHO"},
		{Code: "kho-3", Name: "Tủ"},
	}
	c := DefaultControls()
	c.SetSearch("KHO")

	view := def.Compute(records, c, language.Vietnamese)
	require.Len(t, view.Rows, 1)
	assert.Equal(t, "kho-3", view.Rows[0].Code, "store is not a searchable field")

	c.SetSearch("GHẾ")
	view = def.Compute(records, c, language.Vietnamese)
	require.Len(t, view.Rows, 1)
	assert.Equal(t, "B2", view.Rows[0].Code)
}

func TestSortAscendingThenDescendingReverses(t *testing.T) {
	def := itemDefinition()
	records := []item{{Code: "c"}, {Code: "a"}, {Code: "d"}, {Code: "b"}}
	c := DefaultControls()

	c.ToggleSort(colCode)
	asc := def.Keys(def.Compute(records, c, language.English).Rows)
	c.ToggleSort(colCode)
	require.Equal(t, Desc, c.Sort.Direction)
	desc := def.Keys(def.Compute(records, c, language.English).Rows)

	assert.Equal(t, []string{"a", "b", "c", "d"}, asc)
	for i := range asc {
		assert.Equal(t, asc[i], desc[len(desc)-1-i])
	}
}

func TestSortUsesBaseStrengthCollation(t *testing.T) {
	def := itemDefinition()
	records := []item{{Code: "3", Name: "Đức"}, {Code: "1", Name: "an"}, {Code: "2", Name: "Ánh"}, {Code: "4", Name: "bình"}}
	c := DefaultControls()
	c.ToggleSort(colName)

	view := def.Compute(records, c, language.Vietnamese)
	assert.Equal(t, []string{"1", "2", "4", "3"}, def.Keys(view.Rows))
}

func TestSortNumericMissingCountsAsZero(t *testing.T) {
	def := itemDefinition()
	records := []item{{Code: "none"}, {Code: "five", Qty: 5}, {Code: "three", Qty: 3}}
	c := DefaultControls()
	c.ToggleSort(colQty)

	view := def.Compute(records, c, language.English)
	assert.Equal(t, []string{"none", "three", "five"}, def.Keys(view.Rows))
}

func TestSortIsStableOnTies(t *testing.T) {
	def := itemDefinition()
	records := []item{{Code: "x", Qty: 1}, {Code: "y", Qty: 1}, {Code: "z", Qty: 0}}
	c := DefaultControls()
	c.ToggleSort(colQty)

	view := def.Compute(records, c, language.English)
	assert.Equal(t, []string{"z", "x", "y"}, def.Keys(view.Rows))
}

func TestSortUnknownOrUnsortableColumnIsNoop(t *testing.T) {
	def := itemDefinition()
	records := []item{{Code: "b", Store: "2"}, {Code: "a", Store: "1"}}

	for _, col := range []ColumnID{"missing", colStore} {
		c := DefaultControls()
		c.ToggleSort(col)
		view := def.Compute(records, c, language.English)
		assert.Equal(t, []string{"b", "a"}, def.Keys(view.Rows), "column %s", col)
	}
}

func TestComputeDoesNotMutateInput(t *testing.T) {
	def := itemDefinition()
	records := []item{{Code: "b"}, {Code: "a"}}
	c := DefaultControls()
	c.ToggleSort(colCode)

	_ = def.Compute(records, c, language.English)
	assert.Equal(t, []string{"b", "a"}, def.Keys(records))
}

func TestPaginationBounds(t *testing.T) {
	def := itemDefinition()
	for _, total := range []int{0, 1, 9, 10, 11, 25, 100} {
		for _, size := range []int{1, 3, 10, 20} {
			records := numbered(total)
			c := Controls{PageSize: size, Page: 1}
			pages := TotalPages(total, size)
			expected := (total + size - 1) / size
			if expected < 1 {
				expected = 1
			}
			require.Equal(t, expected, pages)

			seen := 0
			for p := 1; p <= pages; p++ {
				c.Page = p
				view := def.Compute(records, c, language.English)
				assert.Equal(t, pages, view.TotalPages)
				assert.LessOrEqual(t, len(view.Rows), size)
				if p == pages {
					assert.Equal(t, total-(pages-1)*size, len(view.Rows), "total=%d size=%d", total, size)
				}
				seen += len(view.Rows)
			}
			assert.Equal(t, total, seen)
		}
	}
}

func TestScenarioSearchResetsPage(t *testing.T) {
	def := itemDefinition()
	records := numbered(25)
	records[3].Name = "special one"
	records[14].Name = "special two"
	records[22].Name = "special three"

	c := DefaultControls()
	view := def.Compute(records, c, language.English)
	assert.Equal(t, def.Keys(records[0:10]), def.Keys(view.Rows))
	assert.Equal(t, 3, view.TotalPages)

	c.SetPage(3)
	c.SetSearch("special")
	assert.Equal(t, 1, c.Page)
	view = def.Compute(records, c, language.English)
	assert.Equal(t, 1, view.TotalPages)
	assert.Equal(t, []string{"P03", "P14", "P22"}, def.Keys(view.Rows))
}

func TestClampAfterFilterNarrows(t *testing.T) {
	def := itemDefinition()
	records := numbered(25)
	c := DefaultControls()
	c.SetPage(3)

	records = records[:5]
	view := def.Compute(records, c, language.English)
	assert.Empty(t, view.Rows, "compute stays pure and does not clamp")

	assert.True(t, c.Clamp(view.Filtered))
	assert.Equal(t, 1, c.Page)
	assert.False(t, c.Clamp(view.Filtered))
}

func TestHiddenColumnsAreLeftOut(t *testing.T) {
	def := itemDefinition()
	c := DefaultControls()
	c.ToggleColumn(colName)

	view := def.Compute(nil, c, language.English)
	ids := make([]ColumnID, 0, len(view.Columns))
	for _, col := range view.Columns {
		ids = append(ids, col.ID)
	}
	assert.Equal(t, []ColumnID{colCode, colQty, colStore}, ids)

	c.ToggleColumn(colName)
	assert.True(t, c.Visible(colName))
}

func TestToggleSortSwitchesColumnAscending(t *testing.T) {
	c := DefaultControls()
	c.ToggleSort(colCode)
	c.ToggleSort(colCode)
	c.ToggleSort(colName)
	assert.Equal(t, &Sort{Column: colName, Direction: Asc}, c.Sort)
}

func TestSetPageSizeResetsPage(t *testing.T) {
	c := DefaultControls()
	c.SetPage(4)
	c.SetPageSize(0)
	assert.Equal(t, 4, c.Page)
	c.SetPageSize(20)
	assert.Equal(t, 1, c.Page)
	assert.Equal(t, 20, c.PageSize)
}
