package listview

// ColumnID identifies a column of an entity table. Each entity declares its
// own constants so lookups never go through free-form labels.
type ColumnID string

// Direction is the sort direction of a column.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// DefaultPageSize is used when controls carry no usable page size.
const DefaultPageSize = 10

// PageSizes lists the page sizes offered by the table footer.
var PageSizes = []int{10, 20, 50, 100}

// Sort selects the column and direction used to order rows.
type Sort struct {
	Column    ColumnID  `json:"column"`
	Direction Direction `json:"direction"`
}

// Controls is the mutable view state of a table.
type Controls struct {
	Search   string     `json:"search"`
	Sort     *Sort      `json:"sort,omitempty"`
	Hidden   []ColumnID `json:"hidden,omitempty"`
	PageSize int        `json:"page_size"`
	Page     int        `json:"page"`
}

// DefaultControls returns the controls a table starts with.
func DefaultControls() Controls {
	return Controls{PageSize: DefaultPageSize, Page: 1}
}

// SetSearch replaces the search term and goes back to the first page.
func (c *Controls) SetSearch(term string) {
	c.Search = term
	c.Page = 1
}

// SetPageSize changes the page size and goes back to the first page.
// Non-positive sizes are ignored.
func (c *Controls) SetPageSize(size int) {
	if size <= 0 {
		return
	}
	c.PageSize = size
	c.Page = 1
}

// SetPage moves to the given page. Values below 1 become 1; the upper bound
// is enforced by Clamp once the filtered count is known.
func (c *Controls) SetPage(page int) {
	if page < 1 {
		page = 1
	}
	c.Page = page
}

// ToggleSort flips the direction when the column is already sorted, and
// otherwise sorts by the column ascending.
func (c *Controls) ToggleSort(column ColumnID) {
	if c.Sort != nil && c.Sort.Column == column {
		dir := Asc
		if c.Sort.Direction == Asc {
			dir = Desc
		}
		c.Sort = &Sort{Column: column, Direction: dir}
		return
	}
	c.Sort = &Sort{Column: column, Direction: Asc}
}

// ResetSort drops any sort so rows keep their collection order.
func (c *Controls) ResetSort() {
	c.Sort = nil
}

// ToggleColumn shows a hidden column or hides a visible one.
func (c *Controls) ToggleColumn(column ColumnID) {
	for i, id := range c.Hidden {
		if id == column {
			c.Hidden = append(c.Hidden[:i:i], c.Hidden[i+1:]...)
			return
		}
	}
	c.Hidden = append(c.Hidden, column)
}

// Visible reports whether the column is shown.
func (c Controls) Visible(column ColumnID) bool {
	for _, id := range c.Hidden {
		if id == column {
			return false
		}
	}
	return true
}

// Clamp pulls Page back into [1, TotalPages(filtered)] and normalises the page
// size. It reports whether anything changed.
func (c *Controls) Clamp(filtered int) bool {
	changed := false
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
		changed = true
	}
	last := TotalPages(filtered, c.PageSize)
	switch {
	case c.Page < 1:
		c.Page = 1
		changed = true
	case c.Page > last:
		c.Page = last
		changed = true
	}
	return changed
}

// TotalPages returns max(1, ceil(count/pageSize)).
func TotalPages(count, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if count <= 0 {
		return 1
	}
	return (count + pageSize - 1) / pageSize
}
