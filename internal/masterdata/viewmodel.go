package masterdata

import (
	"net/url"
	"time"

	"github.com/odyssey-erp/masterdesk/internal/form"
	"github.com/odyssey-erp/masterdesk/internal/i18n"
	"github.com/odyssey-erp/masterdesk/internal/listview"
)

// ColumnView is a table header.
type ColumnView struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Sortable  bool   `json:"sortable"`
	Visible   bool   `json:"visible"`
	Direction string `json:"direction,omitempty"`
}

// RowView is a table row.
type RowView struct {
	Key      string            `json:"key"`
	Path     string            `json:"-"`
	Selected bool              `json:"selected"`
	Cells    []string          `json:"-"`
	Values   map[string]string `json:"cells"`
}

// OptionView is a translated select choice.
type OptionView struct {
	Value    string
	Label    string
	Selected bool
}

// FieldView is a rendered form input.
type FieldView struct {
	Name     string
	Label    string
	Kind     FieldKind
	Value    string
	Error    string
	Required bool
	Disabled bool
	MaxLen   int
	Options  []OptionView
}

// FormView is the open add / view / edit dialog.
type FormView struct {
	Mode      form.Mode
	Title     string
	Key       string
	Action    string
	EditPath  string
	Fields    []FieldView
	ReadOnly  bool
	CanSubmit bool
	Saving    bool
	Saved     bool
	// AutoCloseIn is the number of seconds until the form closes itself.
	AutoCloseIn int
}

// ListPage is the data of pages/list.html.
type ListPage struct {
	Entity        string
	Base          string
	Title         string
	Noun          string
	SearchHint    string
	Search        string
	Columns       []ColumnView
	AllColumns    []ColumnView
	Rows          []RowView
	Total         int
	Filtered      int
	Page          int
	PageSize      int
	PageSizes     []int
	TotalPages    int
	From          int
	To            int
	AllSelected   bool
	SelectedCount int
	LoadError     string
	Form          *FormView
}

// ViewJSON is the body of GET view.json.
type ViewJSON struct {
	Entity        string       `json:"entity"`
	Search        string       `json:"search"`
	Total         int          `json:"total"`
	Filtered      int          `json:"filtered"`
	Page          int          `json:"page"`
	PageSize      int          `json:"page_size"`
	TotalPages    int          `json:"total_pages"`
	Columns       []ColumnView `json:"columns"`
	Rows          []RowView    `json:"rows"`
	AllSelected   bool         `json:"all_selected"`
	SelectedCount int          `json:"selected_count"`
	Selected      []string     `json:"selected"`
}

// ConfirmPage is the data of pages/confirm_delete.html.
type ConfirmPage struct {
	Base     string
	Title    string
	Question string
	Action   string
}

// SheetPreview is one sheet of an uploaded workbook.
type SheetPreview struct {
	Name  string
	Rows  [][]string
	Total int
}

// ImportPage is the data of pages/import.html.
type ImportPage struct {
	Base     string
	Title    string
	FileName string
	Sheets   []SheetPreview
}

const importPreviewRows = 20

func (h *Handler[T]) columnViews(lang i18n.Lang, controls listview.Controls) (visible, all []ColumnView) {
	for _, col := range h.entity.Definition.Columns {
		cv := ColumnView{
			ID:       string(col.ID),
			Label:    i18n.T(lang, col.Label),
			Sortable: col.Sortable,
			Visible:  controls.Visible(col.ID),
		}
		if controls.Sort != nil && controls.Sort.Column == col.ID {
			cv.Direction = string(controls.Sort.Direction)
		}
		all = append(all, cv)
		if cv.Visible {
			visible = append(visible, cv)
		}
	}
	return visible, all
}

func (h *Handler[T]) rowViews(v listview.View[T], sel *listview.Selection) []RowView {
	rows := make([]RowView, 0, len(v.Rows))
	for _, rec := range v.Rows {
		key := h.entity.Definition.Key(rec)
		row := RowView{
			Key:      key,
			Path:     h.recordPath(key),
			Selected: sel.Has(key),
			Values:   make(map[string]string, len(v.Columns)),
		}
		for _, col := range v.Columns {
			cell := col.Value(rec).String()
			row.Cells = append(row.Cells, cell)
			row.Values[string(col.ID)] = cell
		}
		rows = append(rows, row)
	}
	return rows
}

func (h *Handler[T]) listPage(lang i18n.Lang, state *PageState, v listview.View[T], loadErr string, now time.Time) ListPage {
	visible, all := h.columnViews(lang, state.Controls)
	page := ListPage{
		Entity:        h.entity.Name,
		Base:          h.base(),
		Title:         i18n.T(lang, h.entity.TitleKey()),
		Noun:          i18n.T(lang, h.entity.NounKey()),
		SearchHint:    i18n.T(lang, h.entity.SearchKey()),
		Search:        state.Controls.Search,
		Columns:       visible,
		AllColumns:    all,
		Rows:          h.rowViews(v, state.Selection),
		Total:         v.Total,
		Filtered:      v.Filtered,
		Page:          v.Page,
		PageSize:      v.PageSize,
		PageSizes:     listview.PageSizes,
		TotalPages:    v.TotalPages,
		AllSelected:   state.Selection.AllSelected(h.entity.Definition.Keys(v.Rows)),
		SelectedCount: state.Selection.Len(),
		LoadError:     loadErr,
	}
	if len(v.Rows) > 0 {
		page.From = (v.Page-1)*v.PageSize + 1
		page.To = page.From + len(v.Rows) - 1
	}
	if state.Form.IsOpen() {
		page.Form = h.formView(lang, &state.Form, now)
	}
	return page
}

func (h *Handler[T]) formView(lang i18n.Lang, f *form.State, now time.Time) *FormView {
	noun := i18n.T(lang, h.entity.NounKey())
	fv := &FormView{
		Mode:      f.Mode,
		Key:       f.Key,
		ReadOnly:  f.ReadOnly(),
		CanSubmit: f.CanSubmit(),
		Saving:    f.Saving,
		Saved:     f.Saved,
	}
	switch f.Mode {
	case form.Add:
		fv.Title = i18n.T(lang, "form.add", noun)
		fv.Action = h.base()
	case form.Edit:
		fv.Title = i18n.T(lang, "form.edit", noun)
		fv.Action = h.recordPath(f.Key)
	default:
		fv.Title = i18n.T(lang, "form.view", noun)
		fv.EditPath = h.recordPath(f.Key) + "/edit"
	}
	if !f.ClosesAt.IsZero() && now.Before(f.ClosesAt) {
		fv.AutoCloseIn = int(f.ClosesAt.Sub(now).Round(time.Second) / time.Second)
		if fv.AutoCloseIn < 1 {
			fv.AutoCloseIn = 1
		}
	}
	for _, field := range h.entity.Fields {
		if f.Mode == form.Add && field.Generated {
			continue
		}
		view := FieldView{
			Name:     field.Name,
			Label:    i18n.T(lang, field.Label),
			Kind:     field.Kind,
			Value:    f.Value(field.Name),
			Required: f.Mode == form.Add && field.Required(),
			Disabled: f.ReadOnly() || field.ReadOnly || (f.Mode == form.Edit && field.Key),
			MaxLen:   field.MaxLen,
		}
		for _, opt := range field.Options {
			view.Options = append(view.Options, OptionView{
				Value:    opt.Value,
				Label:    i18n.T(lang, opt.Label),
				Selected: opt.Value == view.Value,
			})
		}
		if key := f.Error(field.Name); key != "" {
			if key == "form.too_long" {
				view.Error = i18n.T(lang, key, field.MaxLen)
			} else {
				view.Error = i18n.T(lang, key)
			}
		}
		fv.Fields = append(fv.Fields, view)
	}
	return fv
}

func (h *Handler[T]) viewJSON(lang i18n.Lang, state *PageState, v listview.View[T]) ViewJSON {
	visible, _ := h.columnViews(lang, state.Controls)
	rows := h.rowViews(v, state.Selection)
	if visible == nil {
		visible = []ColumnView{}
	}
	selected := state.Selection.Keys()
	if selected == nil {
		selected = []string{}
	}
	return ViewJSON{
		Entity:        h.entity.Name,
		Search:        state.Controls.Search,
		Total:         v.Total,
		Filtered:      v.Filtered,
		Page:          v.Page,
		PageSize:      v.PageSize,
		TotalPages:    v.TotalPages,
		Columns:       visible,
		Rows:          rows,
		AllSelected:   state.Selection.AllSelected(h.entity.Definition.Keys(v.Rows)),
		SelectedCount: state.Selection.Len(),
		Selected:      selected,
	}
}

func (h *Handler[T]) base() string {
	return "/masterdata/" + h.entity.Name
}

func (h *Handler[T]) recordPath(key string) string {
	return h.base() + "/records/" + url.PathEscape(key)
}
