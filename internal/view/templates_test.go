package view_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/masterdesk/internal/form"
	"github.com/odyssey-erp/masterdesk/internal/i18n"
	"github.com/odyssey-erp/masterdesk/internal/masterdata"
	"github.com/odyssey-erp/masterdesk/internal/view"
)

func TestNewEngine(t *testing.T) {
	engine, err := view.NewEngine()
	assert.NoError(t, err, "Templates should parse without error")
	assert.NotNil(t, engine)
}

func TestRenderListPage(t *testing.T) {
	engine, err := view.NewEngine(view.WithDefaultLanguage(i18n.EN))
	require.NoError(t, err)

	page := masterdata.ListPage{
		Entity:   "units",
		Base:     "/masterdata/units",
		Title:    "Units",
		Noun:     "unit",
		Search:   "kilo",
		Columns:  []masterdata.ColumnView{{ID: "code", Label: "Code", Sortable: true, Visible: true, Direction: "asc"}},
		Rows:     []masterdata.RowView{{Key: "KG", Path: "/masterdata/units/records/KG", Selected: true, Cells: []string{"KG"}}},
		Total:    3,
		Filtered: 1,
		Page:     1, PageSize: 10, PageSizes: []int{10, 25}, TotalPages: 1,
		From: 1, To: 1,
		SelectedCount: 1,
		Form: &masterdata.FormView{
			Mode:   form.Edit,
			Title:  "Edit unit",
			Key:    "KG",
			Action: "/masterdata/units/records/KG",
			Fields: []masterdata.FieldView{
				{Name: "name", Label: "Name", Kind: masterdata.KindText, Value: "Kilogram", Error: "Too long", MaxLen: 50},
			},
			CanSubmit: true,
			Saved:     true, AutoCloseIn: 2,
		},
	}
	req := httptest.NewRequest(http.MethodGet, "/masterdata/units/", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, engine.Render(rec, "pages/list.html", engine.Page(req, "tok-1", "error.title", page)))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `data-entity="units"`)
	assert.Contains(t, body, `value="kilo"`)
	assert.Contains(t, body, `href="/masterdata/units/records/KG/edit"`)
	assert.Contains(t, body, `action="/masterdata/units/records/KG"`)
	assert.Contains(t, body, `value="Kilogram"`)
	assert.Contains(t, body, `maxlength="50"`)
	assert.Contains(t, body, "Too long")
	assert.Contains(t, body, `content="2"`)
	assert.Contains(t, body, `value="tok-1"`)
	assert.Contains(t, body, "▲")
	assert.NotContains(t, body, i18n.T(i18n.EN, "list.empty"))
}

func TestRenderEmptyListPage(t *testing.T) {
	engine, err := view.NewEngine(view.WithDefaultLanguage(i18n.EN))
	require.NoError(t, err)

	page := masterdata.ListPage{Entity: "units", Base: "/masterdata/units", Page: 1, TotalPages: 1, PageSize: 10}
	req := httptest.NewRequest(http.MethodGet, "/masterdata/units/", nil)
	rec := httptest.NewRecorder()
	require.NoError(t, engine.Render(rec, "pages/list.html", engine.Page(req, "", "error.title", page)))

	body := rec.Body.String()
	assert.Contains(t, body, i18n.T(i18n.EN, "list.empty"))
	assert.NotContains(t, body, `role="dialog"`, "no form is open")
}

func TestRenderErrorPageStatus(t *testing.T) {
	engine, err := view.NewEngine(view.WithDefaultLanguage(i18n.EN))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()
	data := engine.Page(req, "", "error.title", view.ErrorPage{Message: "Backend unavailable"})
	require.NoError(t, engine.RenderStatus(rec, http.StatusBadGateway, "pages/error.html", data))

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "Backend unavailable")
}

func TestRenderUnknownTemplateWritesNothing(t *testing.T) {
	engine, err := view.NewEngine()
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Error(t, engine.Render(rec, "pages/nope.html", engine.Page(req, "", "error.title", nil)))
	assert.Zero(t, rec.Body.Len())
}
