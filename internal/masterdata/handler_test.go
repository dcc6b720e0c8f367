package masterdata_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/masterdesk/internal/backend"
	"github.com/odyssey-erp/masterdesk/internal/collection"
	"github.com/odyssey-erp/masterdesk/internal/export"
	"github.com/odyssey-erp/masterdesk/internal/form"
	"github.com/odyssey-erp/masterdesk/internal/masterdata"
	"github.com/odyssey-erp/masterdesk/internal/masterdata/units"
	"github.com/odyssey-erp/masterdesk/internal/shared"
	"github.com/odyssey-erp/masterdesk/internal/view"
	_ "github.com/odyssey-erp/masterdesk/testing"
)

type fakeUnits struct {
	mu         sync.Mutex
	records    []units.Unit
	listErr    error
	createErr  error
	failDelete map[string]error
	deleted    []string
	created    []map[string]string
	updated    map[string]string
	block      chan struct{}
	entered    chan struct{}
	nextCode   int
}

func (f *fakeUnits) List(ctx context.Context, creds backend.Credentials) ([]units.Unit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]units.Unit, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeUnits) Create(ctx context.Context, creds backend.Credentials, values map[string]string) error {
	if f.entered != nil {
		close(f.entered)
	}
	if f.block != nil {
		<-f.block
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, values)
	f.nextCode++
	f.records = append(f.records, units.Unit{Code: "N" + string(rune('0'+f.nextCode)), Name: values[units.FieldName]})
	return nil
}

func (f *fakeUnits) Update(ctx context.Context, creds backend.Credentials, key string, values map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = values
	for i := range f.records {
		if f.records[i].Code == key {
			f.records[i].Name = values[units.FieldName]
		}
	}
	return nil
}

func (f *fakeUnits) Delete(ctx context.Context, creds backend.Credentials, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.failDelete[key]; err != nil {
		return err
	}
	f.deleted = append(f.deleted, key)
	kept := f.records[:0]
	for _, rec := range f.records {
		if rec.Code != key {
			kept = append(kept, rec)
		}
	}
	f.records = kept
	return nil
}

type harness struct {
	t        *testing.T
	source   *fakeUnits
	sessions *shared.SessionManager
	sess     *shared.Session
	states   *masterdata.StateStore
	links    *export.Links
	router   chi.Router
	now      time.Time
	nowMu    sync.Mutex
}

func newHarness(t *testing.T, source *fakeUnits) *harness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	templates, err := view.NewEngine()
	require.NoError(t, err)

	h := &harness{
		t:        t,
		source:   source,
		sessions: shared.NewSessionManager(client, "test_session", "secret", time.Hour, false),
		links:    export.NewLinks(client, time.Minute, "/downloads/"),
		now:      time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	h.states = masterdata.NewStateStore(client, time.Hour,
		masterdata.WithClock(h.clock), masterdata.WithSaveTimeout(time.Minute))
	h.sess = h.newSession()

	handler := masterdata.NewHandler(masterdata.Deps{
		Templates:   templates,
		CSRF:        shared.NewCSRFManager("csrf"),
		Sessions:    h.sessions,
		Collections: collection.NewStore(client, time.Minute),
		States:      h.states,
		Exporter:    export.NewExporter(export.Config{Links: h.links}),
		Audit:       shared.NewAuditLogger(nil),
		Now:         h.clock,
	}, units.Entity(source))
	r := chi.NewRouter()
	handler.MountRoutes(r)
	h.router = r
	return h
}

func (h *harness) clock() time.Time {
	h.nowMu.Lock()
	defer h.nowMu.Unlock()
	return h.now
}

func (h *harness) advance(d time.Duration) {
	h.nowMu.Lock()
	defer h.nowMu.Unlock()
	h.now = h.now.Add(d)
}

// newSession returns a session object for the harness session id, the way a
// parallel request would load it.
func (h *harness) newSession() *shared.Session {
	sess, err := h.sessions.Load(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(h.t, err)
	if h.sess != nil {
		sess.ID = h.sess.ID
	}
	sess.SetAccessToken("token")
	sess.SetUser("alice")
	return sess
}

func (h *harness) serve(sess *shared.Session, req *http.Request) *httptest.ResponseRecorder {
	req = req.WithContext(shared.ContextWithSession(req.Context(), sess))
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

func (h *harness) get(path string) *httptest.ResponseRecorder {
	return h.serve(h.sess, httptest.NewRequest(http.MethodGet, path, nil))
}

func (h *harness) post(path string, form url.Values) *httptest.ResponseRecorder {
	return h.postAs(h.sess, path, form)
}

func (h *harness) postAs(sess *shared.Session, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return h.serve(sess, req)
}

func (h *harness) view() masterdata.ViewJSON {
	rec := h.get("/masterdata/units/view.json")
	require.Equal(h.t, http.StatusOK, rec.Code, rec.Body.String())
	var v masterdata.ViewJSON
	require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func (h *harness) state() *masterdata.PageState {
	state, err := h.states.Load(context.Background(), h.sess.ID, "units", 2*time.Second)
	require.NoError(h.t, err)
	return state
}

func (h *harness) lastFlash() shared.FlashMessage {
	flashes := h.sess.Flashes()
	require.NotEmpty(h.t, flashes)
	return flashes[len(flashes)-1]
}

func rowKeys(v masterdata.ViewJSON) []string {
	keys := make([]string, len(v.Rows))
	for i, row := range v.Rows {
		keys[i] = row.Key
	}
	return keys
}

func unitsOf(codes ...string) []units.Unit {
	out := make([]units.Unit, len(codes))
	for i, c := range codes {
		out[i] = units.Unit{Code: c, Name: "Unit " + c}
	}
	return out
}

func TestListRendersCollection(t *testing.T) {
	h := newHarness(t, &fakeUnits{records: []units.Unit{{Code: "KG", Name: "Kilogram"}, {Code: "M", Name: "Mét"}}})

	rec := h.get("/masterdata/units/")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Kilogram")
	assert.Contains(t, body, "/masterdata/units/records/KG")
}

func TestSearchSortAndPaging(t *testing.T) {
	source := &fakeUnits{records: []units.Unit{
		{Code: "C", Name: "Cái"},
		{Code: "KG", Name: "Kilogram"},
		{Code: "G", Name: "Gram"},
		{Code: "M", Name: "Mét"},
	}}
	h := newHarness(t, source)

	rec := h.post("/masterdata/units/search", url.Values{"q": {"gram"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/masterdata/units", rec.Header().Get("Location"))
	v := h.view()
	assert.Equal(t, 4, v.Total)
	assert.Equal(t, 2, v.Filtered)
	assert.ElementsMatch(t, []string{"KG", "G"}, rowKeys(v))

	h.post("/masterdata/units/search", url.Values{"q": {""}})
	h.post("/masterdata/units/sort", url.Values{"column": {string(units.ColCode)}})
	assert.Equal(t, []string{"C", "G", "KG", "M"}, rowKeys(h.view()))
	h.post("/masterdata/units/sort", url.Values{"column": {string(units.ColCode)}})
	assert.Equal(t, []string{"M", "KG", "G", "C"}, rowKeys(h.view()))

	h.post("/masterdata/units/page-size", url.Values{"size": {"20"}})
	h.post("/masterdata/units/page", url.Values{"page": {"9"}})
	v = h.view()
	assert.Equal(t, 1, v.Page, "page is clamped into range")
	assert.Equal(t, 20, v.PageSize)
}

func TestHiddenColumnIsLeftOutOfView(t *testing.T) {
	h := newHarness(t, &fakeUnits{records: unitsOf("A")})

	h.post("/masterdata/units/columns", url.Values{"column": {string(units.ColName)}})
	v := h.view()
	require.Len(t, v.Columns, 1)
	assert.Equal(t, string(units.ColCode), v.Columns[0].ID)
	assert.NotContains(t, v.Rows[0].Values, string(units.ColName))
}

func TestSelectAllTogglesCurrentPage(t *testing.T) {
	h := newHarness(t, &fakeUnits{records: unitsOf("A", "B", "C")})

	h.post("/masterdata/units/select", url.Values{"key": {"A"}})
	v := h.view()
	assert.False(t, v.AllSelected)
	assert.Equal(t, []string{"A"}, v.Selected)

	h.post("/masterdata/units/select-all", nil)
	v = h.view()
	assert.True(t, v.AllSelected)
	assert.Equal(t, 3, v.SelectedCount)

	h.post("/masterdata/units/select-all", nil)
	v = h.view()
	assert.False(t, v.AllSelected)
	assert.Empty(t, v.Selected)
}

func TestBulkDeleteReportsPartialFailure(t *testing.T) {
	source := &fakeUnits{
		records:    unitsOf("A", "B", "C"),
		failDelete: map[string]error{"B": &backend.APIError{StatusCode: 400, Message: "in use"}},
	}
	h := newHarness(t, source)
	for _, key := range []string{"A", "B", "C"} {
		h.post("/masterdata/units/select", url.Values{"key": {key}})
	}

	rec := h.post("/masterdata/units/bulk-delete", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.ElementsMatch(t, []string{"A", "C"}, source.deleted)

	flash := h.lastFlash()
	assert.Equal(t, shared.FlashWarning, flash.Kind)
	assert.Contains(t, flash.Message, "B")

	v := h.view()
	assert.Empty(t, v.Selected, "selection is cleared after a bulk delete")
	assert.Equal(t, []string{"B"}, rowKeys(v), "collection is refreshed")
}

func TestBulkDeleteWithoutSelectionDoesNothing(t *testing.T) {
	source := &fakeUnits{records: unitsOf("A")}
	h := newHarness(t, source)

	h.post("/masterdata/units/bulk-delete", nil)
	assert.Empty(t, source.deleted)
	assert.Equal(t, shared.FlashInfo, h.lastFlash().Kind)
}

func TestCreateValidatesRequiredFields(t *testing.T) {
	source := &fakeUnits{}
	h := newHarness(t, source)

	h.get("/masterdata/units/new")
	h.post("/masterdata/units/", url.Values{units.FieldName: {"  "}})

	state := h.state()
	assert.Equal(t, form.Add, state.Form.Mode)
	assert.False(t, state.Form.Saving)
	assert.Equal(t, "form.required", state.Form.Error(units.FieldName))
	assert.Empty(t, source.created)
	assert.Equal(t, shared.FlashError, h.lastFlash().Kind)
}

func TestCreateSucceedsAndAutoCloses(t *testing.T) {
	source := &fakeUnits{records: unitsOf("A")}
	h := newHarness(t, source)

	h.get("/masterdata/units/new")
	rec := h.post("/masterdata/units/", url.Values{units.FieldName: {"Thùng"}})
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	require.Len(t, source.created, 1)
	assert.Equal(t, "Thùng", source.created[0][units.FieldName])
	assert.Equal(t, shared.FlashSuccess, h.lastFlash().Kind)

	state := h.state()
	assert.True(t, state.Form.Saved)
	assert.Equal(t, form.Add, state.Form.Mode)
	assert.Equal(t, 2, h.view().Total, "collection is refreshed after a save")

	h.advance(3 * time.Second)
	require.Equal(t, http.StatusOK, h.get("/masterdata/units/").Code)
	assert.False(t, h.state().Form.IsOpen())
}

func TestCreateFailureKeepsValues(t *testing.T) {
	source := &fakeUnits{createErr: &backend.APIError{StatusCode: 400, Message: "Tên đã tồn tại", Messages: []string{"Tên đã tồn tại"}}}
	h := newHarness(t, source)

	h.get("/masterdata/units/new")
	h.post("/masterdata/units/", url.Values{units.FieldName: {"Cái"}})

	state := h.state()
	assert.Equal(t, form.Add, state.Form.Mode)
	assert.False(t, state.Form.Saved)
	assert.Equal(t, "Cái", state.Form.Value(units.FieldName))
	flash := h.lastFlash()
	assert.Equal(t, shared.FlashError, flash.Kind)
	assert.Equal(t, "Tên đã tồn tại", flash.Message)
}

func TestCloseIsRefusedWhileSaving(t *testing.T) {
	source := &fakeUnits{block: make(chan struct{}), entered: make(chan struct{})}
	h := newHarness(t, source)
	h.get("/masterdata/units/new")

	done := make(chan *httptest.ResponseRecorder)
	go func() {
		done <- h.post("/masterdata/units/", url.Values{units.FieldName: {"Hộp"}})
	}()
	<-source.entered

	other := h.newSession()
	rec := h.postAs(other, "/masterdata/units/form/close", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	flashes := other.Flashes()
	require.NotEmpty(t, flashes)
	assert.Equal(t, shared.FlashInfo, flashes[len(flashes)-1].Kind)

	state := h.state()
	assert.True(t, state.Form.Saving)
	assert.Equal(t, form.Add, state.Form.Mode)

	close(source.block)
	<-done
	state = h.state()
	assert.False(t, state.Form.Saving)
	assert.True(t, state.Form.Saved)

	h.post("/masterdata/units/form/close", nil)
	assert.False(t, h.state().Form.IsOpen())
}

func TestSaveSettlesWhenClientDisconnects(t *testing.T) {
	source := &fakeUnits{block: make(chan struct{}), entered: make(chan struct{})}
	h := newHarness(t, source)
	h.get("/masterdata/units/new")

	ctx, cancel := context.WithCancel(context.Background())
	body := url.Values{units.FieldName: {"Hộp"}}.Encode()
	req := httptest.NewRequest(http.MethodPost, "/masterdata/units/", strings.NewReader(body)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	done := make(chan *httptest.ResponseRecorder)
	go func() {
		done <- h.serve(h.sess, req)
	}()
	<-source.entered
	cancel()
	close(source.block)
	<-done

	state := h.state()
	assert.False(t, state.Form.Saving)
	assert.True(t, state.Form.Saved)
	assert.Equal(t, 1, h.view().Total, "collection is refreshed after a save")

	h.post("/masterdata/units/form/close", nil)
	assert.False(t, h.state().Form.IsOpen())
}

func TestAbandonedSaveIsClearedAfterTimeout(t *testing.T) {
	h := newHarness(t, &fakeUnits{})
	h.get("/masterdata/units/new")
	_, err := h.states.Update(context.Background(), h.sess.ID, "units", 2*time.Second, func(s *masterdata.PageState) error {
		return s.Form.BeginSave(nil, h.clock())
	})
	require.NoError(t, err)

	h.post("/masterdata/units/form/close", nil)
	require.True(t, h.state().Form.Saving)
	assert.True(t, h.state().Form.IsOpen())

	h.advance(time.Minute)
	assert.False(t, h.state().Form.Saving)
	h.post("/masterdata/units/form/close", nil)
	assert.False(t, h.state().Form.IsOpen())
}

func TestConcurrentSelectionsAreAllKept(t *testing.T) {
	h := newHarness(t, &fakeUnits{records: unitsOf("A")})
	const n = 40
	sessions := make([]*shared.Session, n)
	for i := range sessions {
		sessions[i] = h.newSession()
	}

	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.postAs(sessions[i], "/masterdata/units/select", url.Values{"key": {fmt.Sprintf("K%02d", i)}})
		}()
	}
	wg.Wait()

	assert.Equal(t, n, h.state().Selection.Len())
}

func TestEditKeepsRecordKey(t *testing.T) {
	source := &fakeUnits{records: []units.Unit{{Code: "KG", Name: "Kilogram"}}}
	h := newHarness(t, source)

	rec := h.get("/masterdata/units/records/KG/edit")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	state := h.state()
	assert.Equal(t, form.Edit, state.Form.Mode)
	assert.Equal(t, "Kilogram", state.Form.Value(units.FieldName))

	h.post("/masterdata/units/records/KG", url.Values{units.FieldName: {"Ki-lô-gam"}, units.FieldCode: {"OTHER"}})
	assert.Equal(t, "KG", source.updated[units.FieldCode])
	assert.Equal(t, "Ki-lô-gam", source.records[0].Name)
}

func TestViewModeRefusesSubmit(t *testing.T) {
	source := &fakeUnits{records: []units.Unit{{Code: "KG", Name: "Kilogram"}}}
	h := newHarness(t, source)

	h.get("/masterdata/units/records/KG")
	require.Equal(t, form.View, h.state().Form.Mode)

	h.post("/masterdata/units/records/KG", url.Values{units.FieldName: {"x"}})
	assert.Nil(t, source.updated)

	body := h.get("/masterdata/units/").Body.String()
	assert.NotContains(t, body, `action="/masterdata/units/records/KG"`, "view mode has no submit target")
}

func TestUnknownRecordFlashesError(t *testing.T) {
	h := newHarness(t, &fakeUnits{records: unitsOf("A")})

	rec := h.get("/masterdata/units/records/ZZ")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, shared.FlashError, h.lastFlash().Kind)
	assert.False(t, h.state().Form.IsOpen())
}

func TestSingleDeleteAsksForConfirmation(t *testing.T) {
	source := &fakeUnits{records: []units.Unit{{Code: "KG", Name: "Kilogram"}, {Code: "M", Name: "Mét"}}}
	h := newHarness(t, source)

	rec := h.get("/masterdata/units/records/KG/delete")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Kilogram")
	assert.Empty(t, source.deleted)

	rec = h.post("/masterdata/units/records/KG/delete", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, []string{"KG"}, source.deleted)
	assert.Equal(t, shared.FlashSuccess, h.lastFlash().Kind)
	assert.Equal(t, []string{"M"}, rowKeys(h.view()))
}

func TestExportSelectedRowsBehindLink(t *testing.T) {
	h := newHarness(t, &fakeUnits{records: unitsOf("A", "B", "C")})
	h.post("/masterdata/units/select", url.Values{"key": {"C"}})
	h.post("/masterdata/units/select", url.Values{"key": {"A"}})

	rec := h.post("/masterdata/units/export", nil)
	assert.Equal(t, http.StatusSeeOther, rec.Code)

	flash := h.lastFlash()
	assert.Equal(t, shared.FlashSuccess, flash.Kind)
	require.True(t, strings.HasPrefix(flash.Link, "/downloads/"))

	dl, err := h.links.Open(context.Background(), strings.TrimPrefix(flash.Link, "/downloads/"))
	require.NoError(t, err)
	assert.Equal(t, "quan-ly-don-vi-tinh.xlsx", dl.Name)
	wb, err := export.ReadWorkbook(bytes.NewReader(dl.Data))
	require.NoError(t, err)
	rows := wb.Rows("DonViTinh", 0)
	require.Len(t, rows, 3)
	assert.Equal(t, "A", rows[1][0], "rows follow collection order")
	assert.Equal(t, "C", rows[2][0])

	assert.Equal(t, 2, h.view().SelectedCount, "export keeps the selection")
}

func TestImportPreviewListsSheets(t *testing.T) {
	h := newHarness(t, &fakeUnits{})
	data, err := export.Build(export.Sheet{Name: "DonViTinh", Header: []string{"Mã", "Tên"}, Rows: [][]any{{"KG", "Kilogram"}}})
	require.NoError(t, err)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "units.xlsx")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/masterdata/units/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := h.serve(h.sess, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "DonViTinh")
	assert.Contains(t, rec.Body.String(), "Kilogram")
}

func TestRejectedTokenEndsSession(t *testing.T) {
	h := newHarness(t, &fakeUnits{listErr: &backend.APIError{StatusCode: http.StatusUnauthorized, Message: "expired"}})

	rec := h.get("/masterdata/units/")
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?expired=1", rec.Header().Get("Location"))
}

func TestUnavailableBackendRendersMessage(t *testing.T) {
	h := newHarness(t, &fakeUnits{listErr: errors.Join(backend.ErrUnavailable, errors.New("dial tcp"))})

	rec := h.get("/masterdata/units/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "flash-error")

	rec = h.get("/masterdata/units/view.json")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
