// Package masterdata serves the entity pages: a searchable, sortable table
// with selection, bulk delete, export and an add / view / edit form.
package masterdata

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/masterdesk/internal/backend"
	"github.com/odyssey-erp/masterdesk/internal/collection"
	"github.com/odyssey-erp/masterdesk/internal/export"
	"github.com/odyssey-erp/masterdesk/internal/form"
	"github.com/odyssey-erp/masterdesk/internal/i18n"
	"github.com/odyssey-erp/masterdesk/internal/listview"
	"github.com/odyssey-erp/masterdesk/internal/platform/httpx"
	"github.com/odyssey-erp/masterdesk/internal/shared"
	"github.com/odyssey-erp/masterdesk/internal/view"
)

const maxUploadSize = 10 << 20

// Deps are the collaborators shared by every entity page.
type Deps struct {
	Logger      *slog.Logger
	Templates   *view.Engine
	CSRF        *shared.CSRFManager
	Sessions    *shared.SessionManager
	Collections *collection.Store
	States      *StateStore
	Exporter    *export.Exporter
	Audit       *shared.AuditLogger
	Now         func() time.Time
}

// Handler serves the page of one entity kind.
type Handler[T any] struct {
	deps   Deps
	entity *Entity[T]
	logger *slog.Logger
}

// NewHandler constructs a Handler.
func NewHandler[T any](deps Deps, entity *Entity[T]) *Handler[T] {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Handler[T]{
		deps:   deps,
		entity: entity,
		logger: deps.Logger.With(slog.String("entity", entity.Name)),
	}
}

// Name returns the entity name.
func (h *Handler[T]) Name() string { return h.entity.Name }

// TitleKey returns the message key of the page title.
func (h *Handler[T]) TitleKey() string { return h.entity.TitleKey() }

// Base returns the URL prefix of the page.
func (h *Handler[T]) Base() string { return h.base() }

// Count returns the number of records in the session's collection, fetching
// it when it is not cached yet.
func (h *Handler[T]) Count(ctx context.Context, sessionID string, creds backend.Credentials) (int, error) {
	records, err := collection.LoadOrRefresh(ctx, h.deps.Collections, h.scope(sessionID), h.fetch(creds))
	if err != nil {
		return 0, err
	}
	return len(records), nil
}

// MountRoutes registers the page routes on r.
func (h *Handler[T]) MountRoutes(r chi.Router) {
	r.Route(h.base(), func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/view.json", h.viewData)
		r.Post("/", h.create)

		r.Post("/search", h.search)
		r.Post("/page-size", h.pageSize)
		r.Post("/page", h.page)
		r.Post("/sort", h.sort)
		r.Post("/columns", h.toggleColumn)
		r.Post("/refresh", h.refresh)

		r.Post("/select", h.toggleSelect)
		r.Post("/select-all", h.toggleSelectAll)
		r.Post("/bulk-delete", h.bulkDelete)
		r.Post("/export", h.export)
		r.Post("/import", h.importPreview)

		r.Get("/new", h.openAdd)
		r.Post("/form/close", h.closeForm)

		r.Get("/records/{key}", h.openView)
		r.Get("/records/{key}/edit", h.openEdit)
		r.Post("/records/{key}", h.update)
		r.Get("/records/{key}/delete", h.confirmDelete)
		r.Post("/records/{key}/delete", h.deleteOne)
	})
}

// pageRequest is the per-request context of an entity page.
type pageRequest struct {
	sess  *shared.Session
	creds backend.Credentials
	lang  i18n.Lang
	scope collection.Scope
	state *PageState
}

func (h *Handler[T]) scope(sessionID string) collection.Scope {
	return collection.Scope{SessionID: sessionID, Entity: h.entity.Name}
}

func (h *Handler[T]) fetch(creds backend.Credentials) func(context.Context) ([]T, error) {
	return func(ctx context.Context) ([]T, error) {
		return h.entity.Source.List(ctx, creds)
	}
}

func (h *Handler[T]) begin(w http.ResponseWriter, r *http.Request) (*pageRequest, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return nil, false
	}
	state, err := h.deps.States.Load(r.Context(), sess.ID, h.entity.Name, h.entity.AutoClose)
	if err != nil {
		h.logger.Error("load page state", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return nil, false
	}
	return &pageRequest{
		sess:  sess,
		creds: backend.Credentials{Token: sess.AccessToken()},
		lang:  h.deps.Templates.Lang(r),
		scope: h.scope(sess.ID),
		state: state,
	}, true
}

// commit applies change to the latest stored page state and keeps the result
// in pr. Store failures are logged; errors of change are only returned.
func (h *Handler[T]) commit(ctx context.Context, pr *pageRequest, change func(*PageState) error) error {
	state, err := h.deps.States.Update(ctx, pr.sess.ID, h.entity.Name, h.entity.AutoClose, change)
	if state != nil {
		pr.state = state
	} else if err != nil {
		h.logger.Error("save page state", slog.Any("error", err))
	}
	return err
}

// done applies change, when given, and sends the browser back to the table.
func (h *Handler[T]) done(w http.ResponseWriter, r *http.Request, pr *pageRequest, change func(*PageState) error) {
	if change != nil {
		_ = h.commit(r.Context(), pr, change)
	}
	http.Redirect(w, r, h.base(), http.StatusSeeOther)
}

// expired ends the session when the backend rejected its token.
func (h *Handler[T]) expired(w http.ResponseWriter, r *http.Request, pr *pageRequest, err error) bool {
	if !backend.IsUnauthorized(err) {
		return false
	}
	h.logger.Info("backend token rejected", slog.String("user", pr.sess.User()))
	_ = h.deps.Collections.Clear(r.Context(), pr.sess.ID)
	_ = h.deps.States.Clear(r.Context(), pr.sess.ID)
	h.deps.Sessions.Destroy(pr.sess)
	http.Redirect(w, r, "/login?expired=1", http.StatusSeeOther)
	return true
}

func (h *Handler[T]) flash(pr *pageRequest, kind, titleKey, message string) {
	pr.sess.AddFlash(shared.FlashMessage{
		Kind:    kind,
		Title:   i18n.T(pr.lang, titleKey),
		Message: message,
	})
}

// failure is the message shown for a failed backend call. Fallback keys take
// the entity noun.
func (h *Handler[T]) failure(pr *pageRequest, err error, fallbackKey string) string {
	return backend.Message(err, i18n.T(pr.lang, "error.connection"), i18n.T(pr.lang, fallbackKey, h.noun(pr)))
}

func (h *Handler[T]) noun(pr *pageRequest) string {
	return i18n.T(pr.lang, h.entity.NounKey())
}

func (h *Handler[T]) audit(ctx context.Context, pr *pageRequest, action, entityID string, meta map[string]any) {
	err := h.deps.Audit.Record(ctx, shared.AuditLog{
		Actor:    pr.sess.User(),
		Action:   action,
		Entity:   h.entity.Name,
		EntityID: entityID,
		Meta:     meta,
		At:       h.deps.Now(),
	})
	if err != nil {
		h.logger.Warn("audit record", slog.String("action", action), slog.Any("error", err))
	}
}

func (h *Handler[T]) render(w http.ResponseWriter, r *http.Request, pr *pageRequest, name, titleKey string, data any) {
	csrfToken, _ := h.deps.CSRF.EnsureToken(r.Context(), pr.sess)
	td := h.deps.Templates.Page(r, csrfToken, titleKey, data)
	if err := h.deps.Templates.Render(w, name, td); err != nil {
		h.logger.Error("render", slog.String("template", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

// current returns the collection and the derived view, clamping the page
// into range.
func (h *Handler[T]) current(ctx context.Context, pr *pageRequest) ([]T, listview.View[T], bool, error) {
	records, err := collection.LoadOrRefresh(ctx, h.deps.Collections, pr.scope, h.fetch(pr.creds))
	if err != nil {
		records = nil
	}
	tag := i18n.Tag(pr.lang)
	v := h.entity.Definition.Compute(records, pr.state.Controls, tag)
	changed := pr.state.Controls.Clamp(v.Filtered)
	if changed {
		v = h.entity.Definition.Compute(records, pr.state.Controls, tag)
	}
	return records, v, changed, err
}

// reload refetches the collection after a mutation. Failures are logged; the
// next render retries.
func (h *Handler[T]) reload(ctx context.Context, pr *pageRequest) error {
	_, _, err := collection.Refresh(ctx, h.deps.Collections, pr.scope, h.fetch(pr.creds))
	if err != nil {
		h.logger.Warn("refresh collection", slog.Any("error", err))
	}
	return err
}

func (h *Handler[T]) list(w http.ResponseWriter, r *http.Request) {
	pr, ok := h.begin(w, r)
	if !ok {
		return
	}
	now := h.deps.Now()
	expired := pr.state.Form.Expire(now)
	_, v, clamped, err := h.current(r.Context(), pr)
	loadErr := ""
	if err != nil {
		if h.expired(w, r, pr, err) {
			return
		}
		h.logger.Error("load collection", slog.Any("error", err))
		loadErr = h.failure(pr, err, "msg.load_failed")
	}
	if expired || clamped {
		filtered := v.Filtered
		_ = h.commit(r.Context(), pr, func(s *PageState) error {
			s.Form.Expire(now)
			s.Controls.Clamp(filtered)
			return nil
		})
	}
	h.render(w, r, pr, "pages/list.html", h.entity.TitleKey(), h.listPage(pr.lang, pr.state, v, loadErr, now))
}

func (h *Handler[T]) viewData(w http.ResponseWriter, r *http.Request) {
	pr, ok := h.begin(w, r)
	if !ok {
		return
	}
	_, v, clamped, err := h.current(r.Context(), pr)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if clamped {
		filtered := v.Filtered
		_ = h.commit(r.Context(), pr, func(s *PageState) error {
			s.Controls.Clamp(filtered)
			return nil
		})
	}
	httpx.JSON(w, http.StatusOK, h.viewJSON(pr.lang, pr.state, v))
}

func (h *Handler[T]) search(w http.ResponseWriter, r *http.Request) {
	pr, ok := h.begin(w, r)
	if !ok {
		return
	}
	q := strings.TrimSpace(r.PostFormValue("q"))
	h.done(w, r, pr, func(s *PageState) error {
		s.Controls.SetSearch(q)
		return nil
	})
}

func (h *Handler[T]) pageSize(w http.ResponseWriter, r *http.Request) {
	pr, ok := h.begin(w, r)
	if !ok {
		return
	}
	size, err := strconv.Atoi(r.PostFormValue("size"))
	if err != nil {
		h.done(w, r, pr, nil)
		return
	}
	h.done(w, r, pr, func(s *PageState) error {
		s.Controls.SetPageSize(size)
		return nil
	})
}

func (h *Handler[T]) page(w http.ResponseWriter, r *http.Request) {
	pr, ok := h.begin(w, r)
	if !ok {
		return
	}
	page, err := strconv.Atoi(r.PostFormValue("page"))
	if err != nil {
		h.done(w, r, pr, nil)
		return
	}
	h.done(w, r, pr, func(s *PageState) error {
		s.Controls.SetPage(page)
		return nil
	})
}

func (h *Handler[T]) sort(w http.ResponseWriter, r *http.Request) {
	pr, ok := h.begin(w, r)
	if !ok {
		return
	}
	id := listview.ColumnID(r.PostFormValue("column"))
	if col, found := h.entity.Definition.Column(id); !found || !col.Sortable {
		h.done(w, r, pr, nil)
		return
	}
	h.done(w, r, pr, func(s *PageState) error {
		s.Controls.ToggleSort(id)
		return nil
	})
}

func (h *Handler[T]) toggleColumn(w http.ResponseWriter, r *http.Request) {
	pr, ok := h.begin(w, r)
	if !ok {
		return
	}
	id := listview.ColumnID(r.PostFormValue("column"))
	if _, found := h.entity.Definition.Column(id); !found {
		h.done(w, r, pr, nil)
		return
	}
	h.done(w, r, pr, func(s *PageState) error {
		s.Controls.ToggleColumn(id)
		return nil
	})
}

func (h *Handler[T]) refresh(w http.ResponseWriter, r *http.Request) {
	pr, ok := h.begin(w, r)
	if !ok {
		return
	}
	if err := h.reload(r.Context(), pr); err != nil {
		if h.expired(w, r, pr, err) {
			return
		}
		h.flash(pr, shared.FlashError, "notify.error", h.failure(pr, err, "msg.load_failed"))
	}
	h.done(w, r, pr, func(s *PageState) error {
		s.Controls.ResetSort()
		s.Selection.Clear()
		return nil
	})
}

func (h *Handler[T]) toggleSelect(w http.ResponseWriter, r *http.Request) {
	pr, ok := h.begin(w, r)
	if !ok {
		return
	}
	key := r.PostFormValue("key")
	if key == "" {
		h.done(w, r, pr, nil)
		return
	}
	h.done(w, r, pr, func(s *PageState) error {
		s.Selection.Toggle(key)
		return nil
	})
}

func (h *Handler[T]) toggleSelectAll(w http.ResponseWriter, r *http.Request) {
	pr, ok := h.begin(w, r)
	if !ok {
		return
	}
	_, v, _, err := h.current(r.Context(), pr)
	if err != nil && h.expired(w, r, pr, err) {
		return
	}
	pageKeys := h.entity.Definition.Keys(v.Rows)
	h.done(w, r, pr, func(s *PageState) error {
		s.Selection.ToggleAll(pageKeys)
		return nil
	})
}

func (h *Handler[T]) bulkDelete(w http.ResponseWriter, r *http.Request) {
	pr, ok := h.begin(w, r)
	if !ok {
		return
	}
	keys := pr.state.Selection.Keys()
	if len(keys) == 0 {
		h.flash(pr, shared.FlashInfo, "notify.info", i18n.T(pr.lang, "msg.nothing_selected", h.noun(pr)))
		h.done(w, r, pr, nil)
		return
	}

	var rejected error
	result := listview.BulkDelete(r.Context(), h.logger, keys, func(ctx context.Context, key string) error {
		err := h.entity.Source.Delete(ctx, pr.creds, key)
		if backend.IsUnauthorized(err) {
			rejected = err
		}
		return err
	})
	settled := context.WithoutCancel(r.Context())
	_ = h.commit(settled, pr, func(s *PageState) error {
		s.Selection.Clear()
		return nil
	})
	_ = h.reload(settled, pr)
	h.audit(settled, pr, shared.AuditBulkDelete, strings.Join(keys, ","), map[string]any{
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
	})
	if rejected != nil && len(result.Succeeded) == 0 && h.expired(w, r, pr, rejected) {
		return
	}

	if result.Partial() {
		h.flash(pr, shared.FlashWarning, "notify.warning", i18n.T(pr.lang, "msg.bulk_partial",
			len(result.Succeeded), len(result.Failed), strings.Join(result.FailedKeys(), ", ")))
	} else {
		h.flash(pr, shared.FlashSuccess, "notify.success", i18n.T(pr.lang, "msg.bulk_deleted", h.noun(pr)))
	}
	h.done(w, r, pr, nil)
}

func (h *Handler[T]) export(w http.ResponseWriter, r *http.Request) {
	pr, ok := h.begin(w, r)
	if !ok {
		return
	}
	keys := pr.state.Selection.Keys()
	if len(keys) == 0 {
		h.flash(pr, shared.FlashInfo, "notify.info", i18n.T(pr.lang, "msg.nothing_selected", h.noun(pr)))
		h.done(w, r, pr, nil)
		return
	}
	records, _, _, err := h.current(r.Context(), pr)
	if err != nil {
		if h.expired(w, r, pr, err) {
			return
		}
		h.flash(pr, shared.FlashError, "msg.export_error_title", h.failure(pr, err, "msg.export_failed"))
		h.done(w, r, pr, nil)
		return
	}

	picked := listview.Pick(records, keys, h.entity.Definition.Key)
	res, err := h.deps.Exporter.Export(r.Context(), export.Request{
		FileName: h.entity.FileName,
		Sheet:    h.sheet(pr.lang, picked),
	})
	if err != nil {
		h.logger.Error("export", slog.Any("error", err))
		h.flash(pr, shared.FlashError, "msg.export_error_title", i18n.T(pr.lang, "msg.export_failed"))
		h.done(w, r, pr, nil)
		return
	}
	h.audit(r.Context(), pr, shared.AuditExport, res.FileName, map[string]any{"rows": res.Count})

	message := i18n.T(pr.lang, "msg.exported", res.Count, h.noun(pr))
	msg := shared.FlashMessage{Kind: shared.FlashSuccess, Title: i18n.T(pr.lang, "msg.export_title")}
	if res.Path != "" {
		msg.Message = message + " " + i18n.T(pr.lang, "msg.export_saved", res.Path)
	} else {
		msg.Message = message + " " + i18n.T(pr.lang, "msg.export_ready")
		msg.Link = res.URL
	}
	pr.sess.AddFlash(msg)
	h.done(w, r, pr, nil)
}

// sheet lays out records with every configured column.
func (h *Handler[T]) sheet(lang i18n.Lang, records []T) export.Sheet {
	cols := h.entity.Definition.Columns
	header := make([]string, len(cols))
	for i, col := range cols {
		header[i] = i18n.T(lang, col.Label)
	}
	rows := make([][]any, 0, len(records))
	for _, rec := range records {
		row := make([]any, len(cols))
		for i, col := range cols {
			row[i] = col.Value(rec).Cell()
		}
		rows = append(rows, row)
	}
	return export.Sheet{Name: h.entity.SheetName, Header: header, Rows: rows}
}

func (h *Handler[T]) importPreview(w http.ResponseWriter, r *http.Request) {
	pr, ok := h.begin(w, r)
	if !ok {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, header, err := r.FormFile("file")
	if err != nil {
		h.flash(pr, shared.FlashError, "notify.error", i18n.T(pr.lang, "import.failed"))
		h.done(w, r, pr, nil)
		return
	}
	defer file.Close()

	wb, err := export.ReadWorkbook(file)
	if err != nil {
		h.logger.Warn("read workbook", slog.String("file", header.Filename), slog.Any("error", err))
		h.flash(pr, shared.FlashError, "notify.error", i18n.T(pr.lang, "import.failed"))
		h.done(w, r, pr, nil)
		return
	}
	page := ImportPage{
		Base:     h.base(),
		Title:    i18n.T(pr.lang, "import.title"),
		FileName: header.Filename,
	}
	for _, name := range wb.Sheets {
		all := wb.Rows(name, 0)
		page.Sheets = append(page.Sheets, SheetPreview{
			Name:  name,
			Rows:  wb.Rows(name, importPreviewRows),
			Total: len(all),
		})
	}
	h.render(w, r, pr, "pages/import.html", "import.title", page)
}

func (h *Handler[T]) recordKey(r *http.Request) string {
	raw := chi.URLParam(r, "key")
	key, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return key
}

// record looks key up in the session's collection.
func (h *Handler[T]) record(w http.ResponseWriter, r *http.Request, pr *pageRequest, key string) (T, bool) {
	var zero T
	records, _, _, err := h.current(r.Context(), pr)
	if err != nil {
		if h.expired(w, r, pr, err) {
			return zero, false
		}
		h.flash(pr, shared.FlashError, "notify.error", h.failure(pr, err, "msg.load_failed"))
		h.done(w, r, pr, nil)
		return zero, false
	}
	rec, found := h.entity.Find(records, key)
	if !found {
		h.flash(pr, shared.FlashError, "notify.error", i18n.T(pr.lang, "error.not_found"))
		h.done(w, r, pr, nil)
		return zero, false
	}
	return rec, true
}

func (h *Handler[T]) open(w http.ResponseWriter, r *http.Request, pr *pageRequest, mode form.Mode, key string, values map[string]string) {
	err := h.commit(r.Context(), pr, func(s *PageState) error {
		return s.Form.Open(mode, key, values)
	})
	if errors.Is(err, form.ErrSaving) {
		h.flash(pr, shared.FlashInfo, "notify.info", i18n.T(pr.lang, "msg.saving"))
	}
	h.done(w, r, pr, nil)
}

func (h *Handler[T]) openAdd(w http.ResponseWriter, r *http.Request) {
	pr, ok := h.begin(w, r)
	if !ok {
		return
	}
	h.open(w, r, pr, form.Add, "", nil)
}

func (h *Handler[T]) openView(w http.ResponseWriter, r *http.Request) {
	h.openRecord(w, r, form.View)
}

func (h *Handler[T]) openEdit(w http.ResponseWriter, r *http.Request) {
	h.openRecord(w, r, form.Edit)
}

func (h *Handler[T]) openRecord(w http.ResponseWriter, r *http.Request, mode form.Mode) {
	pr, ok := h.begin(w, r)
	if !ok {
		return
	}
	key := h.recordKey(r)
	rec, ok := h.record(w, r, pr, key)
	if !ok {
		return
	}
	h.open(w, r, pr, mode, key, h.entity.Values(rec))
}

func (h *Handler[T]) closeForm(w http.ResponseWriter, r *http.Request) {
	pr, ok := h.begin(w, r)
	if !ok {
		return
	}
	err := h.commit(r.Context(), pr, func(s *PageState) error {
		return s.Form.Close()
	})
	if errors.Is(err, form.ErrSaving) {
		h.flash(pr, shared.FlashInfo, "notify.info", i18n.T(pr.lang, "msg.saving"))
	}
	h.done(w, r, pr, nil)
}

func (h *Handler[T]) create(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, form.Add, "")
}

func (h *Handler[T]) update(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, form.Edit, h.recordKey(r))
}

// submit runs one save of the open form. The in-flight flag is stored before
// the backend call so that a concurrent close or second submit is refused.
// Once the call returns, the flag is settled even if the client has gone.
func (h *Handler[T]) submit(w http.ResponseWriter, r *http.Request, mode form.Mode, key string) {
	pr, ok := h.begin(w, r)
	if !ok {
		return
	}
	ctx := r.Context()
	values := h.entity.Submitted(r.PostFormValue)
	if mode == form.Edit {
		for _, f := range h.entity.Fields {
			if f.Key {
				values[f.Name] = key
			}
		}
	}
	fieldErrs := h.entity.Validate(values, mode == form.Add)
	started := h.deps.Now()
	err := h.commit(ctx, pr, func(s *PageState) error {
		if !s.Form.Holds(mode, key) {
			return errFormMismatch
		}
		if err := s.Form.BeginSave(values, started); err != nil {
			return err
		}
		if fieldErrs != nil {
			s.Form.Settle(errInvalidForm, fieldErrs, started)
		}
		return nil
	})
	switch {
	case errors.Is(err, errFormMismatch):
		h.flash(pr, shared.FlashError, "notify.error", i18n.T(pr.lang, "form.invalid"))
		h.done(w, r, pr, nil)
		return
	case errors.Is(err, form.ErrSaving):
		h.flash(pr, shared.FlashInfo, "notify.info", i18n.T(pr.lang, "msg.saving"))
		h.done(w, r, pr, nil)
		return
	case err != nil:
		h.done(w, r, pr, nil)
		return
	case fieldErrs != nil:
		h.flash(pr, shared.FlashError, "notify.error", i18n.T(pr.lang, "msg.invalid_form"))
		h.done(w, r, pr, nil)
		return
	}

	action := shared.AuditCreate
	if mode == form.Add {
		err = h.entity.Source.Create(ctx, pr.creds, values)
	} else {
		action = shared.AuditUpdate
		err = h.entity.Source.Update(ctx, pr.creds, key, values)
	}

	settled := context.WithoutCancel(ctx)
	saveErr := err
	_ = h.commit(settled, pr, func(s *PageState) error {
		if s.Form.Holds(mode, key) {
			s.Form.Settle(saveErr, nil, h.deps.Now())
		}
		return nil
	})

	if err != nil {
		if h.expired(w, r, pr, err) {
			return
		}
		h.logger.Warn("save record", slog.String("mode", string(mode)), slog.Any("error", err))
		h.flash(pr, shared.FlashError, "notify.error", h.failure(pr, err, "msg.save_failed"))
		h.done(w, r, pr, nil)
		return
	}

	entityID := key
	if entityID == "" {
		entityID = h.keyValue(values)
	}
	h.audit(settled, pr, action, entityID, nil)
	_ = h.reload(settled, pr)
	msgKey := "msg.updated"
	if mode == form.Add {
		msgKey = "msg.created"
	}
	h.flash(pr, shared.FlashSuccess, "notify.success", i18n.T(pr.lang, msgKey, h.noun(pr)))
	h.done(w, r, pr, nil)
}

var (
	errInvalidForm  = errors.New("masterdata: invalid form")
	errFormMismatch = errors.New("masterdata: submitted form is not the open one")
)

func (h *Handler[T]) keyValue(values map[string]string) string {
	for _, f := range h.entity.Fields {
		if f.Key && values[f.Name] != "" {
			return values[f.Name]
		}
	}
	for _, f := range h.entity.Fields {
		if !f.Generated && values[f.Name] != "" {
			return values[f.Name]
		}
	}
	return "new"
}

func (h *Handler[T]) confirmDelete(w http.ResponseWriter, r *http.Request) {
	pr, ok := h.begin(w, r)
	if !ok {
		return
	}
	key := h.recordKey(r)
	rec, ok := h.record(w, r, pr, key)
	if !ok {
		return
	}
	noun := h.noun(pr)
	page := ConfirmPage{
		Base:     h.base(),
		Title:    i18n.T(pr.lang, "msg.confirm_delete_title", noun),
		Question: i18n.T(pr.lang, "msg.confirm_delete", noun, h.entity.Display(rec)),
		Action:   h.recordPath(key) + "/delete",
	}
	h.render(w, r, pr, "pages/confirm_delete.html", h.entity.TitleKey(), page)
}

func (h *Handler[T]) deleteOne(w http.ResponseWriter, r *http.Request) {
	pr, ok := h.begin(w, r)
	if !ok {
		return
	}
	key := h.recordKey(r)
	if err := h.entity.Source.Delete(r.Context(), pr.creds, key); err != nil {
		if h.expired(w, r, pr, err) {
			return
		}
		h.logger.Warn("delete record", slog.String("key", key), slog.Any("error", err))
		h.flash(pr, shared.FlashError, "notify.error", h.failure(pr, err, "msg.delete_failed"))
		h.done(w, r, pr, nil)
		return
	}
	settled := context.WithoutCancel(r.Context())
	_ = h.commit(settled, pr, func(s *PageState) error {
		s.Selection.Remove(key)
		if s.Form.Key == key {
			_ = s.Form.Close()
		}
		return nil
	})
	h.audit(settled, pr, shared.AuditDelete, key, nil)
	_ = h.reload(settled, pr)
	h.flash(pr, shared.FlashSuccess, "notify.success", i18n.T(pr.lang, "msg.deleted", h.noun(pr)))
	h.done(w, r, pr, nil)
}
