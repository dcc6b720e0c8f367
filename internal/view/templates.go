package view

import (
	"bytes"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/odyssey-erp/masterdesk/internal/i18n"
	"github.com/odyssey-erp/masterdesk/internal/nav"
	"github.com/odyssey-erp/masterdesk/internal/shared"
	"github.com/odyssey-erp/masterdesk/web"
)

// Engine renders HTML templates.
type Engine struct {
	templates   *template.Template
	defaultLang i18n.Lang
}

// TemplateData contains values shared across templates.
type TemplateData struct {
	Title       string
	CSRFToken   string
	Flashes     []shared.FlashMessage
	CurrentPath string
	Lang        i18n.Lang
	Languages   []i18n.Option
	User        string
	Nav         nav.State
	Menu        []nav.Item
	MenuQuery   string
	Data        any
}

// Option configures an Engine.
type Option func(*Engine)

// WithDefaultLanguage sets the language used when the session has none.
func WithDefaultLanguage(lang i18n.Lang) Option {
	return func(e *Engine) {
		e.defaultLang = i18n.Resolve(string(lang), i18n.Default)
	}
}

// NewEngine parses templates at build-time.
func NewEngine(opts ...Option) (*Engine, error) {
	funcMap := template.FuncMap{
		"t": func(lang i18n.Lang, key string, args ...any) string {
			return i18n.T(lang, key, args...)
		},
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("02/01/2006 15:04")
		},
		"add": func(a, b int) int { return a + b },
		"sub": func(a, b int) int { return a - b },
		"seq": func(from, to int) []int {
			if to < from {
				return nil
			}
			out := make([]int, 0, to-from+1)
			for i := from; i <= to; i++ {
				out = append(out, i)
			}
			return out
		},
		"join": strings.Join,
	}
	tpl, err := template.New("root").Funcs(funcMap).ParseFS(web.Templates, "templates/layouts/*.html", "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	e := &Engine{templates: tpl, defaultLang: i18n.Default}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Lang returns the interface language of the request.
func (e *Engine) Lang(r *http.Request) i18n.Lang {
	fallback := i18n.Default
	if e != nil {
		fallback = e.defaultLang
	}
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		return fallback
	}
	return i18n.Resolve(sess.Language(), fallback)
}

// Page assembles TemplateData for the request: language, user, navigation
// and pending flashes come from the session.
func (e *Engine) Page(r *http.Request, csrfToken, titleKey string, data any) TemplateData {
	lang := e.Lang(r)
	td := TemplateData{
		Title:       i18n.T(lang, titleKey),
		CSRFToken:   csrfToken,
		CurrentPath: r.URL.Path,
		Lang:        lang,
		Languages:   i18n.Options,
		MenuQuery:   r.URL.Query().Get("menu"),
		Data:        data,
	}
	td.Menu = nav.Filter(lang, td.MenuQuery)
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		td.Nav = nav.Load(nil)
		return td
	}
	td.User = sess.User()
	td.Flashes = sess.PopFlashes()
	state := nav.Load(sess)
	if state.Sync(r.URL.Path) {
		nav.Save(sess, state)
	}
	td.Nav = state
	return td
}

// Render executes a named template with TemplateData. Nothing is written
// when the template fails, so callers can still send an error page.
func (e *Engine) Render(w http.ResponseWriter, name string, data TemplateData) error {
	return e.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus is Render with an explicit status code.
func (e *Engine) RenderStatus(w http.ResponseWriter, status int, name string, data TemplateData) error {
	if e == nil {
		return fmt.Errorf("template engine not initialised")
	}
	var buf bytes.Buffer
	if err := e.templates.ExecuteTemplate(&buf, name, data); err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}

// ErrorPage is the data of pages/error.html. A nil Data shows the generic
// message.
type ErrorPage struct {
	Message string
}
