package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/odyssey-erp/masterdesk/internal/backend"
	"github.com/odyssey-erp/masterdesk/internal/i18n"
	"github.com/odyssey-erp/masterdesk/internal/platform/httpx"
	"github.com/odyssey-erp/masterdesk/internal/shared"
	"github.com/odyssey-erp/masterdesk/internal/view"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	templates      *view.Engine
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	validator      *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, templates *view.Engine, sessions *shared.SessionManager, csrf *shared.CSRFManager) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		service:        service,
		templates:      templates,
		sessionManager: sessions,
		csrfManager:    csrf,
		validator:      validator.New(),
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/login", h.showLogin)
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Post("/language", h.handleLanguage)
}

type loginPageData struct {
	Expired   bool
	Username  string
	CompanyID string
	Errors    map[string]string
	General   string
}

func (h *Handler) showLogin(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess.Authenticated() {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}
	h.renderLogin(w, r, http.StatusOK, loginPageData{Expired: r.URL.Query().Get("expired") == "1"})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	lang := h.templates.Lang(r)

	creds := Credentials{
		Username:  strings.TrimSpace(r.PostFormValue("username")),
		Password:  r.PostFormValue("password"),
		CompanyID: strings.TrimSpace(r.PostFormValue("company_id")),
	}
	data := loginPageData{Username: creds.Username, CompanyID: creds.CompanyID, Errors: map[string]string{}}
	if err := h.validator.Struct(creds); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			for _, fieldErr := range fieldErrs {
				data.Errors[fieldErr.Field()] = i18n.T(lang, "form.required")
			}
		}
		data.General = i18n.T(lang, "login.invalid")
		h.renderLogin(w, r, http.StatusBadRequest, data)
		return
	}

	token, err := h.service.Authenticate(r.Context(), creds)
	if err != nil {
		h.logger.Info("login rejected", slog.String("username", creds.Username), slog.Any("error", err))
		if errors.Is(err, backend.ErrUnavailable) {
			data.General = i18n.T(lang, "error.unavailable")
		} else {
			data.General = i18n.T(lang, "login.failed")
		}
		h.renderLogin(w, r, http.StatusBadRequest, data)
		return
	}

	if sess == nil {
		h.logger.Error("session missing during login")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	h.service.ClearCaches(r.Context(), sess.ID)
	sess.SetAccessToken(token)
	sess.SetUser(creds.Username)
	sess.AddFlash(shared.FlashMessage{
		Kind:    shared.FlashSuccess,
		Title:   i18n.T(lang, "notify.success"),
		Message: i18n.T(lang, "login.success"),
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess != nil {
		h.service.SignOut(r.Context(), sess.ID, sess.AccessToken())
		h.sessionManager.Destroy(sess)
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handler) handleLanguage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if lang, ok := i18n.Parse(r.PostFormValue("lang")); ok && sess != nil {
		sess.SetLanguage(string(lang))
	}
	http.Redirect(w, r, httpx.SafeReturn(r.PostFormValue("return")), http.StatusSeeOther)
}

func (h *Handler) renderLogin(w http.ResponseWriter, r *http.Request, status int, data loginPageData) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrfManager.EnsureToken(r.Context(), sess)
	viewData := h.templates.Page(r, csrfToken, "login.title", data)
	if err := h.templates.RenderStatus(w, status, "pages/login.html", viewData); err != nil {
		h.logger.Error("render login", slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}


// ShowLoginForTest exposes the GET handler for tests.
func (h *Handler) ShowLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.showLogin(w, r)
}

// HandleLoginForTest exposes the POST handler for tests.
func (h *Handler) HandleLoginForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogin(w, r)
}

// HandleLogoutForTest exposes the logout handler for tests.
func (h *Handler) HandleLogoutForTest(w http.ResponseWriter, r *http.Request) {
	h.handleLogout(w, r)
}
