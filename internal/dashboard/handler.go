// Package dashboard serves the overview page, sidebar navigation and the
// placeholder pages of features that are not built yet.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/odyssey-erp/masterdesk/internal/backend"
	"github.com/odyssey-erp/masterdesk/internal/nav"
	"github.com/odyssey-erp/masterdesk/internal/platform/httpx"
	"github.com/odyssey-erp/masterdesk/internal/shared"
	"github.com/odyssey-erp/masterdesk/internal/view"
)

const countTimeout = 5 * time.Second

// Counter reports the size of one entity collection.
type Counter interface {
	Name() string
	TitleKey() string
	Base() string
	Count(ctx context.Context, sessionID string, creds backend.Credentials) (int, error)
}

// CacheClearer drops the caches of a session whose token was rejected.
type CacheClearer interface {
	ClearCaches(ctx context.Context, sessionID string)
}

// Card is one entity tile of the overview.
type Card struct {
	Href      string
	TitleKey  string
	Available bool
	Count     int
}

type homeData struct {
	Cards []Card
}

type pendingData struct {
	Caption string
}

// Handler serves the overview and navigation routes.
type Handler struct {
	logger    *slog.Logger
	templates *view.Engine
	csrf      *shared.CSRFManager
	sessions  *shared.SessionManager
	caches    CacheClearer
	counters  []Counter
}

// NewHandler constructs a Handler. caches may be nil.
func NewHandler(logger *slog.Logger, templates *view.Engine, csrf *shared.CSRFManager, sessions *shared.SessionManager, caches CacheClearer, counters ...Counter) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:    logger,
		templates: templates,
		csrf:      csrf,
		sessions:  sessions,
		caches:    caches,
		counters:  counters,
	}
}

// MountRoutes registers the dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.home)
	r.Get("/nav/{id}", h.navigate)
	r.Get("/pending/{id}", h.pending)
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	cards, rejected := h.count(r.Context(), sess)
	if rejected {
		h.logger.Info("backend token rejected", slog.String("user", sess.User()))
		if h.caches != nil {
			h.caches.ClearCaches(r.Context(), sess.ID)
		}
		h.sessions.Destroy(sess)
		http.Redirect(w, r, "/login?expired=1", http.StatusSeeOther)
		return
	}
	h.render(w, r, http.StatusOK, "pages/home.html", "dashboard.title", homeData{Cards: cards})
}

// count asks every counter in parallel. A failed count leaves its card
// unavailable; rejected reports whether the backend refused the token.
func (h *Handler) count(ctx context.Context, sess *shared.Session) (cards []Card, rejected bool) {
	ctx, cancel := context.WithTimeout(ctx, countTimeout)
	defer cancel()

	creds := backend.Credentials{Token: sess.AccessToken()}
	cards = make([]Card, len(h.counters))
	refused := make([]bool, len(h.counters))
	var g errgroup.Group
	for i, counter := range h.counters {
		cards[i] = Card{Href: counter.Base(), TitleKey: counter.TitleKey()}
		g.Go(func() error {
			n, err := counter.Count(ctx, sess.ID, creds)
			if err != nil {
				h.logger.Warn("count collection", slog.String("entity", counter.Name()), slog.Any("error", err))
				refused[i] = backend.IsUnauthorized(err)
				return nil
			}
			cards[i].Available = true
			cards[i].Count = n
			return nil
		})
	}
	_ = g.Wait()

	for _, r := range refused {
		rejected = rejected || r
	}
	return cards, rejected
}

// navigate applies a sidebar click. Leaves go to their page; groups toggle
// and send the browser back where it came from.
func (h *Handler) navigate(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	back := httpx.SafeReturn(r.URL.Query().Get("return"))
	if sess == nil {
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	state := nav.Load(sess)
	href, ok := state.Select(chi.URLParam(r, "id"))
	if !ok {
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}
	nav.Save(sess, state)
	if href == "" {
		href = back
	}
	http.Redirect(w, r, href, http.StatusSeeOther)
}

func (h *Handler) pending(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, _, ok := nav.Find(id)
	if !ok || item.Group() || item.Href != "/pending/"+id {
		h.render(w, r, http.StatusNotFound, "pages/error.html", "error.title", view.ErrorPage{Message: http.StatusText(http.StatusNotFound)})
		return
	}
	lang := h.templates.Lang(r)
	h.render(w, r, http.StatusOK, "pages/pending.html", "pending.title", pendingData{Caption: item.Label(lang)})
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name, titleKey string, data any) {
	sess := shared.SessionFromContext(r.Context())
	csrfToken, _ := h.csrf.EnsureToken(r.Context(), sess)
	td := h.templates.Page(r, csrfToken, titleKey, data)
	if err := h.templates.RenderStatus(w, status, name, td); err != nil {
		h.logger.Error("render", slog.String("template", name), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

