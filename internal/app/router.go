package app

import (
	"errors"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/masterdesk/internal/auth"
	"github.com/odyssey-erp/masterdesk/internal/dashboard"
	"github.com/odyssey-erp/masterdesk/internal/export"
	"github.com/odyssey-erp/masterdesk/internal/observability"
	"github.com/odyssey-erp/masterdesk/internal/platform/httpx"
	"github.com/odyssey-erp/masterdesk/internal/shared"
	"github.com/odyssey-erp/masterdesk/internal/view"
	"github.com/odyssey-erp/masterdesk/jobs"
	"github.com/odyssey-erp/masterdesk/web"
)

// RouteMounter is a page that registers its own routes.
type RouteMounter interface {
	MountRoutes(r chi.Router)
}

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	Templates        *view.Engine
	SessionManager   *shared.SessionManager
	CSRFManager      *shared.CSRFManager
	AuthHandler      *auth.Handler
	DashboardHandler *dashboard.Handler
	// Pages are the entity pages, each mounted under its own prefix.
	Pages      []RouteMounter
	Exporter   *export.Exporter
	JobHandler *jobs.Handler
	Metrics    *observability.Metrics
}

// NewRouter constructs the chi.Router with the application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		Templates:      params.Templates,
		SessionManager: params.SessionManager,
		CSRFManager:    params.CSRFManager,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}
	if !InTestMode() {
		r.Use(chimw.Logger)
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	params.AuthHandler.MountRoutes(r)

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireLogin)
		if params.DashboardHandler != nil {
			params.DashboardHandler.MountRoutes(r)
		}
		for _, page := range params.Pages {
			page.MountRoutes(r)
		}
		if params.Exporter != nil {
			r.Get("/downloads/{token}", downloadHandler(params.Logger, params.Exporter))
		}
		if params.JobHandler != nil {
			r.Route("/jobs", params.JobHandler.MountRoutes)
		}
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		td := params.Templates.Page(r, "", "error.title", view.ErrorPage{Message: http.StatusText(http.StatusNotFound)})
		if err := params.Templates.RenderStatus(w, http.StatusNotFound, "pages/error.html", td); err != nil {
			http.NotFound(w, r)
		}
	})

	staticFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		params.Logger.Error("create static sub filesystem", slog.Any("error", err))
	} else {
		fileServer := http.StripPrefix("/static/", http.FileServer(http.FS(staticFS)))
		r.Handle("/static/*", staticCacheHandler(fileServer))
	}

	return r
}

// downloadHandler serves an exported workbook behind its download token.
func downloadHandler(logger *slog.Logger, exporter *export.Exporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file, err := exporter.Open(r.Context(), chi.URLParam(r, "token"))
		if errors.Is(err, export.ErrLinkNotFound) {
			http.Error(w, http.StatusText(http.StatusGone), http.StatusGone)
			return
		}
		if err != nil {
			logger.Error("open download", slog.Any("error", err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", export.ContentType)
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": file.Name}))
		w.Header().Set("Cache-Control", "no-store")
		_, _ = w.Write(file.Data)
	}
}

// staticCacheHandler wraps a file server with Cache-Control headers.
func staticCacheHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=3600")
		next.ServeHTTP(w, r)
	})
}
