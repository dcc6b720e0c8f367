package auth

import (
	"net/http"
	"strings"

	"github.com/odyssey-erp/masterdesk/internal/platform/httpx"
	"github.com/odyssey-erp/masterdesk/internal/shared"
)

// RequireLogin sends anonymous requests to the login page. JSON endpoints
// get a 401 problem instead of a redirect.
func RequireLogin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := shared.SessionFromContext(r.Context())
		if sess.Authenticated() {
			next.ServeHTTP(w, r)
			return
		}
		if strings.HasSuffix(r.URL.Path, ".json") || strings.Contains(r.Header.Get("Accept"), "application/json") {
			httpx.Problem(w, http.StatusUnauthorized, "unauthorized", "sign in required")
			return
		}
		http.Redirect(w, r, "/login", http.StatusSeeOther)
	})
}
