package httpapi

import (
	"net/http"
	"strings"

	"recylink.org/internal/auth"
)

const authHeader = "Authorization"

// withAuth gates every protected route. A missing Authorization header is
// rejected before the token service is ever consulted; any verification
// failure maps to the same generic 401 so clients cannot probe why a
// forged token was refused.
func (a *API) withAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}
		if isPublicRoute(r.Method, r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		header := strings.TrimSpace(r.Header.Get(authHeader))
		if header == "" {
			writeError(w, r, http.StatusUnauthorized, "Autenticação necessária.")
			return
		}

		principal, err := a.tokens.Verify(header)
		if err != nil {
			writeError(w, r, http.StatusUnauthorized, "Token inválido ou ausente.")
			return
		}

		ctx := auth.ContextWithPrincipal(r.Context(), principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// isPublicRoute mirrors the route table: reads of the feed, events and the
// collection-point map are open; everything that writes, and everything
// under the caller's own resources, needs a token.
func isPublicRoute(method, path string) bool {
	switch path {
	case "/", "/healthz", "/readyz", "/metrics":
		return true
	}
	if strings.HasPrefix(path, "/api/auth/") {
		return true
	}
	if method != http.MethodGet && method != http.MethodHead {
		return false
	}

	switch path {
	case "/api/posts", "/api/evento/eventos", "/api/mapa/pontos-coleta":
		return true
	}
	if strings.HasPrefix(path, "/api/posts/") {
		return true
	}
	if strings.HasPrefix(path, "/api/evento/eventos/") {
		rest := strings.TrimPrefix(path, "/api/evento/eventos/")
		return rest != "meus" && !strings.HasPrefix(rest, "meus/")
	}
	return false
}
