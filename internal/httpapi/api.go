package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"recylink.org/internal/auth"
	"recylink.org/internal/community"
	"recylink.org/internal/config"
	"recylink.org/internal/obs"
)

// TokenService issues and verifies bearer tokens. Satisfied by
// *auth.TokenService; tests substitute fakes.
type TokenService interface {
	Issue(p auth.Principal) (string, time.Time, error)
	Verify(token string) (auth.Principal, error)
}

// ReadyProbe pings the database for the readiness endpoint.
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// API is the HTTP layer.
type API struct {
	mux        *http.ServeMux
	users      auth.UserStore
	store      community.Store
	tokens     TokenService
	readyProbe ReadyProbe
	origins    []string
	bcryptCost int
	version    string
}

// New wires the route table. Everything the API needs arrives through
// parameters; no ambient lookups.
func New(users auth.UserStore, store community.Store, tokens TokenService, rp ReadyProbe, cfg config.Config, version string) *API {
	a := &API{
		mux:        http.NewServeMux(),
		users:      users,
		store:      store,
		tokens:     tokens,
		readyProbe: rp,
		origins:    cfg.FrontendOrigins,
		bcryptCost: cfg.BcryptCost,
		version:    version,
	}

	a.mux.HandleFunc("/healthz", a.Healthz)
	a.mux.HandleFunc("/readyz", a.Ready)
	a.mux.Handle("/metrics", obs.Handler())

	a.mux.HandleFunc("/api/auth/register", a.handleRegister)
	a.mux.HandleFunc("/api/auth/login", a.handleLogin)

	a.mux.HandleFunc("/api/posts", a.handlePostsCollection)
	a.mux.HandleFunc("/api/posts/", a.handlePostResource)
	a.mux.HandleFunc("/api/comments/", a.handleCommentResource)

	a.mux.HandleFunc("/api/evento/eventos", a.handleEventsCollection)
	a.mux.HandleFunc("/api/evento/eventos/", a.handleEventResource)
	a.mux.HandleFunc("/api/evento/minhas-inscricoes", a.handleMyRegistrations)

	a.mux.HandleFunc("/api/mapa/pontos-coleta", a.handleCollectionPoints)

	a.mux.HandleFunc("/api/profile", a.handleProfile)

	a.mux.HandleFunc("/", a.Root)

	return a
}

// Handler returns the fully wrapped handler for the server.
func (a *API) Handler() http.Handler {
	var h http.Handler = a.mux
	h = a.withAuth(h)
	h = RateLimit(h, 20, 10)
	h = MaxBodyBytes(h, 1<<20)
	h = CORS(h, a.origins)
	h = SecurityHeaders(h)
	h = LoggingJSON(h)
	h = RequestID(h)
	return obs.Instrument(h)
}

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "recylink-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

// Root answers the liveness ping on "/" and a JSON 404 everywhere else,
// matching what the frontend expects from unknown endpoints.
func (a *API) Root(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSON(w, http.StatusNotFound, map[string]any{
			"ok":      false,
			"message": "Endpoint não encontrado",
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":      true,
		"message": "Servidor Recylink no ar",
	})
}

func (a *API) handleCollectionPoints(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	points, err := a.store.ListCollectionPoints(r.Context())
	if err != nil {
		logServerError(r, err)
		writeError(w, r, http.StatusInternalServerError, "Erro ao buscar pontos de coleta")
		return
	}
	writeJSON(w, http.StatusOK, points)
}
