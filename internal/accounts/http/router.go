package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/croftbay/accounts/internal/accounts/domain"
	"github.com/croftbay/accounts/internal/accounts/service"
	"github.com/croftbay/accounts/internal/accounts/store"
	"github.com/croftbay/accounts/pkg/httpx"
	"github.com/croftbay/accounts/pkg/jwtx"
	"github.com/croftbay/accounts/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	AccountService *service.AccountService
	TokenService   *service.TokenService
}

func NewRouter(verifier jwtx.Verifier, buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerPublic()
	r.registerAccount()
	r.registerUserAdmin()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// registerPublic wires the unauthenticated registration, activation, and
// credential endpoints.
func (r *Router) registerPublic() {
	register := &RegisterHandler{AccountService: r.AccountService}
	activate := &ActivateHandler{AccountService: r.AccountService}
	authenticate := &AuthenticateHandler{
		AccountService: r.AccountService,
		TokenService:   r.TokenService,
	}
	reset := &PasswordResetHandler{AccountService: r.AccountService}

	r.Mux.Handle("POST /v1/register", register)
	r.Mux.Handle("GET /v1/activate", activate)
	r.Mux.Handle("POST /v1/authenticate", authenticate)
	r.Mux.Handle("POST /v1/account/reset-password/init", http.HandlerFunc(reset.HandleInit))
	r.Mux.Handle("POST /v1/account/reset-password/finish", http.HandlerFunc(reset.HandleFinish))
}

// registerAccount wires the authenticated self-service endpoints.
func (r *Router) registerAccount() {
	h := &AccountHandler{AccountService: r.AccountService}

	authn := httpx.AuthnMiddleware(r.verifier)

	r.Mux.Handle("GET /v1/account", httpx.Chain(http.HandlerFunc(h.HandleGet), authn))
	r.Mux.Handle("POST /v1/account", httpx.Chain(http.HandlerFunc(h.HandleUpdate), authn))
	r.Mux.Handle("POST /v1/account/change-password", httpx.Chain(http.HandlerFunc(h.HandleChangePassword), authn))
}

// registerUserAdmin wires the administrative user management endpoints.
func (r *Router) registerUserAdmin() {
	users := &UsersHandler{AccountService: r.AccountService}
	authorities := &AuthoritiesHandler{AccountService: r.AccountService}

	admin := func(h http.Handler) http.Handler {
		return httpx.Chain(h,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAuthority(domain.AuthorityAdmin),
		)
	}

	r.Mux.Handle("POST /v1/users", admin(http.HandlerFunc(users.HandleCreate)))
	r.Mux.Handle("GET /v1/users", admin(http.HandlerFunc(users.HandleList)))
	r.Mux.Handle("PUT /v1/users", admin(http.HandlerFunc(users.HandleUpdate)))
	r.Mux.Handle("GET /v1/users/{login}", admin(http.HandlerFunc(users.HandleGet)))
	r.Mux.Handle("DELETE /v1/users/{login}", admin(http.HandlerFunc(users.HandleDelete)))

	r.Mux.Handle("GET /v1/authorities", admin(authorities))
}

// registerSystem wires the health endpoints.
func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.buildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.buildVersion, r.store))
}
