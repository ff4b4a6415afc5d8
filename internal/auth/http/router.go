package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/jwtauth/internal/auth/service"
	"github.com/aussiebroadwan/jwtauth/internal/auth/store"
	"github.com/aussiebroadwan/jwtauth/pkg/httpx"
	"github.com/aussiebroadwan/jwtauth/pkg/jwtx"
	"github.com/aussiebroadwan/jwtauth/pkg/slogx"

	_ "github.com/aussiebroadwan/jwtauth/api/auth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Options carries the transport settings that come from configuration.
type Options struct {
	BuildVersion string
	Dev          bool
	SecureCookie bool
	CORS         httpx.CORSConfig
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	codec     *jwtx.Codec
	opts      Options
	startTime time.Time
	logger    *slog.Logger
	errors    *ErrorResponder

	store       store.Store
	AuthService *service.AuthService
	UserService *service.UserService
}

func NewRouter(
	codec *jwtx.Codec,
	st store.Store,
	logger *slog.Logger,
	opts Options,
) *Router {
	r := &Router{
		Mux:       http.NewServeMux(),
		codec:     codec,
		opts:      opts,
		startTime: time.Now(),
		store:     st,
		logger:    logger,
		errors:    &ErrorResponder{Dev: opts.Dev},
	}

	// Request logging runs first so CORS rejections are logged too.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.CORS(opts.CORS),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerUsers()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			JWT Auth Service API
//	@version		0.1.0
//	@description	Email and password accounts with short-lived HS256 access tokens and a
//	@description	refresh token kept in an HttpOnly cookie.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/jwtauth
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService:  r.AuthService,
		Errors:       r.errors,
		SecureCookie: r.opts.SecureCookie,
	}

	r.Mux.HandleFunc("POST /api/v1/auth/signup", h.HandleSignup)
	r.Mux.HandleFunc("POST /api/v1/auth/login", h.HandleLogin)
	r.Mux.HandleFunc("GET /api/v1/auth/refresh", h.HandleRefresh)
	r.Mux.HandleFunc("POST /api/v1/auth/logout", h.HandleLogout)
}

func (r *Router) registerUsers() {
	h := &ProfileHandler{
		UserService: r.UserService,
		Errors:      r.errors,
	}

	r.Mux.Handle("GET /api/v1/user/me", httpx.Chain(h,
		httpx.AuthnMiddleware(r.codec.Access()),
	))
}

func (r *Router) registerSystem() {
	r.Mux.HandleFunc("GET /{$}", RootHandler)
	r.Mux.Handle("GET /livez", LivezHandler(r.startTime, r.opts.BuildVersion))
	r.Mux.Handle("GET /readyz", ReadyzHandler(r.startTime, r.opts.BuildVersion, r.store, r.codec))
}
