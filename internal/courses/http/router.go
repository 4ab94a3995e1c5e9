package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/courses/internal/courses/service"
	"github.com/aussiebroadwan/courses/internal/courses/store"
	"github.com/aussiebroadwan/courses/pkg/httpx"
	"github.com/aussiebroadwan/courses/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	sessions     *Sessions
	metrics      *httpx.Metrics
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store          store.Store
	SeedService    *service.SeedService
	CatalogService *service.CatalogService
	AuthService    *service.AuthService
}

func NewRouter(
	sessions *Sessions,
	metrics *httpx.Metrics,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		sessions:     sessions,
		metrics:      metrics,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerPages()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// page registers a user facing route. Every page request is seeded first.
func (r *Router) page(pattern string, h http.HandlerFunc) {
	r.Mux.Handle(pattern, httpx.Chain(h,
		r.metrics.Instrument(pattern),
		SeedMiddleware(r.SeedService),
	))
}

func (r *Router) registerPages() {
	pages := &Pages{
		Sessions:    r.sessions,
		AuthService: r.AuthService,
	}

	courses := &CoursesHandler{Pages: pages, CatalogService: r.CatalogService}
	register := &RegisterHandler{Pages: pages, AuthService: r.AuthService}
	login := &LoginHandler{Pages: pages, AuthService: r.AuthService}
	logout := &LogoutHandler{Pages: pages}

	r.page("GET /{$}", courses.HandleList)
	r.page("GET /course/{id}", courses.HandleDetail)
	r.page("GET /register", register.HandleGet)
	r.page("POST /register", register.HandlePost)
	r.page("GET /login", login.HandleGet)
	r.page("POST /login", login.HandlePost)
	r.page("GET /logout", logout.ServeHTTP)
}

func (r *Router) registerSystem() {
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion), r.metrics.Instrument("GET /livez")),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store), r.metrics.Instrument("GET /readyz")),
	)
	r.Mux.Handle("GET /metrics", r.metrics.Handler())
}
