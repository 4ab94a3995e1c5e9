package http

import (
	"net/http"

	"github.com/aussiebroadwan/courses/internal/courses/service"
	"github.com/aussiebroadwan/courses/pkg/httpx"
)

// SeedMiddleware makes sure the schema and default courses exist before the
// page handler runs. A store failure ends the request with 500.
func SeedMiddleware(seeder *service.SeedService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if err := seeder.EnsureSeeded(r.Context()); err != nil {
				internalError(w, r, "failed to seed database", err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
