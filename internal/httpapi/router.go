package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"chargenet/internal/auth"
	"chargenet/internal/httpapi/handlers"
)

// RouterDeps groups everything the router needs.
type RouterDeps struct {
	Tokens    *auth.TokenService
	Handlers  *handlers.Set
	StationWS http.HandlerFunc
}

// NewRouter registers all endpoints. The operator API sits behind JWT
// auth; the roaming surface is authenticated upstream by the hub and
// exposed as-is.
func NewRouter(deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)

	r.Get("/health", deps.Handlers.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(RequireOperatorToken(deps.Tokens))

		r.Post("/evses", deps.Handlers.CreateEVSE)
		r.Post("/evses/{evseID}/reserve", deps.Handlers.Reserve)
		r.Post("/remote/start", deps.Handlers.RemoteStart)
		r.Post("/remote/stop", deps.Handlers.RemoteStop)
		r.Post("/tokens", deps.Handlers.AddToken)
		r.Delete("/tokens/{uid}", deps.Handlers.RemoveToken)
		r.Get("/tokens", deps.Handlers.ListTokens)
		r.Get("/stations/{stationID}", deps.Handlers.StationSnapshot)
	})

	r.Route("/roaming/v1", func(r chi.Router) {
		r.Post("/authorize/start", deps.Handlers.AuthorizeStart)
		r.Post("/authorize/stop", deps.Handlers.AuthorizeStop)
		r.Post("/cdrs", deps.Handlers.SendCDR)
	})

	if deps.StationWS != nil {
		r.Get("/ws/{stationID}", deps.StationWS)
	}

	return r
}
