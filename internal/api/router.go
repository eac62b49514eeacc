package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/sungwon/quick-mail/internal/auth"
	"github.com/sungwon/quick-mail/internal/mailutil"
)

// Deps carries what the handlers read: the address validator and the host
// settings that replace the blog option lookups.
type Deps struct {
	Validator *mailutil.Validator
	Site      mailutil.Site
	User      *mailutil.User
	Provider  mailutil.ProviderSettings
	// ProviderPlugin is the plugin fragment that enables the provider integration.
	ProviderPlugin string
	// DefaultOption applies when a request does not choose a validation mode.
	DefaultOption mailutil.ValidateOption
	MinChars      int
	MaxChars      int
}

// NewRouter creates a chi.Mux with all routes, middleware, and handlers configured.
// keyHash is the bcrypt hash of the API key; when empty the API is open.
func NewRouter(deps Deps, keyHash string, log zerolog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CorrelationIDMiddleware)
	r.Use(LoggingMiddleware(log))
	r.Use(RecoverMiddleware(log))
	r.Use(MetricsMiddleware)

	// Health and metrics endpoints (no auth required)
	r.Get("/healthz", HealthzHandler())
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(auth.APIKeyAuth(keyHash))

		// Addresses
		r.Post("/addresses/validate", ValidateAddressHandler(deps))
		r.Post("/recipients/filter", FilterRecipientsHandler(deps))
		r.Post("/users/filter", FilterUsersHandler(deps))

		// Input
		r.Post("/text/check", CheckTextHandler(deps))

		// Identity and provider
		r.Get("/sender", SenderHandler(deps))
		r.Get("/plugins/{fragment}", PluginHandler(deps))
		r.Get("/provider", ProviderHandler(deps))
	})

	return r
}
