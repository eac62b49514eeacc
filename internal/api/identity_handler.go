package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sungwon/quick-mail/internal/logger"
	"github.com/sungwon/quick-mail/internal/mailutil"
)

// senderResponse is the JSON response for GET /api/v1/sender.
type senderResponse struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// providerResponse is the JSON response for GET /api/v1/provider.
type providerResponse struct {
	Plugin        string `json:"plugin"`
	Active        bool   `json:"active"`
	DomainsMatch  bool   `json:"domains_match"`
	Transactional bool   `json:"transactional"`
}

// SenderHandler handles GET /api/v1/sender.
// An incomplete profile is reported as 422 with a link to the profile page.
func SenderHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := mailutil.DefaultSenderName(deps.User)
		if err != nil {
			respondIdentityError(w, r, err)
			return
		}
		email, err := mailutil.DefaultSenderEmail(deps.User)
		if err != nil {
			respondIdentityError(w, r, err)
			return
		}

		respondJSON(w, r, http.StatusOK, senderResponse{Name: name, Email: email})
	}
}

// PluginHandler handles GET /api/v1/plugins/{fragment}.
func PluginHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fragment := chi.URLParam(r, "fragment")
		if fragment == "" {
			respondError(w, r, http.StatusBadRequest, "plugin fragment is required")
			return
		}

		plugin, active := mailutil.IsPluginActive(deps.Site, fragment)
		respondJSON(w, r, http.StatusOK, map[string]interface{}{
			"active": active,
			"plugin": plugin,
		})
	}
}

// ProviderHandler handles GET /api/v1/provider.
func ProviderHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := providerResponse{Transactional: deps.Provider.Transactional}

		if deps.ProviderPlugin != "" {
			resp.Plugin, resp.Active = mailutil.IsPluginActive(deps.Site, deps.ProviderPlugin)
		}

		if resp.Active {
			match, err := mailutil.DomainsMatchProviderSender(deps.User, deps.Provider)
			if err != nil {
				respondIdentityError(w, r, err)
				return
			}
			resp.DomainsMatch = match
		}

		respondJSON(w, r, http.StatusOK, resp)
	}
}

func respondIdentityError(w http.ResponseWriter, r *http.Request, err error) {
	var missing *mailutil.MissingIdentityError
	if !errors.As(err, &missing) {
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Msg("failed to resolve sender identity")
		respondError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	respondJSON(w, r, http.StatusUnprocessableEntity, map[string]string{
		"error":       "incomplete_profile",
		"field":       missing.Field,
		"profile_url": mailutil.ProfileURL,
	})
}
