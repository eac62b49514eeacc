package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sungwon/quick-mail/internal/mailutil"
)

// validateAddressRequest is the JSON body for POST /api/v1/addresses/validate.
type validateAddressRequest struct {
	Address  string `json:"address"`
	Validate string `json:"validate"`
}

// filterRecipientsRequest is the JSON body for POST /api/v1/recipients/filter.
type filterRecipientsRequest struct {
	To         string `json:"to"`
	Recipients string `json:"recipients"`
	Validate   string `json:"validate"`
}

// filterRecipientsResponse is the JSON response for a filtered recipient list.
type filterRecipientsResponse struct {
	Report     string   `json:"report"`
	Invalid    []string `json:"invalid"`
	Duplicates []string `json:"duplicates"`
	Accepted   []string `json:"accepted"`
	Legacy     string   `json:"legacy"`
}

// filterUsersRequest is the JSON body for POST /api/v1/users/filter.
type filterUsersRequest struct {
	Emails string `json:"emails"`
}

// ValidateAddressHandler handles POST /api/v1/addresses/validate.
func ValidateAddressHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req validateAddressRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid request body")
			return
		}

		valid := deps.Validator.IsValidEmailDomain(r.Context(), req.Address, requestOption(req.Validate, deps.DefaultOption))
		respondJSON(w, r, http.StatusOK, map[string]bool{"valid": valid})
	}
}

// FilterRecipientsHandler handles POST /api/v1/recipients/filter.
func FilterRecipientsHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req filterRecipientsRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid request body")
			return
		}

		if strings.TrimSpace(req.Recipients) == "" {
			respondValidationErrors(w, r, []string{"recipients is required"})
			return
		}

		result := deps.Validator.FilterEmailInput(r.Context(), req.To, req.Recipients, requestOption(req.Validate, deps.DefaultOption))
		respondJSON(w, r, http.StatusOK, filterRecipientsResponse{
			Report:     result.Report(),
			Invalid:    nonNil(result.Invalid),
			Duplicates: nonNil(result.Duplicates),
			Accepted:   nonNil(result.Accepted),
			Legacy:     result.Legacy(),
		})
	}
}

// FilterUsersHandler handles POST /api/v1/users/filter.
func FilterUsersHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req filterUsersRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid request body")
			return
		}

		emails := deps.Validator.FilterUserEmails(r.Context(), req.Emails)
		respondJSON(w, r, http.StatusOK, map[string][]string{"emails": nonNil(emails)})
	}
}

// requestOption picks the validation mode for a request. An empty value
// falls back to the configured default.
func requestOption(value string, def mailutil.ValidateOption) mailutil.ValidateOption {
	if value == "" {
		return def
	}
	return mailutil.ParseValidateOption(value)
}

// nonNil keeps empty lists encoded as [] instead of null.
func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
