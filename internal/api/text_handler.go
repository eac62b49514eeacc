package api

import (
	"encoding/json"
	"net/http"

	"github.com/sungwon/quick-mail/internal/mailutil"
)

// checkTextRequest is the JSON body for POST /api/v1/text/check.
// Min and Max default to the configured limits when zero.
type checkTextRequest struct {
	Text string `json:"text"`
	Min  int    `json:"min"`
	Max  int    `json:"max"`
}

// CheckTextHandler handles POST /api/v1/text/check.
func CheckTextHandler(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req checkTextRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, http.StatusBadRequest, "invalid request body")
			return
		}

		minLen, maxLen := req.Min, req.Max
		if minLen == 0 {
			minLen = orDefault(deps.MinChars, mailutil.DefaultMinChars)
		}
		if maxLen == 0 {
			maxLen = orDefault(deps.MaxChars, mailutil.DefaultMaxChars)
		}

		var errs []string
		if minLen < 0 {
			errs = append(errs, "min must not be negative")
		}
		if maxLen < minLen {
			errs = append(errs, "max must not be less than min")
		}
		if len(errs) > 0 {
			respondValidationErrors(w, r, errs)
			return
		}

		ok := mailutil.CheckCharCount(req.Text, deps.Site.Charset, minLen, maxLen)
		respondJSON(w, r, http.StatusOK, map[string]bool{"ok": ok})
	}
}

func orDefault(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}
