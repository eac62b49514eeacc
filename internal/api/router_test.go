package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/sungwon/quick-mail/internal/mailutil"
)

// mapResolver answers MX queries for the domains it holds.
type mapResolver map[string][]*net.MX

func (m mapResolver) LookupMX(_ context.Context, name string) ([]*net.MX, error) {
	return m[name], nil
}

func testDeps() Deps {
	resolver := mapResolver{"example.com": {{Host: "mx.example.com.", Pref: 10}}}
	return Deps{
		Validator: mailutil.NewValidator(resolver, zerolog.Nop()),
		Site: mailutil.Site{
			Charset:       "UTF-8",
			ActivePlugins: []string{"quick-mail/quick-mail.php", "sparkpost/wordpress-sparkpost.php"},
		},
		User: &mailutil.User{
			FirstName: "Ada",
			LastName:  "Lovelace",
			Email:     "ada@example.com",
		},
		Provider:       mailutil.ProviderSettings{FromEmail: "noreply@example.com", Transactional: true},
		ProviderPlugin: "sparkpost",
		DefaultOption:  mailutil.ValidateSyntax,
	}
}

func doRequest(t *testing.T, h http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v, body: %s", err, rec.Body.String())
	}
}

func TestValidateAddressHandler(t *testing.T) {
	router := NewRouter(testDeps(), "", zerolog.Nop())

	tests := []struct {
		name      string
		address   string
		validate  string
		wantValid bool
	}{
		{name: "syntax valid", address: "user@nomx.org", wantValid: true},
		{name: "syntax invalid", address: "not-an-address", wantValid: false},
		{name: "dns with mx", address: "user@mail.example.com", validate: "Y", wantValid: true},
		{name: "dns without mx", address: "user@nomx.org", validate: "Y", wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/api/v1/addresses/validate",
				validateAddressRequest{Address: tt.address, Validate: tt.validate})

			if rec.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", rec.Code)
			}
			var resp map[string]bool
			decode(t, rec, &resp)
			if resp["valid"] != tt.wantValid {
				t.Errorf("valid = %v, want %v", resp["valid"], tt.wantValid)
			}
		})
	}
}

func TestValidateAddressHandler_InvalidBody(t *testing.T) {
	router := NewRouter(testDeps(), "", zerolog.Nop())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/addresses/validate", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestFilterRecipientsHandler(t *testing.T) {
	router := NewRouter(testDeps(), "", zerolog.Nop())

	rec := doRequest(t, router, http.MethodPost, "/api/v1/recipients/filter", filterRecipientsRequest{
		To:         "x@d.com",
		Recipients: "x@d.com,y@d.com,y@d.com",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp filterRecipientsResponse
	decode(t, rec, &resp)

	if len(resp.Invalid) != 0 {
		t.Errorf("expected no invalid addresses, got %v", resp.Invalid)
	}
	if !reflect.DeepEqual(resp.Duplicates, []string{"y@d.com", "x@d.com"}) {
		t.Errorf("unexpected duplicates %v", resp.Duplicates)
	}
	if !reflect.DeepEqual(resp.Accepted, []string{"y@d.com"}) {
		t.Errorf("unexpected accepted %v", resp.Accepted)
	}
	if resp.Legacy != " y@d.com<br>x@d.com<br>\ty@d.com" {
		t.Errorf("unexpected legacy %q", resp.Legacy)
	}
}

func TestFilterRecipientsHandler_RequiresRecipients(t *testing.T) {
	router := NewRouter(testDeps(), "", zerolog.Nop())

	rec := doRequest(t, router, http.MethodPost, "/api/v1/recipients/filter", filterRecipientsRequest{To: "x@d.com"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}

	var resp map[string]interface{}
	decode(t, rec, &resp)
	if resp["error"] != "validation_failed" {
		t.Errorf("expected validation_failed, got %v", resp["error"])
	}
}

func TestFilterUsersHandler(t *testing.T) {
	router := NewRouter(testDeps(), "", zerolog.Nop())

	rec := doRequest(t, router, http.MethodPost, "/api/v1/users/filter",
		filterUsersRequest{Emails: "A@x.com bad a@x.com b@y.org"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp map[string][]string
	decode(t, rec, &resp)
	if !reflect.DeepEqual(resp["emails"], []string{"a@x.com", "b@y.org"}) {
		t.Errorf("unexpected emails %v", resp["emails"])
	}
}

func TestFilterUsersHandler_EmptyListIsArray(t *testing.T) {
	router := NewRouter(testDeps(), "", zerolog.Nop())

	rec := doRequest(t, router, http.MethodPost, "/api/v1/users/filter", filterUsersRequest{})
	if got := rec.Body.String(); got != "{\"emails\":[]}\n" {
		t.Errorf("unexpected body %q", got)
	}
}

func TestCheckTextHandler(t *testing.T) {
	router := NewRouter(testDeps(), "", zerolog.Nop())

	tests := []struct {
		name   string
		req    checkTextRequest
		wantOK bool
	}{
		{name: "default limits", req: checkTextRequest{Text: "Hello"}, wantOK: true},
		{name: "whitespace only", req: checkTextRequest{Text: "   "}, wantOK: false},
		{name: "too long", req: checkTextRequest{Text: "abcdef", Max: 5}, wantOK: false},
		{name: "multibyte counted as runes", req: checkTextRequest{Text: "héllo", Max: 5}, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodPost, "/api/v1/text/check", tt.req)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", rec.Code)
			}
			var resp map[string]bool
			decode(t, rec, &resp)
			if resp["ok"] != tt.wantOK {
				t.Errorf("ok = %v, want %v", resp["ok"], tt.wantOK)
			}
		})
	}
}

func TestCheckTextHandler_BadLimits(t *testing.T) {
	router := NewRouter(testDeps(), "", zerolog.Nop())

	rec := doRequest(t, router, http.MethodPost, "/api/v1/text/check", checkTextRequest{Text: "x", Min: 10, Max: 2})
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", rec.Code)
	}
}

func TestSenderHandler(t *testing.T) {
	router := NewRouter(testDeps(), "", zerolog.Nop())

	rec := doRequest(t, router, http.MethodGet, "/api/v1/sender", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp senderResponse
	decode(t, rec, &resp)
	if resp.Name != "Ada Lovelace" || resp.Email != "ada@example.com" {
		t.Errorf("unexpected sender %+v", resp)
	}
}

func TestSenderHandler_IncompleteProfile(t *testing.T) {
	deps := testDeps()
	deps.User = &mailutil.User{FirstName: "Ada", LastName: "Lovelace"}
	router := NewRouter(deps, "", zerolog.Nop())

	rec := doRequest(t, router, http.MethodGet, "/api/v1/sender", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d", rec.Code)
	}

	var resp map[string]string
	decode(t, rec, &resp)
	if resp["field"] != "email" {
		t.Errorf("expected missing field email, got %q", resp["field"])
	}
	if resp["profile_url"] != mailutil.ProfileURL {
		t.Errorf("expected profile url %q, got %q", mailutil.ProfileURL, resp["profile_url"])
	}
}

func TestPluginHandler(t *testing.T) {
	router := NewRouter(testDeps(), "", zerolog.Nop())

	tests := []struct {
		fragment   string
		wantActive bool
		wantPlugin string
	}{
		{fragment: "SparkPost", wantActive: true, wantPlugin: "sparkpost/wordpress-sparkpost.php"},
		{fragment: "akismet", wantActive: false, wantPlugin: ""},
	}

	for _, tt := range tests {
		t.Run(tt.fragment, func(t *testing.T) {
			rec := doRequest(t, router, http.MethodGet, "/api/v1/plugins/"+tt.fragment, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", rec.Code)
			}

			var resp struct {
				Active bool   `json:"active"`
				Plugin string `json:"plugin"`
			}
			decode(t, rec, &resp)
			if resp.Active != tt.wantActive || resp.Plugin != tt.wantPlugin {
				t.Errorf("got active=%v plugin=%q, want active=%v plugin=%q",
					resp.Active, resp.Plugin, tt.wantActive, tt.wantPlugin)
			}
		})
	}
}

func TestProviderHandler(t *testing.T) {
	router := NewRouter(testDeps(), "", zerolog.Nop())

	rec := doRequest(t, router, http.MethodGet, "/api/v1/provider", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp providerResponse
	decode(t, rec, &resp)
	want := providerResponse{
		Plugin:        "sparkpost/wordpress-sparkpost.php",
		Active:        true,
		DomainsMatch:  true,
		Transactional: true,
	}
	if resp != want {
		t.Errorf("got %+v, want %+v", resp, want)
	}
}

func TestProviderHandler_PluginInactive(t *testing.T) {
	deps := testDeps()
	deps.Site.ActivePlugins = []string{"quick-mail/quick-mail.php"}
	deps.User = nil
	router := NewRouter(deps, "", zerolog.Nop())

	rec := doRequest(t, router, http.MethodGet, "/api/v1/provider", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var resp providerResponse
	decode(t, rec, &resp)
	if resp.Active || resp.DomainsMatch {
		t.Errorf("expected inactive provider, got %+v", resp)
	}
}

func TestRouter_RequiresAPIKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash key: %v", err)
	}
	router := NewRouter(testDeps(), string(hash), zerolog.Nop())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sender", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected status 401 without key, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/sender", nil)
	req.Header.Set("X-API-Key", "secret")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200 with key, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected /healthz to skip auth, got %d", rec.Code)
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router := NewRouter(testDeps(), "", zerolog.Nop())

	doRequest(t, router, http.MethodGet, "/healthz", nil)
	rec := doRequest(t, router, http.MethodGet, "/metrics", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("api_requests_total")) {
		t.Error("expected api_requests_total in metrics output")
	}
}
