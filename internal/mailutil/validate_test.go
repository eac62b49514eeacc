package mailutil

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"

	"github.com/badoux/checkmail"
	"github.com/rs/zerolog"
)

// stubResolver answers MX queries from a map and records what was asked.
type stubResolver struct {
	records map[string][]*net.MX
	err     error
	queried []string
}

func (s *stubResolver) LookupMX(_ context.Context, name string) ([]*net.MX, error) {
	s.queried = append(s.queried, name)
	if s.err != nil {
		return nil, s.err
	}
	return s.records[name], nil
}

func newStubResolver(domains ...string) *stubResolver {
	s := &stubResolver{records: make(map[string][]*net.MX)}
	for _, d := range domains {
		s.records[d] = []*net.MX{{Host: "mx." + d + ".", Pref: 10}}
	}
	return s
}

func TestIsValidEmailDomain_Syntax(t *testing.T) {
	v := NewValidator(newStubResolver(), zerolog.Nop())
	ctx := context.Background()

	tests := []struct {
		name     string
		address  string
		expected bool
	}{
		{name: "simple", address: "a@b.com", expected: true},
		{name: "subdomain", address: "user@sub.example.com", expected: true},
		{name: "plus tag", address: "user+tag@example.com", expected: true},
		{name: "no dot and too short", address: "a@b", expected: false},
		{name: "bare host", address: "admin@localhost", expected: false},
		{name: "empty", address: "", expected: false},
		{name: "missing local part", address: "@example.com", expected: false},
		{name: "missing domain", address: "user@", expected: false},
		{name: "two at signs", address: "a@b@example.com", expected: false},
		{name: "no at sign", address: "userexample.com", expected: false},
		{name: "space inside", address: "us er@example.com", expected: false},
		{name: "trailing space", address: "user@example.com ", expected: false},
		{name: "embedded newline", address: "a@b.com\nx", expected: false},
		{name: "leading line", address: "x\na@b.com", expected: false},
		{name: "display name", address: "john <a@b.com>", expected: false},
		{name: "angle brackets", address: "<a@b.com>", expected: false},
		{name: "comment", address: "(c)a@b.com", expected: false},
		{name: "tab inside", address: "a@b.\tcom", expected: false},
		{name: "leading dot domain", address: "user@.example.com", expected: false},
		{name: "too long", address: strings.Repeat("a", 250) + "@example.com", expected: false},
		{name: "ip literal", address: "user@192.168.1.10", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := v.IsValidEmailDomain(ctx, tt.address, ValidateSyntax)
			if got != tt.expected {
				t.Errorf("IsValidEmailDomain(%q, N) = %v, want %v", tt.address, got, tt.expected)
			}
		})
	}
}

func TestIsValidEmailDomain_SyntaxModeSkipsDNS(t *testing.T) {
	resolver := newStubResolver()
	v := NewValidator(resolver, zerolog.Nop())

	if !v.IsValidEmailDomain(context.Background(), "a@b.com", ValidateSyntax) {
		t.Fatal("expected a@b.com to be valid without DNS")
	}
	if len(resolver.queried) != 0 {
		t.Errorf("expected no MX lookups, got %v", resolver.queried)
	}
}

func TestIsValidEmailDomain_DNS(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		address     string
		resolver    *stubResolver
		expected    bool
		wantQueried string
	}{
		{
			name:        "mx present",
			address:     "user@example.com",
			resolver:    newStubResolver("example.com"),
			expected:    true,
			wantQueried: "example.com",
		},
		{
			name:        "no mx",
			address:     "user@example.com",
			resolver:    newStubResolver(),
			expected:    false,
			wantQueried: "example.com",
		},
		{
			name:        "subdomain reduced to last two labels",
			address:     "user@mail.eu.example.com",
			resolver:    newStubResolver("example.com"),
			expected:    true,
			wantQueried: "example.com",
		},
		{
			name:        "domain lowercased for lookup",
			address:     "User@Example.COM",
			resolver:    newStubResolver("example.com"),
			expected:    true,
			wantQueried: "example.com",
		},
		{
			name:        "lookup error",
			address:     "user@example.com",
			resolver:    &stubResolver{err: errors.New("i/o timeout")},
			expected:    false,
			wantQueried: "example.com",
		},
		{
			name:     "ip literal rejected",
			address:  "user@192.168.1.10",
			resolver: newStubResolver(),
			expected: false,
		},
		{
			name:     "syntax failure short-circuits",
			address:  "not an address",
			resolver: newStubResolver("example.com"),
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator(tt.resolver, zerolog.Nop())
			got := v.IsValidEmailDomain(ctx, tt.address, ValidateDNS)
			if got != tt.expected {
				t.Errorf("IsValidEmailDomain(%q, Y) = %v, want %v", tt.address, got, tt.expected)
			}

			if tt.wantQueried == "" {
				if len(tt.resolver.queried) != 0 {
					t.Errorf("expected no MX lookups, got %v", tt.resolver.queried)
				}
				return
			}
			if len(tt.resolver.queried) != 1 || tt.resolver.queried[0] != tt.wantQueried {
				t.Errorf("expected lookup of %q, got %v", tt.wantQueried, tt.resolver.queried)
			}
		})
	}
}

func TestIsValidEmailDomain_StricterThanSyntaxValidator(t *testing.T) {
	v := NewValidator(newStubResolver(), zerolog.Nop())
	ctx := context.Background()

	candidates := []string{
		"a@b.com", "first.last@example.org", "x_y@sub.example.net",
		"user@192.168.1.10", "o'neil@example.ie", "admin@localhost",
		"bad@", "a@b", "user@-example.com",
	}

	for _, addr := range candidates {
		if v.IsValidEmailDomain(ctx, addr, ValidateSyntax) {
			if err := checkmail.ValidateFormat(addr); err != nil {
				t.Errorf("%q accepted but rejected by syntax validator: %v", addr, err)
			}
		}
	}
}

func TestRegistrableDomain(t *testing.T) {
	tests := []struct {
		host     string
		expected string
	}{
		{host: "example.com", expected: "example.com"},
		{host: "mail.example.com", expected: "example.com"},
		{host: "a.b.c.example.org", expected: "example.org"},
		{host: "example", expected: "example"},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			if got := registrableDomain(tt.host); got != tt.expected {
				t.Errorf("registrableDomain(%q) = %q, want %q", tt.host, got, tt.expected)
			}
		})
	}
}

func TestParseValidateOption(t *testing.T) {
	tests := []struct {
		in       string
		expected ValidateOption
	}{
		{in: "Y", expected: ValidateDNS},
		{in: "y", expected: ValidateDNS},
		{in: "N", expected: ValidateSyntax},
		{in: "", expected: ValidateSyntax},
		{in: "yes", expected: ValidateSyntax},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ParseValidateOption(tt.in); got != tt.expected {
				t.Errorf("ParseValidateOption(%q) = %q, want %q", tt.in, got, tt.expected)
			}
		})
	}
}
