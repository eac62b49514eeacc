package mailutil

import (
	"context"
	"net"
	"net/mail"
	"strings"

	"github.com/badoux/checkmail"
	"github.com/rs/zerolog"
	"golang.org/x/net/idna"

	"github.com/sungwon/quick-mail/internal/metrics"
)

const (
	minAddressLength = 5
	maxAddressLength = 255
)

// MXResolver looks up the MX records of a domain. *net.Resolver satisfies
// it, as do the caching resolvers in package mxcache.
type MXResolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// Validator checks addresses and sanitizes recipient lists. It is safe for
// concurrent use when its resolver is.
type Validator struct {
	resolver MXResolver
	log      zerolog.Logger
}

// NewValidator creates a Validator. A nil resolver uses net.DefaultResolver.
func NewValidator(resolver MXResolver, log zerolog.Logger) *Validator {
	if resolver == nil {
		resolver = net.DefaultResolver
	}
	return &Validator{resolver: resolver, log: log}
}

// IsValidEmailDomain reports whether address is a well-formed email address
// whose domain contains a dot. With ValidateDNS the registrable part of the
// domain (its last two labels) must also publish at least one MX record.
// IP-literal domains pass syntax validation but never DNS validation.
func (v *Validator) IsValidEmailDomain(ctx context.Context, address string, opt ValidateOption) bool {
	valid := v.isValidEmailDomain(ctx, address, opt)
	metrics.AddressValidationsTotal.WithLabelValues(string(opt), resultLabel(valid)).Inc()
	return valid
}

func (v *Validator) isValidEmailDomain(ctx context.Context, address string, opt ValidateOption) bool {
	if n := len(address); n < minAddressLength || n > maxAddressLength {
		return false
	}

	parts := strings.Split(strings.TrimSpace(address), "@")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return false
	}

	if err := checkmail.ValidateFormat(address); err != nil {
		return false
	}
	if !isBareAddress(address) {
		return false
	}

	host := parts[1]
	isIP := net.ParseIP(host) != nil

	// no dot means a bare host name such as localhost
	if strings.Index(host, ".") < 1 {
		return false
	}

	var domain string
	if !isIP {
		// Non-ASCII hosts never pass the format checks above, so this
		// only normalizes case and rejects malformed labels.
		if ascii, err := idna.Lookup.ToASCII(host); err == nil && ascii != "" {
			host = ascii
		}
		domain = registrableDomain(host)
	}

	if opt != ValidateDNS {
		return true
	}

	if isIP {
		v.log.Debug().Str("address", address).Msg("ip literal domain rejected for dns validation")
		return false
	}

	return v.hasMX(ctx, domain)
}

func (v *Validator) hasMX(ctx context.Context, domain string) bool {
	records, err := v.resolver.LookupMX(ctx, domain)
	if err != nil {
		v.log.Debug().Err(err).Str("domain", domain).Msg("mx lookup failed")
		metrics.MXLookupsTotal.WithLabelValues("error").Inc()
		return false
	}
	if len(records) == 0 {
		metrics.MXLookupsTotal.WithLabelValues("empty").Inc()
		return false
	}
	metrics.MXLookupsTotal.WithLabelValues("found").Inc()
	return true
}

// isBareAddress reports whether address is a plain addr-spec: no display
// name, comments, folding or surrounding whitespace. checkmail matches any
// single line of its input, so it cannot be relied on for this alone.
func isBareAddress(address string) bool {
	addr, err := mail.ParseAddress(address)
	if err != nil {
		return false
	}
	return addr.Name == "" && addr.Address == address
}

// registrableDomain reduces host to its last two dot-separated labels.
func registrableDomain(host string) string {
	labels := strings.Split(host, ".")
	if n := len(labels); n > 2 {
		return labels[n-2] + "." + labels[n-1]
	}
	return host
}

func resultLabel(ok bool) string {
	if ok {
		return "valid"
	}
	return "invalid"
}
