package mxcache

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/sungwon/quick-mail/internal/metrics"
)

const defaultTimeout = 5 * time.Second

// Resolver looks up MX records for a domain.
type Resolver interface {
	LookupMX(ctx context.Context, name string) ([]*net.MX, error)
}

// DNSResolver queries DNS directly, bounding each lookup with a timeout.
type DNSResolver struct {
	resolver Resolver
	timeout  time.Duration
}

// NewDNSResolver creates a DNSResolver backed by net.DefaultResolver.
// A zero timeout defaults to 5 seconds.
func NewDNSResolver(timeout time.Duration) *DNSResolver {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &DNSResolver{resolver: net.DefaultResolver, timeout: timeout}
}

// LookupMX resolves the MX records of name.
func (r *DNSResolver) LookupMX(ctx context.Context, name string) ([]*net.MX, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	start := time.Now()
	records, err := r.resolver.LookupMX(ctx, name)
	metrics.MXLookupDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return nil, nil
		}
		return nil, err
	}
	return records, nil
}
