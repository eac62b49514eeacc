package mxcache

import (
	"context"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/sungwon/quick-mail/internal/metrics"
)

// Store keeps MX answers keyed by domain. A cached empty answer is a
// valid hit: the domain has no MX records.
type Store interface {
	Get(ctx context.Context, domain string) (records []*net.MX, found bool, err error)
	Set(ctx context.Context, domain string, records []*net.MX, ttl time.Duration) error
	Name() string
}

// CachingResolver answers from a Store and falls back to the wrapped
// resolver on a miss. Lookup errors are never cached.
type CachingResolver struct {
	next  Resolver
	store Store
	ttl   time.Duration
	log   zerolog.Logger
}

// NewCachingResolver wraps next with store, keeping answers for ttl.
func NewCachingResolver(next Resolver, store Store, ttl time.Duration, log zerolog.Logger) *CachingResolver {
	return &CachingResolver{next: next, store: store, ttl: ttl, log: log}
}

// LookupMX returns the cached answer for name or resolves and caches it.
// Store failures are logged and treated as misses.
func (c *CachingResolver) LookupMX(ctx context.Context, name string) ([]*net.MX, error) {
	records, found, err := c.store.Get(ctx, name)
	if err != nil {
		c.log.Warn().Err(err).Str("domain", name).Str("store", c.store.Name()).Msg("mx cache read failed")
	}
	if err == nil && found {
		metrics.MXCacheRequestsTotal.WithLabelValues(c.store.Name(), "hit").Inc()
		return records, nil
	}
	metrics.MXCacheRequestsTotal.WithLabelValues(c.store.Name(), "miss").Inc()

	records, err = c.next.LookupMX(ctx, name)
	if err != nil {
		return nil, err
	}

	if err := c.store.Set(ctx, name, records, c.ttl); err != nil {
		c.log.Warn().Err(err).Str("domain", name).Str("store", c.store.Name()).Msg("mx cache write failed")
	}
	return records, nil
}
