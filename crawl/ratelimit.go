package crawl

import (
	"context"
	"sync"

	"github.com/fwojciec/mise"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

var _ mise.DomainLimiter = (*DomainLimiter)(nil)

// DefaultPerDomain is the number of in-flight requests allowed per host.
const DefaultPerDomain = 2

// DomainLimiter bounds in-flight requests per domain with a weighted
// semaphore and, when rps is positive, paces them with a token bucket.
// Requests to different domains never wait on each other.
type DomainLimiter struct {
	mu        sync.Mutex
	gates     map[string]*domainGate
	perDomain int64
	rps       float64
}

type domainGate struct {
	sem     *semaphore.Weighted
	limiter *rate.Limiter
}

// NewDomainLimiter creates a DomainLimiter allowing perDomain concurrent
// requests and rps requests per second to each domain. A non-positive
// perDomain falls back to DefaultPerDomain; a non-positive rps disables pacing.
func NewDomainLimiter(perDomain int, rps float64) *DomainLimiter {
	if perDomain <= 0 {
		perDomain = DefaultPerDomain
	}
	return &DomainLimiter{
		gates:     make(map[string]*domainGate),
		perDomain: int64(perDomain),
		rps:       rps,
	}
}

// Acquire blocks until a request to domain may start.
// Returns an error if the context is canceled first; no slot is held then.
func (d *DomainLimiter) Acquire(ctx context.Context, domain string) (func(), error) {
	g := d.gate(domain)
	if err := g.sem.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			g.sem.Release(1)
			return nil, err
		}
	}
	var once sync.Once
	return func() { once.Do(func() { g.sem.Release(1) }) }, nil
}

func (d *DomainLimiter) gate(domain string) *domainGate {
	d.mu.Lock()
	defer d.mu.Unlock()
	g, ok := d.gates[domain]
	if !ok {
		g = &domainGate{sem: semaphore.NewWeighted(d.perDomain)}
		if d.rps > 0 {
			g.limiter = rate.NewLimiter(rate.Limit(d.rps), 1)
		}
		d.gates[domain] = g
	}
	return g
}
