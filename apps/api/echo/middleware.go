package echoapi

import (
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	metricsvc "github.com/terakoya-app/terakoya/services/metrics"
)

// statusMetrics counts response statuses once the handler chain settles.
func statusMetrics(metrics *metricsvc.Collector) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if err := next(ctx); err != nil {
				// commit through the error handler so the recorded
				// status is the one actually sent
				ctx.Error(err)
			}
			if metrics != nil {
				metrics.RecordHTTPStatus(ctx.Response().Status)
			}
			return nil
		}
	}
}

const (
	// rateLimitMaxClients caps the tracked-IP table so a scan across many
	// source addresses cannot grow it without bound.
	rateLimitMaxClients = 10000
	rateLimitIdleTTL    = 3 * time.Minute
)

type rateClient struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

// ipRateLimiter keeps one token bucket per client IP. Entries idle longer
// than rateLimitIdleTTL are evicted when the table is full.
type ipRateLimiter struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	clients map[string]*rateClient
	now     func() time.Time
}

func newIPRateLimiter(rps rate.Limit, burst int) *ipRateLimiter {
	return &ipRateLimiter{
		rps:     rps,
		burst:   burst,
		clients: make(map[string]*rateClient),
		now:     time.Now,
	}
}

func (l *ipRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cl, ok := l.clients[ip]
	if !ok {
		if len(l.clients) >= rateLimitMaxClients {
			l.evict(now)
		}
		cl = &rateClient{lim: rate.NewLimiter(l.rps, l.burst)}
		l.clients[ip] = cl
	}
	cl.lastSeen = now
	return cl.lim.Allow()
}

// evict drops idle entries, then arbitrary ones until the table is below
// its cap. Caller holds l.mu.
func (l *ipRateLimiter) evict(now time.Time) {
	for ip, cl := range l.clients {
		if now.Sub(cl.lastSeen) > rateLimitIdleTTL {
			delete(l.clients, ip)
		}
	}
	for ip := range l.clients {
		if len(l.clients) < rateLimitMaxClients {
			break
		}
		delete(l.clients, ip)
	}
}

// rateLimit throttles per client IP. Used on credential endpoints.
func rateLimit(rps rate.Limit, burst int) echo.MiddlewareFunc {
	limiter := newIPRateLimiter(rps, burst)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			if !limiter.allow(ctx.RealIP()) {
				return errTooManyRequests
			}
			return next(ctx)
		}
	}
}
