package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/Merco74/ScoutPlateform/common/httputil"

	"golang.org/x/time/rate"
)

// idleLimiterTTL is how long a client's bucket survives without requests.
const idleLimiterTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter keeps one token bucket per client IP.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	limit   rate.Limit
	burst   int
	logger  *slog.Logger
	now     func() time.Time

	// seconds until the next token, zero when unlimited
	retryAfter int
}

// NewRateLimiter allows perMinute requests per client with the given burst.
// A non-positive perMinute disables limiting.
func NewRateLimiter(perMinute float64, burst int, logger *slog.Logger) *RateLimiter {
	limit := rate.Inf
	retryAfter := 0
	if perMinute > 0 {
		limit = rate.Limit(perMinute / 60)
		retryAfter = int(math.Ceil(60 / perMinute))
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		clients:    make(map[string]*clientLimiter),
		limit:      limit,
		burst:      burst,
		retryAfter: retryAfter,
		logger:     logger,
		now:        time.Now,
	}
}

func (l *RateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for key, c := range l.clients {
		if now.Sub(c.lastSeen) > idleLimiterTTL {
			delete(l.clients, key)
		}
	}

	c, ok := l.clients[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[ip] = c
	}
	c.lastSeen = now
	return c.limiter.AllowN(now, 1)
}

// Middleware answers 429 once a client has spent its bucket.
func (l *RateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !l.allow(ip) {
			l.logger.WarnContext(r.Context(), "rate limit exceeded", "path", r.URL.Path)
			if l.retryAfter > 0 {
				w.Header().Set("Retry-After", strconv.Itoa(l.retryAfter))
			}
			httputil.RespondWithError(w, http.StatusTooManyRequests, "too many requests")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
