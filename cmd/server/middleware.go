package main

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

func (s *server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("ip", r.RemoteAddr))
	})
}

// limiterIdleTTL is how long a client may stay quiet before its limiter is dropped.
// A bucket refills completely within a minute, so dropping it later loses no state.
const limiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter keeps one token bucket per client address.
type ipLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*clientLimiter
	perMin    int
	now       func() time.Time
	lastSweep time.Time
}

// newIPLimiter allows perMinute requests per client, bursting up to the same amount.
// A non-positive value disables limiting.
func newIPLimiter(perMinute int) *ipLimiter {
	return &ipLimiter{limiters: make(map[string]*clientLimiter), perMin: perMinute, now: time.Now}
}

func (l *ipLimiter) get(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastSweep) >= limiterIdleTTL {
		for key, c := range l.limiters {
			if now.Sub(c.lastSeen) >= limiterIdleTTL {
				delete(l.limiters, key)
			}
		}
		l.lastSweep = now
	}

	c, ok := l.limiters[ip]
	if !ok {
		c = &clientLimiter{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMin)), l.perMin)}
		l.limiters[ip] = c
	}
	c.lastSeen = now
	return c.limiter
}

func (l *ipLimiter) middleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if l.perMin <= 0 {
				next.ServeHTTP(w, r)
				return
			}
			ip := clientIP(r)
			if !l.get(ip).Allow() {
				logger.Warn("rate limit exceeded", zap.String("ip", ip), zap.String("path", r.URL.Path))
				writeJSON(w, http.StatusTooManyRequests, errorResponse{Error: "too many requests, try again later"})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
