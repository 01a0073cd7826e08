package ratelimit

import (
	"net"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Middleware keeps one token bucket per client IP. Idle entries are swept
// once a minute.
type Middleware struct {
	logger *zap.Logger

	mu       sync.Mutex
	visitors map[string]*visitor

	perMinute int
	burst     int
	ttl       time.Duration
}

func NewMiddleware(logger *zap.Logger, perMinute, burst int, ttl time.Duration) *Middleware {
	m := &Middleware{
		logger:    logger,
		visitors:  make(map[string]*visitor),
		perMinute: perMinute,
		burst:     burst,
		ttl:       ttl,
	}
	go m.sweep()
	return m
}

func (m *Middleware) getLimiter(ip string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.visitors[ip]; ok {
		v.lastSeen = time.Now()
		return v.limiter
	}

	limiter := rate.NewLimiter(rate.Limit(float64(m.perMinute)/60.0), m.burst)
	m.visitors[ip] = &visitor{limiter: limiter, lastSeen: time.Now()}
	return limiter
}

func (m *Middleware) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		m.mu.Lock()
		for ip, v := range m.visitors {
			if time.Since(v.lastSeen) > m.ttl {
				delete(m.visitors, ip)
			}
		}
		m.mu.Unlock()
	}
}

func (m *Middleware) HandlerFunc(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if !m.getLimiter(ip).Allow() {
			m.logger.Warn("Rate limit exceeded", zap.String("ip", ip), zap.String("path", r.URL.Path))
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}

		next(w, r)
	}
}
