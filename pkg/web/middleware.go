package web

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"
)

// 全局安全头
func secureHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// 简单登录限速（滑动窗口）
type loginLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
	window   time.Duration
	maxTries int
}

func newLoginLimiter(window time.Duration, maxTries int) *loginLimiter {
	return &loginLimiter{
		attempts: make(map[string][]time.Time),
		window:   window,
		maxTries: maxTries,
	}
}

// allow records one attempt for ip and reports whether it is within the limit.
func (l *loginLimiter) allow(ip string) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	var recent []time.Time
	for _, t := range l.attempts[ip] {
		if now.Sub(t) < l.window {
			recent = append(recent, t)
		}
	}
	if len(recent) >= l.maxTries {
		l.attempts[ip] = recent
		return false
	}
	l.attempts[ip] = append(recent, now)
	return true
}

func (s *Server) loginRateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(getClientIP(r)) {
			writeJSON(w, http.StatusTooManyRequests, APIResponse{Success: false, Message: "too many login attempts, try again later"})
			return
		}
		next.ServeHTTP(w, r)
	}
}

func (s *Server) jwtAuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Message: "missing Authorization header"})
			return
		}

		// Bearer <token>
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
			writeJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Message: "invalid Authorization format, expected: Bearer <token>"})
			return
		}

		claims, err := validateJWTToken(s.jwtSecret, tokenParts[1])
		if err != nil {
			writeJSON(w, http.StatusUnauthorized, APIResponse{Success: false, Message: "invalid or expired token"})
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID)
		ctx = context.WithValue(ctx, ctxLoginTime, claims.LoginTime)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}
