package cors

import (
	"net/http"
	"slices"

	"go.uber.org/zap"
)

type Middleware struct {
	logger       *zap.Logger
	allowOrigins []string
}

func NewMiddleware(logger *zap.Logger, allowOrigins []string) *Middleware {
	return &Middleware{
		logger:       logger,
		allowOrigins: allowOrigins,
	}
}

// HandlerFunc applies CORS headers for allowed origins. Credentials are
// always allowed because authentication rides on the session cookie.
func (m *Middleware) HandlerFunc(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && m.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.Header().Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next(w, r)
	}
}

func (m *Middleware) originAllowed(origin string) bool {
	return slices.Contains(m.allowOrigins, origin) || slices.Contains(m.allowOrigins, "*")
}
