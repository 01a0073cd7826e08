package trace

import (
	"net/http"

	logutil "github.com/NYCU-SDC/summer/pkg/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type Middleware struct {
	logger *zap.Logger
	tracer trace.Tracer
	debug  bool
}

func NewMiddleware(logger *zap.Logger, debug bool) *Middleware {
	return &Middleware{
		logger: logger,
		tracer: otel.Tracer("http/middleware"),
		debug:  debug,
	}
}

// TraceMiddleware starts a server span for each request, honoring any
// incoming W3C trace context headers.
func (m *Middleware) TraceMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		propagator := propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		)
		ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

		ctx, span := m.tracer.Start(ctx, r.Method+" "+r.URL.Path)
		defer span.End()

		next(w, r.WithContext(ctx))
	}
}

// RecoverMiddleware converts panics into a 500 response instead of tearing
// down the connection.
func (m *Middleware) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				logger := logutil.WithContext(r.Context(), m.logger)
				logger.Error("Recovered from panic in handler",
					zap.Any("panic", rec),
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method),
					zap.Stack("stack"),
				)
				http.Error(w, "internal server error", http.StatusInternalServerError)
			}
		}()

		next(w, r)
	}
}
