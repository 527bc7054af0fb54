package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"emberchain/observability"
)

// Observability instruments gateway routes with the shared prometheus bundle,
// an otel span per request, and optional structured request logging.
type Observability struct {
	logger      *slog.Logger
	tracer      trace.Tracer
	logRequests bool
}

func NewObservability(serviceName string, logger *slog.Logger, logRequests bool) *Observability {
	if logger == nil {
		logger = slog.Default()
	}
	if serviceName == "" {
		serviceName = "ember-gateway"
	}
	return &Observability{
		logger:      logger,
		tracer:      otel.Tracer(serviceName),
		logRequests: logRequests,
	}
}

func (o *Observability) Middleware(route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx, span := o.tracer.Start(r.Context(), route, trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.route", route),
			))
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(recorder, r.WithContext(ctx))
			span.SetAttributes(attribute.Int("http.status_code", recorder.status))
			span.End()
			duration := time.Since(start)
			observability.Gateway().Observe(route, recorder.status, duration)
			if o.logRequests {
				o.logger.Info("gateway request",
					"route", route,
					"method", r.Method,
					"path", r.URL.Path,
					"status", recorder.status,
					"durationMs", float64(duration.Microseconds())/1000,
					"requestId", RequestIDFromContext(r.Context()),
				)
			}
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
