package api

import (
	"bufio"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/snapboard/internal/api/handlers"
	"github.com/wonny/snapboard/pkg/logger"
	"github.com/wonny/snapboard/pkg/metrics"
	"github.com/wonny/snapboard/pkg/redis"
)

// RouterDeps groups what the router wires. Stream, Limiter and Metrics may be nil.
type RouterDeps struct {
	Dashboard *handlers.DashboardHandler
	Stream    *Hub
	Limiter   *redis.RateLimiter
	RateLimit redis.RateLimitConfig
	Metrics   *metrics.Recorder
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(deps RouterDeps, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", healthCheckHandler).Methods("GET")

	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics.Handler()).Methods("GET")
	}

	if deps.Stream != nil {
		r.HandleFunc("/ws/dashboard", deps.Stream.ServeWS)
	}

	// API
	api := r.PathPrefix("/api").Subrouter()
	if deps.Limiter != nil {
		api.Use(rateLimitMiddleware(deps.Limiter, deps.RateLimit, log))
	}

	api.HandleFunc("/dashboard", deps.Dashboard.GetDashboard).Methods("GET")
	api.HandleFunc("/dashboard/holdings", deps.Dashboard.GetHoldings).Methods("GET")
	api.HandleFunc("/dashboard/series", deps.Dashboard.GetSeries).Methods("GET")
	api.HandleFunc("/dashboard/panels", deps.Dashboard.GetPanels).Methods("GET")
	api.HandleFunc("/dashboard/panels/{name}", deps.Dashboard.GetPanel).Methods("GET")
	api.HandleFunc("/dashboard/ema", deps.Dashboard.GetEma).Methods("GET")

	// Apply middleware
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// healthCheckHandler returns server health status
func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": "snapboard",
	})
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Hijack lets the websocket upgrade pass through the logging middleware
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, http.ErrNotSupported
	}
	s.status = http.StatusSwitchingProtocols
	return hj.Hijack()
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitMiddleware applies the Redis sliding window per client address.
// Limiter failures let the request through.
func rateLimitMiddleware(limiter *redis.RateLimiter, cfg redis.RateLimitConfig, log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			bucket := cfg
			bucket.Key = clientAddr(r)

			allowed, remaining, err := limiter.Allow(r.Context(), bucket)
			if err != nil {
				log.WithError(err).Warn("Rate limiter unavailable")
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			if !allowed {
				w.Header().Set("Retry-After", strconv.Itoa(int(cfg.Window.Seconds())))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
