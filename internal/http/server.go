package http

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	applog "wallet/internal/log"
	"wallet/internal/middleware/ratelimit"
	"wallet/internal/middleware/trace"
	"wallet/internal/services"
)

// Options tunes the server middleware. Zero values fall back to defaults.
type Options struct {
	RequestTimeout     time.Duration
	RateLimitPerMinute int
}

type Server struct {
	http.Server
	ledger  *services.Ledger
	limiter *ratelimit.Limiter
	tracer  *trace.Middleware
	logger  *applog.Logger

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, ledger *services.Ledger, opts Options, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.Nop()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}

	s := &Server{
		ledger:  ledger,
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		tracer:  trace.NewMiddleware(clientIP, logger),
		logger:  logger.WithComponent(applog.ComponentHTTP),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("POST /wallets", s.handleOpenWallet)
	mux.HandleFunc("GET /wallet", s.handleGetBalance)
	mux.HandleFunc("POST /transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /transactions", s.handleListTransactions)
	mux.HandleFunc("GET /transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("POST /payments", s.handleProcessPayment)
	mux.HandleFunc("GET /payments", s.handleListPayments)
	mux.HandleFunc("GET /dashboard", s.handleDashboard)
	mux.HandleFunc("GET /categories", s.handleListCategories)

	var h http.Handler = mux
	h = http.TimeoutHandler(h, opts.RequestTimeout, timeoutBody)
	h = withJSONContentType(h)
	h = s.limiter.Middleware(clientIP, s.onRateLimited, http.MethodPost)(h)
	h = withSecurityHeaders(h)
	h = s.tracer.Middleware(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Shutdown stops the rate limiter and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		m := s.tracer.GetMetrics()
		s.logger.Info("HTTP server shutting down",
			"total_requests", m.TotalRequests,
			"avg_response_us", m.AverageResponseTime,
			"rate_limited", s.limiter.GetMetrics().TotalHits)
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.NewFields().
			WithClientIP(clientIP(r)).
			WithComponent(applog.ComponentRateLimit).
			WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")).ToSlice()...)

	NewJSONResponse().
		Status(http.StatusTooManyRequests).
		Error("RATE_LIMITED", "rate limit exceeded, please try again later", nil).
		Write(w)
}

var timeoutBody = func() string {
	b, _ := json.Marshal(ErrorBody{Code: "TIMEOUT", Message: "request timed out"})
	return string(b)
}()

// withJSONContentType presets the JSON content type on the outer writer.
// http.TimeoutHandler writes its timeout body there directly; handler headers
// still replace it on normal responses.
func withJSONContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", contentTypeJSON)
		next.ServeHTTP(w, r)
	})
}

// withSecurityHeaders adds the headers every JSON response carries.
func withSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Cache-Control", "no-store")
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client address, considering proxies.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Body(map[string]string{"status": "ok"}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{"store": "ok"}
	status := http.StatusOK
	if err := s.ledger.Ready(ctx); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
		checks["store"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	NewJSONResponse().Status(status).Body(map[string]any{
		"status": http.StatusText(status),
		"checks": checks,
	}).Write(w)
}
