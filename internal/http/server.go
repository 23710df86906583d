package http

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"productivity/internal/auth"
	"productivity/internal/core"
	"productivity/internal/log"
	"productivity/internal/metrics"
	"productivity/internal/middleware/ratelimit"
	"productivity/internal/middleware/security"
	"productivity/internal/middleware/trace"
	"productivity/internal/services"
)

// Services are the operations the API exposes.
type Services struct {
	Expenses  *services.ExpenseService
	Tasks     *services.TaskService
	Dashboard *services.DashboardService
	Admin     *services.AdminService
	Accounts  *services.AccountService
}

// Pinger reports whether the record store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options configure NewServer. Zero values fall back to defaults.
type Options struct {
	Tokens             *auth.TokenIssuer
	Store              Pinger
	Logger             *log.Logger
	RequestTimeout     time.Duration
	RateLimitPerMinute int
	FrontendURL        string
	Version            string
}

type Server struct {
	http.Server
	svc       Services
	opts      Options
	logger    *log.Logger
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	startedAt time.Time
}

// NewServer configures routes and middleware, returning a ready-to-run http.Server.
func NewServer(addr string, svc Services, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 10 * time.Second
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	s := &Server{
		svc:       svc,
		opts:      opts,
		logger:    opts.Logger.WithComponent(log.ComponentHTTP),
		detector:  security.NewDetector(),
		startedAt: time.Now(),
	}
	if opts.RateLimitPerMinute > 0 {
		s.limiter = ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute})
	}

	mux := http.NewServeMux()
	s.routes(mux)

	var h http.Handler = mux
	h = s.detector.Middleware(opts.Logger)(h)
	h = security.CORSMiddleware(security.DefaultCORSConfig(opts.FrontendURL))(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = trace.NewMiddleware(opts.Logger, s.detector.ExtractClientIP).Middleware(h)
	h = s.recoverer(h)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      opts.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	s.handle(mux, "GET /{$}", s.handleIndex)
	s.handle(mux, "GET /healthz", s.handleHealth)
	s.handle(mux, "GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", metrics.Handler())

	s.api(mux, "POST /api/auth/register", s.handleRegister)
	s.api(mux, "POST /api/auth/login", s.handleLogin)
	s.api(mux, "POST /api/auth/refresh", s.handleRefresh)
	s.api(mux, "POST /api/auth/logout", s.authenticated(s.handleLogout))
	s.api(mux, "GET /api/auth/me", s.authenticated(s.handleMe))
	s.api(mux, "PUT /api/auth/me", s.authenticated(s.handleUpdateProfile))
	s.api(mux, "PUT /api/auth/password", s.authenticated(s.handleChangePassword))

	// Literal /summary routes go before /{id}; ServeMux precedence agrees.
	s.api(mux, "POST /api/expenses", s.authenticated(s.handleCreateExpense))
	s.api(mux, "GET /api/expenses", s.authenticated(s.handleListExpenses))
	s.api(mux, "GET /api/expenses/summary", s.authenticated(s.handleExpenseSummary))
	s.api(mux, "GET /api/expenses/{id}", s.authenticated(s.handleGetExpense))
	s.api(mux, "PUT /api/expenses/{id}", s.authenticated(s.handleUpdateExpense))
	s.api(mux, "DELETE /api/expenses/{id}", s.authenticated(s.handleDeleteExpense))

	s.api(mux, "POST /api/tasks", s.authenticated(s.handleCreateTask))
	s.api(mux, "GET /api/tasks", s.authenticated(s.handleListTasks))
	s.api(mux, "GET /api/tasks/summary", s.authenticated(s.handleTaskSummary))
	s.api(mux, "GET /api/tasks/{id}", s.authenticated(s.handleGetTask))
	s.api(mux, "PUT /api/tasks/{id}", s.authenticated(s.handleUpdateTask))
	s.api(mux, "DELETE /api/tasks/{id}", s.authenticated(s.handleDeleteTask))

	s.api(mux, "GET /api/dashboard", s.authenticated(s.handleDashboard))

	s.api(mux, "GET /api/admin/users", s.admin(s.handleAdminUsers))
	s.api(mux, "GET /api/admin/expenses", s.admin(s.handleAdminExpenses))
	s.api(mux, "GET /api/admin/tasks", s.admin(s.handleAdminTasks))
	s.api(mux, "GET /api/admin/stats", s.admin(s.handleAdminStats))
}

// handle registers h and records its latency under the route pattern.
func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := trace.NewResponseWriter(w)
		h(rw, r)
		metrics.ObserveRequest(r.Method, pattern, rw.Status(), time.Since(start))
	}))
}

// api registers an /api route behind the rate limiter and the request timeout.
func (s *Server) api(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	s.handle(mux, pattern, s.rateLimited(s.withTimeout(h)))
}

func (s *Server) rateLimited(next http.HandlerFunc) http.HandlerFunc {
	if s.limiter == nil {
		return next
	}
	mw := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		s.logger.WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r), log.FieldPath, r.URL.Path)
		NewJSONResponse().
			Status(http.StatusTooManyRequests).
			Body(ErrorBody{Message: "Rate limit exceeded. Please try again later."}).
			Write(r.Context(), w)
	})
	return mw(next).ServeHTTP
}

func (s *Server) withTimeout(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), s.opts.RequestTimeout)
		defer cancel()
		next(w, r.WithContext(ctx))
	}
}

// authenticated requires a valid access token and puts the caller's
// identity in the request context.
func (s *Server) authenticated(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			WriteError(r.Context(), w, core.NewAuthenticationError("Authentication required"))
			return
		}
		id, err := s.opts.Tokens.Authenticate(token)
		if err != nil {
			WriteError(r.Context(), w, err)
			return
		}
		ctx := auth.WithIdentity(r.Context(), id)
		ctx = log.NewContext(ctx, log.FromContext(ctx).With(log.FieldUserID, id.UserID, log.FieldRole, string(id.Role)))
		next(w, r.WithContext(ctx))
	}
}

// admin is authenticated plus the admin role.
func (s *Server) admin(next http.HandlerFunc) http.HandlerFunc {
	return s.authenticated(func(w http.ResponseWriter, r *http.Request) {
		id, _ := auth.IdentityFrom(r.Context())
		if err := auth.Authorize(id, core.RoleAdmin); err != nil {
			WriteError(r.Context(), w, err)
			return
		}
		next(w, r)
	})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if v := recover(); v != nil {
				if v == http.ErrAbortHandler {
					panic(v)
				}
				s.logger.ErrorContext(r.Context(), "Handler panicked",
					"panic", v, "stack", string(debug.Stack()), log.FieldPath, r.URL.Path)
				NewJSONResponse().
					Status(http.StatusInternalServerError).
					Body(ErrorBody{Message: internalMessage}).
					Write(r.Context(), w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// identity returns the caller set by authenticated.
func identity(r *http.Request) core.Identity {
	id, _ := auth.IdentityFrom(r.Context())
	return id
}

// Shutdown gracefully shuts down the server and its background goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.Server.Shutdown(ctx)
}
