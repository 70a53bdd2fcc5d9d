package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	// `chi` is a lightweight, idiomatic and composable router for building HTTP services in Go.
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	// `chi/cors` provides CORS (Cross-Origin Resource Sharing) middleware.
	"github.com/go-chi/cors"
	httpSwagger "github.com/swaggo/http-swagger"
	"github.com/urfave/cli/v2"

	"github.com/user/banconova-go/apperror"
	"github.com/user/banconova-go/auth"
	"github.com/user/banconova-go/background"
	"github.com/user/banconova-go/captcha"
	"github.com/user/banconova-go/config"
	"github.com/user/banconova-go/dashboard"
	"github.com/user/banconova-go/db"
	_ "github.com/user/banconova-go/docs" // Swagger spec registration
	"github.com/user/banconova-go/logging"
	"github.com/user/banconova-go/monitoring"
	"github.com/user/banconova-go/session"
)

const (
	requestTimeout  = 60 * time.Second
	shutdownTimeout = 30 * time.Second
	healthTimeout   = 2 * time.Second
)

// pinger is satisfied by *db.Handle.
type pinger interface {
	Ping(ctx context.Context) error
}

// routerDeps is everything newRouter mounts.
type routerDeps struct {
	auth      *auth.Handlers
	dashboard *dashboard.Handlers
	health    pinger
	reporter  *monitoring.SentryReporter
	logger    *slog.Logger
	origins   []string
}

func newRouter(d routerDeps) http.Handler {
	r := chi.NewRouter()

	// IMPORTANT: Chi requires all middleware to be registered before any routes
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(d.logger))
	r.Use(recoverJSON(d.logger))
	// Runs inside recoverJSON so the panic is reported before it becomes a 500.
	r.Use(d.reporter.Recoverer)
	r.Use(middleware.Timeout(requestTimeout))

	// The browser client sends the session cookie, so origins must be explicit for credentials to work.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Every method reaches these handlers so they can answer with their own JSON 405/400 bodies.
	r.HandleFunc("/login", d.auth.HandleAuth())
	r.HandleFunc("/logout", d.auth.HandleLogout())
	r.HandleFunc("/dashboard", d.dashboard.HandleDashboard())

	r.Get("/healthz", handleHealth(d.health, d.logger))

	return r
}

// recoverJSON turns a handler panic into the generic JSON 500 the auth
// endpoints answer with. http.ErrAbortHandler is re-raised so net/http can
// drop the connection.
func recoverJSON(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rvr := recover()
				if rvr == nil {
					return
				}
				if rvr == http.ErrAbortHandler {
					panic(rvr)
				}
				logger.ErrorContext(r.Context(), "panic recovered",
					"request_id", middleware.GetReqID(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"panic", fmt.Sprint(rvr),
					"stack", string(debug.Stack()),
				)
				appErr := apperror.NewInternalError("panic", fmt.Errorf("%v", rvr))
				apperror.WriteJSON(w, appErr.StatusCode(), appErr.ToResult())
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// handleHealth godoc
// @Summary Health check
// @Description Reports whether the datastore answers a ping.
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]string "ok"
// @Failure 503 {object} map[string]string "unavailable"
// @Router /healthz [get]
func handleHealth(p pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()
		if err := p.Ping(ctx); err != nil {
			logger.WarnContext(r.Context(), "health check failed", "error", err)
			apperror.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
		apperror.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// newUserStore picks the user store matching the configured driver.
func newUserStore(cfg *config.DatabaseConfig, handle *db.Handle) (auth.UserStore, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		return auth.NewPostgresUserStore(handle.Postgres), nil
	case config.DriverMySQL:
		return auth.NewMySQLUserStore(handle.MySQL), nil
	default:
		return nil, apperror.NewConfigError(fmt.Sprintf("unsupported database driver %q", cfg.Driver), nil)
	}
}

// newSessionStore picks where sessions live. The PostgreSQL store survives restarts
// and is shared between replicas; the memory store is for single-instance deployments.
func newSessionStore(cfg *config.SessionConfig, handle *db.Handle) (session.Store, error) {
	switch cfg.Store {
	case config.SessionStoreMemory:
		return session.NewMemoryStore(nil), nil
	case config.SessionStorePostgres:
		if handle.Postgres == nil {
			return nil, apperror.NewConfigError("postgres session store requires a postgres database", nil)
		}
		return session.NewPostgresStore(handle.Postgres, nil), nil
	default:
		return nil, apperror.NewConfigError(fmt.Sprintf("unsupported session store %q", cfg.Store), nil)
	}
}

func serve(_ *cli.Context) error {
	cfg, logger, closer, err := bootstrap()
	if err != nil {
		return err
	}
	defer closer.Close()

	reporter := monitoring.NewSentryReporter(cfg.Sentry, logger)
	defer reporter.Close()

	handle, err := db.Open(cfg.DB)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer handle.Close()
	logger.Info("database connected", "driver", cfg.DB.Driver, "host", cfg.DB.Host, "name", cfg.DB.DBName)

	userStore, err := newUserStore(cfg.DB, handle)
	if err != nil {
		return err
	}
	sessionStore, err := newSessionStore(cfg.Session, handle)
	if err != nil {
		return err
	}
	hasher, err := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("create password hasher: %w", err)
	}

	// Manual dependency injection: services get their stores, handlers get their services.
	errWriter := apperror.NewWriter(logger, reporter)
	verifier := captcha.NewRecaptchaVerifier(cfg.Captcha, &http.Client{})
	authService := auth.NewService(userStore, verifier, hasher, logger, nil)
	sessions := session.NewManager(sessionStore, cfg.Session, nil)

	router := newRouter(routerDeps{
		auth:      auth.NewHandlers(authService, sessions, errWriter, logger),
		dashboard: dashboard.NewHandlers(sessions, errWriter, logger),
		health:    handle,
		reporter:  reporter,
		logger:    logger,
		origins:   cfg.Server.AllowedOrigins,
	})

	sweeperStop := make(chan struct{})
	sweeperDone := background.StartSessionSweeper(sessions.Store(), cfg.Session.SweepInterval, logger, sweeperStop)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: requestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		logger.Info("server shutting down", "signal", sig.String())
	case err := <-serverErr:
		close(sweeperStop)
		<-sweeperDone
		return fmt.Errorf("start server: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	close(sweeperStop)
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	select {
	case <-sweeperDone:
	case <-ctx.Done():
		logger.Warn("session sweeper did not stop before shutdown deadline")
	}

	logger.Info("server stopped gracefully")
	return nil
}
