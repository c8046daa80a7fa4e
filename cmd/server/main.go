// Package main initializes and starts the plant care API server, setting
// up configuration, logging, storage, repositories, services, handlers and
// optional TLS.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/PlantCare/internal/care"
	"github.com/atinyakov/PlantCare/internal/config"
	"github.com/atinyakov/PlantCare/internal/db"
	"github.com/atinyakov/PlantCare/internal/logger"
	"github.com/atinyakov/PlantCare/internal/metrics"
	"github.com/atinyakov/PlantCare/internal/middleware"
	"github.com/atinyakov/PlantCare/internal/repository"
	"github.com/atinyakov/PlantCare/internal/repository/memstore"
	"github.com/atinyakov/PlantCare/internal/server/handler/http"
	"github.com/atinyakov/PlantCare/internal/service"
	"github.com/atinyakov/PlantCare/internal/token"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

// pingInterval is how often the database connection is checked.
const pingInterval = 30 * time.Second

// storage bundles the repositories the services depend on.
type storage struct {
	users  service.UserRepository
	plants service.PlantRepository
	logs   service.LogRepository
	health func(ctx context.Context) error
}

func main() {
	// Parse command-line and environment configuration.
	options, err := config.Parse()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		log.Log.Fatal("failed to init logger", zap.Error(err))
	}
	zapLogger := log.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := openStorage(ctx, options.DatabaseDSN, zapLogger)

	catalog, err := care.Load(options.CareTemplates)
	if err != nil {
		zapLogger.Fatal("cannot load care templates", zap.Error(err))
	}

	issuer, err := token.NewIssuer(options.JWTSecret, time.Duration(options.AccessTTL), time.Duration(options.RefreshTTL))
	if err != nil {
		zapLogger.Fatal("JWT_SECRET must be set", zap.Error(err))
	}
	if options.ServiceToken == "" {
		zapLogger.Warn("API_TOKEN not set; service routes are disabled")
	}

	// Initialize business-logic services.
	authService := service.NewAuthService(store.users, issuer)
	plantService := service.NewPlantService(store.plants, store.logs, catalog)
	logService := service.NewLogService(store.logs, store.plants)

	// Build the router with middleware and routes.
	router := http.NewRouter(
		&http.AuthHandler{AuthService: authService},
		&http.PlantHandler{PlantService: plantService},
		&http.LogHandler{LogService: logService},
		&http.CareHandler{Catalog: catalog},
		http.RouterConfig{
			Tokens:       issuer,
			Users:        authService,
			ServiceToken: options.ServiceToken,
			CORSOrigins:  options.CORSOrigins,
			AuthLimiter:  middleware.NewRateLimiter(options.AuthRateLimit, options.AuthBurst, zapLogger),
			Health:       store.health,
		},
		zapLogger,
	)

	server := &nethttp.Server{
		Addr:              options.Address,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	if options.TLSCert != "" && options.TLSKey != "" {
		zapLogger.Info("starting HTTPS server", zap.String("addr", options.Address))
		err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
	} else {
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Address))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("server failed", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}

// openStorage connects to PostgreSQL, or falls back to the in-memory store
// when no DSN is configured.
func openStorage(ctx context.Context, dsn string, log *zap.Logger) storage {
	if dsn == "" {
		log.Warn("DATABASE_DSN not set; using in-memory storage, data is lost on restart")
		mem := memstore.New()
		return storage{users: mem, plants: mem, logs: mem}
	}

	conn, err := db.InitPostgres(dsn)
	if err != nil {
		log.Fatal("cannot init database", zap.Error(err))
	}
	metrics.SetDBUp(true)
	db.StartPinger(ctx, conn, pingInterval, log, metrics.SetDBUp)

	retrier := db.NewRetrier(conn, log)
	retrier.OnRetry = func() { metrics.RecordRetry("db") }

	return storage{
		users:  repository.NewPostgresUserRepository(retrier),
		plants: repository.NewPostgresPlantRepository(retrier),
		logs:   repository.NewPostgresLogRepository(retrier),
		health: conn.PingContext,
	}
}
