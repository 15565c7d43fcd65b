package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AdamBeresnev/shuttle-bracket/internal/config"
	"github.com/AdamBeresnev/shuttle-bracket/internal/db"
	"github.com/AdamBeresnev/shuttle-bracket/internal/middleware"
	"github.com/AdamBeresnev/shuttle-bracket/internal/service"
	"github.com/AdamBeresnev/shuttle-bracket/internal/store"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(); err != nil {
		slog.Error("Server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sessionManager := scs.New()
	sessionManager.Lifetime = 24 * time.Hour
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode

	repo, closeRepo, err := openRepository(ctx, cfg, sessionManager)
	if err != nil {
		return err
	}
	defer closeRepo()

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Cleanup(ctx, time.Minute, 10*time.Minute)

	if cfg.AdminToken == "" {
		slog.Warn("ADMIN_TOKEN is not set, admin login is disabled")
	}

	app := &application{
		sessions:    sessionManager,
		limiter:     limiter,
		adminToken:  cfg.AdminToken,
		tournaments: service.NewTournamentService(repo),
		teams:       service.NewTeamService(repo),
		matches:     service.NewMatchService(repo),
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           newRouter(app),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server starting", "addr", srv.Addr, "driver", cfg.DBDriver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// openRepository connects the configured backend. SQLite also keeps the
// sessions; other backends leave scs on its in-memory store.
func openRepository(ctx context.Context, cfg *config.Config, sessionManager *scs.SessionManager) (store.Repository, func(), error) {
	if cfg.DBDriver == config.DriverMongo {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()

		s, err := store.NewMongoStore(connectCtx, cfg.DatabaseURL, cfg.MongoDatabase)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to mongo: %w", err)
		}
		return s, func() { _ = s.Close(context.Background()) }, nil
	}

	database, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := db.RunMigrations(database, cfg.MigrationsPath); err != nil {
		database.Close()
		return nil, nil, err
	}

	closeFn := func() { database.Close() }
	if cfg.DBDriver == config.DriverSQLite {
		if err := db.CreateSessionTable(database); err != nil {
			database.Close()
			return nil, nil, fmt.Errorf("failed to create session table: %w", err)
		}
		sessions := sqlite3store.New(database.DB)
		sessionManager.Store = sessions
		closeFn = func() {
			sessions.StopCleanup()
			database.Close()
		}
	}

	return store.NewTournamentStore(database), closeFn, nil
}
