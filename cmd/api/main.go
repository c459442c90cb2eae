package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/crucial707/dtl-policy/internal/config"
	"github.com/crucial707/dtl-policy/internal/db"
	"github.com/crucial707/dtl-policy/internal/logging"
	_ "github.com/joho/godotenv/autoload"
	"github.com/rs/zerolog/log"
)

func main() {

	// Load configuration
	cfg := config.Load()
	logging.Setup(os.Stdout, cfg.LogFormat, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Migrate and connect to database FIRST
	if cfg.MigrateOnStart {
		if err := db.Migrate(cfg.DatabaseURL()); err != nil {
			log.Fatal().Err(err).Msg("failed to migrate database")
		}
	}
	database, err := db.Connect(ctx, cfg.DSN(), cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer database.Close()

	log.Info().Str("host", cfg.DBHost).Str("db", cfg.DBName).Msg("connected to database")

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           newRouter(database, cfg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("graceful shutdown failed")
		}
	}()

	// Start server LAST
	log.Info().Str("addr", srv.Addr).Bool("tls", cfg.TLSCertFile != "").Msg("starting server")
	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
	} else {
		err = srv.ListenAndServe()
	}
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped")
	}
	log.Info().Msg("server stopped")
}
