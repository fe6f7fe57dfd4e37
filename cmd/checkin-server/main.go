// Command checkin-server runs the QR check-in HTTP service.
//
// @title                     Check-in Service API
// @version                   1.0
// @description               QR check-in ingestion: classifies scans against the 08:20 cutoff, stores immutable records and serves them back.
// @license.name              MIT
// @BasePath                  /api/v1
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-checkin-backend/internal/checkin"
	"github.com/tbourn/go-checkin-backend/internal/clock"
	"github.com/tbourn/go-checkin-backend/internal/config"
	httpapi "github.com/tbourn/go-checkin-backend/internal/http"
	"github.com/tbourn/go-checkin-backend/internal/observability"
	"github.com/tbourn/go-checkin-backend/internal/registry"
	"github.com/tbourn/go-checkin-backend/internal/repo"
	"github.com/tbourn/go-checkin-backend/internal/services"
	"github.com/tbourn/go-checkin-backend/internal/sysutil"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 15 * time.Second

func main() {
	// .env is optional; real environment wins
	_ = godotenv.Load()

	cfg := config.MustLoad()
	sysutil.SetupLogger(os.Stdout, cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cfg config.Config) error {
	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	reg := registry.Default()
	if cfg.RegistryFile != "" {
		if reg, err = registry.LoadFile(cfg.RegistryFile); err != nil {
			return err
		}
	}
	loc, err := clock.LoadZone(cfg.TimeZone)
	if err != nil {
		return err
	}

	store, err := repo.Open(ctx, cfg.Store)
	if err != nil {
		return err
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Warn().Err(err).Msg("store close")
		}
	}()

	svc := services.NewCheckinService(store, checkin.NewBuilder(reg, loc), clock.NewZoned(loc))

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, svc, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("store", cfg.Store.Backend).
			Str("tz", loc.String()).
			Int("codes", reg.Len()).
			Str("version", version).
			Msg("listening")
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

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
