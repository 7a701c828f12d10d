package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"

	"rank-tracker/internal/cache"
	"rank-tracker/internal/config"
	"rank-tracker/internal/constants"
	fxmodules "rank-tracker/internal/fx"
	"rank-tracker/internal/server"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	srv *server.Server,
	statsCache cache.Cache,
	janitor *cache.Janitor,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:      srv.Handler(),
		ReadTimeout:  constants.RequestTimeout,
		WriteTimeout: constants.RequestTimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			janitor.Start()
			go func() {
				logger.Info().Str("addr", httpServer.Addr).Msg("server starting")
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}

			if err := janitor.Stop(); err != nil {
				logger.Warn().Err(err).Msg("error stopping cache janitor")
			}

			if closer, ok := statsCache.(io.Closer); ok {
				if err := closer.Close(); err != nil {
					logger.Warn().Err(err).Msg("error closing stats cache")
				}
			}

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}

			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}
