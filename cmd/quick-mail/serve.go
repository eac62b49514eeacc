package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sungwon/quick-mail/internal/api"
	"github.com/sungwon/quick-mail/internal/mailutil"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the validation API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := getRuntime(cmd)
			if err != nil {
				return err
			}
			cfg, log := rt.cfg, rt.log

			validator, err := rt.newValidator()
			if err != nil {
				return err
			}

			if cfg.API.KeyHash == "" {
				log.Warn().Msg("api.key_hash is not set; the API is unauthenticated")
			}

			router := api.NewRouter(api.Deps{
				Validator:      validator,
				Site:           cfg.SiteInfo(),
				User:           cfg.CurrentUser(),
				Provider:       cfg.ProviderSettings(),
				ProviderPlugin: cfg.Provider.Plugin,
				DefaultOption:  mailutil.ParseValidateOption(cfg.Validation.Option),
				MinChars:       cfg.Validation.MinChars,
				MaxChars:       cfg.Validation.MaxChars,
			}, cfg.API.KeyHash, log)

			addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
			srv := &http.Server{
				Addr:         addr,
				Handler:      router,
				ReadTimeout:  cfg.API.ReadTimeout,
				WriteTimeout: cfg.API.WriteTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", addr).Msg("API server listening")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			select {
			case err := <-errCh:
				return fmt.Errorf("server error: %w", err)
			case <-ctx.Done():
			}
			log.Info().Msg("shutting down server")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("server forced to shutdown")
			}

			log.Info().Msg("server stopped")
			return nil
		},
	}
}
