package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/Rorical/indexschema/internal/logging"
	"github.com/Rorical/indexschema/internal/opensearch"
	"github.com/Rorical/indexschema/internal/registry"
	"github.com/Rorical/indexschema/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve /v1/translate and /v1/validate. When catalogs are configured the
engine is contacted at startup and /v1/indexes/{index}/check reconciles live
indexes; catalog files are reloaded when they change.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			logger := logging.FromContext(ctx)
			if addr == "" {
				addr = a.cfg.Service.HTTPAddr
			}

			shutdownOTel, err := logging.InitOTel(ctx, logging.OTelConfig{Insecure: true})
			if err != nil {
				return err
			}
			defer func() { _ = shutdownOTel(context.Background()) }()

			api := &server.API{Logger: a.logger}
			if len(a.cfg.Schema.Catalogs) > 0 {
				reg, err := registry.Load(a.cfg.Schema.Catalogs)
				if err != nil {
					return err
				}
				mode, err := opensearch.ParseMode(a.cfg.Schema.UpdateMode)
				if err != nil {
					return err
				}
				l, err := a.connect(ctx, mode)
				if err != nil {
					return err
				}
				defer l.close()
				api.Catalogs, api.Checker = reg, l.checker()

				go func() {
					if err := reg.Watch(ctx); err != nil {
						logger.Warn("catalog watcher stopped", "err", err)
					}
				}()
			}

			srv := &http.Server{
				Addr:              addr,
				Handler:           api.Handler(),
				ReadHeaderTimeout: 5 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server listening", "addr", addr, "env", a.cfg.Service.Env)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case <-ctx.Done():
			case err := <-errCh:
				if err != nil {
					return err
				}
			}

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer shutdownCancel()
			err = srv.Shutdown(shutdownCtx)
			logger.Info("server shutdown")
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default INDEXSCHEMA_HTTP_ADDR)")
	return cmd
}
