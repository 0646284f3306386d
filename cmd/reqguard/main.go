// Copyright 2025 The reqguard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command reqguard serves the storefront API behind the request guard and
// offers helpers to inspect its configuration.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/storefront/reqguard/config"
	"github.com/storefront/reqguard/guard"
	"github.com/storefront/reqguard/guard/plugins/originguard"
	"github.com/storefront/reqguard/guard/plugins/secheaders"
	"github.com/storefront/reqguard/logging"
	"github.com/storefront/reqguard/metrics"
	"github.com/storefront/reqguard/storefront"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "reqguard",
		Short:         "Request-boundary security layer for the storefront API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP("config", "c", "", "Path to configuration file (YAML)")
	root.AddCommand(newServeCmd(), newHeadersCmd(), newTokenCmd())
	return root
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	return config.Load(path)
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the storefront API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
				cfg.Server.Addr = addr
			}
			logging.Setup(cfg.Logging)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, &log.Logger)
		},
	}
	cmd.Flags().String("addr", "", "Listen address, overrides the configuration")
	return cmd
}

// buildHandler returns the public handler: the guarded API instrumented
// with OpenTelemetry and request metrics.
func buildHandler(cfg *config.Config, logger *zerolog.Logger, m *metrics.Metrics) (http.Handler, error) {
	api, err := storefront.New(cfg, storefront.Deps{Logger: logger, Metrics: m})
	if err != nil {
		return nil, err
	}
	return otelhttp.NewHandler(m.Middleware(api), "reqguard.api"), nil
}

// adminHandler serves /metrics for the admin listener.
func adminHandler(m *metrics.Metrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return mux
}

func serve(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) error {
	m := metrics.New()
	handler, err := buildHandler(cfg, logger, m)
	if err != nil {
		return err
	}
	servers := []*http.Server{
		{Addr: cfg.Server.Addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second},
		{Addr: cfg.Server.MetricsAddr, Handler: adminHandler(m), ReadHeaderTimeout: 10 * time.Second},
	}

	errCh := make(chan error, len(servers))
	logger.Info().Str("addr", cfg.Server.Addr).Str("metrics_addr", cfg.Server.MetricsAddr).Str("mode", cfg.Mode.String()).Msg("starting reqguard")
	for _, srv := range servers {
		go func() {
			errCh <- srv.ListenAndServe()
		}()
	}

	var runErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = err
		}
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	var errs []error
	for _, srv := range servers {
		errs = append(errs, srv.Shutdown(shutdownCtx))
	}
	if runErr != nil {
		return runErr
	}
	return errors.Join(errs...)
}

func newHeadersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "headers",
		Short: "Print the security headers for a mode",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			opts := cfg.HeaderOptions()
			if s, _ := cmd.Flags().GetString("mode"); s != "" {
				if opts.Mode, err = guard.ParseMode(s); err != nil {
					return err
				}
			}
			return writeHeaders(cmd.OutOrStdout(), secheaders.Headers(opts))
		},
	}
	cmd.Flags().String("mode", "", "production or development, overrides the configuration")
	return cmd
}

func writeHeaders(w io.Writer, set secheaders.HeaderSet) error {
	for _, name := range set.Names() {
		if _, err := fmt.Fprintf(w, "%s: %s\n", name, set[name]); err != nil {
			return err
		}
	}
	return nil
}

func newTokenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "token",
		Short: "Print a fresh CSRF token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), originguard.GenerateToken())
			return err
		},
	}
}
