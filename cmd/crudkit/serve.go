/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
	"github.com/tomoncle/crudkit/api"
	"github.com/tomoncle/crudkit/auth"
	"github.com/tomoncle/crudkit/config"
	"github.com/tomoncle/crudkit/database"
	"github.com/uptrace/bun"
)

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the notes API over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.App.Addr = addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides HTTP_ADDR")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config) error {
	logger := database.NewNamedLogger("CRUDKIT")
	database.InitLogger(logger)
	if _, err := database.InitDB(ctx, &cfg.Database); err != nil {
		return err
	}
	defer func() {
		if err := database.CloseDB(); err != nil {
			logger.Warn("Failed to close database", "error", err)
		}
	}()

	handler, err := newRouter(ctx, cfg, nil, logger)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              cfg.App.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", "addr", cfg.App.Addr, "debug", cfg.App.Debug)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newRouter builds the HTTP surface. A nil db uses the process-wide
// database.
func newRouter(ctx context.Context, cfg *config.Config, db *bun.DB, logger database.Logger) (chi.Router, error) {
	var authn func(http.Handler) http.Handler
	if cfg.Auth.OIDC() {
		verifier, err := auth.NewOIDCVerifier(ctx, cfg.Auth.Issuer, cfg.Auth.ClientID)
		if err != nil {
			return nil, err
		}
		authn = auth.Bearer(verifier, cfg.Auth.Required)
	} else {
		authn = auth.Header(cfg.Auth.UserHeader)
	}

	var (
		health api.HealthChecker
		stats  api.StatsReporter
	)
	if db != nil {
		stats = func() *database.DBStats { return database.StatsOf(db.DB) }
		health = func(ctx context.Context) *database.HealthStatus {
			start := time.Now()
			status := &database.HealthStatus{LastCheckTime: start}
			if err := db.PingContext(ctx); err != nil {
				status.LastError = err.Error()
				return status
			}
			status.Healthy, status.Connected = true, true
			status.ResponseTime = time.Since(start)
			return status
		}
	}

	r := api.NewRouter(health, stats, authn)
	notes := api.NewResource(newNoteRepository(db, cfg.App.Debug, logger), logger)
	r.Route("/notes", notes.RegisterRoutes)
	return r, nil
}
