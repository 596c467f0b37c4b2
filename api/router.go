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

package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tomoncle/crudkit/database"
	"github.com/tomoncle/crudkit/response"
	"github.com/tomoncle/crudkit/utils"
)

// HealthChecker reports database health; database.GetHealthStatus is one.
type HealthChecker func(ctx context.Context) *database.HealthStatus

// StatsReporter reports connection pool usage; database.GetDatabaseStats is
// one.
type StatsReporter func() *database.DBStats

type healthBody struct {
	Status   string                 `json:"status"`
	Uptime   string                 `json:"uptime"`
	Database *database.HealthStatus `json:"database"`
	Pool     *database.DBStats      `json:"pool,omitempty"`
}

// HealthHandler answers 200 while the database is healthy and 503
// otherwise. A nil stats leaves pool usage out of the body.
func HealthHandler(check HealthChecker, stats StatsReporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := check(r.Context())
		body := healthBody{Status: "ok", Uptime: utils.Uptime().Round(time.Second).String(), Database: status}
		if stats != nil {
			body.Pool = stats()
		}
		code := http.StatusOK
		if status == nil || !status.Healthy {
			body.Status = "unavailable"
			code = http.StatusServiceUnavailable
		}
		_ = response.JSON(body, code).Write(w)
	}
}

// NewRouter returns a chi router with request logging, panic recovery, the
// given authentication middlewares and GET /health. Nil check and stats
// report on the process-wide database.
func NewRouter(check HealthChecker, stats StatsReporter, authn ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	for _, mw := range authn {
		r.Use(mw)
	}
	if check == nil {
		check = database.GetHealthStatus
	}
	if stats == nil {
		stats = database.GetDatabaseStats
	}
	r.Get("/health", HealthHandler(check, stats))
	return r
}
