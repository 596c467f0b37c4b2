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

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/uptrace/bun"
)

var querySilent atomic.Bool

// SetQuerySilent mutes the query hooks, e.g. while bootstrapping tables.
func SetQuerySilent(b bool) {
	querySilent.Store(b)
}

var operationColors = map[string]*color.Color{
	"SELECT": color.New(color.FgGreen),
	"INSERT": color.New(color.FgBlue),
	"UPDATE": color.New(color.FgYellow),
	"DELETE": color.New(color.FgMagenta),
}

var (
	queryTag   = color.New(color.FgCyan)
	failureTag = color.New(color.BgRed, color.FgHiWhite)
	otherQuery = color.New(color.FgRed)
)

// QueryHook prints each statement colored by operation. The CRUDKIT_SQL
// environment variable overrides it at runtime: "0" off, "1" failures only,
// "2" everything.
type QueryHook struct {
	envName string
	enabled bool
	verbose bool
	writer  io.Writer
}

type QueryHookOption func(*QueryHook)

func WithEnabled(on bool) QueryHookOption { return func(h *QueryHook) { h.enabled = on } }

func WithVerbose(on bool) QueryHookOption { return func(h *QueryHook) { h.verbose = on } }

func WithWriter(w io.Writer) QueryHookOption { return func(h *QueryHook) { h.writer = w } }

func WithEnvName(name string) QueryHookOption { return func(h *QueryHook) { h.envName = name } }

func NewQueryHook(opts ...QueryHookOption) *QueryHook {
	h := &QueryHook{envName: "CRUDKIT_SQL", enabled: true, writer: os.Stdout}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

var _ bun.QueryHook = (*QueryHook)(nil)

func (h *QueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *QueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if querySilent.Load() {
		return
	}
	enabled, verbose := h.enabled, h.verbose
	if env, ok := os.LookupEnv(h.envName); ok {
		enabled = env != "" && env != "0"
		verbose = env == "2"
	}
	if !enabled {
		return
	}
	if !verbose {
		switch {
		case event.Err == nil, errors.Is(event.Err, sql.ErrNoRows), errors.Is(event.Err, sql.ErrTxDone):
			return
		}
	}

	now := time.Now()
	args := []interface{}{
		now.Format("2006-01-02 15:04:05.000"),
		queryTag.Sprintf("%8s", "[SQL]"),
		fmt.Sprintf("%12s", now.Sub(event.StartTime).Round(time.Microsecond)),
		" ", colorQuery(event),
	}
	if event.Err != nil {
		typ := reflect.TypeOf(event.Err).String()
		args = append(args, "\t", failureTag.Sprintf(" %s: %s ", typ, event.Err.Error()))
	}
	_, _ = fmt.Fprintln(h.writer, args...)
}

func colorQuery(event *bun.QueryEvent) string {
	if c, ok := operationColors[event.Operation()]; ok {
		return c.Sprint(event.Query)
	}
	return otherQuery.Sprint(event.Query)
}

// SlowQueryHook warns about successful statements slower than the threshold.
type SlowQueryHook struct {
	threshold time.Duration
	logger    Logger
}

func NewSlowQueryHook(threshold time.Duration, logger Logger) *SlowQueryHook {
	if logger == nil {
		logger = GetLogger()
	}
	return &SlowQueryHook{threshold: threshold, logger: logger}
}

var _ bun.QueryHook = (*SlowQueryHook)(nil)

func (h *SlowQueryHook) BeforeQuery(ctx context.Context, _ *bun.QueryEvent) context.Context {
	return ctx
}

func (h *SlowQueryHook) AfterQuery(_ context.Context, event *bun.QueryEvent) {
	if querySilent.Load() || event.Err != nil {
		return
	}
	duration := time.Since(event.StartTime)
	if duration > h.threshold {
		h.logger.Warn("Database slow query detected",
			"duration", duration,
			"slow_threshold", h.threshold,
			"query", event.Query,
		)
	}
}
