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
	"fmt"
	"os"
	"slices"
	"strconv"
	"time"

	"github.com/uptrace/bun"
)

var supportedTypes = []string{"mysql", "postgres", "postgresql", "sqlite", "sqlite3"}

// BaseDatabaseFactory builds a manager from configuration and drives its
// startup sequence.
type BaseDatabaseFactory struct {
	manager AbstractDatabaseManager
	logger  Logger
}

func NewDatabaseFactory() *BaseDatabaseFactory {
	return &BaseDatabaseFactory{
		logger: GetLogger(),
	}
}

// CreateFromConfig validates the driver type, applies DB_* environment
// overrides and creates the manager.
func (f *BaseDatabaseFactory) CreateFromConfig(cfg *ConnectionConfig) (AbstractDatabaseManager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database configuration cannot be empty")
	}
	if !slices.Contains(supportedTypes, cfg.Type) {
		return nil, fmt.Errorf("unsupported database type: %s, supported types: %v", cfg.Type, supportedTypes)
	}

	ApplyEnvOverrides(cfg)

	manager := NewDatabaseManager(cfg)
	manager.SetLogger(f.logger)
	f.manager = manager
	return manager, nil
}

type envOverride struct {
	key   string
	apply func(cfg *ConnectionConfig, value string) error
}

func stringEnv(set func(*ConnectionConfig, string)) func(*ConnectionConfig, string) error {
	return func(cfg *ConnectionConfig, v string) error {
		set(cfg, v)
		return nil
	}
}

func intEnv(set func(*ConnectionConfig, int)) func(*ConnectionConfig, string) error {
	return func(cfg *ConnectionConfig, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		set(cfg, n)
		return nil
	}
}

// secondsEnv accepts plain seconds ("30") or a Go duration ("1m30s").
func secondsEnv(set func(*ConnectionConfig, time.Duration)) func(*ConnectionConfig, string) error {
	return func(cfg *ConnectionConfig, v string) error {
		if n, err := strconv.Atoi(v); err == nil {
			set(cfg, time.Duration(n)*time.Second)
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		set(cfg, d)
		return nil
	}
}

func boolEnv(set func(*ConnectionConfig, bool)) func(*ConnectionConfig, string) error {
	return func(cfg *ConnectionConfig, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return err
		}
		set(cfg, b)
		return nil
	}
}

var envOverrides = []envOverride{
	{"DB_TYPE", stringEnv(func(c *ConnectionConfig, v string) { c.Type = v })},
	{"DB_HOST", stringEnv(func(c *ConnectionConfig, v string) { c.Host = v })},
	{"DB_PORT", intEnv(func(c *ConnectionConfig, v int) { c.Port = v })},
	{"DB_USERNAME", stringEnv(func(c *ConnectionConfig, v string) { c.Username = v })},
	{"DB_PASSWORD", stringEnv(func(c *ConnectionConfig, v string) { c.Password = v })},
	{"DB_NAME", stringEnv(func(c *ConnectionConfig, v string) { c.DBName = v })},
	{"DB_SSLMODE", stringEnv(func(c *ConnectionConfig, v string) { c.SSLMode = v })},
	{"DB_MAX_IDLE_CONNS", intEnv(func(c *ConnectionConfig, v int) { c.MaxIdleConns = v })},
	{"DB_MAX_OPEN_CONNS", intEnv(func(c *ConnectionConfig, v int) { c.MaxOpenConns = v })},
	{"DB_CONN_MAX_LIFETIME", secondsEnv(func(c *ConnectionConfig, v time.Duration) { c.ConnMaxLifetime = v })},
	{"DB_ENABLE_RECONNECT", boolEnv(func(c *ConnectionConfig, v bool) { c.EnableReconnect = v })},
	{"DB_RECONNECT_INTERVAL", secondsEnv(func(c *ConnectionConfig, v time.Duration) { c.ReconnectInterval = v })},
	{"DB_ENABLE_QUERY_LOG", boolEnv(func(c *ConnectionConfig, v bool) { c.EnableQueryLog = v })},
	{"DB_QUERY_LOG_FORMAT", stringEnv(func(c *ConnectionConfig, v string) { c.QueryLogFormat = v })},
	{"DB_SLOW_QUERY_TIME", secondsEnv(func(c *ConnectionConfig, v time.Duration) { c.SlowQueryTime = v })},
}

// ApplyEnvOverrides overwrites cfg with any DB_* variables that are set.
// Unparseable values are logged and skipped.
func ApplyEnvOverrides(cfg *ConnectionConfig) {
	for _, o := range envOverrides {
		v, ok := os.LookupEnv(o.key)
		if !ok || v == "" {
			continue
		}
		if err := o.apply(cfg, v); err != nil {
			GetLogger().Warn("Ignoring invalid environment override", "key", o.key, "error", err)
		}
	}
}

// InitializeDatabase connects and optionally runs migrations.
func (f *BaseDatabaseFactory) InitializeDatabase(ctx context.Context, runMigrations bool) error {
	if f.manager == nil {
		return fmt.Errorf("database manager not created")
	}
	if err := f.manager.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if runMigrations {
		if err := f.manager.RunMigrations(ctx); err != nil {
			return fmt.Errorf("failed to run database migrations: %w", err)
		}
	}
	f.logger.Info("Database initialization completed!")
	return nil
}

func (f *BaseDatabaseFactory) GetManager() AbstractDatabaseManager {
	return f.manager
}

func (f *BaseDatabaseFactory) GetDB() *bun.DB {
	if f.manager == nil {
		return nil
	}
	return f.manager.GetDB()
}

func (f *BaseDatabaseFactory) SetLogger(logger Logger) {
	f.logger = logger
	if f.manager != nil {
		f.manager.SetLogger(logger)
	}
}

func (f *BaseDatabaseFactory) Close() error {
	if f.manager == nil {
		return nil
	}
	return f.manager.Disconnect()
}

func (f *BaseDatabaseFactory) GetHealthStatus(ctx context.Context) *HealthStatus {
	if f.manager == nil {
		return &HealthStatus{
			LastError:     "Database manager not initialized",
			LastCheckTime: time.Now(),
		}
	}
	return f.manager.HealthCheck(ctx)
}

func (f *BaseDatabaseFactory) GetStats() *DBStats {
	if f.manager == nil {
		return &DBStats{}
	}
	return f.manager.GetStats()
}
