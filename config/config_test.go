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

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("", filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.App.Addr)
	assert.False(t, cfg.App.Debug)
	assert.Equal(t, "X-User-ID", cfg.Auth.UserHeader)
	assert.False(t, cfg.Auth.OIDC())
	assert.Equal(t, "sqlite", cfg.Database.ConnectionConfig.Type)
	assert.True(t, cfg.Database.MigrateConfig.EnableMigrateOnStartup)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "crudkit.yaml", `
app:
  debug: true
  addr: 127.0.0.1:9000
auth:
  issuer: https://issuer.example.com
  client_id: crudkit
  required: true
database:
  connection:
    type: postgres
    host: db
    port: 5432
    dbname: notes
    slow_query_time: 500ms
  migrate:
    enable_migrate_on_startup: false
`)
	cfg, err := Load(path, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.True(t, cfg.App.Debug)
	assert.Equal(t, "127.0.0.1:9000", cfg.App.Addr)
	assert.Equal(t, "info", cfg.App.LogLevel, "unset keys keep their defaults")
	assert.True(t, cfg.Auth.OIDC())
	assert.True(t, cfg.Auth.Required)

	conn := cfg.Database.ConnectionConfig
	assert.Equal(t, "postgres", conn.Type)
	assert.Equal(t, "db", conn.Host)
	assert.Equal(t, 5432, conn.Port)
	assert.Equal(t, 500*time.Millisecond, conn.SlowQueryTime)
	assert.Equal(t, 100, conn.MaxOpenConns)
	assert.False(t, cfg.Database.MigrateConfig.EnableMigrateOnStartup)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeFile(t, "crudkit.yaml", "app:\n  addr: :7000\n  log_level: warn\n")
	env := writeFile(t, "test.env", "HTTP_ADDR=:7100\nOIDC_ISSUER=https://accounts.example.com\n")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("APP_DEBUG", "1")
	t.Setenv("HTTP_ADDR", "")
	t.Setenv("OIDC_ISSUER", "")
	require.NoError(t, os.Unsetenv("HTTP_ADDR"))
	require.NoError(t, os.Unsetenv("OIDC_ISSUER"))

	cfg, err := Load(path, env)
	require.NoError(t, err)
	assert.Equal(t, ":7100", cfg.App.Addr)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.True(t, cfg.App.Debug)
	assert.Equal(t, "https://accounts.example.com", cfg.Auth.Issuer)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)

	bad := writeFile(t, "bad.yaml", "app: [1, 2")
	_, err = Load(bad, filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "failed to parse config file")

	t.Setenv("APP_DEBUG", "sometimes")
	_, err = Load("", filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "APP_DEBUG")
}
