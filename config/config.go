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

// Package config loads service settings from a YAML file, a .env file and
// the process environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tomoncle/crudkit/database"
	"gopkg.in/yaml.v3"
)

type AppConfig struct {
	Debug     bool   `json:"debug" yaml:"debug"`
	Addr      string `json:"addr" yaml:"addr"`
	LogLevel  string `json:"log_level" yaml:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format"` // text, json
}

// AuthConfig selects how requests are attributed to a principal. With an
// Issuer set, bearer ID tokens are verified over OIDC; otherwise the
// UserHeader is trusted as set by a fronting proxy.
type AuthConfig struct {
	UserHeader string `json:"user_header" yaml:"user_header"`
	Issuer     string `json:"issuer" yaml:"issuer"`
	ClientID   string `json:"client_id" yaml:"client_id"`
	Required   bool   `json:"required" yaml:"required"`
}

func (a AuthConfig) OIDC() bool {
	return a.Issuer != ""
}

type Config struct {
	App      AppConfig       `json:"app" yaml:"app"`
	Auth     AuthConfig      `json:"auth" yaml:"auth"`
	Database database.Config `json:"database" yaml:"database"`
}

func Default() *Config {
	return &Config{
		App: AppConfig{
			Addr:      ":8080",
			LogLevel:  "info",
			LogFormat: "text",
		},
		Auth:     AuthConfig{UserHeader: "X-User-ID"},
		Database: *database.DefaultConfig(),
	}
}

// Load reads path (skipped when empty), then envFiles (".env" when none are
// given; missing files are ignored), then applies environment overrides.
// DB_* variables are applied by the database factory when connecting.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}
	if err := LoadEnvFiles(envFiles...); err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadEnvFiles loads .env style files into the environment without
// overriding variables that are already set.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides fields from APP_DEBUG, HTTP_ADDR, LOG_LEVEL,
// CONSOLE_LOG_FORMAT, AUTH_USER_HEADER, AUTH_REQUIRED, OIDC_ISSUER and
// OIDC_CLIENT_ID.
func (c *Config) ApplyEnv() error {
	if v, ok := lookup("APP_DEBUG"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid APP_DEBUG %q: %w", v, err)
		}
		c.App.Debug = b
	}
	if v, ok := lookup("AUTH_REQUIRED"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid AUTH_REQUIRED %q: %w", v, err)
		}
		c.Auth.Required = b
	}
	for key, dst := range map[string]*string{
		"HTTP_ADDR":          &c.App.Addr,
		"LOG_LEVEL":          &c.App.LogLevel,
		"CONSOLE_LOG_FORMAT": &c.App.LogFormat,
		"AUTH_USER_HEADER":   &c.Auth.UserHeader,
		"OIDC_ISSUER":        &c.Auth.Issuer,
		"OIDC_CLIENT_ID":     &c.Auth.ClientID,
	} {
		if v, ok := lookup(key); ok {
			*dst = v
		}
	}
	return nil
}

func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}
