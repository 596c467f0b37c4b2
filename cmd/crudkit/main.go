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
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tomoncle/crudkit/config"
	"github.com/tomoncle/crudkit/utils"
)

var (
	configPath string
	envFiles   []string
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "crudkit",
		Short:         "CRUD service for notes backed by bun",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file")
	root.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "env files to load (default .env)")

	root.AddCommand(newServeCmd(), newMigrateCmd())
	return root
}

// loadConfig reads the configuration and applies its logging settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath, envFiles...)
	if err != nil {
		return nil, err
	}
	utils.ConfigureConsoleLogFormat(cfg.App.LogFormat)
	utils.ConfigureLogLevel(cfg.App.LogLevel)
	if cfg.App.Debug {
		utils.ConfigureLogLevel("debug")
	}
	return cfg, nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
