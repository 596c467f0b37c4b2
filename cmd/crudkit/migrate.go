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
	"github.com/spf13/cobra"
	"github.com/tomoncle/crudkit/database"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create missing tables of the registered models",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := database.NewNamedLogger("MIGRATE")
			database.InitLogger(logger)
			if _, err := database.InitDatabaseWithOptions(cmd.Context(), &cfg.Database, true); err != nil {
				return err
			}
			defer func() {
				if err := database.CloseDB(); err != nil {
					logger.Warn("Failed to close database", "error", err)
				}
			}()
			logger.Info("Tables ready", "models", len(database.GetRegisteredModels()))
			return nil
		},
	}
}
