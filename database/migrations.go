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

	"github.com/uptrace/bun"
)

// MigrationManager bootstraps the tables of registered models. It only
// creates what is missing and never alters existing tables. Indexes and other
// per-table DDL belong in a model's bun.AfterCreateTableHook.
type MigrationManager struct {
	db     *bun.DB
	logger Logger
}

func NewMigrationManager(db *bun.DB, logger Logger) *MigrationManager {
	if logger == nil {
		logger = NopLogger{}
	}
	return &MigrationManager{db: db, logger: logger}
}

// RunMigrations creates missing tables for every registered model in
// registration priority order. Query logging is muted unless
// CRUDKIT_SQL_MIGRATION is set.
func (mm *MigrationManager) RunMigrations(ctx context.Context) error {
	if mm.db == nil {
		return fmt.Errorf("database not initialized")
	}
	if _, ok := os.LookupEnv("CRUDKIT_SQL_MIGRATION"); !ok {
		SetQuerySilent(true)
		defer SetQuerySilent(false)
	}
	if err := mm.createTables(ctx); err != nil {
		return err
	}
	mm.logger.Info("Database tables ready", "models", len(GetRegisteredModels()))
	return nil
}

// createTables runs outside a transaction: DDL commits implicitly on MySQL,
// and create-table hooks issue their statements through the query's DB.
func (mm *MigrationManager) createTables(ctx context.Context) error {
	instances := RegisteredModelInstances()
	if len(instances) == 0 {
		return nil
	}
	mm.db.RegisterModel(instances...)
	for _, model := range instances {
		if _, err := mm.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table %T: %w", model, err)
		}
		mm.logger.Debug("Table ensured", "model", fmt.Sprintf("%T", model))
	}
	return nil
}
