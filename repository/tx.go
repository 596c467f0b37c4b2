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

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/tomoncle/crudkit/database"
	"github.com/uptrace/bun"
)

// RunInTx runs fn inside a transaction that is committed only when fn
// returns nil. Every other exit, including a panic in fn, rolls back; the
// panic then continues up the stack.
func RunInTx(ctx context.Context, db bun.IDB, logger database.Logger, fn func(ctx context.Context, tx bun.Tx) error) error {
	if logger == nil {
		logger = database.NopLogger{}
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	var committed bool
	defer func() {
		if committed {
			return
		}
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			logger.Error("Failed to rollback transaction", "error", rollbackErr)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
