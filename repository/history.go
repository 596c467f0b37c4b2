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

	"github.com/tomoncle/crudkit/types"
	"github.com/uptrace/bun"
)

// History writes an audit entry for a record about to change. Entries are
// written in the mutation's transaction and never read back here.
type History[T any] interface {
	Record(ctx context.Context, db bun.IDB, record *T, action types.Action) error
}

// SnapshotFunc copies the state of record into a history model H. Returning
// nil skips the entry.
type SnapshotFunc[T any, H any] func(record *T, action types.Action) *H

type snapshotHistory[T any, H any] struct {
	snapshot SnapshotFunc[T, H]
}

// NewHistory inserts whatever snapshot builds for each change.
func NewHistory[T any, H any](snapshot SnapshotFunc[T, H]) History[T] {
	return &snapshotHistory[T, H]{snapshot: snapshot}
}

func (h *snapshotHistory[T, H]) Record(ctx context.Context, db bun.IDB, record *T, action types.Action) error {
	entry := h.snapshot(record, action)
	if entry == nil {
		return nil
	}
	_, err := db.NewInsert().Model(entry).Exec(ctx)
	return err
}
