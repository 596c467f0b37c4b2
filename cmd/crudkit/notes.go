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
	"time"

	"github.com/tomoncle/crudkit"
	"github.com/tomoncle/crudkit/database"
	"github.com/tomoncle/crudkit/repository"
	"github.com/tomoncle/crudkit/types"
	"github.com/uptrace/bun"
)

type Note struct {
	bun.BaseModel `bun:"table:notes,alias:n"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Title     string    `bun:"title,notnull" json:"title"`
	Body      string    `bun:"body" json:"body"`
	Status    string    `bun:"status,nullzero,notnull,default:'draft'" json:"status"`
	CreatedBy string    `bun:"created_by,nullzero" json:"created_by,omitempty"`
	CreatedAt time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updated_at"`
}

func (n *Note) SetCreatedBy(principal string) { n.CreatedBy = principal }

type NoteHistory struct {
	bun.BaseModel `bun:"table:note_history,alias:nh"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	NoteID     int64     `bun:"note_id,notnull" json:"note_id"`
	Action     string    `bun:"action,notnull" json:"action"`
	Title      string    `bun:"title" json:"title"`
	Body       string    `bun:"body" json:"body"`
	Status     string    `bun:"status" json:"status"`
	RecordedAt time.Time `bun:"recorded_at,notnull" json:"recorded_at"`
}

func init() {
	database.RegisterModels((*Note)(nil), (*NoteHistory)(nil))
}

var noteRules = &crudkit.RuleValidator[Note]{
	Rules: map[string]string{
		"title":  "required,max=120",
		"body":   "max=10000",
		"status": "oneof=draft published archived",
	},
	InsertRules: map[string]string{"title": "required"},
}

func noteSnapshot(n *Note, action types.Action) *NoteHistory {
	return &NoteHistory{
		NoteID:     n.ID,
		Action:     action.Name(),
		Title:      n.Title,
		Body:       n.Body,
		Status:     n.Status,
		RecordedAt: time.Now().UTC(),
	}
}

func touch(_ context.Context, _ bun.IDB, n *Note, exists bool) error {
	if exists {
		n.UpdatedAt = time.Now().UTC()
	}
	return nil
}

// newNoteRepository binds to db, or to the process-wide database when db is
// nil.
func newNoteRepository(db *bun.DB, debug bool, logger database.Logger) *crudkit.Repository[Note] {
	return crudkit.NewRepositoryWithDB(db, noteRules,
		repository.WithFillable[Note]("title", "body", "status"),
		repository.WithHooks[Note](repository.HookFuncs[Note]{OnBeforeSave: touch}),
		repository.WithHistory(repository.NewHistory(noteSnapshot)),
		repository.WithLogger[Note](logger),
		repository.WithDebug[Note](debug),
	)
}

var _ bun.AfterCreateTableHook = (*Note)(nil)

// AfterCreateTable indexes notes by owner once the table exists.
func (*Note) AfterCreateTable(ctx context.Context, query *bun.CreateTableQuery) error {
	_, err := query.DB().NewCreateIndex().
		Model((*Note)(nil)).
		Index("idx_notes_created_by").
		IfNotExists().
		Column("created_by").
		Exec(ctx)
	return err
}
