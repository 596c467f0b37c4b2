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
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tomoncle/crudkit/database"
	"github.com/tomoncle/crudkit/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type Category struct {
	bun.BaseModel `bun:"table:categories,alias:c"`

	ID   int64  `bun:"id,pk,autoincrement" json:"id"`
	Name string `bun:"name,notnull,unique" json:"name"`
}

type Widget struct {
	bun.BaseModel `bun:"table:widgets,alias:w"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	Name       string    `bun:"name,notnull" json:"name"`
	Status     string    `bun:"status,nullzero,notnull,default:'active'" json:"status"`
	Price      float64   `bun:"price" json:"price"`
	CategoryID int64     `bun:"category_id,nullzero" json:"category_id,omitempty"`
	Category   *Category `bun:"rel:belongs-to,join:category_id=id" json:"category,omitempty"`
	CreatedBy  string    `bun:"created_by,nullzero" json:"created_by,omitempty"`
}

func (w *Widget) SetCreatedBy(principal string) { w.CreatedBy = principal }

type WidgetHistory struct {
	bun.BaseModel `bun:"table:widget_history,alias:wh"`

	ID      int64  `bun:"id,pk,autoincrement"`
	EntryID int64  `bun:"entry_id,notnull"`
	Action  string `bun:"action,notnull"`
	Name    string `bun:"name"`
	Status  string `bun:"status"`
}

func widgetSnapshot(w *Widget, action types.Action) *WidgetHistory {
	return &WidgetHistory{EntryID: w.ID, Action: action.Name(), Name: w.Name, Status: w.Status}
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	sqldb, err := sql.Open(sqliteshim.ShimName, "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	for _, model := range []any{(*Category)(nil), (*Widget)(nil), (*WidgetHistory)(nil)} {
		_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx)
		require.NoError(t, err)
	}
	return db
}

func quietOptions[T any](opts ...Option[T]) *Options[T] {
	return NewOptions(append([]Option[T]{WithLogger[T](database.NopLogger{})}, opts...)...)
}

func count[M any](t *testing.T, db *bun.DB) int {
	t.Helper()
	n, err := db.NewSelect().Model((*M)(nil)).Count(context.Background())
	require.NoError(t, err)
	return n
}

func historyOf(t *testing.T, db *bun.DB) []WidgetHistory {
	t.Helper()
	var rows []WidgetHistory
	require.NoError(t, db.NewSelect().Model(&rows).Order("id ASC").Scan(context.Background()))
	return rows
}
