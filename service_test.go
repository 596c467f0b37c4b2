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

package crudkit

import (
	"context"
	"database/sql"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/crudkit/database"
	"github.com/tomoncle/crudkit/repository"
	"github.com/tomoncle/crudkit/types"
	"github.com/tomoncle/crudkit/validation"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type Widget struct {
	bun.BaseModel `bun:"table:widgets,alias:w"`

	ID     int64  `bun:"id,pk,autoincrement" json:"id"`
	Name   string `bun:"name,notnull" json:"name"`
	Status string `bun:"status,nullzero,notnull,default:'active'" json:"status"`
}

type WidgetHistory struct {
	bun.BaseModel `bun:"table:widget_history,alias:wh"`

	ID      int64  `bun:"id,pk,autoincrement"`
	EntryID int64  `bun:"entry_id,notnull"`
	Action  string `bun:"action,notnull"`
	Name    string `bun:"name"`
}

func snapshot(w *Widget, action types.Action) *WidgetHistory {
	return &WidgetHistory{EntryID: w.ID, Action: action.Name(), Name: w.Name}
}

func openDB(t *testing.T) *bun.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	sqldb, err := sql.Open(sqliteshim.ShimName, "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	for _, model := range []any{(*Widget)(nil), (*WidgetHistory)(nil)} {
		_, err := db.NewCreateTable().Model(model).IfNotExists().Exec(context.Background())
		require.NoError(t, err)
	}
	return db
}

func widgetRules() *RuleValidator[Widget] {
	return &RuleValidator[Widget]{
		Rules:       map[string]string{"name": "required,max=20"},
		InsertRules: map[string]string{"name": "required"},
	}
}

func TestWidgetLifecycle(t *testing.T) {
	db := openDB(t)
	repo := NewRepositoryWithDB(db, widgetRules(),
		repository.WithHistory(repository.NewHistory(snapshot)),
		repository.WithFillable[Widget]("name", "status"),
		repository.WithLogger[Widget](database.NopLogger{}),
	)
	ctx := context.Background()

	res, err := repo.Create(ctx, repository.Payload{"name": "Widget"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.Equal(t, "Record successfully created", res.Message)
	assert.Equal(t, int64(1), res.Payload.(*Widget).ID)
	assert.Equal(t, "Widget", res.Payload.(*Widget).Name)

	res, err = repo.Update(ctx, repository.Payload{"name": "Widget2"}, 1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, res.StatusCode)
	assert.Equal(t, "Widget2", res.Payload.(*Widget).Name)

	var history []WidgetHistory
	require.NoError(t, db.NewSelect().Model(&history).Scan(ctx))
	require.Len(t, history, 1)
	assert.Equal(t, WidgetHistory{ID: 1, EntryID: 1, Action: "UPDATE", Name: "Widget"}, history[0])

	res, err = repo.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, res.StatusCode)
	assert.Equal(t, "Record successfully deleted", res.Message)

	res, err = repo.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
	assert.Equal(t, "Record not found", res.Message)

	n, err := db.NewSelect().Model((*WidgetHistory)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "one UPDATE and one DELETE entry")
}

func TestValidationRunsBeforeAnyWrite(t *testing.T) {
	db := openDB(t)
	repo := NewRepositoryWithDB(db, widgetRules(), repository.WithLogger[Widget](database.NopLogger{}))
	ctx := context.Background()

	res, err := repo.Create(ctx, repository.Payload{"status": "draft"})
	assert.Nil(t, res)
	ve, ok := validation.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"name"}, ve.Fields())

	_, err = repo.Create(ctx, repository.Payload{"name": "ok"})
	require.NoError(t, err)

	// partial update without name is fine, an oversized name is not
	res, err = repo.Update(ctx, repository.Payload{"status": "draft"}, 1)
	require.NoError(t, err)
	assert.Equal(t, "draft", res.Payload.(*Widget).Status)

	res, err = repo.Update(ctx, repository.Payload{"name": strings.Repeat("x", 21)}, 1)
	assert.Nil(t, res)
	_, ok = validation.AsValidationError(err)
	assert.True(t, ok)

	n, err := db.NewSelect().Model((*Widget)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestReadsThroughFacade(t *testing.T) {
	db := openDB(t)
	repo := NewRepositoryWithDB[Widget](db, nil, repository.WithLogger[Widget](database.NopLogger{}))
	ctx := context.Background()

	for _, p := range []repository.Payload{{"name": "a"}, {"name": "b", "status": "archived"}, {"name": "c"}} {
		_, err := repo.Create(ctx, p)
		require.NoError(t, err)
	}

	res, err := repo.GetByCriteria(ctx, []types.Filter{types.Where("status", "active")})
	require.NoError(t, err)
	assert.Len(t, res.Payload.([]*Widget), 2)

	res, err = repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, res.Payload.([]*Widget), 3)

	res, err = repo.GetByID(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "b", res.Payload.(*Widget).Name)

	res, err = repo.Page(ctx, types.NewDefaultPageRequest(1, 2))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Payload.(*types.Pagination[Widget]).Total)

	assert.Empty(t, repo.EagerLoad())
	assert.NotNil(t, repo.Store())
}

func TestRepositoryUsesGlobalDatabase(t *testing.T) {
	database.ResetModels()
	t.Cleanup(database.ResetModels)
	database.RegisterModels((*Widget)(nil))

	cfg := database.DefaultConfig()
	cfg.ConnectionConfig.DBName = "file:global_db?mode=memory&cache=shared"
	cfg.ConnectionConfig.HealthCheckInterval = 0
	_, err := database.InitDB(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.CloseDB() })

	repo := NewRepository[Widget](nil, repository.WithLogger[Widget](database.NopLogger{}))
	res, err := repo.Create(context.Background(), repository.Payload{"name": "global"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusCreated, res.StatusCode)
	assert.True(t, database.GetHealthStatus(context.Background()).Healthy)
}
