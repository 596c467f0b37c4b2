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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type testNote struct {
	bun.BaseModel `bun:"table:test_notes"`

	ID    int64  `bun:"id,pk,autoincrement"`
	Title string `bun:"title,notnull,unique"`
}

func memoryConfig(name string) *ConnectionConfig {
	cfg := DefaultConnectionConfig()
	cfg.DBName = "file:" + name + "?mode=memory&cache=shared"
	cfg.HealthCheckInterval = 0
	return cfg
}

func TestBuildDSN(t *testing.T) {
	cfg := &ConnectionConfig{Type: "postgres", Host: "db", Port: 5432, Username: "u", Password: "p", DBName: "app", ConnectTimeout: 3 * time.Second}
	driver, dsn, dialect, err := buildDSN(cfg)
	require.NoError(t, err)
	assert.Equal(t, "postgres", driver)
	assert.Equal(t, "postgres://u:p@db:5432/app?sslmode=disable&connect_timeout=3", dsn)
	assert.NotNil(t, dialect)

	cfg.Type = "mysql"
	driver, dsn, _, err = buildDSN(cfg)
	require.NoError(t, err)
	assert.Equal(t, "mysql", driver)
	assert.Contains(t, dsn, "u:p@tcp(db:5432)/app?charset=utf8mb4&parseTime=True")

	cfg.Type = "oracle"
	_, _, _, err = buildDSN(cfg)
	assert.Error(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, "crudkit.db", sqliteDSN(""))
	assert.Equal(t, "notes.db", sqliteDSN("notes"))
	assert.Equal(t, "notes.sqlite", sqliteDSN("notes.sqlite"))
	assert.Equal(t, ":memory:", sqliteDSN(":memory:"))
	assert.Equal(t, "file:x?mode=memory", sqliteDSN("file:x?mode=memory"))
	assert.True(t, isSQLiteMemory("file:x?mode=memory&cache=shared"))
	assert.False(t, isSQLiteMemory("notes"))
}

func TestManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	dm := NewDatabaseManager(memoryConfig(t.Name()))
	require.NoError(t, dm.Connect(ctx))
	defer dm.Disconnect()

	require.NoError(t, dm.Ping(ctx))
	status := dm.HealthCheck(ctx)
	assert.True(t, status.Healthy)
	assert.True(t, status.Connected)
	assert.Equal(t, 1, dm.GetStats().MaxOpenConns)

	require.NoError(t, dm.Disconnect())
	assert.Error(t, dm.Ping(ctx))
	assert.False(t, dm.HealthCheck(ctx).Healthy)
}

func TestRunMigrationsCreatesRegisteredTables(t *testing.T) {
	ResetModels()
	defer ResetModels()
	RegisterModels((*testNote)(nil))

	ctx := context.Background()
	dm := NewDatabaseManager(memoryConfig(t.Name()))
	require.NoError(t, dm.Connect(ctx))
	defer dm.Disconnect()

	require.NoError(t, dm.RunMigrations(ctx))
	require.NoError(t, dm.RunMigrations(ctx), "table bootstrap is idempotent")

	db := dm.GetDB()
	_, err := db.NewInsert().Model(&testNote{Title: "a"}).Exec(ctx)
	require.NoError(t, err)

	_, err = db.NewInsert().Model(&testNote{Title: "a"}).Exec(ctx)
	require.Error(t, err)
	is, kind := IsSqlError(err)
	assert.True(t, is)
	assert.Equal(t, DuplicateKeyErr, kind)
}

type testIndexed struct {
	bun.BaseModel `bun:"table:test_indexed"`

	ID    int64  `bun:"id,pk,autoincrement"`
	Owner string `bun:"owner"`
}

var indexHookCalls int

var _ bun.AfterCreateTableHook = (*testIndexed)(nil)

func (*testIndexed) AfterCreateTable(ctx context.Context, query *bun.CreateTableQuery) error {
	indexHookCalls++
	_, err := query.DB().NewCreateIndex().
		Model((*testIndexed)(nil)).
		Index("idx_test_indexed_owner").
		IfNotExists().
		Column("owner").
		Exec(ctx)
	return err
}

func TestBootstrapRunsCreateTableHooks(t *testing.T) {
	ResetModels()
	defer ResetModels()
	RegisterModels((*testIndexed)(nil))
	indexHookCalls = 0

	ctx := context.Background()
	dm := NewDatabaseManager(memoryConfig(t.Name()))
	require.NoError(t, dm.Connect(ctx))
	defer dm.Disconnect()

	require.NoError(t, dm.RunMigrations(ctx))
	require.NoError(t, dm.RunMigrations(ctx))
	assert.Equal(t, 2, indexHookCalls)

	n, err := dm.GetDB().NewSelect().
		TableExpr("sqlite_master").
		Where("type = ? AND name = ?", "index", "idx_test_indexed_owner").
		Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	tables, err := dm.GetDB().NewSelect().
		TableExpr("sqlite_master").
		Where("type = ? AND name = ?", "table", "crudkit_migrations").
		Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, tables, "no migration ledger is kept")
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("DB_HOST", "envhost")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("DB_CONN_MAX_LIFETIME", "90")
	t.Setenv("DB_SLOW_QUERY_TIME", "250ms")
	t.Setenv("DB_ENABLE_QUERY_LOG", "true")
	t.Setenv("DB_MAX_OPEN_CONNS", "not-a-number")

	cfg := DefaultConnectionConfig()
	ApplyEnvOverrides(cfg)
	assert.Equal(t, "envhost", cfg.Host)
	assert.Equal(t, 6543, cfg.Port)
	assert.Equal(t, 90*time.Second, cfg.ConnMaxLifetime)
	assert.Equal(t, 250*time.Millisecond, cfg.SlowQueryTime)
	assert.True(t, cfg.EnableQueryLog)
	assert.Equal(t, 100, cfg.MaxOpenConns)
}

func TestFactoryRejectsUnknownType(t *testing.T) {
	_, err := NewDatabaseFactory().CreateFromConfig(&ConnectionConfig{Type: "oracle"})
	assert.Error(t, err)
}

func TestModelRegistryOrder(t *testing.T) {
	r := newModelRegistry()
	r.Register(NewModelAdapter("b", 2))
	r.Register(NewModelAdapter("a", 1))
	r.Register(NewModelAdapter("c", 2))
	models := r.Models()
	require.Len(t, models, 3)
	assert.Equal(t, "a", models[0].Instance())
	assert.Equal(t, "b", models[1].Instance())
	assert.Equal(t, "c", models[2].Instance())
}

func TestProcessWideDatabase(t *testing.T) {
	ResetModels()
	defer ResetModels()
	RegisterModels((*testNote)(nil))

	assert.Equal(t, &DBStats{}, GetDatabaseStats())
	assert.False(t, GetHealthStatus(context.Background()).Healthy)

	cfg := &Config{ConnectionConfig: *memoryConfig(t.Name()), MigrateConfig: MigrateConfig{EnableMigrateOnStartup: true}}
	db, err := InitDB(context.Background(), cfg)
	require.NoError(t, err)
	assert.Same(t, db, GetDB())

	assert.Equal(t, 1, GetDatabaseStats().MaxOpenConns)
	assert.True(t, GetHealthStatus(context.Background()).Healthy)
	_, err = db.NewInsert().Model(&testNote{Title: "global"}).Exec(context.Background())
	require.NoError(t, err)

	require.NoError(t, CloseDB())
	assert.Nil(t, GetDatabaseManager())
	assert.Equal(t, &DBStats{}, GetDatabaseStats())
}

func TestInitLoggerKeepsFirstLogger(t *testing.T) {
	first := GetLogger()
	InitLogger(nil)
	InitLogger(NopLogger{})
	assert.Same(t, first, GetLogger())
}
