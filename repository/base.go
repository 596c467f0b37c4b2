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
	"reflect"

	"github.com/tomoncle/crudkit/database"
	"github.com/tomoncle/crudkit/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

type baseRepositoryImpl[T any] struct {
	db     *bun.DB
	table  *schema.Table
	logger database.Logger
}

// NewRepository returns the bun-backed record store for T. T must be a bun
// model struct with a single primary key.
func NewRepository[T any](db *bun.DB) Repository[T] {
	return &baseRepositoryImpl[T]{
		db:     db,
		table:  db.Table(reflect.TypeFor[T]()),
		logger: database.GetLogger(),
	}
}

func (r *baseRepositoryImpl[T]) DB() *bun.DB { return r.db }

func (r *baseRepositoryImpl[T]) Table() *schema.Table { return r.table }

func (r *baseRepositoryImpl[T]) NewSelect() *bun.SelectQuery { return r.db.NewSelect() }

func (r *baseRepositoryImpl[T]) NewInsert() *bun.InsertQuery { return r.db.NewInsert() }

func (r *baseRepositoryImpl[T]) NewUpdate() *bun.UpdateQuery { return r.db.NewUpdate() }

func (r *baseRepositoryImpl[T]) NewDelete() *bun.DeleteQuery { return r.db.NewDelete() }

// NewQuery selects into model with the given relations eager loaded.
func (r *baseRepositoryImpl[T]) NewQuery(db bun.IDB, model any, relations ...string) *bun.SelectQuery {
	if db == nil {
		db = r.db
	}
	query := db.NewSelect().Model(model)
	for _, rel := range relations {
		query = query.Relation(rel)
	}
	return query
}

func (r *baseRepositoryImpl[T]) pkColumn() string {
	if len(r.table.PKs) > 0 {
		return r.table.PKs[0].Name
	}
	return "id"
}

func (r *baseRepositoryImpl[T]) Find(ctx context.Context, id any, relations ...string) (*T, error) {
	return r.FindWithTx(ctx, r.db, id, relations...)
}

func (r *baseRepositoryImpl[T]) FindWithTx(ctx context.Context, db bun.IDB, id any, relations ...string) (*T, error) {
	entity := new(T)
	err := r.NewQuery(db, entity, relations...).
		Where("?TableAlias.? = ?", bun.Ident(r.pkColumn()), id).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (r *baseRepositoryImpl[T]) GetAll(ctx context.Context, relations ...string) ([]*T, error) {
	entities := make([]*T, 0)
	err := r.NewQuery(r.db, &entities, relations...).Scan(ctx)
	return entities, err
}

// List returns the records matching every filter. Filters on unknown
// columns or with unsupported operators fail with a *QueryError before any
// SQL runs.
func (r *baseRepositoryImpl[T]) List(ctx context.Context, filters []types.Filter, relations ...string) ([]*T, error) {
	entities := make([]*T, 0)
	query := r.NewQuery(r.db, &entities, relations...)
	if err := applyFilters(query, r.table, filters); err != nil {
		return nil, err
	}
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) Page(ctx context.Context, pageRequest *types.PageRequest, relations ...string) (*types.Pagination[T], error) {
	if pageRequest == nil {
		pageRequest = types.NewDefaultPageRequest(1, 10)
	}
	entities := make([]*T, 0)
	query := r.NewQuery(r.db, &entities, relations...)
	if err := applyFilters(query, r.table, pageRequest.GetFilters()); err != nil {
		return nil, err
	}
	if err := applyOrders(query, r.table, pageRequest.GetOrders()); err != nil {
		return nil, err
	}

	pagination := types.NewDefaultPagination[T](pageRequest.GetPage(), pageRequest.GetPageSize())
	total, err := query.
		Offset(pageRequest.GetOffset()).
		Limit(pageRequest.GetPageSize()).
		ScanAndCount(ctx)
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = entities
	return pagination, nil
}

func (r *baseRepositoryImpl[T]) Create(ctx context.Context, entity ...*T) error {
	return r.CreateWithTx(ctx, r.db, entity...)
}

func (r *baseRepositoryImpl[T]) CreateWithTx(ctx context.Context, db bun.IDB, entity ...*T) error {
	switch len(entity) {
	case 0:
		return nil
	case 1:
		_, err := db.NewInsert().Model(entity[0]).Exec(ctx)
		return err
	}
	entities := make([]*T, len(entity))
	copy(entities, entity)
	_, err := db.NewInsert().Model(&entities).Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) Save(ctx context.Context, entity *T) error {
	return r.SaveWithTx(ctx, r.db, entity)
}

func (r *baseRepositoryImpl[T]) SaveWithTx(ctx context.Context, db bun.IDB, entity *T) error {
	_, err := db.NewUpdate().Model(entity).WherePK().Exec(ctx)
	return err
}

func (r *baseRepositoryImpl[T]) Delete(ctx context.Context, id any) error {
	entity, err := r.Find(ctx, id)
	if err != nil {
		return err
	}
	return r.DeleteWithTx(ctx, r.db, entity)
}

func (r *baseRepositoryImpl[T]) DeleteWithTx(ctx context.Context, db bun.IDB, entity *T) error {
	_, err := db.NewDelete().Model(entity).WherePK().Exec(ctx)
	return err
}

// RefreshWithTx reloads entity from its primary key so that database
// defaults and trigger-set columns are visible.
func (r *baseRepositoryImpl[T]) RefreshWithTx(ctx context.Context, db bun.IDB, entity *T) error {
	return db.NewSelect().Model(entity).WherePK().Scan(ctx)
}

func (r *baseRepositoryImpl[T]) RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error {
	return RunInTx(ctx, r.db, r.logger, fn)
}
