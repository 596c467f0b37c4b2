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
	"github.com/uptrace/bun/schema"
)

// ErrRecordNotFound is returned by the Find family when no row matches.
var ErrRecordNotFound = types.ErrRecordNotFound

// QueryError is returned for filters or orderings the store refuses to build.
type QueryError = types.QueryError

// CrudRepository defines record-level operations on the default connection.
type CrudRepository[T any] interface {
	Find(ctx context.Context, id any, relations ...string) (*T, error)

	GetAll(ctx context.Context, relations ...string) ([]*T, error)

	List(ctx context.Context, filters []types.Filter, relations ...string) ([]*T, error)

	Create(ctx context.Context, entity ...*T) error

	Save(ctx context.Context, entity *T) error

	Delete(ctx context.Context, id any) error
}

// TransactionRepository runs the same operations on a caller-supplied
// connection or transaction.
type TransactionRepository[T any] interface {
	FindWithTx(ctx context.Context, db bun.IDB, id any, relations ...string) (*T, error)
	CreateWithTx(ctx context.Context, db bun.IDB, entity ...*T) error
	SaveWithTx(ctx context.Context, db bun.IDB, entity *T) error
	DeleteWithTx(ctx context.Context, db bun.IDB, entity *T) error
	RefreshWithTx(ctx context.Context, db bun.IDB, entity *T) error
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx bun.Tx) error) error
}

type PageQueryRepository[T any] interface {
	Page(ctx context.Context, page *types.PageRequest, relations ...string) (*types.Pagination[T], error)
}

// Repository is the record store of one model type. It also exposes the bun
// query builders for queries the interface does not cover.
type Repository[T any] interface {
	CrudRepository[T]
	PageQueryRepository[T]
	TransactionRepository[T]
	DB() *bun.DB
	Table() *schema.Table
	NewQuery(db bun.IDB, model any, relations ...string) *bun.SelectQuery
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
}
