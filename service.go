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
	"sync"

	"github.com/tomoncle/crudkit/database"
	"github.com/tomoncle/crudkit/repository"
	"github.com/tomoncle/crudkit/response"
	"github.com/tomoncle/crudkit/types"
	"github.com/uptrace/bun"
)

// Repository is the public CRUD surface of one model type: it validates
// input, then hands writes to a CrudEngine and reads to a QueryRepository.
// Every operation returns a *response.Result, or an error for validation
// failures and, in debug mode, for every failure.
type Repository[T any] struct {
	db        *bun.DB
	validator Validator[T]
	options   *repository.Options[T]

	once   sync.Once
	store  repository.Repository[T]
	engine *repository.CrudEngine[T]
	query  *repository.QueryRepository[T]
}

// NewRepository binds to the process-wide database from database.InitDB on
// first use.
func NewRepository[T any](validator Validator[T], opts ...repository.Option[T]) *Repository[T] {
	return NewRepositoryWithDB(nil, validator, opts...)
}

// NewRepositoryWithDB binds to db. A nil validator accepts everything.
func NewRepositoryWithDB[T any](db *bun.DB, validator Validator[T], opts ...repository.Option[T]) *Repository[T] {
	if validator == nil {
		validator = NopValidator[T]{}
	}
	return &Repository[T]{
		db:        db,
		validator: validator,
		options:   repository.NewOptions(opts...),
	}
}

func (r *Repository[T]) init() {
	r.once.Do(func() {
		if r.db == nil {
			r.db = database.GetDB()
		}
		r.store = repository.NewRepository[T](r.db)
		r.engine = repository.NewCrudEngine(r.store, r.options)
		r.query = repository.NewQueryRepository(r.store, r.options)
	})
}

// Store exposes the underlying record store.
func (r *Repository[T]) Store() repository.Repository[T] {
	r.init()
	return r.store
}

func (r *Repository[T]) Create(ctx context.Context, payload repository.Payload) (*response.Result, error) {
	r.init()
	if err := r.validator.Validate(ctx, payload); err != nil {
		return r.options.Classifier.Classify(err)
	}
	if err := r.validator.ValidateInsert(ctx, payload); err != nil {
		return r.options.Classifier.Classify(err)
	}
	return r.engine.Create(ctx, payload)
}

func (r *Repository[T]) Update(ctx context.Context, payload repository.Payload, id any) (*response.Result, error) {
	r.init()
	if err := r.validator.Validate(ctx, payload); err != nil {
		return r.options.Classifier.Classify(err)
	}
	if err := r.validator.ValidateUpdate(ctx, payload, id); err != nil {
		return r.options.Classifier.Classify(err)
	}
	return r.engine.Update(ctx, payload, id)
}

func (r *Repository[T]) Delete(ctx context.Context, id any) (*response.Result, error) {
	r.init()
	return r.engine.Delete(ctx, id)
}

func (r *Repository[T]) EagerLoad() []string {
	r.init()
	return r.query.EagerLoad()
}

func (r *Repository[T]) ModelQuery(model any, extra ...string) *bun.SelectQuery {
	r.init()
	return r.query.ModelQuery(model, extra...)
}

func (r *Repository[T]) All(ctx context.Context) (*response.Result, error) {
	r.init()
	return r.query.All(ctx)
}

func (r *Repository[T]) GetByID(ctx context.Context, id any, extra ...string) (*response.Result, error) {
	r.init()
	return r.query.GetByID(ctx, id, extra...)
}

func (r *Repository[T]) GetByCriteria(ctx context.Context, filters []types.Filter) (*response.Result, error) {
	r.init()
	return r.query.GetByCriteria(ctx, filters)
}

func (r *Repository[T]) Page(ctx context.Context, req *types.PageRequest) (*response.Result, error) {
	r.init()
	return r.query.Page(ctx, req)
}
