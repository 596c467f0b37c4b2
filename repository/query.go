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
	"net/http"
	"slices"

	"github.com/tomoncle/crudkit/response"
	"github.com/tomoncle/crudkit/types"
	"github.com/tomoncle/crudkit/validation"
	"github.com/uptrace/bun"
)

// QueryRepository is the read side: all, by id, by criteria and paged, each
// with the configured relations eager loaded.
type QueryRepository[T any] struct {
	store     Repository[T]
	options   *Options[T]
	validator *validation.Engine
}

func NewQueryRepository[T any](store Repository[T], options *Options[T]) *QueryRepository[T] {
	if options == nil {
		options = NewOptions[T]()
	}
	return &QueryRepository[T]{store: store, options: options, validator: validation.Default()}
}

// EagerLoad returns the relations loaded by default.
func (q *QueryRepository[T]) EagerLoad() []string {
	return slices.Clone(q.options.EagerLoad)
}

// Relations is the default list followed by any extra relations not already
// in it.
func (q *QueryRepository[T]) Relations(extra ...string) []string {
	relations := q.EagerLoad()
	for _, rel := range extra {
		if !slices.Contains(relations, rel) {
			relations = append(relations, rel)
		}
	}
	return relations
}

// ModelQuery starts an unfiltered select into model with Relations(extra...).
func (q *QueryRepository[T]) ModelQuery(model any, extra ...string) *bun.SelectQuery {
	return q.store.NewQuery(nil, model, q.Relations(extra...)...)
}

func (q *QueryRepository[T]) All(ctx context.Context) (*response.Result, error) {
	records, err := q.store.GetAll(ctx, q.Relations()...)
	if err != nil {
		return q.options.Classifier.Classify(err)
	}
	return response.JSON(records, http.StatusOK), nil
}

// GetByID returns the record or a classified 404.
func (q *QueryRepository[T]) GetByID(ctx context.Context, id any, extra ...string) (*response.Result, error) {
	record, err := q.store.Find(ctx, id, q.Relations(extra...)...)
	if err != nil {
		return q.options.Classifier.Classify(err)
	}
	return response.JSON(record, http.StatusOK), nil
}

// GetByCriteria validates filters and returns the records matching all of
// them. An empty list matches everything.
func (q *QueryRepository[T]) GetByCriteria(ctx context.Context, filters []types.Filter) (*response.Result, error) {
	if err := q.validator.Filters(filters); err != nil {
		return nil, err
	}
	records, err := q.store.List(ctx, filters, q.Relations()...)
	if err != nil {
		return q.options.Classifier.Classify(err)
	}
	return response.JSON(records, http.StatusOK), nil
}

func (q *QueryRepository[T]) Page(ctx context.Context, req *types.PageRequest) (*response.Result, error) {
	if req != nil {
		if err := q.validator.Filters(req.GetFilters()); err != nil {
			return nil, err
		}
	}
	page, err := q.store.Page(ctx, req, q.Relations()...)
	if err != nil {
		return q.options.Classifier.Classify(err)
	}
	return response.JSON(page, http.StatusOK), nil
}
