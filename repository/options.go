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
	"github.com/tomoncle/crudkit/database"
	"github.com/tomoncle/crudkit/response"
)

// Options configures a CrudEngine and QueryRepository pair.
type Options[T any] struct {
	Hooks          Hooks[T]
	History        History[T]
	Classifier     *response.Classifier
	Fillable       []string
	TrackOwnership bool
	EagerLoad      []string
	Logger         database.Logger
	Debug          bool
}

type Option[T any] func(*Options[T])

func WithHooks[T any](hooks Hooks[T]) Option[T] {
	return func(o *Options[T]) { o.Hooks = hooks }
}

func WithHistory[T any](history History[T]) Option[T] {
	return func(o *Options[T]) { o.History = history }
}

func WithClassifier[T any](classifier *response.Classifier) Option[T] {
	return func(o *Options[T]) { o.Classifier = classifier }
}

// WithDebug makes the default classifier propagate every failure. It has no
// effect when WithClassifier supplies one.
func WithDebug[T any](debug bool) Option[T] {
	return func(o *Options[T]) { o.Debug = debug }
}

func WithFillable[T any](fields ...string) Option[T] {
	return func(o *Options[T]) { o.Fillable = fields }
}

func WithOwnership[T any](track bool) Option[T] {
	return func(o *Options[T]) { o.TrackOwnership = track }
}

func WithEagerLoad[T any](relations ...string) Option[T] {
	return func(o *Options[T]) { o.EagerLoad = relations }
}

func WithLogger[T any](logger database.Logger) Option[T] {
	return func(o *Options[T]) { o.Logger = logger }
}

// NewOptions applies opts over the defaults: no hooks, no history,
// ownership tracking on, non-debug classification. The classifier is built
// last so it sees the final Logger and Debug settings.
func NewOptions[T any](opts ...Option[T]) *Options[T] {
	o := &Options[T]{
		Hooks:          NopHooks[T]{},
		TrackOwnership: true,
		Logger:         database.GetLogger(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.Hooks == nil {
		o.Hooks = NopHooks[T]{}
	}
	if o.Logger == nil {
		o.Logger = database.NopLogger{}
	}
	if o.Classifier == nil {
		o.Classifier = response.NewClassifier(o.Debug, o.Logger)
	}
	return o
}
