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

	"github.com/uptrace/bun"
)

// Hooks run inside the mutation's transaction; db is that transaction. A
// returned error rolls the whole mutation back.
type Hooks[T any] interface {
	BeforeSave(ctx context.Context, db bun.IDB, record *T, exists bool) error
	AfterSave(ctx context.Context, db bun.IDB, record *T, exists bool) error
	BeforeDelete(ctx context.Context, db bun.IDB, record *T) error
	AfterDelete(ctx context.Context, db bun.IDB, record *T) error
}

// NopHooks does nothing. Embed it to override only some hooks.
type NopHooks[T any] struct{}

func (NopHooks[T]) BeforeSave(context.Context, bun.IDB, *T, bool) error { return nil }
func (NopHooks[T]) AfterSave(context.Context, bun.IDB, *T, bool) error  { return nil }
func (NopHooks[T]) BeforeDelete(context.Context, bun.IDB, *T) error     { return nil }
func (NopHooks[T]) AfterDelete(context.Context, bun.IDB, *T) error      { return nil }

// HookFuncs adapts plain functions; nil fields are skipped.
type HookFuncs[T any] struct {
	OnBeforeSave   func(ctx context.Context, db bun.IDB, record *T, exists bool) error
	OnAfterSave    func(ctx context.Context, db bun.IDB, record *T, exists bool) error
	OnBeforeDelete func(ctx context.Context, db bun.IDB, record *T) error
	OnAfterDelete  func(ctx context.Context, db bun.IDB, record *T) error
}

func (h HookFuncs[T]) BeforeSave(ctx context.Context, db bun.IDB, record *T, exists bool) error {
	if h.OnBeforeSave == nil {
		return nil
	}
	return h.OnBeforeSave(ctx, db, record, exists)
}

func (h HookFuncs[T]) AfterSave(ctx context.Context, db bun.IDB, record *T, exists bool) error {
	if h.OnAfterSave == nil {
		return nil
	}
	return h.OnAfterSave(ctx, db, record, exists)
}

func (h HookFuncs[T]) BeforeDelete(ctx context.Context, db bun.IDB, record *T) error {
	if h.OnBeforeDelete == nil {
		return nil
	}
	return h.OnBeforeDelete(ctx, db, record)
}

func (h HookFuncs[T]) AfterDelete(ctx context.Context, db bun.IDB, record *T) error {
	if h.OnAfterDelete == nil {
		return nil
	}
	return h.OnAfterDelete(ctx, db, record)
}
