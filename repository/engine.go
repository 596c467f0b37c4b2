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

	"github.com/tomoncle/crudkit/response"
	"github.com/tomoncle/crudkit/types"
	"github.com/tomoncle/crudkit/userctx"
	"github.com/uptrace/bun"
)

const (
	MsgCreated = "Record successfully created"
	MsgUpdated = "Record successfully updated"
	MsgDeleted = "Record successfully deleted"
)

// CrudEngine performs create, update and delete as single transactions:
// the record, its history entry and everything the hooks write commit
// together or not at all.
type CrudEngine[T any] struct {
	store   Repository[T]
	options *Options[T]
}

func NewCrudEngine[T any](store Repository[T], options *Options[T]) *CrudEngine[T] {
	if options == nil {
		options = NewOptions[T]()
	}
	return &CrudEngine[T]{store: store, options: options}
}

// Create fills a new record from payload, inserts and reloads it.
// Success is 201 with the record as body.
func (e *CrudEngine[T]) Create(ctx context.Context, payload Payload) (*response.Result, error) {
	record := new(T)
	err := e.store.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		e.stampOwner(ctx, record)
		if err := Fill(record, payload, e.options.Fillable); err != nil {
			return err
		}
		if err := e.options.Hooks.BeforeSave(ctx, tx, record, false); err != nil {
			return err
		}
		if err := e.store.CreateWithTx(ctx, tx, record); err != nil {
			return err
		}
		if err := e.store.RefreshWithTx(ctx, tx, record); err != nil {
			return err
		}
		return e.options.Hooks.AfterSave(ctx, tx, record, false)
	})
	if err != nil {
		return e.fail("create", err)
	}
	e.options.Logger.Debug("Record created", "table", e.store.Table().Name)
	return response.Trans(record, http.StatusCreated, MsgCreated), nil
}

// Update records an UPDATE history entry of the current state, then fills
// and saves the record. Success is 202 with the reloaded record.
func (e *CrudEngine[T]) Update(ctx context.Context, payload Payload, id any) (*response.Result, error) {
	var record *T
	err := e.store.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		var err error
		if record, err = e.store.FindWithTx(ctx, tx, id); err != nil {
			return err
		}
		if err := e.recordHistory(ctx, tx, record, types.ActionUpdate); err != nil {
			return err
		}
		if err := Fill(record, payload, e.options.Fillable); err != nil {
			return err
		}
		if err := e.options.Hooks.BeforeSave(ctx, tx, record, true); err != nil {
			return err
		}
		if err := e.store.SaveWithTx(ctx, tx, record); err != nil {
			return err
		}
		if err := e.store.RefreshWithTx(ctx, tx, record); err != nil {
			return err
		}
		return e.options.Hooks.AfterSave(ctx, tx, record, true)
	})
	if err != nil {
		return e.fail("update", err)
	}
	e.options.Logger.Debug("Record updated", "table", e.store.Table().Name, "id", id)
	return response.Trans(record, http.StatusAccepted, MsgUpdated), nil
}

// Delete records a DELETE history entry and removes the record. A missing
// id is a 404 and writes nothing.
func (e *CrudEngine[T]) Delete(ctx context.Context, id any) (*response.Result, error) {
	err := e.store.RunInTx(ctx, func(ctx context.Context, tx bun.Tx) error {
		record, err := e.store.FindWithTx(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := e.recordHistory(ctx, tx, record, types.ActionDelete); err != nil {
			return err
		}
		if err := e.options.Hooks.BeforeDelete(ctx, tx, record); err != nil {
			return err
		}
		if err := e.store.DeleteWithTx(ctx, tx, record); err != nil {
			return err
		}
		return e.options.Hooks.AfterDelete(ctx, tx, record)
	})
	if err != nil {
		return e.fail("delete", err)
	}
	e.options.Logger.Debug("Record deleted", "table", e.store.Table().Name, "id", id)
	return response.Message(MsgDeleted, http.StatusAccepted), nil
}

func (e *CrudEngine[T]) stampOwner(ctx context.Context, record *T) {
	if !e.options.TrackOwnership {
		return
	}
	owned, ok := any(record).(Owned)
	if !ok {
		return
	}
	if id := userctx.GetUserID(ctx); id != "" {
		owned.SetCreatedBy(id)
	}
}

func (e *CrudEngine[T]) recordHistory(ctx context.Context, db bun.IDB, record *T, action types.Action) error {
	if e.options.History == nil {
		return nil
	}
	return e.options.History.Record(ctx, db, record, action)
}

func (e *CrudEngine[T]) fail(op string, err error) (*response.Result, error) {
	e.options.Logger.Debug("Record "+op+" rolled back", "table", e.store.Table().Name, "error", err)
	return e.options.Classifier.Classify(err)
}
