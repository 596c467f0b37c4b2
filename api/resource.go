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

// Package api exposes a crudkit repository as JSON HTTP endpoints on chi.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tomoncle/crudkit/database"
	"github.com/tomoncle/crudkit/repository"
	"github.com/tomoncle/crudkit/response"
	"github.com/tomoncle/crudkit/types"
	"github.com/tomoncle/crudkit/validation"
)

// Service is the operation set a Resource serves; *crudkit.Repository
// implements it.
type Service interface {
	Create(ctx context.Context, payload repository.Payload) (*response.Result, error)
	Update(ctx context.Context, payload repository.Payload, id any) (*response.Result, error)
	Delete(ctx context.Context, id any) (*response.Result, error)
	All(ctx context.Context) (*response.Result, error)
	GetByID(ctx context.Context, id any, extra ...string) (*response.Result, error)
	GetByCriteria(ctx context.Context, filters []types.Filter) (*response.Result, error)
}

// Resource maps a Service onto REST routes.
type Resource struct {
	svc     Service
	filters *validation.Engine
	logger  database.Logger
}

func NewResource(svc Service, logger database.Logger) *Resource {
	if logger == nil {
		logger = database.NopLogger{}
	}
	return &Resource{svc: svc, filters: validation.Default(), logger: logger}
}

// RegisterRoutes mounts the resource on r:
//
//	GET    /           all records
//	POST   /criteria   records matching a filter list
//	POST   /           create
//	GET    /{id}       one record
//	PUT    /{id}       update (PATCH is accepted too)
//	DELETE /{id}       delete
func (res *Resource) RegisterRoutes(r chi.Router) {
	r.Get("/", res.listHandler)
	r.Post("/criteria", res.criteriaHandler)
	r.Post("/", res.createHandler)
	r.Get("/{id}", res.getHandler)
	r.Put("/{id}", res.updateHandler)
	r.Patch("/{id}", res.updateHandler)
	r.Delete("/{id}", res.deleteHandler)
}

// Routes returns a router holding only this resource, for r.Mount.
func (res *Resource) Routes() chi.Router {
	r := chi.NewRouter()
	res.RegisterRoutes(r)
	return r
}

func (res *Resource) listHandler(w http.ResponseWriter, r *http.Request) {
	result, err := res.svc.All(r.Context())
	res.render(w, result, err)
}

func (res *Resource) getHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := res.parseID(w, r)
	if !ok {
		return
	}
	result, err := res.svc.GetByID(r.Context(), id)
	res.render(w, result, err)
}

func (res *Resource) criteriaHandler(w http.ResponseWriter, r *http.Request) {
	filters, err := res.filters.DecodeFilters(r.Body)
	if err != nil {
		res.render(w, nil, err)
		return
	}
	result, err := res.svc.GetByCriteria(r.Context(), filters)
	res.render(w, result, err)
}

func (res *Resource) createHandler(w http.ResponseWriter, r *http.Request) {
	payload, ok := res.decodePayload(w, r)
	if !ok {
		return
	}
	result, err := res.svc.Create(r.Context(), payload)
	res.render(w, result, err)
}

func (res *Resource) updateHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := res.parseID(w, r)
	if !ok {
		return
	}
	payload, ok := res.decodePayload(w, r)
	if !ok {
		return
	}
	result, err := res.svc.Update(r.Context(), payload, id)
	res.render(w, result, err)
}

func (res *Resource) deleteHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := res.parseID(w, r)
	if !ok {
		return
	}
	result, err := res.svc.Delete(r.Context(), id)
	res.render(w, result, err)
}

func (res *Resource) parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		res.write(w, response.BadRequest("invalid id"))
		return 0, false
	}
	return id, true
}

func (res *Resource) decodePayload(w http.ResponseWriter, r *http.Request) (repository.Payload, bool) {
	payload := repository.Payload{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		res.write(w, response.BadRequest("invalid JSON body"))
		return nil, false
	}
	return payload, true
}

// render writes the result, or the propagated error: validation failures as
// 422 and anything else as 500.
func (res *Resource) render(w http.ResponseWriter, result *response.Result, err error) {
	if err == nil {
		if result == nil {
			result = response.JSON(nil, http.StatusNoContent)
		}
		res.write(w, result)
		return
	}
	if ve, ok := validation.AsValidationError(err); ok {
		res.write(w, response.JSON(map[string]any{
			"message": validation.Summary,
			"errors":  ve.Errors,
		}, http.StatusUnprocessableEntity))
		return
	}
	res.logger.Error("Request failed", "error", err)
	res.write(w, response.Error(err.Error(), http.StatusInternalServerError))
}

func (res *Resource) write(w http.ResponseWriter, result *response.Result) {
	if err := result.Write(w); err != nil {
		res.logger.Warn("Failed to write response", "error", err)
	}
}
