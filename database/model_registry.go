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
	"sort"
	"sync"
)

var defaultRegistry = newModelRegistry()

// SQLModel is a bun model whose table is created by RunMigrations. Lower
// priorities are created first so referenced tables exist before their
// dependents.
type SQLModel interface {
	Instance() interface{}
	Priority() int
}

type ModelRegistry interface {
	Register(model SQLModel)
	Models() []SQLModel
	Reset()
}

type modelRegistry struct {
	models []SQLModel
	mutex  sync.RWMutex
}

func newModelRegistry() ModelRegistry {
	return &modelRegistry{}
}

func (r *modelRegistry) Register(model SQLModel) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.models = append(r.models, model)
}

// Models returns a copy ordered by priority; equal priorities keep
// registration order.
func (r *modelRegistry) Models() []SQLModel {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]SQLModel, len(r.models))
	copy(result, r.models)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Priority() < result[j].Priority()
	})
	return result
}

func (r *modelRegistry) Reset() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.models = nil
}

type ModelAdapter struct {
	instance interface{}
	priority int
}

func NewModelAdapter(instance interface{}, priority int) SQLModel {
	return &ModelAdapter{instance: instance, priority: priority}
}

func (a *ModelAdapter) Instance() interface{} { return a.instance }

func (a *ModelAdapter) Priority() int { return a.priority }

// RegisterModel adds a model to the default registry.
func RegisterModel(model SQLModel) {
	defaultRegistry.Register(model)
}

// RegisterModels registers instances with priorities following argument
// order, e.g. RegisterModels((*Category)(nil), (*Widget)(nil)).
func RegisterModels(instances ...interface{}) {
	base := len(defaultRegistry.Models())
	for i, instance := range instances {
		defaultRegistry.Register(NewModelAdapter(instance, base+i))
	}
}

func GetRegisteredModels() []SQLModel {
	return defaultRegistry.Models()
}

func RegisteredModelInstances() []interface{} {
	models := GetRegisteredModels()
	instances := make([]interface{}, len(models))
	for i, model := range models {
		instances[i] = model.Instance()
	}
	return instances
}

// ResetModels clears the default registry.
func ResetModels() {
	defaultRegistry.Reset()
}
