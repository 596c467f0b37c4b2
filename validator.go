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

	"github.com/tomoncle/crudkit/repository"
	"github.com/tomoncle/crudkit/validation"
)

// Validator checks input before any transaction starts. Validate runs for
// both writes, followed by ValidateInsert or ValidateUpdate.
type Validator[T any] interface {
	Validate(ctx context.Context, payload repository.Payload) error
	ValidateInsert(ctx context.Context, payload repository.Payload) error
	ValidateUpdate(ctx context.Context, payload repository.Payload, id any) error
}

type NopValidator[T any] struct{}

func (NopValidator[T]) Validate(context.Context, repository.Payload) error            { return nil }
func (NopValidator[T]) ValidateInsert(context.Context, repository.Payload) error      { return nil }
func (NopValidator[T]) ValidateUpdate(context.Context, repository.Payload, any) error { return nil }

// RuleValidator checks payloads against validator tag strings.
//
// Rules apply to the keys present in the payload, so partial updates only
// check what they send. InsertRules and UpdateRules apply to the whole
// payload, which is where "required" belongs.
type RuleValidator[T any] struct {
	Rules       map[string]string
	InsertRules map[string]string
	UpdateRules map[string]string
	Engine      *validation.Engine
}

func (v *RuleValidator[T]) engine() *validation.Engine {
	if v.Engine == nil {
		return validation.Default()
	}
	return v.Engine
}

func (v *RuleValidator[T]) Validate(_ context.Context, payload repository.Payload) error {
	present := make(map[string]string, len(v.Rules))
	for field, rule := range v.Rules {
		if _, ok := payload[field]; ok {
			present[field] = rule
		}
	}
	return v.engine().Rules(payload, present)
}

func (v *RuleValidator[T]) ValidateInsert(_ context.Context, payload repository.Payload) error {
	return v.engine().Rules(payload, v.InsertRules)
}

func (v *RuleValidator[T]) ValidateUpdate(_ context.Context, payload repository.Payload, _ any) error {
	return v.engine().Rules(payload, v.UpdateRules)
}
