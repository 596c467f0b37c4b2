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
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"github.com/tomoncle/crudkit/validation"
)

// Payload is decoded request input keyed by JSON field name.
type Payload map[string]any

// GuardedFields are never mass-assigned unless listed as fillable.
var GuardedFields = []string{"id", "created_by"}

// Owned records are stamped with the creating principal.
type Owned interface {
	SetCreatedBy(principal string)
}

// Only keeps the listed keys.
func (p Payload) Only(keys ...string) Payload {
	out := make(Payload, len(keys))
	for _, k := range keys {
		if v, ok := p[k]; ok {
			out[k] = v
		}
	}
	return out
}

// Except drops the listed keys.
func (p Payload) Except(keys ...string) Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		if !slices.Contains(keys, k) {
			out[k] = v
		}
	}
	return out
}

// Fill assigns the fillable part of payload onto record through its JSON
// tags. Keys without a matching field are ignored; values of the wrong type
// are a validation failure. Guarded keys are matched case-insensitively, the
// same way encoding/json resolves them. A null value resets a non-nullable
// field to its zero value.
func Fill[T any](record *T, payload Payload, fillable []string) error {
	var data Payload
	if len(fillable) > 0 {
		data = payload.Only(fillable...)
	} else {
		data = make(Payload, len(payload))
		for k, v := range payload {
			if !guarded(k) {
				data[k] = v
			}
		}
	}
	if len(data) == 0 {
		return nil
	}
	clearNulls(reflect.ValueOf(record).Elem(), data)

	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, record); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return validation.NewValidationError().Add(typeErr.Field,
				fmt.Sprintf("The %s must be %s.", typeErr.Field, describeKind(typeErr.Type)))
		}
		return err
	}
	return nil
}

func guarded(key string) bool {
	for _, g := range GuardedFields {
		if strings.EqualFold(key, g) {
			return true
		}
	}
	return false
}

// clearNulls zeroes the fields addressed by null values. encoding/json leaves
// value-typed fields untouched on null; pointers, maps, slices and interfaces
// are already reset by it.
func clearNulls(v reflect.Value, data Payload) {
	if v.Kind() != reflect.Struct {
		return
	}
	for key, value := range data {
		if value != nil {
			continue
		}
		field, ok := jsonField(v, key)
		if !ok {
			continue
		}
		switch field.Kind() {
		case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
			continue
		}
		if field.CanSet() {
			field.Set(reflect.Zero(field.Type()))
		}
	}
}

// jsonField finds the exported top-level field named key in its JSON tag,
// preferring an exact match over a case-insensitive one.
func jsonField(v reflect.Value, key string) (reflect.Value, bool) {
	t := v.Type()
	fold := -1
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		if name == key {
			return v.Field(i), true
		}
		if fold < 0 && strings.EqualFold(name, key) {
			fold = i
		}
	}
	if fold >= 0 {
		return v.Field(fold), true
	}
	return reflect.Value{}, false
}

func describeKind(t reflect.Type) string {
	if t == nil {
		return "a valid value"
	}
	switch t.Kind() {
	case reflect.String:
		return "a string"
	case reflect.Bool:
		return "true or false"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "an integer"
	case reflect.Float32, reflect.Float64:
		return "a number"
	case reflect.Slice, reflect.Array:
		return "an array"
	}
	return "a valid value"
}
