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

// Package validation wraps go-playground/validator with field-keyed error
// messages and the decoding rules of criteria filter requests.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// Summary is the top-level message of every validation failure.
const Summary = "The given data was invalid."

// ValidationError maps field names to their failure messages.
type ValidationError struct {
	Errors map[string][]string `json:"errors"`
}

func NewValidationError() *ValidationError {
	return &ValidationError{Errors: make(map[string][]string)}
}

// Add records a message for field and returns the receiver for chaining.
func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Errors[field] = append(e.Errors[field], message)
	return e
}

func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// OrNil returns nil when nothing was recorded.
func (e *ValidationError) OrNil() error {
	if e == nil || !e.HasErrors() {
		return nil
	}
	return e
}

// Fields returns the failing field names in sorted order.
func (e *ValidationError) Fields() []string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

func (e *ValidationError) Error() string {
	fields := e.Fields()
	if len(fields) == 0 {
		return Summary
	}
	return fmt.Sprintf("%s (%s)", Summary, e.Errors[fields[0]][0])
}

// AsValidationError unwraps err to a *ValidationError.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Engine validates structs, rule maps and filter lists.
type Engine struct {
	validate *validator.Validate
}

var (
	defaultEngine     *Engine
	defaultEngineOnce sync.Once
)

// Default returns the shared engine.
func Default() *Engine {
	defaultEngineOnce.Do(func() {
		defaultEngine = New()
	})
	return defaultEngine
}

// New builds an engine that names fields by their json tag and knows the
// "present" rule: nil, blank strings and empty collections fail, zero
// numbers and false pass.
func New() *Engine {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		switch name {
		case "-":
			return ""
		case "":
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("present", present)
	return &Engine{validate: v}
}

// Validator exposes the underlying engine for custom registrations.
func (e *Engine) Validator() *validator.Validate {
	return e.validate
}

func present(fl validator.FieldLevel) bool {
	f := fl.Field()
	switch f.Kind() {
	case reflect.Invalid:
		return false
	case reflect.String:
		return strings.TrimSpace(f.String()) != ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return f.Len() > 0
	case reflect.Ptr, reflect.Interface:
		return !f.IsNil()
	}
	return true
}

// Struct validates s and returns a *ValidationError keyed by json field name.
func (e *Engine) Struct(s any) error {
	err := e.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	ve := NewValidationError()
	for _, fe := range fieldErrs {
		ve.Add(fe.Field(), message(fe.Field(), fe))
	}
	return ve
}

// Rules validates data against validator tag strings keyed by field, for
// example {"name": "required,max=50"}.
func (e *Engine) Rules(data map[string]any, rules map[string]string) error {
	if len(rules) == 0 {
		return nil
	}
	if data == nil {
		data = map[string]any{}
	}
	compiled := make(map[string]interface{}, len(rules))
	for field, rule := range rules {
		compiled[field] = rule
	}
	ve := NewValidationError()
	for field, result := range e.validate.ValidateMap(data, compiled) {
		var fieldErrs validator.ValidationErrors
		if err, ok := result.(error); ok && errors.As(err, &fieldErrs) {
			for _, fe := range fieldErrs {
				ve.Add(field, message(field, fe))
			}
			continue
		}
		ve.Add(field, fmt.Sprintf("The %s field is invalid.", humanize(field)))
	}
	return ve.OrNil()
}

func humanize(field string) string {
	if i := strings.LastIndex(field, "."); i >= 0 {
		field = field[i+1:]
	}
	return strings.ReplaceAll(field, "_", " ")
}

func message(field string, fe validator.FieldError) string {
	name := humanize(field)
	switch fe.Tag() {
	case "required", "present":
		return fmt.Sprintf("The %s field is required.", name)
	case "max", "lte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s may not be greater than %s characters.", name, fe.Param())
		}
		return fmt.Sprintf("The %s may not be greater than %s.", name, fe.Param())
	case "min", "gte":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("The %s must be at least %s characters.", name, fe.Param())
		}
		return fmt.Sprintf("The %s must be at least %s.", name, fe.Param())
	case "email":
		return fmt.Sprintf("The %s must be a valid email address.", name)
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", name)
	case "number", "numeric":
		return fmt.Sprintf("The %s must be a number.", name)
	}
	return fmt.Sprintf("The %s failed on the %s rule.", name, fe.Tag())
}
