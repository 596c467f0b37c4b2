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

package validation

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/crudkit/types"
)

type signup struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"display_name" validate:"max=5"`
}

func TestStructUsesJSONNames(t *testing.T) {
	err := New().Struct(signup{Name: "toolongname"})
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"display_name", "email"}, ve.Fields())
	assert.Equal(t, "The email field is required.", ve.Errors["email"][0])
	assert.Equal(t, "The display name may not be greater than 5 characters.", ve.Errors["display_name"][0])
	assert.NoError(t, New().Struct(signup{Email: "a@b.co"}))
}

func TestRules(t *testing.T) {
	e := New()
	rules := map[string]string{"name": "required,max=5"}

	err := e.Rules(map[string]any{}, rules)
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"The name field is required."}, ve.Errors["name"])

	err = e.Rules(map[string]any{"name": "Widget2"}, rules)
	ve, ok = AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, ve.Errors["name"][0], "may not be greater than 5")

	assert.NoError(t, e.Rules(map[string]any{"name": "Wid"}, rules))
	assert.NoError(t, e.Rules(nil, nil))
}

func TestPresentRule(t *testing.T) {
	e := New()
	for _, criteria := range []any{0, false, "x", []any{1}} {
		assert.NoError(t, e.Filters([]types.Filter{types.NewFilter("f", "=", criteria)}), fmt.Sprint(criteria))
	}
	for _, criteria := range []any{nil, "", "  ", []any{}, map[string]any{}} {
		assert.Error(t, e.Filters([]types.Filter{types.NewFilter("f", "=", criteria)}), fmt.Sprint(criteria))
	}
}

func TestFiltersKeyedByIndex(t *testing.T) {
	err := New().Filters([]types.Filter{
		types.Where("status", "active"),
		{Operator: "greater-than-ten", Criteria: 1},
	})
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"1.fieldname", "1.operator"}, ve.Fields())
	assert.Equal(t, "The operator may not be greater than 10 characters.", ve.Errors["1.operator"][0])
}

func TestDecodeFilters(t *testing.T) {
	e := New()

	filters, err := e.DecodeFilters(strings.NewReader(`[{"fieldname":"status","operator":"=","criteria":"active"}]`))
	require.NoError(t, err)
	assert.Equal(t, []types.Filter{types.Where("status", "active")}, filters)

	filters, err = e.DecodeFilters(strings.NewReader(`[]`))
	require.NoError(t, err)
	assert.Empty(t, filters)

	_, err = e.DecodeFilters(strings.NewReader(`{"fieldname":"status"}`))
	ve, ok := AsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, ve.Errors, "filters")

	_, err = e.DecodeFilters(strings.NewReader(`[{"fieldname":7,"operator":"=","criteria":null}]`))
	ve, ok = AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"The fieldname must be a string."}, ve.Errors["0.fieldname"])
	assert.Equal(t, []string{"The criteria field is required."}, ve.Errors["0.criteria"])
}

func TestValidationErrorHelpers(t *testing.T) {
	ve := NewValidationError()
	assert.NoError(t, ve.OrNil())
	ve.Add("name", "The name field is required.")
	assert.Equal(t, "The given data was invalid. (The name field is required.)", ve.Error())

	wrapped := fmt.Errorf("create: %w", ve)
	got, ok := AsValidationError(wrapped)
	require.True(t, ok)
	assert.Same(t, ve, got)

	_, ok = AsValidationError(errors.New("other"))
	assert.False(t, ok)
}
