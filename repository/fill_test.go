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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/crudkit/validation"
)

func TestFillDropsGuardedKeysInAnyCase(t *testing.T) {
	w := &Widget{ID: 3, CreatedBy: "owner"}
	require.NoError(t, Fill(w, Payload{"Id": 7, "iD": 8, "created_BY": "x", "Name": "renamed"}, nil))
	assert.Equal(t, int64(3), w.ID)
	assert.Equal(t, "owner", w.CreatedBy)
	assert.Equal(t, "renamed", w.Name, "non-guarded keys still resolve case-insensitively")
}

func TestFillNullValues(t *testing.T) {
	w := &Widget{Name: "Widget", Price: 4, Category: &Category{Name: "tools"}}
	require.NoError(t, Fill(w, Payload{"price": nil, "category": nil, "unknown": nil}, nil))
	assert.Zero(t, w.Price)
	assert.Nil(t, w.Category)
	assert.Equal(t, "Widget", w.Name)
}

func TestFillWithFillableIgnoresEverythingElse(t *testing.T) {
	w := &Widget{}
	require.NoError(t, Fill(w, Payload{"name": "a", "price": nil, "status": "archived"}, []string{"name"}))
	assert.Equal(t, "a", w.Name)
	assert.Empty(t, w.Status)
}

func TestFillTypeMismatch(t *testing.T) {
	err := Fill(&Widget{}, Payload{"name": 12}, nil)
	ve, ok := validation.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, []string{"The name must be a string."}, ve.Errors["name"])
}
