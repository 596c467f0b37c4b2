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

package response

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/crudkit/types"
	"github.com/tomoncle/crudkit/validation"
)

func TestConstructors(t *testing.T) {
	r := Message("Record successfully deleted", http.StatusAccepted)
	assert.Equal(t, map[string]string{"message": "Record successfully deleted"}, r.Payload)
	assert.True(t, r.IsSuccess())

	assert.Equal(t, map[string]string{"error": "Bad request"}, BadRequest("").Payload)
	assert.Equal(t, map[string]string{"error": "nope"}, BadRequest("nope").Payload)

	nf := NotFound("")
	assert.Equal(t, http.StatusNotFound, nf.StatusCode)
	assert.Equal(t, "Record not found", nf.Message)
	assert.False(t, nf.IsSuccess())

	assert.Equal(t, "no such column: x", QueryFailure(errors.New("no such column: x"), "").Message)
	assert.Equal(t, "custom", QueryFailure(errors.New("no such column: x"), "custom").Message)
	assert.Equal(t, "Sql Error", QueryFailure(nil, "").Message)

	tr := Trans(map[string]int{"id": 1}, http.StatusCreated, "Record successfully created")
	assert.Equal(t, "Record successfully created", tr.Message)
	assert.Equal(t, map[string]int{"id": 1}, tr.Payload)
}

func TestWrite(t *testing.T) {
	rec := httptest.NewRecorder()
	require.NoError(t, Trans(map[string]any{"id": 1, "name": "Widget"}, http.StatusCreated, "created").Write(rec))
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":1,"name":"Widget"}`, rec.Body.String())

	rec = httptest.NewRecorder()
	require.NoError(t, NotFound("").Write(rec))
	assert.JSONEq(t, `{"error":"Record not found"}`, rec.Body.String())
}

func TestClassify(t *testing.T) {
	c := NewClassifier(false, nil)

	res, err := c.Classify(nil)
	assert.Nil(t, res)
	assert.NoError(t, err)

	res, err = c.Classify(fmt.Errorf("find: %w", types.ErrRecordNotFound))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, err = c.Classify(sql.ErrNoRows)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, err = c.Classify(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Contains(t, res.Message, "duplicate key value")

	res, err = c.Classify(&types.QueryError{Field: "colour", Reason: "unknown column"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, `invalid criteria for "colour": unknown column`, res.Message)

	res, err = c.Classify(errors.New("hook refused"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"error": "hook refused"}, res.Payload)

	res, err = c.Classify(errors.New(""))
	require.NoError(t, err)
	assert.Equal(t, "Bad request", res.Message)

	ve := validation.NewValidationError().Add("name", "The name field is required.")
	res, err = c.Classify(ve)
	assert.Nil(t, res)
	assert.Same(t, ve, err)
}

func TestClassifyDebugPropagates(t *testing.T) {
	c := NewClassifier(true, nil)
	assert.True(t, c.Debug())
	for _, in := range []error{types.ErrRecordNotFound, errors.New("boom"), &pq.Error{Code: "23505"}} {
		res, err := c.Classify(in)
		assert.Nil(t, res)
		assert.Same(t, in, err)
	}
}
