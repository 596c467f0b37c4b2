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
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tomoncle/crudkit/database"
	"github.com/tomoncle/crudkit/response"
)

type recordingLogger struct {
	database.NopLogger
	warnings []string
}

func (l *recordingLogger) Warn(msg string, _ ...interface{}) {
	l.warnings = append(l.warnings, msg)
}

func TestOptionsOrderDoesNotMatter(t *testing.T) {
	logger := &recordingLogger{}

	opts := NewOptions(WithDebug[Widget](true), WithLogger[Widget](logger))
	assert.True(t, opts.Classifier.Debug())
	assert.Same(t, logger, opts.Logger)

	opts = NewOptions(WithDebug[Widget](false), WithLogger[Widget](logger))
	res, err := opts.Classifier.Classify(errors.New("boom"))
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, []string{"Operation failed"}, logger.warnings)
}

func TestExplicitClassifierWinsOverDebug(t *testing.T) {
	opts := NewOptions(WithDebug[Widget](true), WithClassifier[Widget](response.NewClassifier(false, nil)))
	assert.False(t, opts.Classifier.Debug())

	opts = NewOptions(WithDebug[Widget](true), WithClassifier[Widget](nil))
	assert.True(t, opts.Classifier.Debug(), "nil classifier falls back to the debug default")

	opts = NewOptions(WithLogger[Widget](database.NopLogger{}))
	assert.False(t, opts.Classifier.Debug())
	assert.Equal(t, NopHooks[Widget]{}, opts.Hooks)
	assert.True(t, opts.TrackOwnership)
}
