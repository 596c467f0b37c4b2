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

	"github.com/tomoncle/crudkit/database"
	"github.com/tomoncle/crudkit/types"
	"github.com/tomoncle/crudkit/validation"
)

// Classifier converts operation failures into results. Failures it does not
// turn into a result come back as the error: validation failures always, and
// every failure when debug is on.
type Classifier struct {
	debug  bool
	logger database.Logger
}

func NewClassifier(debug bool, logger database.Logger) *Classifier {
	if logger == nil {
		logger = database.NopLogger{}
	}
	return &Classifier{debug: debug, logger: logger}
}

func (c *Classifier) Debug() bool {
	return c.debug
}

// Classify checks, in order: debug, validation, not found, store or query
// failure, anything else.
func (c *Classifier) Classify(err error) (*Result, error) {
	if err == nil {
		return nil, nil
	}
	if c.debug {
		return nil, err
	}
	if _, ok := validation.AsValidationError(err); ok {
		return nil, err
	}
	if errors.Is(err, types.ErrRecordNotFound) || errors.Is(err, sql.ErrNoRows) {
		return NotFound(""), nil
	}
	var queryErr *types.QueryError
	if errors.As(err, &queryErr) {
		return QueryFailure(queryErr, ""), nil
	}
	if is, kind := database.IsSqlError(err); is {
		c.logger.Warn("Query failed", "kind", kind.String(), "error", err)
		return QueryFailure(err, ""), nil
	}
	c.logger.Warn("Operation failed", "error", err)
	return BadRequest(err.Error()), nil
}
