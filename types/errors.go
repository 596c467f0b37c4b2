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

package types

import (
	"errors"
	"fmt"
)

// ErrRecordNotFound is returned when a lookup by primary key matches nothing.
var ErrRecordNotFound = errors.New("record not found")

// QueryError reports a query the store refused to build, such as a filter
// on an unknown column or with an unsupported operator.
type QueryError struct {
	Field  string
	Reason string
}

func (e *QueryError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("invalid criteria for %q: %s", e.Field, e.Reason)
}
