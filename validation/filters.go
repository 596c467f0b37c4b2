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
	"encoding/json"
	"fmt"
	"io"

	"github.com/tomoncle/crudkit/types"
)

// Filters checks every filter and keys failures as "<index>.<field>".
func (e *Engine) Filters(filters []types.Filter) error {
	ve := NewValidationError()
	for i := range filters {
		if err := e.Struct(filters[i]); err != nil {
			fe, ok := AsValidationError(err)
			if !ok {
				return err
			}
			for field, msgs := range fe.Errors {
				key := fmt.Sprintf("%d.%s", i, field)
				for _, msg := range msgs {
					ve.Add(key, msg)
				}
			}
		}
	}
	return ve.OrNil()
}

// DecodeFilters reads a criteria request body, a JSON array of
// {fieldname, operator, criteria} objects, and validates it. Malformed
// bodies and wrongly typed members are reported as validation failures.
func (e *Engine) DecodeFilters(r io.Reader) ([]types.Filter, error) {
	var raw []map[string]any
	if err := json.NewDecoder(r).Decode(&raw); err != nil && err != io.EOF {
		return nil, NewValidationError().Add("filters", "The filters must be a JSON array of objects.")
	}

	ve := NewValidationError()
	filters := make([]types.Filter, 0, len(raw))
	for i, item := range raw {
		var f types.Filter
		for _, key := range []string{"fieldname", "operator"} {
			v, ok := item[key]
			if !ok || v == nil {
				continue
			}
			s, isString := v.(string)
			if !isString {
				ve.Add(fmt.Sprintf("%d.%s", i, key), fmt.Sprintf("The %s must be a string.", key))
				continue
			}
			if key == "fieldname" {
				f.Field = s
			} else {
				f.Operator = s
			}
		}
		f.Criteria = item["criteria"]
		filters = append(filters, f)
	}

	if err := e.Filters(filters); err != nil {
		fe, ok := AsValidationError(err)
		if !ok {
			return nil, err
		}
		for field, msgs := range fe.Errors {
			if _, typed := ve.Errors[field]; typed {
				continue
			}
			for _, msg := range msgs {
				ve.Add(field, msg)
			}
		}
	}
	if ve.HasErrors() {
		return nil, ve
	}
	return filters, nil
}
