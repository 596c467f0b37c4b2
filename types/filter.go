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

// Filter is one field/operator/value constraint of a criteria query.
// A list of filters is AND-combined in declaration order.
type Filter struct {
	Field    string `json:"fieldname" validate:"required"`
	Operator string `json:"operator" validate:"required,max=10"`
	Criteria any    `json:"criteria" validate:"present"`
}

// NewFilter creates a filter from its three parts.
func NewFilter(field, operator string, criteria any) Filter {
	return Filter{Field: field, Operator: operator, Criteria: criteria}
}

// Where is shorthand for an equality filter.
func Where(field string, criteria any) Filter {
	return NewFilter(field, "=", criteria)
}
