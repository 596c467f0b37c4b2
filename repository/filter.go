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
	"fmt"
	"reflect"
	"strings"

	"github.com/tomoncle/crudkit/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/schema"
)

type operatorKind int

const (
	opCompare operatorKind = iota
	opList
	opInsensitiveLike
)

// operators is the allow-list of criteria operators, keyed by their
// normalized spelling.
var operators = map[string]operatorKind{
	"=":         opCompare,
	"!=":        opCompare,
	"<>":        opCompare,
	"<":         opCompare,
	"<=":        opCompare,
	">":         opCompare,
	">=":        opCompare,
	"like":      opCompare,
	"not like":  opCompare,
	"ilike":     opInsensitiveLike,
	"not ilike": opInsensitiveLike,
	"in":        opList,
	"not in":    opList,
}

func normalizeOperator(op string) string {
	return strings.ToLower(strings.Join(strings.Fields(op), " "))
}

// SupportedOperator reports whether op may be used in a filter.
func SupportedOperator(op string) bool {
	_, ok := operators[normalizeOperator(op)]
	return ok
}

// applyFilters ANDs the filters onto query in order.
func applyFilters(query *bun.SelectQuery, table *schema.Table, filters []types.Filter) error {
	pg := query.DB().Dialect().Name() == dialect.PG
	for _, f := range filters {
		if !table.HasField(f.Field) {
			return &QueryError{Field: f.Field, Reason: "unknown column"}
		}
		op := normalizeOperator(f.Operator)
		kind, ok := operators[op]
		if !ok {
			return &QueryError{Field: f.Field, Reason: fmt.Sprintf("unsupported operator %q", f.Operator)}
		}
		column := bun.Ident(f.Field)
		upper := strings.ToUpper(op)

		switch kind {
		case opList:
			if !isList(f.Criteria) {
				return &QueryError{Field: f.Field, Reason: fmt.Sprintf("operator %q requires a list", op)}
			}
			query.Where("?TableAlias.? "+upper+" (?)", column, bun.In(f.Criteria))
		case opInsensitiveLike:
			if pg {
				query.Where("?TableAlias.? "+upper+" ?", column, f.Criteria)
				continue
			}
			like := "LIKE"
			if strings.HasPrefix(op, "not") {
				like = "NOT LIKE"
			}
			query.Where("LOWER(?TableAlias.?) "+like+" LOWER(?)", column, f.Criteria)
		default:
			if isList(f.Criteria) {
				return &QueryError{Field: f.Field, Reason: fmt.Sprintf("operator %q takes a single value", op)}
			}
			query.Where("?TableAlias.? "+upper+" ?", column, f.Criteria)
		}
	}
	return nil
}

// applyOrders accepts "column" or "column asc|desc".
func applyOrders(query *bun.SelectQuery, table *schema.Table, orders []string) error {
	for _, order := range orders {
		parts := strings.Fields(order)
		if len(parts) == 0 {
			continue
		}
		if len(parts) > 2 || !table.HasField(parts[0]) {
			return &QueryError{Field: parts[0], Reason: fmt.Sprintf("invalid order %q", order)}
		}
		direction := "ASC"
		if len(parts) == 2 {
			direction = strings.ToUpper(parts[1])
			if direction != "ASC" && direction != "DESC" {
				return &QueryError{Field: parts[0], Reason: fmt.Sprintf("invalid order %q", order)}
			}
		}
		query.OrderExpr("?TableAlias.? "+direction, bun.Ident(parts[0]))
	}
	return nil
}

func isList(v any) bool {
	if v == nil {
		return false
	}
	switch reflect.TypeOf(v).Kind() {
	case reflect.Slice, reflect.Array:
		_, isBytes := v.([]byte)
		return !isBytes
	}
	return false
}
