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

package database

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
)

// SQLError is the driver-independent kind of a store failure.
type SQLError int

const (
	UnknownErr SQLError = iota
	NoRowsErr
	NoIndexErr
	NoColumnErr
	ExistIndexErr
	ExistColumnErr
	NoTableErr
	ExistTableErr
	DuplicateKeyErr
	NotNullViolationErr
	ForeignKeyViolationErr
	CheckConstraintViolationErr
	DataTruncatedErr
	InvalidTypeCastErr
	SyntaxErr
)

var sqlErrorNames = [...]string{
	UnknownErr:                  "unknown",
	NoRowsErr:                   "no_rows",
	NoIndexErr:                  "no_index",
	NoColumnErr:                 "no_column",
	ExistIndexErr:               "exist_index",
	ExistColumnErr:              "exist_column",
	NoTableErr:                  "no_table",
	ExistTableErr:               "exist_table",
	DuplicateKeyErr:             "duplicate_key",
	NotNullViolationErr:         "not_null_violation",
	ForeignKeyViolationErr:      "foreign_key_violation",
	CheckConstraintViolationErr: "check_violation",
	DataTruncatedErr:            "data_truncated",
	InvalidTypeCastErr:          "invalid_type_cast",
	SyntaxErr:                   "syntax",
}

func (e SQLError) String() string {
	if int(e) < len(sqlErrorNames) {
		return sqlErrorNames[e]
	}
	return sqlErrorNames[UnknownErr]
}

// IsConstraintViolation reports whether the kind is an integrity constraint.
func (e SQLError) IsConstraintViolation() bool {
	switch e {
	case DuplicateKeyErr, NotNullViolationErr, ForeignKeyViolationErr, CheckConstraintViolationErr:
		return true
	}
	return false
}

// IsSqlError reports whether err came from the database driver and, if so,
// which kind of failure it is. MySQL and PostgreSQL errors are matched by code,
// everything else (SQLite, wrapped errors) by message text.
func IsSqlError(err error) (is bool, sqlErr SQLError) {
	if err == nil {
		return false, UnknownErr
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return true, mysqlErrorKind(mysqlErr.Number)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return true, pqErrorKind(pqErr.Code)
	}
	return matchErrorText(strings.ToLower(err.Error()))
}

func mysqlErrorKind(number uint16) SQLError {
	switch number {
	case 1091:
		return NoIndexErr
	case 1054:
		return NoColumnErr
	case 1061:
		return ExistIndexErr
	case 1060:
		return ExistColumnErr
	case 1146:
		return NoTableErr
	case 1050:
		return ExistTableErr
	case 1062:
		return DuplicateKeyErr
	case 1048:
		return NotNullViolationErr
	case 1216, 1217, 1451, 1452:
		return ForeignKeyViolationErr
	case 3819:
		return CheckConstraintViolationErr
	case 1265, 1406:
		return DataTruncatedErr
	case 1064:
		return SyntaxErr
	default:
		return UnknownErr
	}
}

func pqErrorKind(code pq.ErrorCode) SQLError {
	switch code {
	case "23505":
		return DuplicateKeyErr
	case "23502":
		return NotNullViolationErr
	case "23503":
		return ForeignKeyViolationErr
	case "23514":
		return CheckConstraintViolationErr
	case "42703":
		return NoColumnErr
	case "42704":
		return NoIndexErr
	case "42P01":
		return NoTableErr
	case "42P07":
		return ExistTableErr
	case "42701":
		return ExistColumnErr
	case "22001":
		return DataTruncatedErr
	case "42804", "22P02":
		return InvalidTypeCastErr
	case "42601":
		return SyntaxErr
	}
	return UnknownErr
}

func matchErrorText(s string) (bool, SQLError) {
	switch {
	case strings.Contains(s, "sqlstate 42703"),
		strings.Contains(s, "undefined column"),
		strings.Contains(s, "no such column"):
		return true, NoColumnErr
	case strings.Contains(s, "sqlstate 42704"),
		strings.Contains(s, "no such index"):
		return true, NoIndexErr
	case strings.Contains(s, "sqlstate 42p01"),
		strings.Contains(s, "undefined table"),
		strings.Contains(s, "no such table"):
		return true, NoTableErr
	case strings.Contains(s, "already exists") && strings.Contains(s, "index"):
		return true, ExistIndexErr
	case strings.Contains(s, "already exists") && (strings.Contains(s, "table") || strings.Contains(s, "relation")):
		return true, ExistTableErr
	case strings.Contains(s, "duplicate key value"),
		strings.Contains(s, "unique constraint failed"),
		strings.Contains(s, "sqlstate 23505"):
		return true, DuplicateKeyErr
	case strings.Contains(s, "not-null constraint"),
		strings.Contains(s, "not null constraint failed"),
		strings.Contains(s, "sqlstate 23502"):
		return true, NotNullViolationErr
	case strings.Contains(s, "foreign key violation"),
		strings.Contains(s, "foreign key constraint failed"),
		strings.Contains(s, "sqlstate 23503"):
		return true, ForeignKeyViolationErr
	case strings.Contains(s, "check constraint"),
		strings.Contains(s, "sqlstate 23514"):
		return true, CheckConstraintViolationErr
	case strings.Contains(s, "string data right truncation"),
		strings.Contains(s, "data truncated"),
		strings.Contains(s, "sqlstate 22001"):
		return true, DataTruncatedErr
	case strings.Contains(s, "datatype mismatch"),
		strings.Contains(s, "sqlstate 42804"):
		return true, InvalidTypeCastErr
	case strings.Contains(s, "syntax error"):
		return true, SyntaxErr
	}
	return false, UnknownErr
}
