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

// Package response turns operation outcomes into JSON HTTP results and maps
// failures to status codes.
package response

import (
	"encoding/json"
	"net/http"
)

const (
	MsgBadRequest     = "Bad request"
	MsgRecordNotFound = "Record not found"
	MsgSQLError       = "Sql Error"
)

// Result is the outward shape of every operation: a status code, a short
// human message and the JSON body.
type Result struct {
	StatusCode int
	Message    string
	Payload    any
}

// JSON wraps any encodable payload.
func JSON(payload any, status int) *Result {
	return &Result{StatusCode: status, Payload: payload}
}

// Trans is JSON with a message that stays out of the body.
func Trans(payload any, status int, message string) *Result {
	return &Result{StatusCode: status, Message: message, Payload: payload}
}

// Message renders {"message": message}.
func Message(message string, status int) *Result {
	return &Result{StatusCode: status, Message: message, Payload: map[string]string{"message": message}}
}

// Error renders {"error": message}.
func Error(message string, status int) *Result {
	return &Result{StatusCode: status, Message: message, Payload: map[string]string{"error": message}}
}

// BadRequest is a 400 error, "Bad request" when message is empty.
func BadRequest(message string) *Result {
	if message == "" {
		message = MsgBadRequest
	}
	return Error(message, http.StatusBadRequest)
}

// NotFound is a 404 error, "Record not found" when message is empty.
func NotFound(message string) *Result {
	if message == "" {
		message = MsgRecordNotFound
	}
	return Error(message, http.StatusNotFound)
}

// QueryFailure is a 400 error carrying err's text unless a custom message
// replaces it.
func QueryFailure(err error, message string) *Result {
	if message == "" || message == MsgSQLError {
		message = MsgSQLError
		if err != nil && err.Error() != "" {
			message = err.Error()
		}
	}
	return Error(message, http.StatusBadRequest)
}

func (r *Result) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Write encodes the payload with the result's status code.
func (r *Result) Write(w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(r.StatusCode)
	if r.Payload == nil {
		_, err := w.Write([]byte("null\n"))
		return err
	}
	return json.NewEncoder(w).Encode(r.Payload)
}
