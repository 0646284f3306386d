// Copyright 2025 The reqguard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package guard

import (
	"fmt"
	"net/http"
)

// Response should encapsulate the data passed to the ResponseWriter to be
// written by the Dispatcher. Which types are accepted is up to the
// Dispatcher.
type Response any

// ErrorResponse is a Response that carries an HTTP error status. A bare
// StatusCode is a valid ErrorResponse.
type ErrorResponse interface {
	Code() StatusCode
}

// JSONResponse is a Response that is serialised as application/json. A zero
// Status means 200 OK.
type JSONResponse struct {
	Status StatusCode
	Data   any
}

// WriteJSON writes data as a 200 OK JSON response.
func WriteJSON(w ResponseWriter, data any) Result {
	return w.Write(JSONResponse{Data: data})
}

// RedirectResponse is passed to the Commit phase when a handler redirects.
type RedirectResponse struct {
	Location string
	Code     StatusCode
}

// NoContentResponse is passed to the Commit phase for 204 responses.
type NoContentResponse struct{}

// Result is returned by the write methods of the ResponseWriter. It carries
// no data; returning it is how handlers prove they wrote a response.
type Result struct{}

// NotWritten returns a Result which indicates that the Before stage of an
// Interceptor didn't write a response.
func NotWritten() Result {
	return Result{}
}

// PanicError is written as the error response when a handler or an
// interceptor panics before anything reached the client.
type PanicError struct {
	// Value is the value passed to panic.
	Value any
	// Stack is the goroutine stack at the time of recovery.
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("panic: %v", e.Value)
}

// Code implements ErrorResponse.
func (e *PanicError) Code() StatusCode {
	return StatusInternalServerError
}

// StackTrace returns the recovered stack.
func (e *PanicError) StackTrace() string {
	return string(e.Stack)
}

// Unwrap returns the panic value if it is an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}

func writeTextError(rw http.ResponseWriter, code StatusCode) {
	http.Error(rw, code.String(), int(code))
}
