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
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/safehtml"
)

// Dispatcher is responsible for writing a response received from the
// ResponseWriter to the underlying http.ResponseWriter.
//
// The implementation of a custom Dispatcher should be thoroughly reviewed by
// the security team to avoid introducing vulnerabilities.
type Dispatcher interface {
	// Write writes a Response to the underlying http.ResponseWriter.
	//
	// Write is responsible for setting the Content-Type response header. It
	// should return an error if the writing operation fails or if the
	// provided Response should not be written because it's unsafe.
	Write(rw http.ResponseWriter, resp Response) error

	// Error writes an ErrorResponse to the underlying http.ResponseWriter.
	//
	// Error is responsible for setting the Content-Type response header and
	// the HTTP response status code. It should always attempt to write a
	// response, no matter what is the underlying type of resp.
	Error(rw http.ResponseWriter, resp ErrorResponse) error
}

// DefaultDispatcher writes JSON and github.com/google/safehtml responses.
type DefaultDispatcher struct{}

// Write writes JSONResponse values as application/json and safehtml.HTML as
// text/html. Any other type is refused.
func (DefaultDispatcher) Write(rw http.ResponseWriter, resp Response) error {
	switch x := resp.(type) {
	case JSONResponse:
		return WriteJSONBody(rw, x.Status, x.Data)
	case *JSONResponse:
		return WriteJSONBody(rw, x.Status, x.Data)
	case safehtml.HTML:
		rw.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, err := io.WriteString(rw, x.String())
		return err
	default:
		return fmt.Errorf("%T is not a safe response type and it cannot be written", resp)
	}
}

// Error writes the status text of resp.Code() as text/plain.
func (DefaultDispatcher) Error(rw http.ResponseWriter, resp ErrorResponse) error {
	writeTextError(rw, resp.Code())
	return nil
}

// ErrEncoding is returned by WriteJSONBody when data cannot be encoded. In
// that case nothing has been written.
var ErrEncoding = errors.New("encoding JSON response")

// WriteJSONBody encodes data and writes it with the given status (200 OK when
// zero) and Content-Type application/json. Encoding happens before anything is
// written, so an unencodable value leaves the response untouched.
func WriteJSONBody(rw http.ResponseWriter, status StatusCode, data any) error {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(data); err != nil {
		return fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	if status == 0 {
		status = StatusOK
	}
	rw.Header().Set("Content-Type", "application/json")
	rw.WriteHeader(int(status))
	_, err := rw.Write(buf.Bytes())
	return err
}
