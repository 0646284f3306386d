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

package apierror

import (
	"errors"
	"net/http"

	"github.com/storefront/reqguard/guard"
	"github.com/storefront/reqguard/guard/plugins/requestid"
)

// JSONBodier is implemented by error responses that carry their own JSON
// body, such as CSRF rejections.
type JSONBodier interface {
	guard.ErrorResponse
	ResponseBody() any
}

// Dispatcher writes every error as a JSON body. Successful responses of type
// *Response are written as JSON too; anything else goes to the embedded
// guard.DefaultDispatcher.
type Dispatcher struct {
	guard.DefaultDispatcher
	Normalizer Normalizer
}

var _ guard.Dispatcher = Dispatcher{}

// Write writes *Response values as JSON and defers to DefaultDispatcher for
// other types.
func (d Dispatcher) Write(rw http.ResponseWriter, resp guard.Response) error {
	if r, ok := resp.(*Response); ok {
		return d.write(rw, r.Status, r.Body)
	}
	return d.DefaultDispatcher.Write(rw, resp)
}

// Error writes resp as a JSON error:
//   - bodies provided by the response (*Response, CSRF rejections) verbatim
//   - *guard.PanicError normalised under the "panic" label
//   - any other status with a generic body for that status
func (d Dispatcher) Error(rw http.ResponseWriter, resp guard.ErrorResponse) error {
	status := resp.Code()
	var body any
	switch x := resp.(type) {
	case *guard.PanicError:
		reqID := rw.Header().Get(requestid.HeaderName)
		body = d.Normalizer.handle(reqID, x, "panic")
	case JSONBodier:
		body = x.ResponseBody()
	default:
		body = statusBody(status)
	}
	return d.write(rw, status, body)
}

func (d Dispatcher) write(rw http.ResponseWriter, status guard.StatusCode, body any) error {
	if status >= 400 {
		code := ""
		if b, ok := body.(Body); ok {
			code = b.Code
		}
		d.Normalizer.Metrics.RecordAPIError(code, int(status))
	}
	err := guard.WriteJSONBody(rw, status, body)
	if errors.Is(err, guard.ErrEncoding) {
		// Nothing was written yet; fall back to a body that always encodes.
		d.Normalizer.handle(rw.Header().Get(requestid.HeaderName), err, "encode response")
		return guard.WriteJSONBody(rw, guard.StatusInternalServerError, Body{Error: MsgInternal, Code: "ENCODE_RESPONSE"})
	}
	return err
}

// WriteJSON writes resp to a plain net/http ResponseWriter with Content-Type
// application/json.
func WriteJSON(w http.ResponseWriter, resp *Response) error {
	return Dispatcher{}.write(w, resp.Status, resp.Body)
}
