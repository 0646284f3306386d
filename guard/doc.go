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

// Package guard is the request-gating pipeline that sits in front of the
// storefront business handlers. Every inbound request is validated before it
// reaches a handler and every outgoing response, success or error, is
// decorated on its way out.
//
// # Interceptors
//
// Security features are installed as Interceptors. An Interceptor has a Before
// method, which runs before the handler and can reject the request by writing
// a response, and a Commit method, which runs after a response was chosen and
// can still set headers and cookies. The plugins in guard/plugins implement
// the origin guard (CSRF), the security header composer, request ids and the
// error surface normalizer.
//
// # Life of a Request
//
//  1. The ServeMux routes the request. Unknown methods on a known pattern and
//     unknown paths are answered through the same pipeline so that they get
//     the same headers as every other response.
//
//  2. [Before phase] Interceptors run in installation order. The first one
//     that writes a response stops the chain: neither the remaining Before
//     methods nor the handler run.
//
//  3. The Handler calls exactly one write method of the ResponseWriter
//     (Write, WriteError, Redirect or NoContent). A handler that returns
//     without writing gets 204 No Content.
//
//  4. [Commit phase] Commit methods run in LIFO order, for every installed
//     interceptor, including on error and redirect responses.
//
//  5. [Dispatcher] The Dispatcher serialises the response to the underlying
//     http.ResponseWriter and decides its Content-Type.
//
// Stack trace of the flow:
//
//	ServeMux.ServeHTTP()
//	--+ RequestID.Before()
//	--+ SecHeaders.Before()
//	--+ OriginGuard.Before()
//	--+ Handler()
//	----+ ResponseWriter.Write
//	------+ OriginGuard.Commit()
//	------+ SecHeaders.Commit()
//	------+ RequestID.Commit()
//	------+ Dispatcher.Write()
//
// # Panics
//
// A panic in an interceptor or handler never takes the process down. If no
// bytes reached the client yet, the headers set so far are dropped and a
// *PanicError is written through WriteError, so the configured Dispatcher can
// turn it into a normalised 500 response.
//
// # Mode
//
// The framework has no global development switch. A Mode value is injected
// into each plugin that needs one.
package guard
