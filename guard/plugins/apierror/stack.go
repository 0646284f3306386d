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

import "runtime/debug"

// WithStack records the current goroutine stack on err. Development
// responses and logs show it as the error details. WithStack(nil) is nil.
func WithStack(err error) error {
	if err == nil {
		return nil
	}
	return &stackError{err: err, stack: debug.Stack()}
}

type stackError struct {
	err   error
	stack []byte
}

func (e *stackError) Error() string      { return e.err.Error() }
func (e *stackError) Unwrap() error      { return e.err }
func (e *stackError) StackTrace() string { return string(e.stack) }
