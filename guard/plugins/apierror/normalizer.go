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

// Package apierror turns internal errors into client-safe JSON responses.
//
// Every error is logged in full before a response body is built. In
// production the body carries only a generic message and a code derived from
// a context label; in development it also carries the original message and
// the stack or error chain.
package apierror

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"github.com/storefront/reqguard/guard"
	"github.com/storefront/reqguard/guard/plugins/requestid"
	"github.com/storefront/reqguard/logging"
	"github.com/storefront/reqguard/metrics"
)

// Client-facing messages.
const (
	MsgInternal     = "Error interno del servidor"
	MsgUnknown      = "Error desconocido"
	MsgUnauthorized = "No autorizado"
	MsgForbidden    = "Acceso denegado"
	MsgNotFound     = "Recurso no encontrado"
)

// Body is the JSON body of an error response.
type Body struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// NormalizeContext derives an error code from a context label: the label is
// uppercased and every run of whitespace or hyphens becomes one underscore.
func NormalizeContext(label string) string {
	var b strings.Builder
	b.Grow(len(label))
	sep := false
	for _, r := range strings.ToUpper(label) {
		if unicode.IsSpace(r) || r == '-' {
			sep = true
			continue
		}
		if sep {
			b.WriteByte('_')
			sep = false
		}
		b.WriteRune(r)
	}
	if sep {
		b.WriteByte('_')
	}
	return b.String()
}

// Normalizer builds error bodies for a given mode. The zero value is a
// production normalizer logging to the global logger.
type Normalizer struct {
	Mode guard.Mode
	// Logger receives the full error. Nil means the global logger.
	Logger *zerolog.Logger
	// Metrics counts the responses written by Dispatcher and WriteJSON. It may
	// be nil.
	Metrics *metrics.Metrics
}

// HandleAPIError logs err with the request identifier found in ctx and
// returns the body to send to the client. A nil err, or one whose Error
// method panics, is reported as MsgUnknown.
func (n Normalizer) HandleAPIError(ctx context.Context, err error, label string) Body {
	return n.handle(requestid.FromContext(ctx), err, label)
}

func (n Normalizer) handle(reqID string, err error, label string) Body {
	code := NormalizeContext(label)
	msg := message(err)
	details := describe(err)

	ev := logging.Or(n.Logger).Error().
		Str("code", code).
		Str("error", msg)
	if reqID != "" {
		ev = ev.Str("request_id", reqID)
	}
	switch d := details.(type) {
	case string:
		ev = ev.Str("stack", d)
	case []string:
		ev = ev.Strs("chain", d)
	}
	ev.Msg("api error")

	if n.Mode.IsProduction() {
		return Body{Error: MsgInternal, Code: code}
	}
	return Body{Error: msg, Code: code, Details: details}
}

// message returns err.Error(), or MsgUnknown when there is no usable message.
func message(err error) (msg string) {
	if err == nil {
		return MsgUnknown
	}
	defer func() {
		if recover() != nil {
			msg = MsgUnknown
		}
	}()
	if msg = err.Error(); msg == "" {
		return MsgUnknown
	}
	return msg
}

type stackTracer interface {
	StackTrace() string
}

// describe returns the stack recorded in err's chain, or the messages of the
// chain when no stack was recorded. It returns nil when there is nothing
// beyond the top-level message.
func describe(err error) (d any) {
	if err == nil {
		return nil
	}
	defer func() {
		if recover() != nil {
			d = nil
		}
	}()
	var st stackTracer
	if errors.As(err, &st) {
		return st.StackTrace()
	}
	var chain []string
	for e := errors.Unwrap(err); e != nil; e = errors.Unwrap(e) {
		chain = append(chain, e.Error())
	}
	if len(chain) == 0 {
		return nil
	}
	return append([]string{err.Error()}, chain...)
}
