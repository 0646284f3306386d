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

package originguard

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/storefront/reqguard/guard"
)

const tokenBytes = 32

// GenerateToken returns 256 random bits as 64 lowercase hex characters.
func GenerateToken() string {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b)
}

// TokenHandler issues a fresh double-submit token. The token is returned as
// {"csrfToken": "..."} and set as a SameSite=Strict cookie that scripts can
// read, so the client can echo it in the token header.
type TokenHandler struct {
	Mode guard.Mode
	// CookieName defaults to DefaultTokenCookie.
	CookieName string
}

// ServeHTTP implements guard.Handler.
func (h TokenHandler) ServeHTTP(w guard.ResponseWriter, r *guard.IncomingRequest) guard.Result {
	name := h.CookieName
	if name == "" {
		name = DefaultTokenCookie
	}
	token := GenerateToken()
	c := guard.NewCookie(name, token, h.Mode)
	// The client reads the token back to echo it in the token header.
	c.HttpOnly = false
	c.SameSite = http.SameSiteStrictMode
	if err := w.AddCookie(c); err != nil {
		return w.WriteError(guard.StatusInternalServerError)
	}
	w.Header().Set("Cache-Control", "no-store")
	return w.Write(guard.JSONResponse{Data: map[string]string{"csrfToken": token}})
}
