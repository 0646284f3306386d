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
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/rs/zerolog"
	"github.com/storefront/reqguard/guard"
	"github.com/storefront/reqguard/guard/guardtest"
	"github.com/storefront/reqguard/guard/plugins/apierror"
)

func TestInterceptorRejects(t *testing.T) {
	var logs bytes.Buffer
	logger := zerolog.New(&logs)
	it := NewInterceptor(nil, &logger, nil)

	secret := "T0KEN-VALUE"
	req := guardtest.NewRequestWithHeaders(guard.MethodPost, saveOrder, nil, map[string]string{
		"Origin":       "http://evil.com",
		"X-CSRF-Token": secret,
	})
	rr := guardtest.NewResponseRecorderFromDispatcher(apierror.Dispatcher{})
	it.Before(rr.ResponseWriter, req)

	if rr.Status() != guard.StatusForbidden {
		t.Errorf("status got %d, want 403", rr.Status())
	}
	var body map[string]string
	if err := json.Unmarshal([]byte(rr.Body()), &body); err != nil {
		t.Fatalf("body %q: %v", rr.Body(), err)
	}
	want := map[string]string{"error": "CSRF validation failed", "code": "CSRF_VALIDATION_FAILED"}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Errorf("body mismatch (-want +got):\n%s", diff)
	}
	if strings.Contains(rr.Body(), "evil.com") {
		t.Error("rejection body leaks the validation reason")
	}

	out := logs.String()
	for _, want := range []string{`"level":"warn"`, `"reason":"invalid_origin"`, `"origin":"http://evil.com"`, Fingerprint(secret)} {
		if !strings.Contains(out, want) {
			t.Errorf("log %q does not contain %q", out, want)
		}
	}
	if strings.Contains(out, secret) {
		t.Error("log contains the raw token")
	}
}

func TestInterceptorAllows(t *testing.T) {
	nop := zerolog.Nop()
	it := NewInterceptor(nil, &nop, nil)
	req := guardtest.NewRequestWithHeaders(guard.MethodPost, saveOrder, nil, map[string]string{"Origin": "http://localhost:3000"})
	rr := guardtest.NewResponseRecorder()
	it.Before(rr.ResponseWriter, req)
	if rr.Written() {
		t.Error("Before() wrote a response for a valid request")
	}
}

func TestFingerprint(t *testing.T) {
	a, b := Fingerprint("a"), Fingerprint("b")
	if len(a) != 16 || a == b || a != Fingerprint("a") {
		t.Errorf("Fingerprint() got %q and %q", a, b)
	}
}
