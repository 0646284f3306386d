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

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/storefront/reqguard/guard"
	"github.com/storefront/reqguard/guard/plugins/originguard"
	"github.com/storefront/reqguard/guard/plugins/secheaders"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reqguard.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("SHOP_CDN", "https://cdn.shop.example")
	path := writeConfig(t, `
mode: development
server:
  addr: ":9000"
  trust_forwarded_proto: true
csrf:
  exempt_paths: ["/api/webhook/stripe"]
headers:
  enforce: true
  trusted_domains:
    images: ["${SHOP_CDN}"]
logging:
  level: debug
  pretty: true
`)

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, guard.Development, c.Mode)
	assert.Equal(t, ":9000", c.Server.Addr)
	assert.True(t, c.Server.TrustForwardedProto)
	assert.Equal(t, int64(DefaultMaxBodyBytes), c.Server.MaxBodyBytes)
	assert.Equal(t, []string{"/api/webhook/stripe"}, c.CSRF.ExemptPaths)
	assert.Equal(t, originguard.DefaultTokenCookie, c.CSRF.TokenCookie)
	assert.Equal(t, []string{"https://cdn.shop.example"}, c.Headers.TrustedDomains.Images)
	assert.Equal(t, secheaders.Enforce, c.HeaderPolicy())
	assert.Equal(t, "debug", c.Logging.Level)
	assert.True(t, c.Logging.Pretty)

	opts := c.GuardOptions()
	assert.True(t, opts.TrustForwardedProto)
	assert.Equal(t, originguard.DefaultTokenHeader, opts.TokenHeader)
}

func TestLoadWithoutFile(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, guard.Production, c.Mode)
	assert.Equal(t, DefaultAddr, c.Server.Addr)
	assert.Equal(t, DefaultMetricsAddr, c.Server.MetricsAddr)
	assert.Equal(t, originguard.DefaultExemptPaths, c.CSRF.ExemptPaths)
	assert.Equal(t, secheaders.YieldToExisting, c.HeaderPolicy())
}

func TestLoadJSON(t *testing.T) {
	c, err := Load(writeConfig(t, `{"mode": "prod", "csrf": {"exempt_paths": []}}`))
	require.NoError(t, err)
	assert.Equal(t, guard.Production, c.Mode)
	assert.NotNil(t, c.CSRF.ExemptPaths)
	assert.Empty(t, c.CSRF.ExemptPaths)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv(EnvMode, "dev")
	t.Setenv(EnvAddr, "127.0.0.1:7000")
	t.Setenv(EnvMetricsAddr, "127.0.0.1:7001")
	t.Setenv(EnvLogLevel, "warn")

	c, err := Load(writeConfig(t, "mode: production\nserver:\n  addr: \":9000\"\n"))
	require.NoError(t, err)
	assert.Equal(t, guard.Development, c.Mode)
	assert.Equal(t, "127.0.0.1:7000", c.Server.Addr)
	assert.Equal(t, "127.0.0.1:7001", c.Server.MetricsAddr)
	assert.Equal(t, "warn", c.Logging.Level)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     string
		wantErr string
	}{
		{name: "bad yaml", content: "mode: [", wantErr: "failed to parse config YAML"},
		{name: "bad mode", content: "mode: staging", wantErr: "invalid mode"},
		{name: "bad mode override", env: "staging", wantErr: EnvMode},
		{name: "relative exempt path", content: "csrf:\n  exempt_paths: [api/health]\n", wantErr: "must start with /"},
		{name: "metrics on the public listener", content: "server:\n  addr: \":9000\"\n  metrics_addr: \":9000\"\n", wantErr: "metrics_addr"},
		{name: "bad cookie name", content: "csrf:\n  token_cookie: \"a;b\"\n", wantErr: "token_cookie"},
		{name: "injected source", content: "headers:\n  trusted_domains:\n    scripts: [\"https://a.example; script-src *\"]\n", wantErr: "headers"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.env != "" {
				t.Setenv(EnvMode, tt.env)
			}
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.Equal(t, guard.Production, c.HeaderOptions().Mode)
}
