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

// Package config loads the reqguard process configuration. Configuration is
// read once at start-up and is not reloaded.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/storefront/reqguard/guard"
	"github.com/storefront/reqguard/guard/plugins/originguard"
	"github.com/storefront/reqguard/guard/plugins/secheaders"
	"github.com/storefront/reqguard/logging"
	"gopkg.in/yaml.v3"
)

// Environment variables that override values from the file.
const (
	EnvMode        = "REQGUARD_MODE"
	EnvAddr        = "REQGUARD_ADDR"
	EnvMetricsAddr = "REQGUARD_METRICS_ADDR"
	EnvLogLevel    = "REQGUARD_LOG_LEVEL"
)

const (
	DefaultAddr         = ":8080"
	DefaultMetricsAddr  = "localhost:9090"
	DefaultMaxBodyBytes = 1 << 20
)

// Config is the top level configuration.
type Config struct {
	Mode    guard.Mode     `yaml:"mode"`
	Server  Server         `yaml:"server"`
	CSRF    CSRF           `yaml:"csrf"`
	Headers Headers        `yaml:"headers"`
	Logging logging.Config `yaml:"logging"`
}

// Server configures the listener.
type Server struct {
	Addr string `yaml:"addr"`
	// MetricsAddr is the admin listener serving /metrics. It is kept off
	// the public listener.
	MetricsAddr string `yaml:"metrics_addr"`
	// TrustForwardedProto honours X-Forwarded-Proto when computing the
	// expected origin. Enable it only behind a TLS terminating proxy.
	TrustForwardedProto bool `yaml:"trust_forwarded_proto"`
	// RedirectHTTP sends plain HTTP requests to HTTPS in production.
	RedirectHTTP bool  `yaml:"redirect_http"`
	MaxBodyBytes int64 `yaml:"max_body_bytes"`
}

// CSRF configures the origin guard.
type CSRF struct {
	// ExemptPaths replaces the default exempt list when present, even if
	// empty.
	ExemptPaths []string `yaml:"exempt_paths"`
	TokenCookie string   `yaml:"token_cookie"`
	TokenHeader string   `yaml:"token_header"`
}

// Headers configures the security header set.
type Headers struct {
	ContentSecurityPolicy string `yaml:"content_security_policy"`
	// Enforce overwrites headers a handler already set.
	Enforce        bool                      `yaml:"enforce"`
	TrustedDomains secheaders.TrustedDomains `yaml:"trusted_domains"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	c := &Config{}
	c.setDefaults()
	return c
}

// Load reads the YAML file at path, expands ${VAR} references, applies the
// REQGUARD_* overrides and validates the result. An empty path loads only
// defaults and overrides.
func Load(path string) (*Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	if err := c.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Parse decodes YAML (or JSON) configuration and fills in defaults. It does
// not consult override variables.
func Parse(data []byte) (*Config, error) {
	c := &Config{}
	expanded := os.ExpandEnv(string(data))
	if strings.TrimSpace(expanded) != "" {
		if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
			return nil, fmt.Errorf("failed to parse config YAML: %w", err)
		}
	}
	c.setDefaults()
	return c, nil
}

func (c *Config) setDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Server.MetricsAddr == "" {
		c.Server.MetricsAddr = DefaultMetricsAddr
	}
	if c.Server.MaxBodyBytes <= 0 {
		c.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.CSRF.ExemptPaths == nil {
		c.CSRF.ExemptPaths = append([]string(nil), originguard.DefaultExemptPaths...)
	}
	if c.CSRF.TokenCookie == "" {
		c.CSRF.TokenCookie = originguard.DefaultTokenCookie
	}
	if c.CSRF.TokenHeader == "" {
		c.CSRF.TokenHeader = originguard.DefaultTokenHeader
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvMode); ok {
		m, err := guard.ParseMode(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvMode, err)
		}
		c.Mode = m
	}
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Server.Addr = v
	}
	if v, ok := lookup(EnvMetricsAddr); ok && v != "" {
		c.Server.MetricsAddr = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Logging.Level = v
	}
	return nil
}

// Validate checks values that cannot be fixed by defaults.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.MetricsAddr == c.Server.Addr {
		errs = append(errs, fmt.Errorf("server.metrics_addr: must differ from server.addr %q", c.Server.Addr))
	}
	for _, p := range c.CSRF.ExemptPaths {
		if !strings.HasPrefix(p, "/") {
			errs = append(errs, fmt.Errorf("csrf.exempt_paths: %q must start with /", p))
		}
	}
	if strings.ContainsAny(c.CSRF.TokenCookie, " ;,=\t") {
		errs = append(errs, fmt.Errorf("csrf.token_cookie: invalid cookie name %q", c.CSRF.TokenCookie))
	}
	if err := c.HeaderOptions().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("headers: %w", err))
	}
	return errors.Join(errs...)
}

// GuardOptions returns the origin guard options.
func (c *Config) GuardOptions() originguard.Options {
	return originguard.Options{
		ExemptPaths:         c.CSRF.ExemptPaths,
		TrustForwardedProto: c.Server.TrustForwardedProto,
		TokenHeader:         c.CSRF.TokenHeader,
		TokenCookie:         c.CSRF.TokenCookie,
	}
}

// HeaderOptions returns the security header options.
func (c *Config) HeaderOptions() secheaders.Options {
	return secheaders.Options{
		Mode:                  c.Mode,
		ContentSecurityPolicy: c.Headers.ContentSecurityPolicy,
		TrustedDomains:        c.Headers.TrustedDomains,
	}
}

// HeaderPolicy returns the override policy for the security headers.
func (c *Config) HeaderPolicy() secheaders.Policy {
	if c.Headers.Enforce {
		return secheaders.Enforce
	}
	return secheaders.YieldToExisting
}
