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

// Package storefront is the storefront API served behind the request guard.
// It wires the interceptors in the order requestid, secheaders, originguard
// and registers the order endpoints.
package storefront

import (
	"github.com/rs/zerolog"
	"github.com/storefront/reqguard/config"
	"github.com/storefront/reqguard/guard"
	"github.com/storefront/reqguard/guard/plugins/apierror"
	"github.com/storefront/reqguard/guard/plugins/originguard"
	"github.com/storefront/reqguard/guard/plugins/requestid"
	"github.com/storefront/reqguard/guard/plugins/secheaders"
	"github.com/storefront/reqguard/logging"
	"github.com/storefront/reqguard/metrics"
)

// Deps are the collaborators of the storefront handlers.
type Deps struct {
	// Store defaults to a new MemoryStore.
	Store OrderStore
	// Logger defaults to the global logger.
	Logger  *zerolog.Logger
	Metrics *metrics.Metrics
}

// NewMuxConfig creates a ServeMuxConfig with the guard interceptors
// installed and the JSON error dispatcher.
func NewMuxConfig(cfg *config.Config, deps Deps) (*guard.ServeMuxConfig, error) {
	logger := logging.Or(deps.Logger)
	headers, err := secheaders.NewInterceptor(secheaders.Config{
		Options:      cfg.HeaderOptions(),
		Policy:       cfg.HeaderPolicy(),
		RedirectHTTP: cfg.Server.RedirectHTTP,
		Logger:       logger,
		Metrics:      deps.Metrics,
	})
	if err != nil {
		return nil, err
	}

	c := guard.NewServeMuxConfig(apierror.Dispatcher{Normalizer: normalizer(cfg, deps)})
	c.Intercept(requestid.Interceptor{})
	c.Intercept(headers)
	c.Intercept(originguard.NewInterceptor(originguard.New(cfg.GuardOptions()), logger, deps.Metrics))
	return c, nil
}

// New returns the storefront API with every route registered.
func New(cfg *config.Config, deps Deps) (*guard.ServeMux, error) {
	if deps.Store == nil {
		deps.Store = NewMemoryStore()
	}
	c, err := NewMuxConfig(cfg, deps)
	if err != nil {
		return nil, err
	}
	Load(c, cfg, deps)
	return c.Mux(), nil
}

func normalizer(cfg *config.Config, deps Deps) apierror.Normalizer {
	return apierror.Normalizer{Mode: cfg.Mode, Logger: logging.Or(deps.Logger), Metrics: deps.Metrics}
}
