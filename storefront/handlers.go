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

package storefront

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/storefront/reqguard/config"
	"github.com/storefront/reqguard/guard"
	"github.com/storefront/reqguard/guard/plugins/apierror"
	"github.com/storefront/reqguard/guard/plugins/originguard"
	"github.com/storefront/reqguard/guard/plugins/requestid"
	"github.com/storefront/reqguard/logging"
	"github.com/storefront/reqguard/sanitize"
)

const ordersPrefix = "/api/orders/"

// OrderSchema lists the customer fields accepted by save-order.
var OrderSchema = sanitize.Schema{
	"name":     sanitize.KindName,
	"email":    sanitize.KindEmail,
	"phone":    sanitize.KindPhone,
	"address":  sanitize.KindAddress,
	"notes":    sanitize.KindString,
	"quantity": sanitize.KindNumber,
	"giftWrap": sanitize.KindBoolean,
}

type serverDeps struct {
	store        OrderStore
	n            apierror.Normalizer
	logger       *zerolog.Logger
	maxBodyBytes int64
	now          func() time.Time
}

// Load registers the storefront routes on c.
func Load(c *guard.ServeMuxConfig, cfg *config.Config, deps Deps) {
	d := &serverDeps{
		store:        deps.Store,
		n:            normalizer(cfg, deps),
		logger:       logging.Or(deps.Logger),
		maxBodyBytes: cfg.Server.MaxBodyBytes,
		now:          time.Now,
	}

	c.Handle("/api/save-order", guard.MethodPost, saveOrderHandler(d))
	c.Handle(ordersPrefix, guard.MethodGet, getOrderHandler(d))
	c.Handle("/api/orders/lookup", guard.MethodPost, lookupOrderHandler(d))
	c.Handle("/api/webhook/stripe", guard.MethodPost, webhookHandler())
	c.Handle("/api/csrf-token", guard.MethodGet, originguard.TokenHandler{Mode: cfg.Mode, CookieName: cfg.CSRF.TokenCookie})
	c.HandleFunc("/api/health", guard.MethodGet, func(w guard.ResponseWriter, _ *guard.IncomingRequest) guard.Result {
		return guard.WriteJSON(w, map[string]string{"status": "ok"})
	})
}

// decodeBody writes the error response itself when it returns false.
func (d *serverDeps) decodeBody(w guard.ResponseWriter, r *guard.IncomingRequest, v any) (guard.Result, bool) {
	err := r.DecodeJSON(v, d.maxBodyBytes)
	switch {
	case err == nil:
		return guard.NotWritten(), true
	case errors.Is(err, guard.ErrBodyTooLarge):
		return w.WriteError(guard.StatusRequestEntityTooLarge), false
	case errors.Is(err, guard.ErrNotJSON):
		return w.WriteError(guard.StatusUnsupportedMediaType), false
	default:
		return w.WriteError(d.n.Validation("Cuerpo JSON inválido", err.Error())), false
	}
}

func saveOrderHandler(d *serverDeps) guard.Handler {
	return guard.HandlerFunc(func(w guard.ResponseWriter, r *guard.IncomingRequest) guard.Result {
		var raw map[string]any
		if res, ok := d.decodeBody(w, r, &raw); !ok {
			return res
		}

		customer := sanitize.Object(raw, OrderSchema)
		if _, ok := customer["email"]; !ok {
			return w.WriteError(d.n.Validation("Email inválido", map[string]string{"field": "email"}))
		}

		var items any
		if v, ok := raw["items"]; ok && v != nil {
			list, isList := v.([]any)
			if !isList {
				return w.WriteError(d.n.Validation("Artículos inválidos", map[string]string{"field": "items"}))
			}
			clean, err := sanitize.DocumentValue(list)
			if err != nil {
				return w.WriteError(d.n.Validation("Artículos inválidos", err.Error()))
			}
			items = clean
		}

		o := Order{
			ID:        uuid.NewString(),
			Customer:  customer,
			Items:     items,
			CreatedAt: d.now().UTC(),
		}
		if err := d.store.Save(r.Context(), o); err != nil {
			return w.WriteError(d.n.Error(r.Context(), err, "save order", guard.StatusInternalServerError))
		}
		d.logger.Info().
			Str("order_id", o.ID).
			Str("request_id", requestid.FromContext(r.Context())).
			Msg("order saved")
		return w.Write(apierror.Success(map[string]string{"id": o.ID}, guard.StatusCreated))
	})
}

func getOrderHandler(d *serverDeps) guard.Handler {
	return guard.HandlerFunc(func(w guard.ResponseWriter, r *guard.IncomingRequest) guard.Result {
		id := strings.TrimPrefix(r.URL().Path, ordersPrefix)
		if !sanitize.ValidateSafeID(id) {
			return w.WriteError(d.n.Validation("Identificador inválido", nil))
		}
		return d.writeOrder(w, r, id, "")
	})
}

func lookupOrderHandler(d *serverDeps) guard.Handler {
	return guard.HandlerFunc(func(w guard.ResponseWriter, r *guard.IncomingRequest) guard.Result {
		var req struct {
			ID    string `json:"id"`
			Email string `json:"email"`
		}
		if res, ok := d.decodeBody(w, r, &req); !ok {
			return res
		}
		email, ok := sanitize.Email(req.Email)
		if !ok || !sanitize.ValidateSafeID(req.ID) {
			return w.WriteError(d.n.Validation("Identificador o email inválido", nil))
		}
		return d.writeOrder(w, r, req.ID, email)
	})
}

// writeOrder responds with the stored order. A non-empty email must match the
// stored one; a mismatch looks like an unknown order.
func (d *serverDeps) writeOrder(w guard.ResponseWriter, r *guard.IncomingRequest, id, email string) guard.Result {
	o, err := d.store.Get(r.Context(), id)
	switch {
	case errors.Is(err, ErrOrderNotFound):
		return w.WriteError(apierror.NotFound(""))
	case err != nil:
		return w.WriteError(d.n.Error(r.Context(), err, "get order", guard.StatusInternalServerError))
	}
	if email != "" && o.Customer["email"] != email {
		return w.WriteError(apierror.NotFound(""))
	}
	return w.Write(apierror.Success(o, guard.StatusOK))
}

// webhookHandler acknowledges payment events. The path is exempt from the
// origin checks; verifying the provider signature is left to the payment
// integration.
func webhookHandler() guard.Handler {
	return guard.HandlerFunc(func(w guard.ResponseWriter, _ *guard.IncomingRequest) guard.Result {
		return w.Write(apierror.Success(map[string]bool{"received": true}, guard.StatusOK))
	})
}
