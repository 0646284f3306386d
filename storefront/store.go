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
	"context"
	"errors"
	"maps"
	"sync"
	"time"
)

// ErrOrderNotFound is returned by OrderStore.Get for unknown identifiers.
var ErrOrderNotFound = errors.New("order not found")

// Order is a sanitised order as stored.
type Order struct {
	ID        string         `json:"id"`
	Customer  map[string]any `json:"customer"`
	Items     any            `json:"items,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
}

// OrderStore persists orders. Identifiers are always valid safe IDs.
type OrderStore interface {
	Save(ctx context.Context, o Order) error
	Get(ctx context.Context, id string) (Order, error)
}

// MemoryStore is an OrderStore kept in process memory.
type MemoryStore struct {
	mu     sync.RWMutex
	orders map[string]Order
}

var _ OrderStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{orders: map[string]Order{}}
}

func (s *MemoryStore) Save(ctx context.Context, o Order) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o.Customer = maps.Clone(o.Customer)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orders[o.ID] = o
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (Order, error) {
	if err := ctx.Err(); err != nil {
		return Order{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return Order{}, ErrOrderNotFound
	}
	o.Customer = maps.Clone(o.Customer)
	return o, nil
}
