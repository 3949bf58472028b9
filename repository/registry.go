/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package repository

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Registry maps entity types to their repositories. Entries are added once,
// usually at startup, and looked up by type parameter afterwards.
type Registry struct {
	mu    sync.RWMutex
	repos map[reflect.Type]interface{}
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{repos: make(map[reflect.Type]interface{})}
}

func typeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// Register adds the repository for entity type T. Registering the same type
// twice is an error.
func Register[T any, S comparable](r *Registry, repo Repository[T, S]) error {
	if repo == nil {
		return fmt.Errorf("registry: repository for %s cannot be nil", typeOf[T]())
	}
	typ := typeOf[T]()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.repos[typ]; exists {
		return fmt.Errorf("registry: %s already registered", typ)
	}
	r.repos[typ] = repo
	return nil
}

// Lookup returns the repository registered for entity type T.
func Lookup[T any, S comparable](r *Registry) (Repository[T, S], error) {
	typ := typeOf[T]()
	r.mu.RLock()
	entry, ok := r.repos[typ]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnregisteredType, typ)
	}
	repo, ok := entry.(Repository[T, S])
	if !ok {
		return nil, fmt.Errorf("registry: %s is registered with a different identifier type", typ)
	}
	return repo, nil
}

// Unregister removes the repository for entity type T, if any.
func Unregister[T any](r *Registry) {
	r.mu.Lock()
	delete(r.repos, typeOf[T]())
	r.mu.Unlock()
}

// Types lists the registered entity type names in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.repos))
	for typ := range r.repos {
		names = append(names, typ.String())
	}
	sort.Strings(names)
	return names
}
