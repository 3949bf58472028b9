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
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/tomoncle/dao/identity"
	"github.com/tomoncle/dao/types"
)

// IdentifierGenerator produces identifiers for entities saved without one.
type IdentifierGenerator[S comparable] func() S

// UUIDGenerator returns random UUID strings.
func UUIDGenerator() IdentifierGenerator[string] {
	return uuid.NewString
}

// Option configures a repository built by NewRepository.
type Option[S comparable] func(*options[S])

type options[S comparable] struct {
	generate IdentifierGenerator[S]
}

// WithIdentifierGenerator assigns identifiers on Save before the insert
// reaches the backend. Without it the backend assigns them.
func WithIdentifierGenerator[S comparable](gen IdentifierGenerator[S]) Option[S] {
	return func(o *options[S]) { o.generate = gen }
}

type baseRepositoryImpl[T any, S comparable, PT Entity[T, S]] struct {
	session  Session[T, S]
	generate IdentifierGenerator[S]
}

// NewRepository returns a generic repository that translates its operations
// into criteria executed by the given session.
func NewRepository[T any, S comparable, PT Entity[T, S]](session Session[T, S], opts ...Option[S]) Repository[T, S] {
	o := &options[S]{}
	for _, opt := range opts {
		opt(o)
	}
	return &baseRepositoryImpl[T, S, PT]{session: session, generate: o.generate}
}

func (r *baseRepositoryImpl[T, S, PT]) GetAll(ctx context.Context) ([]*T, error) {
	return r.session.LoadAll(ctx)
}

func (r *baseRepositoryImpl[T, S, PT]) Get(ctx context.Context, id S) (*T, error) {
	return r.session.Load(ctx, id)
}

func (r *baseRepositoryImpl[T, S, PT]) Count(ctx context.Context) (int, error) {
	return r.count(ctx, types.NewCriteria())
}

func (r *baseRepositoryImpl[T, S, PT]) GetPage(ctx context.Context, offset, limit int) ([]*T, error) {
	return r.session.Find(ctx, types.NewCriteria().Window(offset, limit))
}

func (r *baseRepositoryImpl[T, S, PT]) GetByExample(ctx context.Context, names []string, values []interface{}) ([]*T, error) {
	return r.session.Find(ctx, types.NewExampleCriteria(types.Equality, names, values))
}

func (r *baseRepositoryImpl[T, S, PT]) CountByExample(ctx context.Context, names []string, values []interface{}) (int, error) {
	return r.count(ctx, types.NewExampleCriteria(types.CaseInsensitiveMatch, names, values))
}

func (r *baseRepositoryImpl[T, S, PT]) GetByExamplePage(ctx context.Context, names []string, values []interface{}, offset, limit int) ([]*T, error) {
	criteria := types.NewExampleCriteria(types.Equality, names, values).Window(offset, limit)
	return r.session.Find(ctx, criteria)
}

func (r *baseRepositoryImpl[T, S, PT]) Save(ctx context.Context, entity *T) (S, error) {
	var zero S
	if entity == nil {
		return zero, errNilEntity
	}
	e := PT(entity)
	if identity.IsAssigned[S](e) {
		id := e.GetIdentifier()
		if err := r.session.SaveOrUpdate(ctx, entity); err != nil {
			return zero, err
		}
		return id, nil
	}

	if r.generate != nil {
		e.SetIdentifier(r.generate())
	}
	if err := r.session.Insert(ctx, entity); err != nil {
		return zero, err
	}
	if !identity.IsAssigned[S](e) {
		return zero, fmt.Errorf("%w: insert of %T left it unassigned", ErrIdentifierRequired, entity)
	}
	return e.GetIdentifier(), nil
}

func (r *baseRepositoryImpl[T, S, PT]) Delete(ctx context.Context, entity *T) error {
	if entity == nil {
		return errNilEntity
	}
	return r.session.Delete(ctx, entity)
}

func (r *baseRepositoryImpl[T, S, PT]) count(ctx context.Context, criteria *types.Criteria) (int, error) {
	n, ok, err := r.session.Count(ctx, criteria)
	if err != nil {
		return -1, err
	}
	if !ok {
		return -1, ErrIndeterminateCount
	}
	return int(n), nil
}
