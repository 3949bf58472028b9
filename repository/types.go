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

	"github.com/tomoncle/dao/identity"
	"github.com/tomoncle/dao/types"
)

// Entity constrains PT to a pointer to T carrying an identifier of type S.
type Entity[T any, S comparable] interface {
	*T
	identity.Identifiable[S]
}

// Session is the set of primitives a storage backend provides to the
// repository. Implementations return backend errors unchanged, except that a
// missing row on Load must match ErrNotFound.
type Session[T any, S comparable] interface {
	Load(ctx context.Context, id S) (*T, error)

	LoadAll(ctx context.Context) ([]*T, error)

	Find(ctx context.Context, criteria *types.Criteria) ([]*T, error)

	// Count runs a row-count projection. ok is false when the projection
	// produced no numeric row.
	Count(ctx context.Context, criteria *types.Criteria) (n int64, ok bool, err error)

	// Insert stores a new entity. A backend-assigned identifier is written
	// back into the entity.
	Insert(ctx context.Context, entity *T) error

	SaveOrUpdate(ctx context.Context, entity *T) error

	Delete(ctx context.Context, entity *T) error
}

// Repository is the uniform data-access contract for one entity type.
type Repository[T any, S comparable] interface {
	// GetAll returns every stored entity.
	GetAll(ctx context.Context) ([]*T, error)

	// Get loads the entity with the given identifier or fails with ErrNotFound.
	Get(ctx context.Context, id S) (*T, error)

	// Count returns the number of stored entities.
	Count(ctx context.Context) (int, error)

	// GetPage returns at most limit entities starting at offset.
	GetPage(ctx context.Context, offset, limit int) ([]*T, error)

	// GetByExample returns entities whose fields equal the paired values.
	GetByExample(ctx context.Context, names []string, values []interface{}) ([]*T, error)

	// CountByExample counts entities whose fields match the paired values
	// case-insensitively with LIKE semantics.
	CountByExample(ctx context.Context, names []string, values []interface{}) (int, error)

	// GetByExamplePage combines GetByExample with an offset/limit window.
	GetByExamplePage(ctx context.Context, names []string, values []interface{}, offset, limit int) ([]*T, error)

	// Save inserts the entity when its identifier is absent and upserts it
	// otherwise. It returns the entity's identifier.
	Save(ctx context.Context, entity *T) (S, error)

	// Delete removes the stored entity with the entity's identifier.
	Delete(ctx context.Context, entity *T) error
}
