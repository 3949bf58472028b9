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

import "errors"

var (
	// ErrNotFound is matched by Get when no entity has the identifier.
	ErrNotFound = errors.New("repository: entity not found")

	// ErrIndeterminateCount is returned, together with a count of -1, when the
	// backend's row-count projection yields no numeric result.
	ErrIndeterminateCount = errors.New("repository: count could not be determined")

	// ErrUnregisteredType is returned by Lookup for entity types that were
	// never registered.
	ErrUnregisteredType = errors.New("repository: entity type not registered")

	// ErrUnknownField is returned when a criteria names a field the entity
	// does not map.
	ErrUnknownField = errors.New("repository: unknown field")

	// ErrIdentifierRequired is returned by Save when an entity without an
	// identifier reaches a backend that cannot assign one and no
	// IdentifierGenerator is configured.
	ErrIdentifierRequired = errors.New("repository: identifier required")

	errNilEntity = errors.New("repository: entity cannot be nil")
)
