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

// Package identity defines the contract an entity implements to be handled by
// the generic repository.
package identity

// Identifiable is implemented by persistable entities. The zero value of S
// means the identifier has not been assigned yet.
type Identifiable[S comparable] interface {
	GetIdentifier() S
	SetIdentifier(id S)
}

// IsAssigned reports whether the entity carries a non-zero identifier.
func IsAssigned[S comparable](entity Identifiable[S]) bool {
	var zero S
	return entity.GetIdentifier() != zero
}
