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

package types

// Common illegal/default values used by enums.
const (
	IllegalValue = -1
	IllegalName  = "unknown"
	IllegalDesc  = "unknown"
)

// BaseEnum represents a basic enum contract used by domain types.
type BaseEnum interface {
	IsValid() bool
	Number() int
	String() string
	Desc() string
	Name() string
}

// PredicateKind selects how a single field predicate compares its value.
type PredicateKind int

const (
	// Equality matches rows whose field equals the value exactly.
	Equality PredicateKind = iota
	// CaseInsensitiveMatch matches rows whose field is LIKE the value,
	// ignoring case. % and _ act as wildcards.
	CaseInsensitiveMatch
)

var _ BaseEnum = PredicateKind(0)

var predicateKindNames = map[PredicateKind][2]string{
	Equality:             {"eq", "exact equality"},
	CaseInsensitiveMatch: {"ilike", "case-insensitive pattern match"},
}

func (k PredicateKind) IsValid() bool {
	_, ok := predicateKindNames[k]
	return ok
}

func (k PredicateKind) Number() int {
	if !k.IsValid() {
		return IllegalValue
	}
	return int(k)
}

func (k PredicateKind) Name() string {
	if v, ok := predicateKindNames[k]; ok {
		return v[0]
	}
	return IllegalName
}

func (k PredicateKind) Desc() string {
	if v, ok := predicateKindNames[k]; ok {
		return v[1]
	}
	return IllegalDesc
}

func (k PredicateKind) String() string { return k.Name() }
