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

// Predicate restricts a single field.
type Predicate struct {
	Field string
	Kind  PredicateKind
	Value interface{}
}

// Criteria is a backend-neutral query descriptor: an AND-conjunction of
// predicates plus an optional result window.
type Criteria struct {
	Predicates []Predicate
	offset     int
	limit      int
}

// NewCriteria returns an unrestricted criteria with no window.
func NewCriteria() *Criteria {
	return &Criteria{Predicates: make([]Predicate, 0)}
}

// NewExampleCriteria pairs names with values and restricts each pair with the
// given kind. Only min(len(names), len(values)) pairs are used; the excess on
// either side is ignored.
func NewExampleCriteria(kind PredicateKind, names []string, values []interface{}) *Criteria {
	n := min(len(names), len(values))
	c := &Criteria{Predicates: make([]Predicate, 0, n)}
	for i := 0; i < n; i++ {
		c.Add(names[i], kind, values[i])
	}
	return c
}

// Add appends a predicate and returns the criteria for chaining.
func (c *Criteria) Add(field string, kind PredicateKind, value interface{}) *Criteria {
	c.Predicates = append(c.Predicates, Predicate{Field: field, Kind: kind, Value: value})
	return c
}

// Window sets the first-result offset and the max-results limit. Values
// below one disable the respective bound.
func (c *Criteria) Window(offset, limit int) *Criteria {
	c.offset = offset
	c.limit = limit
	return c
}

// GetOffset returns the first-result offset, or 0 when unset.
func (c *Criteria) GetOffset() int {
	if c.offset < 0 {
		return 0
	}
	return c.offset
}

// GetLimit returns the max-results limit, or 0 when unbounded.
func (c *Criteria) GetLimit() int {
	if c.limit < 0 {
		return 0
	}
	return c.limit
}

// HasWindow reports whether an offset or a limit applies.
func (c *Criteria) HasWindow() bool {
	return c.GetOffset() > 0 || c.GetLimit() > 0
}
