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

import (
	"reflect"
	"testing"
)

func TestNewExampleCriteriaZipsShorterSide(t *testing.T) {
	tests := []struct {
		name   string
		names  []string
		values []interface{}
		want   []Predicate
	}{
		{
			name:   "equal lengths",
			names:  []string{"data", "kind"},
			values: []interface{}{"X", 3},
			want: []Predicate{
				{Field: "data", Kind: Equality, Value: "X"},
				{Field: "kind", Kind: Equality, Value: 3},
			},
		},
		{
			name:   "more names than values",
			names:  []string{"data", "kind"},
			values: []interface{}{"X"},
			want:   []Predicate{{Field: "data", Kind: Equality, Value: "X"}},
		},
		{
			name:   "more values than names",
			names:  []string{"data"},
			values: []interface{}{"X", "Y", "Z"},
			want:   []Predicate{{Field: "data", Kind: Equality, Value: "X"}},
		},
		{
			name:   "nil inputs",
			names:  nil,
			values: nil,
			want:   []Predicate{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewExampleCriteria(Equality, tt.names, tt.values)
			if !reflect.DeepEqual(c.Predicates, tt.want) {
				t.Errorf("predicates = %+v, want %+v", c.Predicates, tt.want)
			}
			if c.HasWindow() {
				t.Errorf("example criteria should not carry a window")
			}
		})
	}
}

func TestCriteriaWindow(t *testing.T) {
	c := NewCriteria().Window(5, 10)
	if c.GetOffset() != 5 || c.GetLimit() != 10 || !c.HasWindow() {
		t.Fatalf("window = (%d, %d), want (5, 10)", c.GetOffset(), c.GetLimit())
	}

	c.Window(-1, -1)
	if c.GetOffset() != 0 || c.GetLimit() != 0 || c.HasWindow() {
		t.Errorf("negative bounds should disable the window, got (%d, %d)", c.GetOffset(), c.GetLimit())
	}
}

func TestPredicateKindEnum(t *testing.T) {
	if Equality.Name() != "eq" || CaseInsensitiveMatch.Name() != "ilike" {
		t.Fatalf("unexpected names %q %q", Equality, CaseInsensitiveMatch)
	}
	bogus := PredicateKind(42)
	if bogus.IsValid() || bogus.Number() != IllegalValue || bogus.Name() != IllegalName || bogus.Desc() != IllegalDesc {
		t.Errorf("invalid kind should report illegal values")
	}
}

func TestJsonObjectRoundTrip(t *testing.T) {
	var j JsonObject
	if v, err := j.Value(); err != nil || v != nil {
		t.Fatalf("nil object value = %v, %v", v, err)
	}

	in := JsonObject{"color": "red"}
	v, err := in.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var out JsonObject
	if err := out.Scan(v); err != nil {
		t.Fatalf("scan string: %v", err)
	}
	if out["color"] != "red" {
		t.Errorf("scanned %v", out)
	}

	if err := out.Scan([]byte(`{"size":"L"}`)); err != nil || out["size"] != "L" {
		t.Errorf("scan bytes: %v %v", out, err)
	}
	if err := out.Scan(nil); err != nil || out != nil {
		t.Errorf("scan nil should reset to nil, got %v %v", out, err)
	}
	if err := out.Scan(12); err == nil {
		t.Errorf("scan int should fail")
	}
}
