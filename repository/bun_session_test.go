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
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type testIdentifiable struct {
	bun.BaseModel `bun:"table:test_identifiables,alias:ti"`

	ID   string `bun:"id,pk"`
	Data string `bun:"data"`
}

func (t *testIdentifiable) GetIdentifier() string   { return t.ID }
func (t *testIdentifiable) SetIdentifier(id string) { t.ID = id }

type sequenced struct {
	bun.BaseModel `bun:"table:sequenced,alias:sq"`

	ID    int64  `bun:"id,pk,autoincrement"`
	Label string `bun:"label"`
}

func (s *sequenced) GetIdentifier() int64   { return s.ID }
func (s *sequenced) SetIdentifier(id int64) { s.ID = id }

func newTestDB(t *testing.T, models ...interface{}) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// Every connection to :memory: is a separate database.
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).Exec(context.Background()); err != nil {
			t.Fatalf("create table %T: %v", model, err)
		}
	}
	return db
}

func newItemRepository(t *testing.T, opts ...Option[string]) Repository[testIdentifiable, string] {
	t.Helper()
	db := newTestDB(t, (*testIdentifiable)(nil))
	session, err := NewBunSession[testIdentifiable, string](db)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	return NewRepository[testIdentifiable, string](session, opts...)
}

func populate(t *testing.T, repo Repository[testIdentifiable, string]) []*testIdentifiable {
	t.Helper()
	items := make([]*testIdentifiable, 0, 10)
	for i := 0; i < 10; i++ {
		item := &testIdentifiable{ID: fmt.Sprintf("item %d", i), Data: fmt.Sprintf("some data for item %d", i)}
		if _, err := repo.Save(context.Background(), item); err != nil {
			t.Fatalf("save %s: %v", item.ID, err)
		}
		items = append(items, item)
	}
	return items
}

func TestBunSaveGetDelete(t *testing.T) {
	ctx := context.Background()
	repo := newItemRepository(t)
	items := populate(t, repo)

	got, err := repo.Get(ctx, "item 5")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != "item 5" || got.Data != "some data for item 5" {
		t.Errorf("get returned %+v", got)
	}

	for _, item := range items {
		if err := repo.Delete(ctx, item); err != nil {
			t.Fatalf("delete %s: %v", item.ID, err)
		}
	}
	n, err := repo.Count(ctx)
	if err != nil || n != 0 {
		t.Errorf("count after delete = %d, %v; want 0", n, err)
	}
}

func TestBunGetMissingIsNotFound(t *testing.T) {
	repo := newItemRepository(t)

	_, err := repo.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want the backend error to stay visible", err)
	}
}

func TestBunSaveGeneratesIdentifier(t *testing.T) {
	ctx := context.Background()
	repo := newItemRepository(t, WithIdentifierGenerator(UUIDGenerator()))

	item := &testIdentifiable{Data: "fresh"}
	id, err := repo.Save(ctx, item)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id == "" {
		t.Fatalf("save returned an absent identifier")
	}

	got, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != item.ID || got.Data != item.Data {
		t.Errorf("got %+v, want %+v", got, item)
	}
}

func TestBunSaveWithoutGeneratorRequiresIdentifier(t *testing.T) {
	ctx := context.Background()
	repo := newItemRepository(t)

	for i := 0; i < 2; i++ {
		id, err := repo.Save(ctx, &testIdentifiable{Data: "first"})
		if !errors.Is(err, ErrIdentifierRequired) {
			t.Fatalf("save %d = %q, %v; want ErrIdentifierRequired", i, id, err)
		}
		if id != "" {
			t.Errorf("save %d returned id %q alongside the error", i, id)
		}
	}
	if n, err := repo.Count(ctx); err != nil || n != 0 {
		t.Errorf("count = %d, %v; want nothing stored", n, err)
	}
	if _, err := repo.Get(ctx, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("get empty id error = %v, want ErrNotFound", err)
	}
}

func TestBunSaveAutoincrementIdentifier(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, (*sequenced)(nil))
	session, err := NewBunSession[sequenced, int64](db)
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	repo := NewRepository[sequenced, int64](session)

	first, err := repo.Save(ctx, &sequenced{Label: "a"})
	if err != nil {
		t.Fatalf("save first: %v", err)
	}
	second, err := repo.Save(ctx, &sequenced{Label: "b"})
	if err != nil {
		t.Fatalf("save second: %v", err)
	}
	if first == 0 || second == 0 || first == second {
		t.Fatalf("identifiers = %d, %d; want two distinct assigned values", first, second)
	}

	got, err := repo.Get(ctx, second)
	if err != nil || got.Label != "b" {
		t.Errorf("get %d = %+v, %v", second, got, err)
	}
}

func TestBunSaveWithIdentifierUpserts(t *testing.T) {
	ctx := context.Background()
	repo := newItemRepository(t)
	populate(t, repo)

	id, err := repo.Save(ctx, &testIdentifiable{ID: "item 3", Data: "rewritten"})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if id != "item 3" {
		t.Errorf("id = %q, want item 3", id)
	}
	got, err := repo.Get(ctx, "item 3")
	if err != nil || got.Data != "rewritten" {
		t.Errorf("after upsert got %+v, %v", got, err)
	}

	// Re-saving unchanged fields leaves the row as is.
	if _, err := repo.Save(ctx, &testIdentifiable{ID: "item 3", Data: "rewritten"}); err != nil {
		t.Fatalf("re-save: %v", err)
	}
	if n, _ := repo.Count(ctx); n != 10 {
		t.Errorf("count = %d, want 10", n)
	}
	if got, _ := repo.Get(ctx, "item 3"); got == nil || got.Data != "rewritten" {
		t.Errorf("after re-save got %+v", got)
	}
}

func TestBunCountTracksSavesAndDeletes(t *testing.T) {
	ctx := context.Background()
	repo := newItemRepository(t)

	if n, err := repo.Count(ctx); err != nil || n != 0 {
		t.Fatalf("empty count = %d, %v", n, err)
	}
	items := populate(t, repo)
	if n, err := repo.Count(ctx); err != nil || n != len(items) {
		t.Fatalf("count = %d, %v; want %d", n, err, len(items))
	}
	if err := repo.Delete(ctx, items[0]); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n, err := repo.Count(ctx); err != nil || n != len(items)-1 {
		t.Errorf("count = %d, %v; want %d", n, err, len(items)-1)
	}
}

func TestBunGetAll(t *testing.T) {
	repo := newItemRepository(t)

	all, err := repo.GetAll(context.Background())
	if err != nil || len(all) != 0 {
		t.Fatalf("empty get all = %v, %v", all, err)
	}
	populate(t, repo)
	all, err = repo.GetAll(context.Background())
	if err != nil || len(all) != 10 {
		t.Errorf("get all returned %d rows, %v", len(all), err)
	}
}

func TestBunPagesAreDisjoint(t *testing.T) {
	ctx := context.Background()
	repo := newItemRepository(t)
	populate(t, repo)

	first, err := repo.GetPage(ctx, 0, 5)
	if err != nil {
		t.Fatalf("page 1: %v", err)
	}
	second, err := repo.GetPage(ctx, 5, 5)
	if err != nil {
		t.Fatalf("page 2: %v", err)
	}
	if len(first) != 5 || len(second) != 5 {
		t.Fatalf("page sizes = %d, %d", len(first), len(second))
	}
	seen := map[string]bool{}
	for _, item := range append(first, second...) {
		if seen[item.ID] {
			t.Errorf("duplicate %s across pages", item.ID)
		}
		seen[item.ID] = true
	}
	if len(seen) != 10 {
		t.Errorf("pages cover %d rows, want 10", len(seen))
	}

	rest, err := repo.GetPage(ctx, 8, 0)
	if err != nil || len(rest) != 2 {
		t.Errorf("offset without limit = %d rows, %v; want 2", len(rest), err)
	}
}

func TestBunExampleQueries(t *testing.T) {
	ctx := context.Background()
	repo := newItemRepository(t)
	populate(t, repo)
	for _, item := range []*testIdentifiable{{ID: "x 1", Data: "X"}, {ID: "x 2", Data: "X"}, {ID: "x 3", Data: "x"}} {
		if _, err := repo.Save(ctx, item); err != nil {
			t.Fatalf("save %s: %v", item.ID, err)
		}
	}

	matches, err := repo.GetByExample(ctx, []string{"data"}, []interface{}{"X"})
	if err != nil {
		t.Fatalf("get by example: %v", err)
	}
	if len(matches) != 2 {
		t.Errorf("equality matched %d rows, want 2", len(matches))
	}
	for _, m := range matches {
		if m.Data != "X" {
			t.Errorf("equality matched %+v", m)
		}
	}

	none, err := repo.GetByExample(ctx, []string{"data"}, []interface{}{"absent"})
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("no match = %v, %v; want empty slice", none, err)
	}

	n, err := repo.CountByExample(ctx, []string{"data"}, []interface{}{"x"})
	if err != nil || n != 3 {
		t.Errorf("case-insensitive count = %d, %v; want 3", n, err)
	}
	n, err = repo.CountByExample(ctx, []string{"Data"}, []interface{}{"some data%"})
	if err != nil || n != 10 {
		t.Errorf("pattern count by Go field name = %d, %v; want 10", n, err)
	}

	// Two names, one value: only the first pair applies.
	mismatched, err := repo.GetByExample(ctx, []string{"data", "id"}, []interface{}{"X"})
	if err != nil || len(mismatched) != 2 {
		t.Errorf("mismatched lengths = %d rows, %v; want 2", len(mismatched), err)
	}

	paged, err := repo.GetByExamplePage(ctx, []string{"data"}, []interface{}{"X"}, 1, 5)
	if err != nil || len(paged) != 1 || paged[0].ID != "x 2" {
		t.Errorf("example page = %+v, %v", paged, err)
	}
}

func TestBunUnknownField(t *testing.T) {
	repo := newItemRepository(t)

	_, err := repo.GetByExample(context.Background(), []string{"colour"}, []interface{}{"red"})
	if !errors.Is(err, ErrUnknownField) {
		t.Errorf("err = %v, want ErrUnknownField", err)
	}
}
