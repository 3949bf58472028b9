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
	"math"
	"reflect"
	"strings"

	"github.com/tomoncle/dao/identity"
	"github.com/tomoncle/dao/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/feature"
	"github.com/uptrace/bun/schema"
)

type bunSession[T any, S comparable] struct {
	db    *bun.DB
	table *schema.Table
	pk    *schema.Field
}

// NewBunSession returns a Session that executes criteria through Bun. T must
// be a Bun model with exactly one primary key column.
func NewBunSession[T any, S comparable](db *bun.DB) (Session[T, S], error) {
	if db == nil {
		return nil, fmt.Errorf("bun session: database cannot be nil")
	}
	table := db.Table(reflect.TypeOf((*T)(nil)).Elem())
	if len(table.PKs) != 1 {
		return nil, fmt.Errorf("bun session: %s must have exactly one primary key, found %d", table.TypeName, len(table.PKs))
	}
	return &bunSession[T, S]{db: db, table: table, pk: table.PKs[0]}, nil
}

func (s *bunSession[T, S]) Load(ctx context.Context, id S) (*T, error) {
	entity := new(T)
	err := s.db.NewSelect().Model(entity).Where("? = ?", s.pk.SQLName, id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s %v: %w", ErrNotFound, s.table.TypeName, id, err)
	}
	if err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *bunSession[T, S]) LoadAll(ctx context.Context) ([]*T, error) {
	entities := make([]*T, 0)
	err := s.db.NewSelect().Model(&entities).Scan(ctx)
	return entities, err
}

func (s *bunSession[T, S]) Find(ctx context.Context, criteria *types.Criteria) ([]*T, error) {
	entities := make([]*T, 0)
	query := s.db.NewSelect().Model(&entities)
	if err := s.restrict(query, criteria); err != nil {
		return nil, err
	}
	if criteria.HasWindow() {
		// Stable ordering keeps consecutive windows disjoint.
		query = query.OrderExpr("? ASC", s.pk.SQLName)
		limit := criteria.GetLimit()
		if limit == 0 {
			// MySQL and SQLite reject OFFSET without LIMIT.
			limit = math.MaxInt32
		}
		query = query.Limit(limit).Offset(criteria.GetOffset())
	}
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	return entities, nil
}

func (s *bunSession[T, S]) Count(ctx context.Context, criteria *types.Criteria) (int64, bool, error) {
	var n sql.NullInt64
	query := s.db.NewSelect().Model((*T)(nil)).ColumnExpr("count(*)")
	if err := s.restrict(query, criteria); err != nil {
		return 0, false, err
	}
	err := query.Scan(ctx, &n)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return n.Int64, n.Valid, nil
}

// Insert rejects an entity without identifier unless the database assigns
// the key itself (autoincrement, identity or a column default).
func (s *bunSession[T, S]) Insert(ctx context.Context, entity *T) error {
	if !s.assignsKey() {
		if target, ok := any(entity).(identity.Identifiable[S]); ok && !identity.IsAssigned[S](target) {
			return fmt.Errorf("%w: %s.%s has no generated value", ErrIdentifierRequired, s.table.TypeName, s.pk.Name)
		}
	}
	_, err := s.db.NewInsert().Model(entity).Exec(ctx)
	return err
}

func (s *bunSession[T, S]) assignsKey() bool {
	return s.pk.AutoIncrement || s.pk.Identity || s.pk.SQLDefault != ""
}

func (s *bunSession[T, S]) SaveOrUpdate(ctx context.Context, entity *T) error {
	switch {
	case s.db.HasFeature(feature.InsertOnConflict):
		return s.upsertOnConflict(ctx, entity)
	case s.db.HasFeature(feature.InsertOnDuplicateKey):
		return s.upsertOnDuplicateKey(ctx, entity)
	default:
		return s.upsertFallback(ctx, entity)
	}
}

func (s *bunSession[T, S]) Delete(ctx context.Context, entity *T) error {
	_, err := s.db.NewDelete().Model(entity).WherePK().Exec(ctx)
	return err
}

func (s *bunSession[T, S]) restrict(query *bun.SelectQuery, criteria *types.Criteria) error {
	for _, p := range criteria.Predicates {
		field, err := s.field(p.Field)
		if err != nil {
			return err
		}
		switch p.Kind {
		case types.Equality:
			query.Where("? = ?", field.SQLName, p.Value)
		case types.CaseInsensitiveMatch:
			query.Where("LOWER(?) LIKE LOWER(?)", field.SQLName, fmt.Sprint(p.Value))
		default:
			return fmt.Errorf("bun session: unsupported predicate kind %d on %q", p.Kind, p.Field)
		}
	}
	return nil
}

// field resolves a criteria name by column name first, then by Go field name.
func (s *bunSession[T, S]) field(name string) (*schema.Field, error) {
	if f, ok := s.table.FieldMap[name]; ok {
		return f, nil
	}
	for _, f := range s.table.Fields {
		if strings.EqualFold(f.GoName, name) {
			return f, nil
		}
	}
	return nil, fmt.Errorf("%w: %s has no field %q", ErrUnknownField, s.table.TypeName, name)
}

func (s *bunSession[T, S]) upsertOnConflict(ctx context.Context, entity *T) error {
	query := s.db.NewInsert().Model(entity)
	if len(s.table.DataFields) == 0 {
		query = query.On("CONFLICT (?) DO NOTHING", s.pk.SQLName)
	} else {
		query = query.On("CONFLICT (?) DO UPDATE", s.pk.SQLName)
		for _, f := range s.table.DataFields {
			query = query.Set("? = EXCLUDED.?", f.SQLName, f.SQLName)
		}
	}
	_, err := query.Exec(ctx)
	return err
}

func (s *bunSession[T, S]) upsertOnDuplicateKey(ctx context.Context, entity *T) error {
	query := s.db.NewInsert().Model(entity)
	if len(s.table.DataFields) == 0 {
		query = query.Ignore()
	} else {
		query = query.On("DUPLICATE KEY UPDATE")
		for _, f := range s.table.DataFields {
			query = query.Set("? = VALUES(?)", f.SQLName, f.SQLName)
		}
	}
	_, err := query.Exec(ctx)
	return err
}

func (s *bunSession[T, S]) upsertFallback(ctx context.Context, entity *T) error {
	_, err := s.db.NewInsert().Model(entity).Exec(ctx)
	if err == nil {
		return nil
	}
	if _, updateErr := s.db.NewUpdate().Model(entity).WherePK().Exec(ctx); updateErr != nil {
		return fmt.Errorf("upsert failed for %s: insert error: %v, update error: %w", s.table.TypeName, err, updateErr)
	}
	return nil
}
