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

// Package mongostore provides a repository Session backed by a MongoDB
// collection. Entities store their identifier under the bson key "_id".
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/tomoncle/dao/identity"
	"github.com/tomoncle/dao/repository"
	"github.com/tomoncle/dao/types"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const idKey = "_id"

// collection is the part of *mongo.Collection the session uses.
type collection interface {
	Name() string
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	CountDocuments(ctx context.Context, filter interface{}, opts ...*options.CountOptions) (int64, error)
	InsertOne(ctx context.Context, document interface{}, opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	ReplaceOne(ctx context.Context, filter interface{}, replacement interface{}, opts ...*options.ReplaceOptions) (*mongo.UpdateResult, error)
	DeleteOne(ctx context.Context, filter interface{}, opts ...*options.DeleteOptions) (*mongo.DeleteResult, error)
}

// Session executes repository criteria against a Mongo collection.
type Session[T any, S comparable] struct {
	collection collection
}

var _ repository.Session[struct{}, string] = (*Session[struct{}, string])(nil)

// NewSession returns a Session over the given collection.
func NewSession[T any, S comparable](coll *mongo.Collection) (*Session[T, S], error) {
	if coll == nil {
		return nil, errors.New("mongo collection is required")
	}
	return newSession[T, S](coll), nil
}

func newSession[T any, S comparable](coll collection) *Session[T, S] {
	return &Session[T, S]{collection: coll}
}

func (s *Session[T, S]) Load(ctx context.Context, id S) (*T, error) {
	cursor, err := s.collection.Find(ctx, bson.M{idKey: id}, options.Find().SetLimit(1))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s %v: %w", repository.ErrNotFound, s.collection.Name(), id, mongo.ErrNoDocuments)
	}
	entity := new(T)
	if err := cursor.Decode(entity); err != nil {
		return nil, err
	}
	return entity, nil
}

func (s *Session[T, S]) LoadAll(ctx context.Context) ([]*T, error) {
	return s.find(ctx, bson.D{}, options.Find())
}

func (s *Session[T, S]) Find(ctx context.Context, criteria *types.Criteria) ([]*T, error) {
	filter, err := Filter(criteria)
	if err != nil {
		return nil, err
	}
	return s.find(ctx, filter, findOptions(criteria))
}

// findOptions orders windowed queries by _id so consecutive pages are
// disjoint.
func findOptions(criteria *types.Criteria) *options.FindOptions {
	opts := options.Find()
	if criteria.HasWindow() {
		opts.SetSort(bson.D{{Key: idKey, Value: 1}})
		opts.SetSkip(int64(criteria.GetOffset()))
		if limit := criteria.GetLimit(); limit > 0 {
			opts.SetLimit(int64(limit))
		}
	}
	return opts
}

func (s *Session[T, S]) Count(ctx context.Context, criteria *types.Criteria) (int64, bool, error) {
	filter, err := Filter(criteria)
	if err != nil {
		return 0, false, err
	}
	n, err := s.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// Insert stores the entity. An absent ObjectID identifier is generated
// before the write; other absent identifiers are rejected. The "_id" the
// driver reports is written back when its type is S.
func (s *Session[T, S]) Insert(ctx context.Context, entity *T) error {
	if target, ok := any(entity).(identity.Identifiable[S]); ok && !identity.IsAssigned[S](target) {
		id, ok := newObjectID[S]()
		if !ok {
			return fmt.Errorf("%w: %s documents need an identifier", repository.ErrIdentifierRequired, s.collection.Name())
		}
		target.SetIdentifier(id)
	}
	res, err := s.collection.InsertOne(ctx, entity)
	if err != nil {
		return err
	}
	if target, ok := any(entity).(identity.Identifiable[S]); ok {
		if id, ok := res.InsertedID.(S); ok {
			target.SetIdentifier(id)
		}
	}
	return nil
}

func (s *Session[T, S]) SaveOrUpdate(ctx context.Context, entity *T) error {
	id, err := identifierOf[S](entity)
	if err != nil {
		return err
	}
	opts := options.Replace().SetUpsert(true)
	_, err = s.collection.ReplaceOne(ctx, bson.M{idKey: id}, entity, opts)
	return err
}

func (s *Session[T, S]) Delete(ctx context.Context, entity *T) error {
	id, err := identifierOf[S](entity)
	if err != nil {
		return err
	}
	_, err = s.collection.DeleteOne(ctx, bson.M{idKey: id})
	return err
}

func (s *Session[T, S]) find(ctx context.Context, filter interface{}, opts *options.FindOptions) ([]*T, error) {
	cursor, err := s.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	entities := make([]*T, 0)
	if err := cursor.All(ctx, &entities); err != nil {
		return nil, err
	}
	return entities, nil
}

func newObjectID[S comparable]() (S, bool) {
	id, ok := any(primitive.NewObjectID()).(S)
	return id, ok
}

func identifierOf[S comparable](entity interface{}) (S, error) {
	target, ok := entity.(identity.Identifiable[S])
	if !ok {
		var zero S
		return zero, fmt.Errorf("mongo session: %T does not carry a %T identifier", entity, zero)
	}
	return target.GetIdentifier(), nil
}

// Filter translates criteria into a bson filter document. Several predicates
// are combined with $and.
func Filter(criteria *types.Criteria) (bson.D, error) {
	clauses := make([]bson.D, 0, len(criteria.Predicates))
	for _, p := range criteria.Predicates {
		switch p.Kind {
		case types.Equality:
			clauses = append(clauses, bson.D{{Key: p.Field, Value: p.Value}})
		case types.CaseInsensitiveMatch:
			pattern := LikePattern(fmt.Sprint(p.Value))
			clauses = append(clauses, bson.D{{Key: p.Field, Value: bson.D{
				{Key: "$regex", Value: pattern},
				{Key: "$options", Value: "i"},
			}}})
		default:
			return nil, fmt.Errorf("mongo session: unsupported predicate kind %d on %q", p.Kind, p.Field)
		}
	}
	switch len(clauses) {
	case 0:
		return bson.D{}, nil
	case 1:
		return clauses[0], nil
	default:
		all := make(bson.A, 0, len(clauses))
		for _, c := range clauses {
			all = append(all, c)
		}
		return bson.D{{Key: "$and", Value: all}}, nil
	}
}

// LikePattern converts a SQL LIKE pattern into an anchored regular
// expression: % matches any run of characters and _ a single one.
func LikePattern(like string) string {
	var b strings.Builder
	b.WriteString("^")
	for _, r := range like {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteString("$")
	return b.String()
}
