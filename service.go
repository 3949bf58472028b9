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

package dao

import (
	"context"

	"github.com/tomoncle/dao/database"
	"github.com/tomoncle/dao/repository"
)

var defaultRegistry = repository.NewRegistry()

// Registry returns the registry used by Register and NewService.
func Registry() *repository.Registry {
	return defaultRegistry
}

// Register binds a bun-backed repository for T to the global database and
// records T for migrations. It must run after database.InitDB.
func Register[T any, S comparable, PT repository.Entity[T, S]](opts ...repository.Option[S]) error {
	db := database.GetDB()
	if db == nil {
		return database.ErrNotInitialized
	}
	session, err := repository.NewBunSession[T, S](db)
	if err != nil {
		return err
	}
	if err := RegisterRepository[T, S](repository.NewRepository[T, S, PT](session, opts...)); err != nil {
		return err
	}
	database.RegisteredModel(database.NewModelAdapter((*T)(nil), 0))
	db.RegisterModel((*T)(nil))
	return nil
}

// RegisterRepository makes an already built repository, for instance one over
// a mongostore session, available to NewService.
func RegisterRepository[T any, S comparable](repo repository.Repository[T, S]) error {
	return repository.Register[T, S](defaultRegistry, repo)
}

// Unregister drops the repository registered for T.
func Unregister[T any]() {
	repository.Unregister[T](defaultRegistry)
}

type Service[T any, S comparable] interface {
	// Get returns a single entity by its identifier.
	Get(ctx context.Context, id S) (*T, error)

	// All returns all entities.
	All(ctx context.Context) ([]*T, error)

	// Count returns the number of stored entities.
	Count(ctx context.Context) (int, error)

	// Page returns at most limit entities starting at offset.
	Page(ctx context.Context, offset, limit int) ([]*T, error)

	// Find returns entities whose named fields equal the paired values.
	Find(ctx context.Context, names []string, values []interface{}) ([]*T, error)

	// FindPage is Find restricted to an offset/limit window.
	FindPage(ctx context.Context, names []string, values []interface{}, offset, limit int) ([]*T, error)

	// CountMatching counts entities whose named fields match the paired LIKE
	// patterns case-insensitively.
	CountMatching(ctx context.Context, names []string, values []interface{}) (int, error)

	// Save inserts or updates an entity and returns its identifier.
	Save(ctx context.Context, model *T) (S, error)

	// Delete removes an entity.
	Delete(ctx context.Context, model *T) error
}

type baseServiceImpl[T any, S comparable] struct{}

// NewService returns a Service backed by the repository registered for T.
// The repository is resolved on every call, so a service may be declared
// before Register runs and follows re-registration.
func NewService[T any, S comparable]() Service[T, S] {
	return &baseServiceImpl[T, S]{}
}

func (s *baseServiceImpl[T, S]) baseRepo() (repository.Repository[T, S], error) {
	repo, err := repository.Lookup[T, S](defaultRegistry)
	if err != nil {
		database.GetLogger().Debug("service lookup failed", "error", err)
	}
	return repo, err
}

func (s *baseServiceImpl[T, S]) Get(ctx context.Context, id S) (*T, error) {
	repo, err := s.baseRepo()
	if err != nil {
		return nil, err
	}
	return repo.Get(ctx, id)
}

func (s *baseServiceImpl[T, S]) All(ctx context.Context) ([]*T, error) {
	repo, err := s.baseRepo()
	if err != nil {
		return nil, err
	}
	return repo.GetAll(ctx)
}

func (s *baseServiceImpl[T, S]) Count(ctx context.Context) (int, error) {
	repo, err := s.baseRepo()
	if err != nil {
		return -1, err
	}
	return repo.Count(ctx)
}

func (s *baseServiceImpl[T, S]) Page(ctx context.Context, offset, limit int) ([]*T, error) {
	repo, err := s.baseRepo()
	if err != nil {
		return nil, err
	}
	return repo.GetPage(ctx, offset, limit)
}

func (s *baseServiceImpl[T, S]) Find(ctx context.Context, names []string, values []interface{}) ([]*T, error) {
	repo, err := s.baseRepo()
	if err != nil {
		return nil, err
	}
	return repo.GetByExample(ctx, names, values)
}

func (s *baseServiceImpl[T, S]) FindPage(ctx context.Context, names []string, values []interface{}, offset, limit int) ([]*T, error) {
	repo, err := s.baseRepo()
	if err != nil {
		return nil, err
	}
	return repo.GetByExamplePage(ctx, names, values, offset, limit)
}

func (s *baseServiceImpl[T, S]) CountMatching(ctx context.Context, names []string, values []interface{}) (int, error) {
	repo, err := s.baseRepo()
	if err != nil {
		return -1, err
	}
	return repo.CountByExample(ctx, names, values)
}

func (s *baseServiceImpl[T, S]) Save(ctx context.Context, model *T) (S, error) {
	repo, err := s.baseRepo()
	if err != nil {
		var zero S
		return zero, err
	}
	return repo.Save(ctx, model)
}

func (s *baseServiceImpl[T, S]) Delete(ctx context.Context, model *T) error {
	repo, err := s.baseRepo()
	if err != nil {
		return err
	}
	return repo.Delete(ctx, model)
}
