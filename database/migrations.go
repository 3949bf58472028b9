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

package database

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sort"
	"time"

	"github.com/uptrace/bun"
)

// MigrationManager creates the tables of registered models and runs
// versioned migrations exactly once each.
type MigrationManager struct {
	db         *bun.DB
	logger     Logger
	migrations []MigrationItem
}

// Migration represents an applied migration record stored in the database.
type Migration struct {
	bun.BaseModel `bun:"table:dao_migrations"`

	Version     string    `bun:"version,pk"`
	Name        string    `bun:"name"`
	AppliedAt   time.Time `bun:"applied_at"`
	Description string    `bun:"description"`
}

// MigrationFunc is a migration step executed within a transaction.
type MigrationFunc func(ctx context.Context, db bun.IDB) error

// MigrationItem describes a single migration version.
type MigrationItem struct {
	Version     string
	Name        string
	Description string
	Up          MigrationFunc
}

// NewMigrationManager constructs a MigrationManager on db using the global
// logger.
func NewMigrationManager(db *bun.DB) *MigrationManager {
	return &MigrationManager{
		db:     db,
		logger: GetLogger(),
	}
}

func (mm *MigrationManager) SetLogger(logger Logger) *MigrationManager {
	if logger != nil {
		mm.logger = logger
	}
	return mm
}

// AddMigration queues a versioned migration for RunMigrations.
func (mm *MigrationManager) AddMigration(item MigrationItem) *MigrationManager {
	mm.migrations = append(mm.migrations, item)
	return mm
}

// RunMigrations creates the migration tracking table and the tables of all
// registered models if needed, then executes pending migrations in ascending
// version order.
func (mm *MigrationManager) RunMigrations(ctx context.Context) error {
	if mm.db == nil {
		return fmt.Errorf("database not initialized")
	}
	if _, ok := os.LookupEnv("BUNDEBUG_MIGRATION"); !ok {
		EnableBunSqlSilent(true)
		defer EnableBunSqlSilent(false)
	}

	if err := mm.createMigrationTable(ctx); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}
	if err := mm.CreateTables(ctx); err != nil {
		return err
	}

	migrations := slices.Clone(mm.migrations)
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	for _, migration := range migrations {
		if err := mm.runMigration(ctx, migration); err != nil {
			return fmt.Errorf("failed to execute migration %s: %w", migration.Version, err)
		}
	}

	mm.logger.Info("database migrations completed", "models", len(GetRegisteredModels()), "migrations", len(migrations))
	return nil
}

func (mm *MigrationManager) createMigrationTable(ctx context.Context) error {
	_, err := mm.db.NewCreateTable().
		Model((*Migration)(nil)).
		IfNotExists().
		Exec(ctx)
	return err
}

func (mm *MigrationManager) runMigration(ctx context.Context, migration MigrationItem) error {
	if migration.Up == nil {
		return fmt.Errorf("migration %s has no up step", migration.Version)
	}
	exists, err := mm.db.NewSelect().
		Model((*Migration)(nil)).
		Where("version = ?", migration.Version).
		Exists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = mm.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := migration.Up(ctx, tx); err != nil {
			return err
		}
		_, err := tx.NewInsert().
			Model(&Migration{
				Version:     migration.Version,
				Name:        migration.Name,
				AppliedAt:   time.Now(),
				Description: migration.Description,
			}).
			Exec(ctx)
		return err
	})
	if kind, ok := ClassifySQLError(err); ok && kind == DuplicateKeyErr {
		// another runner recorded the version first
		mm.logger.Warn("migration already recorded", "version", migration.Version, "error", err)
		return nil
	}
	if err != nil {
		return err
	}
	mm.logger.Info("migration executed", "version", migration.Version, "name", migration.Name)
	return nil
}

// CreateTables creates the table of every registered model that does not
// exist yet, in ascending priority.
func (mm *MigrationManager) CreateTables(ctx context.Context) error {
	for _, model := range RegisteredModelInstances() {
		_, err := mm.db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx)
		if kind, ok := ClassifySQLError(err); ok && kind == ExistTableErr {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to create table %s: %w", modelType(model).Name(), err)
		}
	}
	return nil
}

// ClearTables deletes every row of the registered model tables, in
// descending priority. Tables that were never created are skipped.
func (mm *MigrationManager) ClearTables(ctx context.Context) error {
	models := RegisteredModelInstances()
	for i := len(models) - 1; i >= 0; i-- {
		_, err := mm.db.NewTruncateTable().Model(models[i]).Exec(ctx)
		if kind, ok := ClassifySQLError(err); ok && kind == NoTableErr {
			mm.logger.Debug("skipping missing table", "model", modelType(models[i]).Name())
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to clear table %s: %w", modelType(models[i]).Name(), err)
		}
	}
	return nil
}

// DropTables drops the registered model tables and the migration records.
func (mm *MigrationManager) DropTables(ctx context.Context) error {
	models := append(RegisteredModelInstances(), (*Migration)(nil))
	for i := len(models) - 1; i >= 0; i-- {
		if _, err := mm.db.NewDropTable().Model(models[i]).IfExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", modelType(models[i]).Name(), err)
		}
	}
	return nil
}

// GetAppliedMigrations returns migration records ordered by version.
func (mm *MigrationManager) GetAppliedMigrations(ctx context.Context) ([]Migration, error) {
	var migrations []Migration
	err := mm.db.NewSelect().
		Model(&migrations).
		Order("version ASC").
		Scan(ctx)
	return migrations, err
}
