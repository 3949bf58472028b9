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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	koanfyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix  = "DB_"
	dotEnvFile = ".env"
)

// envKeys maps DB_* environment variables onto config keys.
var envKeys = map[string]string{
	"DB_TYPE":               "connection.type",
	"DB_HOST":               "connection.host",
	"DB_PORT":               "connection.port",
	"DB_USERNAME":           "connection.username",
	"DB_PASSWORD":           "connection.password",
	"DB_NAME":               "connection.dbname",
	"DB_SSLMODE":            "connection.sslmode",
	"DB_MAX_IDLE_CONNS":     "connection.max_idle_conns",
	"DB_MAX_OPEN_CONNS":     "connection.max_open_conns",
	"DB_CONN_MAX_LIFETIME":  "connection.conn_max_lifetime",
	"DB_CONN_MAX_IDLE_TIME": "connection.conn_max_idle_time",
	"DB_CONNECT_TIMEOUT":    "connection.connect_timeout",
	"DB_ENABLE_QUERY_LOG":   "connection.enable_query_log",
	"DB_SLOW_QUERY_TIME":    "connection.slow_query_time",
	"DB_MIGRATE_ON_STARTUP": "migrate.enable_migrate_on_startup",
}

func defaultValues() map[string]any {
	d := DefaultConnectionConfig()
	return map[string]any{
		"connection.max_idle_conns":         d.MaxIdleConns,
		"connection.max_open_conns":         d.MaxOpenConns,
		"connection.conn_max_lifetime":      d.ConnMaxLifetime.String(),
		"connection.conn_max_idle_time":     d.ConnMaxIdleTime.String(),
		"connection.connect_timeout":        d.ConnectTimeout.String(),
		"connection.read_timeout":           d.ReadTimeout.String(),
		"connection.write_timeout":          d.WriteTimeout.String(),
		"connection.enable_query_log":       d.EnableQueryLog,
		"connection.slow_query_time":        d.SlowQueryTime.String(),
		"migrate.enable_migrate_on_startup": false,
	}
}

// LoadConfig builds a Config from defaults, the YAML file at path (skipped
// when path is empty), a .env file in the working directory and finally the
// DB_* environment variables. Later sources win.
func LoadConfig(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaultValues(), "."), nil); err != nil {
		return nil, fmt.Errorf("config: loading defaults: %w", err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), koanfyaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: loading %s: %w", path, err)
		}
	}
	if err := loadEnv(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}
	return cfg, nil
}

// ApplyEnvOverrides overlays the DB_* environment variables (and .env) onto
// an already built config. Fields without a matching variable are untouched.
func ApplyEnvOverrides(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config: nil config")
	}
	k := koanf.New(".")
	if err := loadEnv(k); err != nil {
		return err
	}
	if len(k.Keys()) == 0 {
		return nil
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return fmt.Errorf("config: decoding environment: %w", err)
	}
	return nil
}

// ExportConfig writes cfg to path as YAML.
func ExportConfig(cfg *Config, path string) error {
	if cfg == nil {
		return fmt.Errorf("config: nil config")
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("config: encoding: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return fmt.Errorf("config: writing %s: %w", path, err)
	}
	return nil
}

func loadEnv(k *koanf.Koanf) error {
	// .env never overrides variables that are already set.
	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("config: loading %s: %w", dotEnvFile, err)
	}
	provider := env.Provider(envPrefix, ".", func(s string) string {
		return envKeys[s]
	})
	if err := k.Load(provider, nil); err != nil {
		return fmt.Errorf("config: loading environment: %w", err)
	}
	return nil
}
