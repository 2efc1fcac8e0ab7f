// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads solver configuration with priority env > file >
// defaults.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/AleutianAI/AleutianARC/pkg/logging"
	"github.com/AleutianAI/AleutianARC/services/solver/cascade"
	"github.com/AleutianAI/AleutianARC/services/solver/storage"
	"github.com/AleutianAI/AleutianARC/services/solver/telemetry"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the full configuration of the arcsynth binary.
//
// Thread Safety: Safe to read concurrently. Not safe to modify after Load.
type Config struct {
	// Solver holds the cascade budget and per-strategy settings.
	Solver *cascade.Config `yaml:"solver" json:"solver" validate:"required"`

	Bench     BenchConfig      `yaml:"bench" json:"bench"`
	Storage   storage.Config   `yaml:"storage" json:"storage"`
	Telemetry telemetry.Config `yaml:"telemetry" json:"telemetry"`
	Logging   LoggingConfig    `yaml:"logging" json:"logging"`
	API       APIConfig        `yaml:"api" json:"api"`
}

// BenchConfig controls benchmark runs.
type BenchConfig struct {
	// Workers is the number of tasks solved at once.
	Workers int `yaml:"workers" json:"workers" validate:"gte=1,lte=256"`

	// MaxTasks limits how many task files are read. Zero means all.
	MaxTasks int `yaml:"max_tasks" json:"max_tasks" validate:"gte=0"`

	// MaxSize is the maximum composite size passed to the cascade.
	MaxSize int `yaml:"max_size" json:"max_size" validate:"gte=1,lte=16"`

	// Resume skips tasks already solved in the store.
	Resume bool `yaml:"resume" json:"resume"`
}

// LoggingConfig mirrors logging.Config in file form.
type LoggingConfig struct {
	Level string `yaml:"level" json:"level" validate:"oneof=debug info warn warning error"`
	Dir   string `yaml:"dir" json:"dir"`
	JSON  bool   `yaml:"json" json:"json"`
}

// APIConfig controls the HTTP server.
type APIConfig struct {
	Addr string `yaml:"addr" json:"addr" validate:"required"`

	// RateLimit is the sustained requests per second. Zero disables
	// limiting.
	RateLimit float64 `yaml:"rate_limit" json:"rate_limit" validate:"gte=0"`

	// Burst is the token bucket size.
	Burst int `yaml:"burst" json:"burst" validate:"gte=0"`

	// MaxBodyBytes caps a solve request body.
	MaxBodyBytes int64 `yaml:"max_body_bytes" json:"max_body_bytes" validate:"gte=1024"`

	// MaxSize is the default composite size for requests that omit it.
	MaxSize int `yaml:"max_size" json:"max_size" validate:"gte=1,lte=16"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Solver: cascade.DefaultConfig(),
		Bench: BenchConfig{
			Workers: 4,
			MaxSize: 3,
		},
		Storage:   storage.DefaultConfig(),
		Telemetry: telemetry.DefaultConfig(),
		Logging:   LoggingConfig{Level: "info"},
		API: APIConfig{
			Addr:         ":8080",
			RateLimit:    5,
			Burst:        10,
			MaxBodyBytes: 1 << 20,
			MaxSize:      3,
		},
	}
}

// Load builds a configuration from defaults, then path, then ARC_*
// environment variables, and validates the result.
//
// Inputs:
//   - path: YAML or JSON file. Empty skips the file. A missing file is an
//     error because the caller named it explicitly.
//
// Outputs:
//
//	*Config - The merged configuration.
//	error   - File, parse, or ErrInvalidConfig errors.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return fmt.Errorf("parse config (tried YAML and JSON): YAML error: %v, JSON error: %w", err, jsonErr)
		}
	}
	return nil
}

// envOverrides maps each ARC_* variable to its setter. A setter leaves the
// config untouched when the value does not parse.
var envOverrides = map[string]func(c *Config, v string){
	"ARC_BUDGET": func(c *Config, v string) {
		if d, err := time.ParseDuration(v); err == nil {
			c.Solver.Budget = d
		}
	},
	"ARC_BRUTE_DEPTH": func(c *Config, v string) { setInt(&c.Solver.BruteDepth, v) },
	"ARC_SEED": func(c *Config, v string) {
		if n, err := strconv.ParseUint(v, 0, 64); err == nil {
			c.Solver.Evolve.Seed = n
		}
	},
	"ARC_WORKERS":         func(c *Config, v string) { setInt(&c.Bench.Workers, v) },
	"ARC_MAX_TASKS":       func(c *Config, v string) { setInt(&c.Bench.MaxTasks, v) },
	"ARC_MAX_SIZE":        func(c *Config, v string) { setInt(&c.Bench.MaxSize, v) },
	"ARC_STORE_PATH":      func(c *Config, v string) { c.Storage.Path = v },
	"ARC_LOG_LEVEL":       func(c *Config, v string) { c.Logging.Level = v },
	"ARC_LOG_DIR":         func(c *Config, v string) { c.Logging.Dir = v },
	"ARC_TRACE_EXPORTER":  func(c *Config, v string) { c.Telemetry.TraceExporter = v },
	"ARC_METRIC_EXPORTER": func(c *Config, v string) { c.Telemetry.MetricExporter = v },
	"ARC_OTLP_ENDPOINT":   func(c *Config, v string) { c.Telemetry.OTLPEndpoint = v },
	"ARC_API_ADDR":        func(c *Config, v string) { c.API.Addr = v },
	"ARC_API_RATE": func(c *Config, v string) {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.API.RateLimit = f
		}
	},
}

func applyEnv(cfg *Config) {
	for key, set := range envOverrides {
		if v := os.Getenv(key); v != "" {
			set(cfg, v)
		}
	}
}

func setInt(dst *int, v string) {
	if n, err := strconv.Atoi(v); err == nil {
		*dst = n
	}
}

var validate = validator.New()

// Validate checks field tags and cross-field rules.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.API.RateLimit > 0 && c.API.Burst < 1 {
		return fmt.Errorf("%w: api.burst must be >= 1 when rate limiting", ErrInvalidConfig)
	}
	if c.Bench.Resume && c.Storage.Path == "" && !c.Storage.InMemory {
		return fmt.Errorf("%w: bench.resume needs storage.path", ErrInvalidConfig)
	}
	return nil
}

// LoggerConfig converts the logging section.
func (c *Config) LoggerConfig(service string) (logging.Config, error) {
	level, err := logging.ParseLevel(c.Logging.Level)
	if err != nil {
		return logging.Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return logging.Config{
		Level:   level,
		LogDir:  c.Logging.Dir,
		Service: service,
		JSON:    c.Logging.JSON,
	}, nil
}
