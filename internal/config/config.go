// Copyright (c) 2024 SIROS Foundation
// SPDX-License-Identifier: BSD-2-Clause

// Package config handles configuration loading for the EDIFACT intake
// service.
//
// Configuration is loaded from a YAML file with support for environment
// variable expansion (${VAR} or $VAR syntax), so database credentials can
// be injected at runtime.
//
// # Configuration Sections
//
//   - server: HTTP listener settings (port, TLS, base path)
//   - logging: slog level and handler format
//   - intake: duplicate detection window, size limit, starting delimiters
//   - storage: backend selection (memory or mongodb) and MongoDB settings
//
// # Example Configuration
//
//	server:
//	  port: 8080
//	  basePath: /edifact
//
//	logging:
//	  level: debug
//	  format: json
//
//	intake:
//	  duplicateWindow: 48h
//	  maxSize: 1048576
//
//	storage:
//	  type: mongodb
//	  mongodb:
//	    uri: ${MONGODB_URI}
//	    database: edifact
//
// See [Load] for loading configuration from a file.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sirosfoundation/go-edifact/pkg/edifact"
)

// Storage backends
const (
	StorageMemory  = "memory"
	StorageMongoDB = "mongodb"
)

// Config is the root configuration structure
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
	Intake  IntakeConfig  `yaml:"intake"`
	Storage StorageConfig `yaml:"storage"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port     int    `yaml:"port"`
	BasePath string `yaml:"basePath"`
	TLS      struct {
		Enabled  bool   `yaml:"enabled"`
		CertFile string `yaml:"certFile"`
		KeyFile  string `yaml:"keyFile"`
	} `yaml:"tls"`
}

// LoggingConfig selects the slog handler
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// IntakeConfig holds receive pipeline settings
type IntakeConfig struct {
	// DuplicateWindow is how long an interchange control reference is remembered
	DuplicateWindow time.Duration `yaml:"duplicateWindow"`

	// MaxSize caps the accepted payload size in bytes, after decompression
	MaxSize int `yaml:"maxSize"`

	// UNA optionally sets the delimiters assumed when a message has no UNA line
	UNA string `yaml:"una"`
}

// StorageConfig holds persistence settings
type StorageConfig struct {
	Type    string        `yaml:"type"`
	MongoDB MongoDBConfig `yaml:"mongodb"`
}

// MongoDBConfig holds MongoDB connection settings
type MongoDBConfig struct {
	URI        string        `yaml:"uri"`
	Database   string        `yaml:"database"`
	Collection string        `yaml:"collection"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes configuration from YAML bytes, applying defaults and
// validation as Load does.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.BasePath == "" {
		c.Server.BasePath = "/edifact"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	if c.Intake.DuplicateWindow == 0 {
		c.Intake.DuplicateWindow = 24 * time.Hour
	}
	if c.Intake.MaxSize == 0 {
		c.Intake.MaxSize = 10 << 20
	}
	if c.Storage.Type == "" {
		c.Storage.Type = StorageMemory
	}
	if c.Storage.MongoDB.Database == "" {
		c.Storage.MongoDB.Database = "edifact"
	}
	if c.Storage.MongoDB.Collection == "" {
		c.Storage.MongoDB.Collection = "interchanges"
	}
	if c.Storage.MongoDB.Timeout == 0 {
		c.Storage.MongoDB.Timeout = 10 * time.Second
	}
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Server.TLS.Enabled {
		if c.Server.TLS.CertFile == "" || c.Server.TLS.KeyFile == "" {
			return fmt.Errorf("server.tls.certFile and server.tls.keyFile are required when TLS is enabled")
		}
	}

	if _, err := parseLevel(c.Logging.Level); err != nil {
		return err
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be 'text' or 'json', got '%s'", c.Logging.Format)
	}

	if c.Intake.DuplicateWindow < 0 {
		return fmt.Errorf("intake.duplicateWindow must not be negative")
	}
	if c.Intake.MaxSize < 0 {
		return fmt.Errorf("intake.maxSize must not be negative")
	}
	if c.Intake.UNA != "" {
		if _, err := edifact.ParseUNA(c.Intake.UNA); err != nil {
			return fmt.Errorf("intake.una: %w", err)
		}
	}

	switch c.Storage.Type {
	case StorageMemory:
	case StorageMongoDB:
		if c.Storage.MongoDB.URI == "" {
			return fmt.Errorf("storage.mongodb.uri is required when type is 'mongodb'")
		}
	default:
		return fmt.Errorf("storage.type must be 'memory' or 'mongodb', got '%s'", c.Storage.Type)
	}

	return nil
}

// Delimiters returns the configured starting delimiters, or the defaults
// when intake.una is unset.
func (c IntakeConfig) Delimiters() edifact.Delimiters {
	if c.UNA == "" {
		return edifact.DefaultDelimiters()
	}
	d, err := edifact.ParseUNA(c.UNA)
	if err != nil {
		return edifact.DefaultDelimiters()
	}
	return d
}

// NewLogger builds a slog logger writing to w.
func (c LoggingConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(s))); err != nil {
		return 0, fmt.Errorf("logging.level '%s' is not valid", s)
	}
	return level, nil
}
