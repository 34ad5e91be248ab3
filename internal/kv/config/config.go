package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	TypeMemory = "memory"
	TypeSQLite = "sqlite"
	TypeMongo  = "mongo"
)

type Config struct {
	Type   string       `yaml:"type"` // "memory", "sqlite", "mongo"
	Stream string       `yaml:"stream"`
	SQLite SQLiteConfig `yaml:"sqlite"`
	Mongo  MongoConfig  `yaml:"mongo"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type MongoConfig struct {
	URI          string `yaml:"uri"`
	DatabaseName string `yaml:"database_name"`
	Collection   string `yaml:"collection"`
}

func DefaultConfig() Config {
	return Config{
		Type:   TypeMemory,
		Stream: "WORDLOG",
		SQLite: SQLiteConfig{Path: "wordlog.db"},
		Mongo: MongoConfig{
			URI:          "mongodb://localhost:27017/?replicaSet=rs0",
			DatabaseName: "wordlog",
			Collection:   "kv",
		},
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *Config) ApplyDefaults() {
	defaults := DefaultConfig()
	if c.Type == "" {
		c.Type = defaults.Type
	}
	if c.Stream == "" {
		c.Stream = defaults.Stream
	}
	if c.SQLite.Path == "" {
		c.SQLite.Path = defaults.SQLite.Path
	}
	if c.Mongo.URI == "" {
		c.Mongo.URI = defaults.Mongo.URI
	}
	if c.Mongo.DatabaseName == "" {
		c.Mongo.DatabaseName = defaults.Mongo.DatabaseName
	}
	if c.Mongo.Collection == "" {
		c.Mongo.Collection = defaults.Mongo.Collection
	}
}

// ApplyEnvOverrides applies environment variable overrides.
func (c *Config) ApplyEnvOverrides() {
	if val := os.Getenv("WORDLOG_STORAGE_TYPE"); val != "" {
		c.Type = val
	}
	if val := os.Getenv("WORDLOG_SQLITE_PATH"); val != "" {
		c.SQLite.Path = val
	}
	if val := os.Getenv("WORDLOG_MONGO_URI"); val != "" {
		c.Mongo.URI = val
	}
	if val := os.Getenv("WORDLOG_MONGO_DATABASE"); val != "" {
		c.Mongo.DatabaseName = val
	}
}

// ResolvePaths makes a relative SQLite path relative to dataDir.
func (c *Config) ResolvePaths(_, dataDir string) {
	if c.SQLite.Path == ":memory:" || filepath.IsAbs(c.SQLite.Path) || dataDir == "" {
		return
	}
	c.SQLite.Path = filepath.Join(dataDir, c.SQLite.Path)
}

// Validate returns an error if the configuration is invalid.
func (c *Config) Validate() error {
	switch c.Type {
	case TypeMemory:
	case TypeSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path is required for sqlite storage")
		}
	case TypeMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("storage.mongo.uri is required for mongo storage")
		}
		if c.Mongo.DatabaseName == "" {
			return fmt.Errorf("storage.mongo.database_name is required for mongo storage")
		}
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Type)
	}
	return nil
}
