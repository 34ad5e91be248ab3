package config

import (
	"fmt"
	"os"
	"strconv"
)

// RecordConfig tunes the word log itself.
type RecordConfig struct {
	// RolloverThreshold is the word count at which a new record set is
	// started on the next new day.
	RolloverThreshold int `yaml:"rollover_threshold"`

	// MaxSets caps the number of record sets kept per area.
	MaxSets int `yaml:"max_sets"`

	// WordFilter is an optional CEL expression over `word`; words for which
	// it evaluates to false are rejected.
	WordFilter string `yaml:"word_filter"`
}

func DefaultRecordConfig() RecordConfig {
	return RecordConfig{
		RolloverThreshold: 500,
		MaxSets:           20,
	}
}

// ApplyDefaults fills in zero values with defaults.
func (c *RecordConfig) ApplyDefaults() {
	defaults := DefaultRecordConfig()
	if c.RolloverThreshold == 0 {
		c.RolloverThreshold = defaults.RolloverThreshold
	}
	if c.MaxSets == 0 {
		c.MaxSets = defaults.MaxSets
	}
}

// ApplyEnvOverrides applies environment variable overrides.
func (c *RecordConfig) ApplyEnvOverrides() {
	if val := os.Getenv("WORDLOG_WORD_FILTER"); val != "" {
		c.WordFilter = val
	}
	if val := os.Getenv("WORDLOG_MAX_SETS"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			c.MaxSets = n
		}
	}
}

// ResolvePaths is a no-op: record settings have no paths.
func (c *RecordConfig) ResolvePaths(_, _ string) {}

// Validate returns an error if the configuration is invalid.
func (c *RecordConfig) Validate() error {
	if c.RolloverThreshold < 1 {
		return fmt.Errorf("record.rollover_threshold must be at least 1, got %d", c.RolloverThreshold)
	}
	if c.MaxSets < 1 {
		return fmt.Errorf("record.max_sets must be at least 1, got %d", c.MaxSets)
	}
	return nil
}
