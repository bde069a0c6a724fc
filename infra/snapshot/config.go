package snapshot

import (
	"context"
	"fmt"

	coresnap "github.com/kilianp07/vesselpower/core/snapshot"
)

// Config defines settings for snapshot storage and rotation.
type Config struct {
	// Backend selects the store type: "jsonl", "sqlite" or "none".
	Backend string `json:"backend"`
	// Path is the file location of the store.
	Path string `json:"path"`
	// MaxSizeMB triggers rotation when the file exceeds this size in megabytes.
	MaxSizeMB int `json:"max_size_mb"`
	// MaxBackups limits the number of rotated files to keep.
	MaxBackups int `json:"max_backups"`
	// MaxAgeDays removes rotated files older than this number of days.
	MaxAgeDays int `json:"max_age_days"`
}

// SetDefaults applies sane defaults.
func (c *Config) SetDefaults() {
	if c.Backend == "" {
		c.Backend = "jsonl"
	}
	if c.Path == "" {
		switch c.Backend {
		case "sqlite":
			c.Path = "vessels.db"
		default:
			c.Path = "vessels.jsonl"
		}
	}
	if c.MaxSizeMB <= 0 {
		c.MaxSizeMB = 10
	}
}

// Validate checks mandatory fields.
func (c Config) Validate() error {
	switch c.Backend {
	case "jsonl", "sqlite", "none":
	default:
		return fmt.Errorf("unknown snapshot backend %s", c.Backend)
	}
	if c.Backend != "none" && c.Path == "" {
		return fmt.Errorf("snapshot path is required")
	}
	return nil
}

// Open returns the store selected by cfg. The "none" backend yields a nil
// store and no error.
func Open(cfg Config) (coresnap.Store, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Backend {
	case "sqlite":
		st, err := NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, fmt.Errorf("open sqlite snapshot store: %w", err)
		}
		return st, nil
	case "jsonl":
		st, err := NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
		if err != nil {
			return nil, fmt.Errorf("open jsonl snapshot store: %w", err)
		}
		return st, nil
	}
	return nil, nil
}

// Lister is implemented by stores able to enumerate saved vessels.
type Lister interface {
	Vessels(ctx context.Context) ([]string, error)
}
