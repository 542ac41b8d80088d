package mimekit

import (
	"path/filepath"

	"github.com/gobeaver/beaver-kit/config"
)

type Config struct {
	// Freedesktop shared-mime-info database locations, list-separated
	// (':' on Unix). Missing files are skipped, not errors.
	MagicPaths    string `env:"MIMEKIT_MAGIC_PATHS,default:/usr/share/mime/magic"`
	SubclassPaths string `env:"MIMEKIT_SUBCLASS_PATHS,default:/usr/share/mime/subclasses"`

	// SniffSize is how many leading bytes checkers read from a file (and
	// consider from a byte stream) when testing signatures.
	SniffSize int `env:"MIMEKIT_SNIFF_SIZE,default:8192"`

	// Byte-classification result cache
	CacheEnabled    bool `env:"MIMEKIT_CACHE_ENABLED,default:false"`
	CacheTTLSeconds int  `env:"MIMEKIT_CACHE_TTL_SECONDS,default:300"`
	CacheMaxEntries int  `env:"MIMEKIT_CACHE_MAX_ENTRIES,default:4096"`
}

// GetConfig returns config loaded from environment
func GetConfig() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfig returns the built-in defaults without consulting the
// environment.
func DefaultConfig() *Config {
	return &Config{
		MagicPaths:      "/usr/share/mime/magic",
		SubclassPaths:   "/usr/share/mime/subclasses",
		SniffSize:       8192,
		CacheTTLSeconds: 300,
		CacheMaxEntries: 4096,
	}
}

// MagicPathList returns MagicPaths split on the OS path list separator.
func (c *Config) MagicPathList() []string {
	return filepath.SplitList(c.MagicPaths)
}

// SubclassPathList returns SubclassPaths split on the OS path list separator.
func (c *Config) SubclassPathList() []string {
	return filepath.SplitList(c.SubclassPaths)
}
