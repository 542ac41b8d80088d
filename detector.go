package mimekit

import (
	"log/slog"
	"sync"
	"time"
)

// Detector classifies byte streams and files against a type hierarchy.
//
// A Detector builds its checker table and hierarchy exactly once, on first
// use; concurrent first calls block until the build completes. Everything is
// immutable afterward, so a Detector is safe for concurrent use.
type Detector struct {
	cfg      *Config
	logger   *slog.Logger
	checkers []Checker // explicit set; nil means the registered set

	once  sync.Once
	err   error
	table *checkerTable
	h     *Hierarchy
	cache *resultCache
}

// Option configures a Detector.
type Option func(*Detector)

// WithCheckers uses an explicit checker set instead of the registered one.
// Order matters: a later checker owns any type an earlier one also claims.
func WithCheckers(checkers ...Checker) Option {
	return func(d *Detector) { d.checkers = checkers }
}

// WithConfig uses cfg instead of loading configuration from the environment.
func WithConfig(cfg *Config) Option {
	return func(d *Detector) { d.cfg = cfg }
}

// WithLogger sets a logger for build-time diagnostics (ownership conflicts,
// dropped subclass pairs). The detector never logs after the one-time build.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Detector) { d.logger = logger }
}

// New creates a Detector. The checker table and hierarchy are built lazily
// on first detection call.
func New(opts ...Option) *Detector {
	d := &Detector{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Detector) init() error {
	d.once.Do(func() {
		cfg := d.cfg
		if cfg == nil {
			loaded, err := GetConfig()
			if err != nil {
				cfg = DefaultConfig()
			} else {
				cfg = loaded
			}
		}

		checkers := d.checkers
		if checkers == nil {
			checkers, d.err = createCheckers(cfg)
			if d.err != nil {
				return
			}
		}
		if len(checkers) == 0 {
			d.err = ErrNoCheckers
			return
		}

		d.table = buildTable(checkers, d.logger)
		d.h = buildHierarchy(checkers, d.logger)
		if cfg.CacheEnabled {
			ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
			d.cache = newResultCache(ttl, cfg.CacheMaxEntries, cfg.SniffSize)
		}
	})
	return d.err
}

// Hierarchy returns the detector's frozen type hierarchy for node lookup and
// custom traversal.
func (d *Detector) Hierarchy() (*Hierarchy, error) {
	if err := d.init(); err != nil {
		return nil, err
	}
	return d.h, nil
}

// MatchBytes reports whether data matches typeID, without walking the
// hierarchy. An unknown type identifier never matches.
func (d *Detector) MatchBytes(typeID string, data []byte) bool {
	if d.init() != nil {
		return false
	}
	return d.table.matchBytes(typeID, data)
}

// MatchPath reports whether the file at path matches typeID, without walking
// the hierarchy. Unknown types and unreadable files never match.
func (d *Detector) MatchPath(typeID string, path string) bool {
	if d.init() != nil {
		return false
	}
	return d.table.matchPath(typeID, path)
}

// DetectBytes returns the most specific type matching data, walking the
// hierarchy from the root. Fallback attachment makes byte classification
// total, so a no-match here is reported as ErrBrokenHierarchy.
func (d *Detector) DetectBytes(data []byte) (string, error) {
	if err := d.init(); err != nil {
		return "", err
	}
	if d.cache != nil {
		if id, ok := d.cache.get(data); ok {
			return id, nil
		}
	}
	id, ok := walkFrom(d.h.Root(), func(t string) bool {
		return d.table.matchBytes(t, data)
	})
	if !ok {
		return "", ErrBrokenHierarchy
	}
	if d.cache != nil {
		d.cache.put(data, id)
	}
	return id, nil
}

// DetectPath returns the most specific type matching the file at path,
// walking the hierarchy from the root. A missing or unreadable file degrades
// to ErrNoMatch; no I/O error is ever propagated.
func (d *Detector) DetectPath(path string) (string, error) {
	if err := d.init(); err != nil {
		return "", err
	}
	id, ok := walkFrom(d.h.Root(), func(t string) bool {
		return d.table.matchPath(t, path)
	})
	if !ok {
		return "", ErrNoMatch
	}
	return id, nil
}

// DetectBytesFrom is DetectBytes starting at an arbitrary node, for callers
// that already know a broad category and only want refinement. The node must
// come from this detector's Hierarchy; a foreign or nil node fails fast with
// ErrForeignNode. ErrNoMatch means no child of node matched, which is an
// ordinary outcome away from the root.
func (d *Detector) DetectBytesFrom(node *Node, data []byte) (string, error) {
	if err := d.init(); err != nil {
		return "", err
	}
	if node == nil || node.h != d.h {
		return "", ErrForeignNode
	}
	id, ok := walkFrom(node, func(t string) bool {
		return d.table.matchBytes(t, data)
	})
	if !ok {
		return "", ErrNoMatch
	}
	return id, nil
}

// DetectPathFrom is DetectPath starting at an arbitrary node.
func (d *Detector) DetectPathFrom(node *Node, path string) (string, error) {
	if err := d.init(); err != nil {
		return "", err
	}
	if node == nil || node.h != d.h {
		return "", ErrForeignNode
	}
	id, ok := walkFrom(node, func(t string) bool {
		return d.table.matchPath(t, path)
	})
	if !ok {
		return "", ErrNoMatch
	}
	return id, nil
}

// CacheStats returns result-cache statistics. The zero value is returned
// when caching is disabled.
func (d *Detector) CacheStats() CacheStatistics {
	if d.init() != nil || d.cache == nil {
		return CacheStatistics{}
	}
	return d.cache.stats()
}

// Global default detector (lazy initialized)
var (
	defaultDetector     *Detector
	defaultDetectorOnce sync.Once
)

// Default returns the process-wide detector backed by the registered
// checkers. Thread-safe, lazy initialization.
func Default() *Detector {
	defaultDetectorOnce.Do(func() {
		defaultDetector = New()
	})
	return defaultDetector
}

// DetectBytes classifies data using the default detector.
func DetectBytes(data []byte) (string, error) {
	return Default().DetectBytes(data)
}

// DetectPath classifies the file at path using the default detector.
func DetectPath(path string) (string, error) {
	return Default().DetectPath(path)
}

// MatchBytes tests data against a single type using the default detector.
func MatchBytes(typeID string, data []byte) bool {
	return Default().MatchBytes(typeID, data)
}

// MatchPath tests the file at path against a single type using the default
// detector.
func MatchPath(typeID string, path string) bool {
	return Default().MatchPath(typeID, path)
}
