package libdesugar

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/albertocavalcante/go-libdesugar/diag"
	"github.com/albertocavalcante/go-libdesugar/document"
	"github.com/albertocavalcante/go-libdesugar/emulated"
	"github.com/albertocavalcante/go-libdesugar/rename"
)

// Option configures loading and resolution.
type Option func(*config) error

// config holds all session configuration.
type config struct {
	minAPILevel     int
	mode            document.Mode
	tieBreak        emulated.TieBreakPolicy
	renameCacheSize int
	workers         int
	strictSchema    bool
	sink            diag.Sink

	// logger is the structured logger for debug/info output.
	// If nil, logging is disabled (silent by default).
	logger *slog.Logger
}

// WithMinAPILevel sets the minimum API level the build targets. It selects
// the ranged flag groups of a document, gates retargeted and backported
// methods, and is the default catalog level.
func WithMinAPILevel(level int) Option {
	return func(c *config) error {
		c.minAPILevel = level
		return nil
	}
}

// WithMode selects library or program compilation for ranged flag groups.
func WithMode(m document.Mode) Option {
	return func(c *config) error {
		c.mode = m
		return nil
	}
}

// WithTieBreak sets the policy for default methods inherited from equally
// specific interfaces.
func WithTieBreak(p emulated.TieBreakPolicy) Option {
	return func(c *config) error {
		c.tieBreak = p
		return nil
	}
}

// WithRenameCacheSize sets how many rename decisions are memoised. Zero
// disables the cache.
func WithRenameCacheSize(n int) Option {
	return func(c *config) error {
		c.renameCacheSize = n
		return nil
	}
}

// WithWorkers bounds concurrent class resolution and catalog building.
// Zero uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *config) error {
		c.workers = n
		return nil
	}
}

// WithStrictSchema enables (the default) or disables schema checking of
// specification documents.
func WithStrictSchema(strict bool) Option {
	return func(c *config) error {
		c.strictSchema = strict
		return nil
	}
}

// WithDiagnostics sets an additional sink for validation and resolution
// diagnostics. Every session also keeps its own collector.
func WithDiagnostics(s diag.Sink) Option {
	return func(c *config) error {
		c.sink = s
		return nil
	}
}

// WithLogger sets a structured logger for load and resolution diagnostics.
// If not set, logging is disabled (silent mode).
//
// Example:
//
//	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil)).With("component", "libdesugar")
//	session, err := libdesugar.LoadFile("desugar.json", libdesugar.WithLogger(logger))
func WithLogger(l *slog.Logger) Option {
	return func(c *config) error {
		c.logger = l
		return nil
	}
}

// validate checks the configuration for logical consistency.
func (c *config) validate() error {
	if c.minAPILevel < 0 {
		return fmt.Errorf("minimum API level must be non-negative, got %d", c.minAPILevel)
	}
	if c.renameCacheSize < 0 {
		return errors.New("rename cache size must be non-negative")
	}
	if c.workers < 0 {
		return errors.New("workers must be non-negative")
	}
	if c.tieBreak != emulated.TieBreakDeclarationOrder && c.tieBreak != emulated.TieBreakStrict {
		return fmt.Errorf("invalid tie-break policy %v", c.tieBreak)
	}
	if c.mode != document.ModeLibrary && c.mode != document.ModeProgram {
		return fmt.Errorf("invalid compilation mode %v", c.mode)
	}
	return nil
}

// log returns the configured logger, or a no-op logger if none was set.
// This allows internal code to call logging methods without nil checks.
func (c *config) log() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return slog.New(slog.DiscardHandler)
}

// newConfig applies the options over the defaults and validates the result.
func newConfig(opts ...Option) (*config, error) {
	c := &config{
		renameCacheSize: rename.DefaultCacheSize,
		strictSchema:    true,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return c, nil
}
