// Package catalog enumerates the library surface a validated specification
// fully supports at a minimum API level.
//
// A type is listed by its name when every public method it declares is
// covered, natively or by desugaring, and desugaring contributes to it.
// Otherwise each public non-constructor method that desugaring covers is
// listed as "type#name(args)ret". Methods covered only natively are never
// listed on their own. The result is sorted and free of duplicates.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"runtime"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/albertocavalcante/go-libdesugar/descriptor"
	"github.com/albertocavalcante/go-libdesugar/rename"
	"github.com/albertocavalcante/go-libdesugar/spec"
)

// Catalog is an immutable, sorted list of supported types and methods.
type Catalog struct {
	Level   int
	entries []string
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the entries.
func (c *Catalog) Entries() []string {
	return slices.Clone(c.entries)
}

// All iterates the entries in order. The sequence can be ranged over any
// number of times.
func (c *Catalog) All() iter.Seq[string] {
	return slices.Values(c.entries)
}

// Contains reports whether entry is listed.
func (c *Catalog) Contains(entry string) bool {
	_, ok := slices.BinarySearch(c.entries, entry)
	return ok
}

// WriteTo writes one entry per line.
func (c *Catalog) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, e := range c.entries {
		n, err := io.WriteString(w, e+"\n")
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// Option configures a Builder.
type Option func(*builderConfig) error

type builderConfig struct {
	workers int
	renamer *rename.Resolver
	logger  *slog.Logger
}

// WithWorkers bounds the number of types classified concurrently. Zero
// uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *builderConfig) error {
		if n < 0 {
			return fmt.Errorf("workers must be non-negative, got %d", n)
		}
		c.workers = n
		return nil
	}
}

// WithRenamer shares an existing rename resolver (and its cache).
func WithRenamer(r *rename.Resolver) Option {
	return func(c *builderConfig) error {
		c.renamer = r
		return nil
	}
}

// WithLogger sets a structured logger. Logging is disabled by default.
func WithLogger(l *slog.Logger) Option {
	return func(c *builderConfig) error {
		c.logger = l
		return nil
	}
}

// Builder produces catalogs for one specification and one surface.
type Builder struct {
	spec    *spec.Specification
	surface Surface
	renamer *rename.Resolver
	workers int
	logger  *slog.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(v *spec.Validated, surface Surface, opts ...Option) (*Builder, error) {
	if v == nil || surface == nil {
		return nil, errors.New("catalog: specification and surface are required")
	}
	cfg := builderConfig{}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	if cfg.renamer == nil {
		r, err := rename.New(v)
		if err != nil {
			return nil, err
		}
		cfg.renamer = r
	}
	if cfg.workers == 0 {
		cfg.workers = runtime.GOMAXPROCS(0)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	return &Builder{
		spec:    v.Specification(),
		surface: surface,
		renamer: cfg.renamer,
		workers: cfg.workers,
		logger:  cfg.logger,
	}, nil
}

// Build classifies every surface type at the minimum API level and returns
// the catalog. Repeated calls with the same level return equal catalogs.
func (b *Builder) Build(ctx context.Context, level int) (*Catalog, error) {
	types := b.surface.Types()
	perType := make([][]string, len(types))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, t := range types {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			perType[i] = b.classify(t, level)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var entries []string
	for _, e := range perType {
		entries = append(entries, e...)
	}
	slices.SortFunc(entries, strings.Compare)
	entries = slices.Compact(entries)

	b.logger.Debug("built catalog", slog.Int("level", level), slog.Int("types", len(types)), slog.Int("entries", len(entries)))
	return &Catalog{Level: level, entries: entries}, nil
}

// classify returns the entries type t contributes at level.
func (b *Builder) classify(t descriptor.TypeName, level int) []string {
	renamed := b.renamer.Resolve(t).IsRenamed()
	methods := b.surface.PublicMethods(t)

	full := true
	desugared := renamed
	var covered []string
	for _, sm := range methods {
		if renamed || b.desugars(sm.Method, level) {
			desugared = true
			if !sm.Method.IsConstructor() {
				covered = append(covered, sm.Method.String())
			}
			continue
		}
		if !sm.NativeAt(level) {
			full = false
		}
	}

	switch {
	case !desugared:
		return nil
	case full:
		return []string{t.String()}
	default:
		return covered
	}
}

// desugars reports whether a rule other than a type rename covers m.
func (b *Builder) desugars(m descriptor.Method, level int) bool {
	if r, ok := b.spec.Retarget(m); ok && r.AppliesAt(level) {
		return true
	}
	if r, ok := b.spec.Backport(m); ok && r.AppliesAt(level) {
		return true
	}
	if e, ok := b.spec.EmulatedInterface(m.Holder); ok {
		if _, ok := e.Default(m.Signature()); ok {
			return true
		}
	}
	return false
}
