// Package libdesugar loads desugared library specifications and answers the
// questions a bytecode rewriter asks of them.
//
// A specification declares which type-name prefixes are renamed into the
// bundled library namespace, which sub-prefixes are maintained (exempt from
// renaming), which methods are retargeted or backported, and which
// interfaces need emulated default-method forwarding.
//
// # Overview
//
// The module is split into focused packages:
//
//   - spec: the specification model and its consistency validator
//   - rename: longest-prefix rename decisions
//   - hierarchy: per-class supertype graphs
//   - emulated: companion interfaces and default-method forwarding plans
//   - catalog: the sorted list of supported library surface
//   - document: JSON, YAML, TOML and Starlark specification documents
//
// # Quick Start
//
//	session, err := libdesugar.LoadFile("desugar_jdk_libs.json",
//	    libdesugar.WithMinAPILevel(21))
//	if err != nil {
//	    return err // validation failures match ErrInvalidSpecification
//	}
//
//	d := session.Rename("java.time.Instant") // renamed to j$.time.Instant
//
//	resolver, _ := session.Resolver(classes)
//	plan, err := resolver.Resolve("com.example.MyList")
//
// # Thread Safety
//
// A Session is immutable after loading and safe for concurrent use.
package libdesugar

import (
	"context"
	"fmt"

	"github.com/albertocavalcante/go-libdesugar/catalog"
	"github.com/albertocavalcante/go-libdesugar/descriptor"
	"github.com/albertocavalcante/go-libdesugar/diag"
	"github.com/albertocavalcante/go-libdesugar/document"
	"github.com/albertocavalcante/go-libdesugar/emulated"
	"github.com/albertocavalcante/go-libdesugar/hierarchy"
	"github.com/albertocavalcante/go-libdesugar/rename"
	"github.com/albertocavalcante/go-libdesugar/spec"
)

// Session is a validated specification plus the resolvers built over it.
type Session struct {
	cfg       *config
	validated *spec.Validated
	renamer   *rename.Resolver
	collector *diag.Collector
	sink      diag.Sink
}

// Load parses a specification document, applies the groups matching the
// configured API level and mode, and validates the result.
func Load(data []byte, format document.Format, opts ...Option) (*Session, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	doc, err := document.Parse(data, format, document.WithStrict(cfg.strictSchema))
	if err != nil {
		return nil, fmt.Errorf("parse specification: %w", err)
	}
	return fromDocument(doc, cfg)
}

// LoadFile reads a specification document from disk. The format follows the
// file extension.
func LoadFile(path string, opts ...Option) (*Session, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	doc, err := document.ParseFile(path, document.WithStrict(cfg.strictSchema))
	if err != nil {
		return nil, fmt.Errorf("parse specification: %w", err)
	}
	return fromDocument(doc, cfg)
}

// Open validates an already built specification.
func Open(s *spec.Specification, opts ...Option) (*Session, error) {
	cfg, err := newConfig(opts...)
	if err != nil {
		return nil, err
	}
	return open(s, cfg)
}

func fromDocument(doc *document.Document, cfg *config) (*Session, error) {
	s, err := doc.Specification(cfg.minAPILevel, cfg.mode)
	if err != nil {
		return nil, fmt.Errorf("build specification: %w", err)
	}
	return open(s, cfg)
}

func open(s *spec.Specification, cfg *config) (*Session, error) {
	logger := cfg.log()
	collector := &diag.Collector{}
	sink := diag.Multi(collector, diag.NewSlogSink(logger), cfg.sink)

	logger.Debug("validating specification",
		"identifier", s.Metadata().Identifier,
		"rewrite_rules", len(s.RewriteRules()),
		"emulated_interfaces", len(s.EmulatedInterfaces()))

	v, err := spec.Validate(s, sink)
	if err != nil {
		return nil, err
	}

	renamer, err := rename.New(v, rename.WithCacheSize(cfg.renameCacheSize))
	if err != nil {
		return nil, err
	}

	return &Session{
		cfg:       cfg,
		validated: v,
		renamer:   renamer,
		collector: collector,
		sink:      sink,
	}, nil
}

// Specification returns the frozen specification.
func (s *Session) Specification() *spec.Specification {
	return s.validated.Specification()
}

// Validated returns the validated specification.
func (s *Session) Validated() *spec.Validated {
	return s.validated
}

// Diagnostics returns the warnings (and errors) reported so far.
func (s *Session) Diagnostics() []diag.Diagnostic {
	return s.collector.Diagnostics()
}

// MinAPILevel returns the configured minimum API level.
func (s *Session) MinAPILevel() int {
	return s.cfg.minAPILevel
}

// Rename decides the name of a type.
func (s *Session) Rename(name descriptor.TypeName) rename.Decision {
	return s.renamer.Resolve(name)
}

// Renamer returns the shared rename resolver.
func (s *Session) Renamer() *rename.Resolver {
	return s.renamer
}

// Resolver returns an emulated-interface resolver reading class shapes from p.
func (s *Session) Resolver(p hierarchy.Provider) (*emulated.Resolver, error) {
	return emulated.New(s.validated, p,
		emulated.WithTieBreak(s.cfg.tieBreak),
		emulated.WithDiagnostics(s.sink),
		emulated.WithLogger(s.cfg.log()),
	)
}

// Plan resolves the given classes concurrently. Every unresolved diamond is
// reported in the joined error.
func (s *Session) Plan(ctx context.Context, p hierarchy.Provider, classes ...descriptor.TypeName) ([]*emulated.ForwardingPlan, error) {
	r, err := s.Resolver(p)
	if err != nil {
		return nil, err
	}
	return emulated.NewPlanner(r, s.cfg.workers).ResolveAll(ctx, classes)
}

// Catalog builds the supported surface at the session's minimum API level.
func (s *Session) Catalog(ctx context.Context, surface catalog.Surface) (*catalog.Catalog, error) {
	return s.CatalogAt(ctx, surface, s.cfg.minAPILevel)
}

// CatalogAt builds the supported surface at level.
func (s *Session) CatalogAt(ctx context.Context, surface catalog.Surface, level int) (*catalog.Catalog, error) {
	b, err := catalog.NewBuilder(s.validated, surface,
		catalog.WithRenamer(s.renamer),
		catalog.WithWorkers(s.cfg.workers),
		catalog.WithLogger(s.cfg.log()),
	)
	if err != nil {
		return nil, err
	}
	return b.Build(ctx, level)
}

// Export writes the canonical JSON form of the specification.
func (s *Session) Export() ([]byte, error) {
	return document.Export(s.Specification())
}
