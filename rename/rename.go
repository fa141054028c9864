// Package rename decides, for a fully-qualified type name, whether the
// validated specification renames it and to what.
//
// The policy is longest-specific-prefix: the longest rewrite source covering
// the name is applied, unless a maintained prefix
// that is more specific than that source also covers the name, in which case
// the name is left unchanged. Package prefixes end in '.'; any other source is
// a class-name prefix and covers every name that starts with it. Decisions are pure: the same name and the same
// validated specification always produce the same Decision.
package rename

import (
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/albertocavalcante/go-libdesugar/descriptor"
	"github.com/albertocavalcante/go-libdesugar/spec"
)

// DefaultCacheSize is the number of decisions a Resolver memoises.
const DefaultCacheSize = 4096

// Kind classifies a Decision.
type Kind int

const (
	// Unchanged means the name is not rewritten.
	Unchanged Kind = iota

	// Renamed means the name is rewritten to Decision.Name.
	Renamed
)

func (k Kind) String() string {
	if k == Renamed {
		return "renamed"
	}
	return "unchanged"
}

// Decision is the outcome of resolving one type name.
type Decision struct {
	Kind Kind

	// Name is the resulting type name; the input name when Unchanged.
	Name descriptor.TypeName

	// Rule is the source prefix of the rewrite that matched, if any.
	Rule string

	// MaintainedBy is the maintained prefix that exempted the name, if any.
	MaintainedBy string
}

// IsRenamed reports whether d renames its input.
func (d Decision) IsRenamed() bool {
	return d.Kind == Renamed
}

// String renders the decision for reports.
func (d Decision) String() string {
	switch {
	case d.Kind == Renamed:
		return fmt.Sprintf("renamed to %s (rewrite %q)", d.Name, d.Rule)
	case d.MaintainedBy != "":
		return fmt.Sprintf("unchanged (maintained %q)", d.MaintainedBy)
	default:
		return "unchanged"
	}
}

// Resolve computes the decision for name under v without caching.
func Resolve(name descriptor.TypeName, v *spec.Validated) Decision {
	s := string(name)
	rule, ok := v.MatchRewrite(s)
	if !ok {
		return Decision{Kind: Unchanged, Name: name}
	}
	if m, ok := v.MatchMaintained(s); ok && len(m) > len(rule.Source) {
		return Decision{Kind: Unchanged, Name: name, Rule: rule.Source, MaintainedBy: m}
	}
	return Decision{
		Kind: Renamed,
		Name: descriptor.TypeName(rule.Destination + s[len(rule.Source):]),
		Rule: rule.Source,
	}
}

// Resolver resolves type names against one validated specification and
// memoises the decisions. It is safe for concurrent use.
type Resolver struct {
	spec  *spec.Validated
	cache *lru.Cache[descriptor.TypeName, Decision]
}

// Option configures a Resolver.
type Option func(*resolverConfig) error

type resolverConfig struct {
	cacheSize int
}

// WithCacheSize sets the number of memoised decisions. Zero disables caching.
func WithCacheSize(n int) Option {
	return func(c *resolverConfig) error {
		if n < 0 {
			return fmt.Errorf("cache size must be non-negative, got %d", n)
		}
		c.cacheSize = n
		return nil
	}
}

// New creates a Resolver over v.
func New(v *spec.Validated, opts ...Option) (*Resolver, error) {
	cfg := resolverConfig{cacheSize: DefaultCacheSize}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	r := &Resolver{spec: v}
	if cfg.cacheSize > 0 {
		cache, err := lru.New[descriptor.TypeName, Decision](cfg.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create rename cache: %w", err)
		}
		r.cache = cache
	}
	return r, nil
}

// Spec returns the validated specification the resolver reads.
func (r *Resolver) Spec() *spec.Validated {
	return r.spec
}

// Resolve returns the decision for name.
func (r *Resolver) Resolve(name descriptor.TypeName) Decision {
	if r.cache == nil {
		return Resolve(name, r.spec)
	}
	if d, ok := r.cache.Get(name); ok {
		return d
	}
	d := Resolve(name, r.spec)
	r.cache.Add(name, d)
	return d
}

// RenameType returns the resulting name of t. Array suffixes are preserved.
func (r *Resolver) RenameType(t descriptor.TypeName) descriptor.TypeName {
	base := strings.TrimRight(string(t), "[]")
	dims := string(t)[len(base):]
	return r.Resolve(descriptor.TypeName(base)).Name + descriptor.TypeName(dims)
}

// RenameMethod rewrites the holder, parameter and return types of m.
func (r *Resolver) RenameMethod(m descriptor.Method) descriptor.Method {
	out := m.WithHolder(r.RenameType(m.Holder))
	for i, p := range out.Params {
		out.Params[i] = r.RenameType(p)
	}
	if out.Return != "" {
		out.Return = r.RenameType(out.Return)
	}
	return out
}
