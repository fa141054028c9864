package emulated

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/albertocavalcante/go-libdesugar/descriptor"
	"github.com/albertocavalcante/go-libdesugar/diag"
	"github.com/albertocavalcante/go-libdesugar/hierarchy"
	"github.com/albertocavalcante/go-libdesugar/spec"
)

// Option configures a Resolver.
type Option func(*config) error

type config struct {
	policy TieBreakPolicy
	sink   diag.Sink
	logger *slog.Logger
}

// WithTieBreak sets the policy for equally specific default methods.
func WithTieBreak(p TieBreakPolicy) Option {
	return func(c *config) error {
		if p != TieBreakDeclarationOrder && p != TieBreakStrict {
			return fmt.Errorf("invalid tie-break policy %d", int(p))
		}
		c.policy = p
		return nil
	}
}

// WithDiagnostics sets the sink that receives missing-class warnings and
// diamond errors.
func WithDiagnostics(s diag.Sink) Option {
	return func(c *config) error {
		c.sink = s
		return nil
	}
}

// WithLogger sets a structured logger. Logging is disabled by default.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) error {
		c.logger = l
		return nil
	}
}

// Resolver computes forwarding plans over a validated specification. It is
// safe for concurrent use.
type Resolver struct {
	spec     *spec.Specification
	provider hierarchy.Provider
	policy   TieBreakPolicy
	sink     diag.Sink
	logger   *slog.Logger
}

// New creates a Resolver reading class shapes from p.
func New(v *spec.Validated, p hierarchy.Provider, opts ...Option) (*Resolver, error) {
	if v == nil {
		return nil, errors.New("emulated: nil specification")
	}
	if p == nil {
		return nil, errors.New("emulated: nil class provider")
	}
	cfg := config{policy: TieBreakDeclarationOrder}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		spec:     v.Specification(),
		provider: p,
		policy:   cfg.policy,
		sink:     diag.OrDiscard(cfg.sink),
		logger:   logger,
	}, nil
}

// Policy returns the configured tie-break policy.
func (r *Resolver) Policy() TieBreakPolicy {
	return r.policy
}

// Resolve builds the class interface graph of class and resolves it.
func (r *Resolver) Resolve(class descriptor.TypeName) (*ForwardingPlan, error) {
	g, err := hierarchy.Build(class, r.provider)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", class, err)
	}
	return r.ResolveGraph(g)
}

// reached is an interface reachable from the class's declared interfaces.
type reached struct {
	name  descriptor.TypeName
	depth int // shortest distance from the class
	decl  int // index of the earliest declared interface on a shortest path
}

// ResolveGraph computes the forwarding plan for g.Root. A cyclic graph is
// rejected with a *hierarchy.CycleError.
func (r *Resolver) ResolveGraph(g *hierarchy.Graph) (*ForwardingPlan, error) {
	if cycles := g.FindCycles(); len(cycles) > 0 {
		return nil, fmt.Errorf("resolve %s: %w", g.Root, &hierarchy.CycleError{Cycle: cycles[0]})
	}
	plan := &ForwardingPlan{Class: g.Root}
	for _, m := range g.Missing {
		diag.Warn(r.sink, diag.CodeMissingClass, "type is unknown to the class model provider", g.Root.String(), m.String())
	}

	root := g.Get(g.Root)
	if root == nil || root.Info.IsInterface {
		return plan, nil
	}

	reach := reachableInterfaces(g, root)
	plan.AdditionalInterfaces = r.minimalClosure(g, reach)

	var errs []error
	for _, sig := range r.defaultSignatures(reach) {
		if overridden(g, root, sig) {
			plan.Overridden = append(plan.Overridden, sig)
			continue
		}
		fwd, err := r.pickDefault(g, reach, sig)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		plan.Forwarders = append(plan.Forwarders, fwd)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}

	r.logger.Debug("resolved forwarding plan",
		slog.String("class", g.Root.String()),
		slog.Int("companions", len(plan.AdditionalInterfaces)),
		slog.Int("forwarders", len(plan.Forwarders)),
		slog.Int("overridden", len(plan.Overridden)),
	)
	return plan, nil
}

// reachableInterfaces walks the declared interfaces of root breadth-first.
// Superclasses are not entered: they receive their own plans. Level order
// guarantees the first visit of a type carries its minimal (depth, decl).
func reachableInterfaces(g *hierarchy.Graph, root *hierarchy.Node) []reached {
	var out []reached
	seen := make(map[descriptor.TypeName]bool)
	queue := make([]reached, 0, len(root.Info.Interfaces))
	for i, iface := range root.Info.Interfaces {
		queue = append(queue, reached{name: iface, depth: 1, decl: i})
	}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		if seen[current.name] {
			continue
		}
		seen[current.name] = true
		out = append(out, current)

		node := g.Get(current.name)
		if node == nil || node.Missing {
			continue
		}
		for _, sup := range node.Info.Interfaces {
			queue = append(queue, reached{name: sup, depth: current.depth + 1, decl: current.decl})
		}
	}
	return out
}

// minimalClosure keeps the emulated interfaces no other reachable emulated
// interface extends, and drops those without any default surface.
func (r *Resolver) minimalClosure(g *hierarchy.Graph, reach []reached) []Companion {
	var emulated []descriptor.TypeName
	for _, c := range reach {
		if r.spec.IsEmulated(c.name) {
			emulated = append(emulated, c.name)
		}
	}

	var out []Companion
	for _, e := range emulated {
		implied := slices.ContainsFunc(emulated, func(other descriptor.TypeName) bool {
			return g.IsSubtypeOf(other, e)
		})
		if implied || !r.hasDefaultSurface(g, e) {
			continue
		}
		ei, _ := r.spec.EmulatedInterface(e)
		out = append(out, Companion{Interface: e, Companion: ei.Companion})
	}
	return out
}

func (r *Resolver) hasDefaultSurface(g *hierarchy.Graph, iface descriptor.TypeName) bool {
	for _, t := range append([]descriptor.TypeName{iface}, g.Supertypes(iface)...) {
		if ei, ok := r.spec.EmulatedInterface(t); ok && len(ei.Defaults) > 0 {
			return true
		}
	}
	return false
}

// defaultSignatures returns, sorted, every default signature contributed by
// a reachable emulated interface.
func (r *Resolver) defaultSignatures(reach []reached) []string {
	var sigs []string
	for _, c := range reach {
		ei, ok := r.spec.EmulatedInterface(c.name)
		if !ok {
			continue
		}
		for _, d := range ei.Defaults {
			sigs = append(sigs, d.Signature)
		}
	}
	slices.Sort(sigs)
	return slices.Compact(sigs)
}

func overridden(g *hierarchy.Graph, root *hierarchy.Node, sig string) bool {
	if root.Info.Declares(sig) {
		return true
	}
	for _, sup := range g.SuperclassChain(root.Info.Name) {
		if n := g.Get(sup); n != nil && n.Info.Declares(sig) {
			return true
		}
	}
	return false
}

// pickDefault selects the default implementation of sig among the reachable
// interfaces contributing one.
func (r *Resolver) pickDefault(g *hierarchy.Graph, reach []reached, sig string) (Forwarder, error) {
	var candidates []reached
	for _, c := range reach {
		if r.contributes(g, c.name, sig) {
			candidates = append(candidates, c)
		}
	}

	// Only the most specific contributors compete.
	var maximal []reached
	for _, c := range candidates {
		shadowed := slices.ContainsFunc(candidates, func(other reached) bool {
			return g.IsSubtypeOf(other.name, c.name)
		})
		if !shadowed {
			maximal = append(maximal, c)
		}
	}

	if len(maximal) == 0 {
		return Forwarder{}, r.diamond(g.Root, sig, candidates)
	}
	if len(maximal) > 1 {
		// maximal is in breadth-first order, so the first entry has the
		// lowest (depth, decl) rank.
		first, second := maximal[0], maximal[1]
		symmetric := first.depth == second.depth && first.decl == second.decl
		if r.policy == TieBreakStrict || symmetric {
			return Forwarder{}, r.diamond(g.Root, sig, maximal)
		}
	}
	return r.forwarderFor(g, maximal[0].name, sig)
}

func (r *Resolver) contributes(g *hierarchy.Graph, iface descriptor.TypeName, sig string) bool {
	if ei, ok := r.spec.EmulatedInterface(iface); ok {
		_, has := ei.Default(sig)
		return has
	}
	n := g.Get(iface)
	return n.IsInterface() && n.Info.Declares(sig)
}

func (r *Resolver) forwarderFor(g *hierarchy.Graph, iface descriptor.TypeName, sig string) (Forwarder, error) {
	if ei, ok := r.spec.EmulatedInterface(iface); ok {
		d, _ := ei.Default(sig)
		return Forwarder{Signature: sig, Interface: iface, Target: d.Forwarder, Source: SourceLibrary}, nil
	}
	m, err := descriptor.ParseSignature(sig)
	if err != nil {
		return Forwarder{}, fmt.Errorf("class %s: default method of %s: %w", g.Root, iface, err)
	}
	return Forwarder{Signature: sig, Interface: iface, Target: m.WithHolder(iface), Source: SourceProgram}, nil
}

func (r *Resolver) diamond(class descriptor.TypeName, sig string, conflict []reached) error {
	err := &UnresolvedDiamondError{Class: class, Signature: sig, Policy: r.policy}
	subjects := []string{class.String(), sig}
	for _, c := range conflict {
		err.Interfaces = append(err.Interfaces, c.name)
		subjects = append(subjects, c.name.String())
	}
	diag.Error(r.sink, diag.CodeUnresolvedDiamond, "default method inherited from several interfaces with no deterministic winner", subjects...)
	return err
}
