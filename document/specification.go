package document

import (
	"fmt"
	"slices"

	"github.com/albertocavalcante/go-libdesugar/descriptor"
	"github.com/albertocavalcante/go-libdesugar/spec"
)

// Mode selects which compilation the ranged flag groups are merged for.
type Mode int

const (
	// ModeLibrary compiles the desugared library itself: common_flags and
	// library_flags apply.
	ModeLibrary Mode = iota

	// ModeProgram compiles a program against the library: common_flags and
	// program_flags apply.
	ModeProgram
)

func (m Mode) String() string {
	if m == ModeProgram {
		return "program"
	}
	return "library"
}

// ParseMode parses "library" or "program".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "library":
		return ModeLibrary, nil
	case "program":
		return ModeProgram, nil
	default:
		return 0, fmt.Errorf("unknown compilation mode %q (want library or program)", s)
	}
}

// Specification builds and freezes the rules that apply at the minimum API
// level in the given mode.
func (d *Document) Specification(level int, mode Mode) (*spec.Specification, error) {
	b := spec.NewBuilder()
	if err := d.ApplyTo(b, level, mode); err != nil {
		return nil, err
	}
	return b.Freeze(), nil
}

// ApplyTo adds the document's metadata and applicable rules to b: the top
// level groups, then matching common_flags, then matching library_flags or
// program_flags, each in document order.
func (d *Document) ApplyTo(b *spec.Builder, level int, mode Mode) error {
	err := b.SetMetadata(spec.Metadata{
		Identifier:                  d.Identifier,
		FormatVersion:               d.ConfigurationFormatVersion,
		RequiredCompilationAPILevel: d.RequiredCompilationAPILevel,
		SynthesizedPackagePrefix:    d.SynthesizedPackagePrefix,
	})
	if err != nil {
		return err
	}

	if err := applyRules(b, &d.Rules); err != nil {
		return err
	}

	modeFlags, modeName := d.LibraryFlags, "library_flags"
	if mode == ModeProgram {
		modeFlags, modeName = d.ProgramFlags, "program_flags"
	}
	for _, set := range []struct {
		name   string
		groups []FlagGroup
	}{
		{"common_flags", d.CommonFlags},
		{modeName, modeFlags},
	} {
		for i := range set.groups {
			g := &set.groups[i]
			if !g.AppliesAt(level) {
				continue
			}
			if err := applyRules(b, &g.Rules); err != nil {
				return fmt.Errorf("%s[%d]: %w", set.name, i, err)
			}
		}
	}
	return nil
}

func applyRules(b *spec.Builder, r *Rules) error {
	for _, p := range r.RewritePrefix {
		if err := b.PutRewritePrefix(p.Prefix, p.Rewritten); err != nil {
			return err
		}
	}
	for _, p := range r.MaintainPrefix {
		if err := b.PutMaintainPrefix(p); err != nil {
			return err
		}
	}
	for _, e := range r.RetargetMethod {
		rule, err := e.rule(spec.SectionRetargetMethod)
		if err != nil {
			return err
		}
		if err := b.PutRetargetMethod(rule); err != nil {
			return err
		}
	}
	for _, e := range r.BackportMethod {
		rule, err := e.rule(spec.SectionBackportMethod)
		if err != nil {
			return err
		}
		if err := b.PutBackportMethod(rule); err != nil {
			return err
		}
	}

	// Sorted so the specification's emulated order does not depend on map
	// iteration.
	ifaces := make([]string, 0, len(r.EmulateInterface))
	for iface := range r.EmulateInterface {
		ifaces = append(ifaces, iface)
	}
	slices.Sort(ifaces)
	for _, iface := range ifaces {
		e, err := r.EmulateInterface[iface].emulated(iface)
		if err != nil {
			return err
		}
		if err := b.PutEmulatedInterface(e); err != nil {
			return err
		}
	}
	return nil
}

func (e MethodEntry) rule(section string) (spec.MethodRule, error) {
	m, err := descriptor.ParseMethod(e.Method)
	if err != nil {
		return spec.MethodRule{}, fmt.Errorf("%s: %w", section, err)
	}
	repl, err := descriptor.ParseMethod(e.Replacement)
	if err != nil {
		return spec.MethodRule{}, fmt.Errorf("%s %s: replacement: %w", section, e.Method, err)
	}
	return spec.MethodRule{Method: m, Replacement: repl, MinAPILevel: e.MinAPILevel}, nil
}

func (e EmulatedInterface) emulated(iface string) (spec.EmulatedInterface, error) {
	out := spec.EmulatedInterface{
		Interface: descriptor.TypeName(iface),
		Companion: descriptor.TypeName(e.RewrittenType),
	}
	for sig, impl := range e.DefaultMethods {
		m, err := descriptor.ParseMethod(impl)
		if err != nil {
			return spec.EmulatedInterface{}, fmt.Errorf("%s %s#%s: %w", spec.SectionEmulateInterface, iface, sig, err)
		}
		out.Defaults = append(out.Defaults, spec.DefaultMethod{Signature: sig, Forwarder: m})
	}
	return out, nil
}
