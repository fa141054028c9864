package document

import (
	"fmt"

	"github.com/bazelbuild/buildtools/build"

	"github.com/albertocavalcante/go-libdesugar/internal/buildutil"
)

// parseStarlark reads the call syntax:
//
//	specification(identifier = "...", configuration_format_version = 101)
//	rewrite_prefix(prefix = "java.time.", rewritten = "j$.time.")
//	maintain_prefix("java.util.function.")
//	retarget_method(method = "...", replacement = "...", min_api_level = 24)
//	backport_method(method = "...", replacement = "...")
//	emulate_interface(interface = "...", rewritten = "...", defaults = {"sig": "impl"})
//
// Statements are applied in order. In strict mode anything else is an error.
func parseStarlark(data []byte, cfg parseConfig) (*Document, error) {
	f, err := build.ParseDefault(cfg.filename, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", cfg.filename, err)
	}

	doc := &Document{}
	for _, stmt := range f.Stmt {
		call, ok := stmt.(*build.CallExpr)
		if !ok {
			if cfg.strict {
				return nil, starlarkError(cfg.filename, stmt, "only rule calls are allowed")
			}
			continue
		}
		name := buildutil.FuncName(call)
		if name == "" {
			if cfg.strict {
				return nil, starlarkError(cfg.filename, call, "unsupported call")
			}
			continue
		}

		if err := applyCall(doc, name, call, cfg); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

func applyCall(doc *Document, name string, call *build.CallExpr, cfg parseConfig) error {
	switch name {
	case "specification":
		doc.Identifier = buildutil.String(call, "identifier")
		doc.ConfigurationFormatVersion = buildutil.Int(call, "configuration_format_version")
		doc.RequiredCompilationAPILevel = buildutil.Int(call, "required_compilation_api_level")
		doc.SynthesizedPackagePrefix = buildutil.String(call, "synthesized_library_classes_package_prefix")

	case "rewrite_prefix":
		prefix, rewritten := buildutil.String(call, "prefix"), buildutil.String(call, "rewritten")
		if prefix == "" {
			prefix, rewritten = buildutil.Positional(call, 0), buildutil.Positional(call, 1)
		}
		if prefix == "" || rewritten == "" {
			return starlarkError(cfg.filename, call, "rewrite_prefix requires prefix and rewritten")
		}
		doc.RewritePrefix = append(doc.RewritePrefix, PrefixPair{Prefix: prefix, Rewritten: rewritten})

	case "maintain_prefix":
		prefixes := buildutil.PositionalStrings(call)
		if p := buildutil.String(call, "prefix"); p != "" {
			prefixes = append(prefixes, p)
		}
		if len(prefixes) == 0 {
			return starlarkError(cfg.filename, call, "maintain_prefix requires at least one prefix")
		}
		doc.MaintainPrefix = append(doc.MaintainPrefix, prefixes...)

	case "retarget_method", "backport_method":
		entry := MethodEntry{
			Method:      buildutil.String(call, "method"),
			Replacement: buildutil.String(call, "replacement"),
			MinAPILevel: buildutil.Int(call, "min_api_level"),
		}
		if entry.Method == "" || entry.Replacement == "" {
			return starlarkError(cfg.filename, call, name+" requires method and replacement")
		}
		if name == "retarget_method" {
			doc.RetargetMethod = append(doc.RetargetMethod, entry)
		} else {
			doc.BackportMethod = append(doc.BackportMethod, entry)
		}

	case "emulate_interface":
		iface := buildutil.String(call, "interface")
		rewritten := buildutil.String(call, "rewritten")
		if iface == "" || rewritten == "" {
			return starlarkError(cfg.filename, call, "emulate_interface requires interface and rewritten")
		}
		defaults, err := buildutil.StringDict(call, "defaults")
		if err != nil {
			return starlarkError(cfg.filename, call, err.Error())
		}
		if doc.EmulateInterface == nil {
			doc.EmulateInterface = make(map[string]EmulatedInterface)
		}
		if _, dup := doc.EmulateInterface[iface]; dup {
			return starlarkError(cfg.filename, call, fmt.Sprintf("interface %s emulated twice", iface))
		}
		doc.EmulateInterface[iface] = EmulatedInterface{RewrittenType: rewritten, DefaultMethods: defaults}

	default:
		if cfg.strict {
			return starlarkError(cfg.filename, call, fmt.Sprintf("unknown rule %q", name))
		}
	}
	return nil
}

func starlarkError(filename string, expr build.Expr, msg string) error {
	return fmt.Errorf("%s:%d: %s", filename, buildutil.Line(expr), msg)
}
