package document

import (
	"bytes"
	"encoding/json"

	"github.com/albertocavalcante/go-libdesugar/spec"
)

// FromSpecification returns the flat document form of s. Ranged flag
// groups are already resolved in a Specification, so none are produced.
func FromSpecification(s *spec.Specification) *Document {
	meta := s.Metadata()
	doc := &Document{
		Identifier:                  meta.Identifier,
		ConfigurationFormatVersion:  meta.FormatVersion,
		RequiredCompilationAPILevel: meta.RequiredCompilationAPILevel,
		SynthesizedPackagePrefix:    meta.SynthesizedPackagePrefix,
	}

	for _, r := range s.RewriteRules() {
		doc.RewritePrefix = append(doc.RewritePrefix, PrefixPair{Prefix: r.Source, Rewritten: r.Destination})
	}
	doc.MaintainPrefix = s.MaintainedPrefixes()
	doc.RetargetMethod = methodEntries(s.RetargetRules())
	doc.BackportMethod = methodEntries(s.BackportRules())

	if emulated := s.EmulatedInterfaces(); len(emulated) > 0 {
		doc.EmulateInterface = make(map[string]EmulatedInterface, len(emulated))
		for _, e := range emulated {
			entry := EmulatedInterface{RewrittenType: e.Companion.String()}
			if len(e.Defaults) > 0 {
				entry.DefaultMethods = make(map[string]string, len(e.Defaults))
				for _, d := range e.Defaults {
					entry.DefaultMethods[d.Signature] = d.Forwarder.String()
				}
			}
			doc.EmulateInterface[e.Interface.String()] = entry
		}
	}
	return doc
}

func methodEntries(rules []spec.MethodRule) []MethodEntry {
	if len(rules) == 0 {
		return nil
	}
	out := make([]MethodEntry, len(rules))
	for i, r := range rules {
		out[i] = MethodEntry{Method: r.Method.String(), Replacement: r.Replacement.String(), MinAPILevel: r.MinAPILevel}
	}
	return out
}

// Export writes the canonical JSON form of s. Emulated interfaces and their
// default methods are sorted by key; rewrite_prefix keeps rule order.
func Export(s *spec.Specification) ([]byte, error) {
	return FromSpecification(s).Marshal()
}

// Marshal serializes the document with deterministic formatting.
func (d *Document) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
