// Package document reads and writes specification documents.
//
// A document is authored in JSON, YAML, TOML or a Starlark call syntax. All
// forms share one data model: flat rule groups at the top level plus
// API-level ranged groups (common_flags, library_flags, program_flags) that
// apply only when the minimum API level falls in their range.
//
//	doc, err := document.ParseFile("desugar_jdk_libs.json")
//	s, err := doc.Specification(21, document.ModeLibrary)
//	v, err := spec.Validate(s, sink)
//
// Export writes the canonical JSON form of a Specification.
package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Format is a document syntax.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
	FormatTOML
	FormatStarlark
)

func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	case FormatTOML:
		return "toml"
	case FormatStarlark:
		return "starlark"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// ParseFormat parses a format name or file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "toml":
		return FormatTOML, nil
	case "starlark", "star", "bzl":
		return FormatStarlark, nil
	default:
		return 0, fmt.Errorf("unknown document format %q", s)
	}
}

// FormatForPath picks the format from a file extension.
func FormatForPath(path string) (Format, error) {
	return ParseFormat(filepath.Ext(path))
}

// Document is the decoded form shared by every syntax.
type Document struct {
	Identifier                  string `json:"identifier,omitempty"`
	ConfigurationFormatVersion  int    `json:"configuration_format_version,omitempty"`
	RequiredCompilationAPILevel int    `json:"required_compilation_api_level,omitempty"`
	SynthesizedPackagePrefix    string `json:"synthesized_library_classes_package_prefix,omitempty"`

	Rules

	CommonFlags  []FlagGroup `json:"common_flags,omitempty"`
	LibraryFlags []FlagGroup `json:"library_flags,omitempty"`
	ProgramFlags []FlagGroup `json:"program_flags,omitempty"`
}

// Rules are the rule groups a document or flag group can carry.
type Rules struct {
	RewritePrefix    PrefixMap                    `json:"rewrite_prefix,omitempty"`
	MaintainPrefix   []string                     `json:"maintain_prefix,omitempty"`
	RetargetMethod   []MethodEntry                `json:"retarget_method,omitempty"`
	BackportMethod   []MethodEntry                `json:"backport_method,omitempty"`
	EmulateInterface map[string]EmulatedInterface `json:"emulate_interface,omitempty"`
}

// IsEmpty reports whether no rule is present.
func (r *Rules) IsEmpty() bool {
	return len(r.RewritePrefix) == 0 && len(r.MaintainPrefix) == 0 && len(r.RetargetMethod) == 0 &&
		len(r.BackportMethod) == 0 && len(r.EmulateInterface) == 0
}

// FlagGroup is a rule group gated by an API level range.
type FlagGroup struct {
	APILevelBelowOrEqual   int `json:"api_level_below_or_equal"`
	APILevelGreaterOrEqual int `json:"api_level_greater_or_equal,omitempty"`

	Rules
}

// AppliesAt reports whether the group applies to the minimum API level.
func (g FlagGroup) AppliesAt(level int) bool {
	return g.APILevelGreaterOrEqual <= level && level <= g.APILevelBelowOrEqual
}

// MethodEntry is a retargeted or backported method.
type MethodEntry struct {
	Method      string `json:"method"`
	Replacement string `json:"replacement"`
	MinAPILevel int    `json:"min_api_level,omitempty"`
}

// EmulatedInterface maps an interface to its companion and contributed
// default methods, keyed by signature.
type EmulatedInterface struct {
	RewrittenType  string            `json:"rewritten_type"`
	DefaultMethods map[string]string `json:"default_methods,omitempty"`
}

// PrefixPair is one rewrite_prefix entry.
type PrefixPair struct {
	Prefix    string
	Rewritten string
}

// PrefixMap is the rewrite_prefix object. It keeps document order and
// repeated keys, which the specification builder rejects as duplicates.
type PrefixMap []PrefixPair

// UnmarshalJSON decodes an object token by token to keep key order.
func (m *PrefixMap) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("rewrite_prefix: expected object, got %v", tok)
	}

	var out PrefixMap
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var value string
		if err := dec.Decode(&value); err != nil {
			return fmt.Errorf("rewrite_prefix %q: %w", key, err)
		}
		out = append(out, PrefixPair{Prefix: key, Rewritten: value})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*m = out
	return nil
}

// MarshalJSON writes the entries in order.
func (m PrefixMap) MarshalJSON() ([]byte, error) {
	if len(m) == 0 {
		return []byte("{}"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, p := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := marshalString(p.Prefix)
		if err != nil {
			return nil, err
		}
		valJSON, err := marshalString(p.Rewritten)
		if err != nil {
			return nil, err
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Option configures parsing.
type Option func(*parseConfig)

type parseConfig struct {
	strict   bool
	filename string
}

// WithStrict enables (the default) or disables schema checking. A strict
// parse rejects unknown keys and malformed method references before
// decoding.
func WithStrict(strict bool) Option {
	return func(c *parseConfig) {
		c.strict = strict
	}
}

// WithFilename names the document in error messages.
func WithFilename(name string) Option {
	return func(c *parseConfig) {
		c.filename = name
	}
}

// Parse decodes a document of the given format.
func Parse(data []byte, format Format, opts ...Option) (*Document, error) {
	cfg := parseConfig{strict: true, filename: "<input>"}
	for _, opt := range opts {
		opt(&cfg)
	}

	switch format {
	case FormatJSON:
		return parseJSON(data, cfg)
	case FormatYAML:
		return parseYAML(data, cfg)
	case FormatTOML:
		return parseTOML(data, cfg)
	case FormatStarlark:
		return parseStarlark(data, cfg)
	default:
		return nil, fmt.Errorf("unsupported document format %v", format)
	}
}

// ParseFile reads and decodes path, choosing the format by extension.
func ParseFile(path string, opts ...Option) (*Document, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read specification: %w", err)
	}
	return Parse(data, format, append([]Option{WithFilename(path)}, opts...)...)
}

func parseJSON(data []byte, cfg parseConfig) (*Document, error) {
	if cfg.strict {
		if err := checkSchema(data, cfg.filename); err != nil {
			return nil, err
		}
	}

	var doc Document
	dec := json.NewDecoder(bytes.NewReader(data))
	if cfg.strict {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%s: failed to parse specification: %w", cfg.filename, err)
	}
	return &doc, nil
}

func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
