// Package diag carries non-fatal warnings and fatal findings from the
// specification validator and resolvers to whoever drives them.
//
// The core never prints or exits. It reports a Diagnostic to a Sink and, for
// fatal findings, also returns a typed error.
package diag

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
)

// Severity grades a diagnostic.
type Severity int

const (
	// SeverityWarning marks a tolerated configuration that is probably a mistake.
	SeverityWarning Severity = iota

	// SeverityError marks a finding that aborts the surrounding build.
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// Code identifies the kind of finding.
type Code string

const (
	CodeDuplicateRule      Code = "duplicate-rule"
	CodeInconsistentPrefix Code = "inconsistent-prefix"
	CodeAmbiguousFlag      Code = "ambiguous-flag"
	CodeUnenclosedMaintain Code = "maintain-without-rewrite"
	CodeUnmappedMethod     Code = "unmapped-method"
	CodeUnmappedInterface  Code = "unmapped-emulated-interface"
	CodeUnresolvedDiamond  Code = "unresolved-diamond"
	CodeMissingClass       Code = "missing-class"
)

// Diagnostic is a single finding. Subjects holds the literal rule texts or
// type names the finding is about.
type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Subjects []string
}

// String renders the diagnostic on one line.
func (d Diagnostic) String() string {
	if len(d.Subjects) == 0 {
		return fmt.Sprintf("%s[%s]: %s", d.Severity, d.Code, d.Message)
	}
	return fmt.Sprintf("%s[%s]: %s (%s)", d.Severity, d.Code, d.Message, strings.Join(d.Subjects, ", "))
}

// Sink receives diagnostics. Implementations must be safe for concurrent use.
type Sink interface {
	Report(Diagnostic)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(Diagnostic)

// Report calls f(d).
func (f SinkFunc) Report(d Diagnostic) { f(d) }

// Discard drops every diagnostic.
var Discard Sink = SinkFunc(func(Diagnostic) {})

// OrDiscard returns s, or Discard when s is nil.
func OrDiscard(s Sink) Sink {
	if s == nil {
		return Discard
	}
	return s
}

// Warn reports a warning to s.
func Warn(s Sink, code Code, msg string, subjects ...string) {
	OrDiscard(s).Report(Diagnostic{Severity: SeverityWarning, Code: code, Message: msg, Subjects: subjects})
}

// Error reports an error to s.
func Error(s Sink, code Code, msg string, subjects ...string) {
	OrDiscard(s).Report(Diagnostic{Severity: SeverityError, Code: code, Message: msg, Subjects: subjects})
}

// Collector accumulates diagnostics in report order.
type Collector struct {
	mu    sync.Mutex
	items []Diagnostic
}

// Report appends d.
func (c *Collector) Report(d Diagnostic) {
	c.mu.Lock()
	c.items = append(c.items, d)
	c.mu.Unlock()
}

// Diagnostics returns a copy of everything reported so far.
func (c *Collector) Diagnostics() []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Diagnostic(nil), c.items...)
}

// Warnings returns the reported warnings.
func (c *Collector) Warnings() []Diagnostic {
	return c.filter(SeverityWarning)
}

// Errors returns the reported errors.
func (c *Collector) Errors() []Diagnostic {
	return c.filter(SeverityError)
}

// HasErrors reports whether any error was reported.
func (c *Collector) HasErrors() bool {
	return len(c.Errors()) > 0
}

func (c *Collector) filter(s Severity) []Diagnostic {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Diagnostic
	for _, d := range c.items {
		if d.Severity == s {
			out = append(out, d)
		}
	}
	return out
}

// Multi fans a diagnostic out to every non-nil sink.
func Multi(sinks ...Sink) Sink {
	return SinkFunc(func(d Diagnostic) {
		for _, s := range sinks {
			if s != nil {
				s.Report(d)
			}
		}
	})
}

// NewSlogSink logs warnings at WARN and errors at ERROR on l.
func NewSlogSink(l *slog.Logger) Sink {
	return SinkFunc(func(d Diagnostic) {
		level := slog.LevelWarn
		if d.Severity == SeverityError {
			level = slog.LevelError
		}
		l.LogAttrs(context.Background(), level, d.Message,
			slog.String("code", string(d.Code)),
			slog.Any("subjects", d.Subjects),
		)
	})
}
