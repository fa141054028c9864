package spec

import (
	"fmt"
	"strings"

	iradix "github.com/hashicorp/go-immutable-radix/v2"

	"github.com/albertocavalcante/go-libdesugar/descriptor"
	"github.com/albertocavalcante/go-libdesugar/diag"
)

// Validated is a Specification whose rules have been proven unambiguous.
// It indexes rewrite and maintained prefixes in immutable radix trees and is
// safe for concurrent use.
type Validated struct {
	spec       *Specification
	rewrites   *iradix.Tree[RewriteRule]
	maintained *iradix.Tree[string]
}

// Validate checks s and returns its validated form. Fatal findings are
// reported to sink as errors and returned together in a *ValidationErrors;
// tolerated findings are reported as warnings only. Validation is pure and
// repeatable. A nil sink discards diagnostics.
func Validate(s *Specification, sink diag.Sink) (*Validated, error) {
	v := &validator{spec: s, sink: diag.OrDiscard(sink)}
	v.indexRewrites()
	v.checkRewriteShapes()
	v.checkRewriteNesting()
	v.indexMaintained()
	v.checkMaintained()
	v.checkMethodRules(SectionRetargetMethod, s.retarget.all())
	v.checkMethodRules(SectionBackportMethod, s.backport.all())
	v.checkEmulatedInterfaces()

	if err := v.errs.ToError(); err != nil {
		return nil, err
	}
	return &Validated{spec: s, rewrites: v.rewrites, maintained: v.maintained}, nil
}

// MustValidate validates s or panics. Use only for constants/tests.
func MustValidate(s *Specification) *Validated {
	v, err := Validate(s, nil)
	if err != nil {
		panic(err)
	}
	return v
}

type validator struct {
	spec       *Specification
	sink       diag.Sink
	errs       ValidationErrors
	rewrites   *iradix.Tree[RewriteRule]
	maintained *iradix.Tree[string]
}

func (v *validator) fail(code diag.Code, err error, subjects ...string) {
	diag.Error(v.sink, code, err.Error(), subjects...)
	v.errs.Add(err)
}

func (v *validator) indexRewrites() {
	txn := iradix.New[RewriteRule]().Txn()
	for _, r := range v.spec.rewrite {
		txn.Insert([]byte(r.Source), r)
	}
	v.rewrites = txn.Commit()
}

func (v *validator) indexMaintained() {
	txn := iradix.New[string]().Txn()
	for _, m := range v.spec.maintain {
		txn.Insert([]byte(m), m)
	}
	v.maintained = txn.Commit()
}

// checkRewriteShapes rejects rules whose source and destination disagree on
// the trailing '.', which would glue segments together when applied.
func (v *validator) checkRewriteShapes() {
	for _, r := range v.spec.rewrite {
		if strings.HasSuffix(r.Source, ".") != strings.HasSuffix(r.Destination, ".") {
			v.fail(diag.CodeInconsistentPrefix, &InconsistentPrefixError{
				First:  r.Source,
				Second: r.Destination,
				Reason: "source and destination disagree on the trailing '.'",
			}, r.Source, r.Destination)
		}
	}
}

// checkRewriteNesting walks every rewrite key down the trie. Each strict
// ancestor found on the way must end on a segment boundary of the key.
func (v *validator) checkRewriteNesting() {
	root := v.rewrites.Root()
	for _, r := range v.spec.rewrite {
		key := r.Source
		root.WalkPath([]byte(key), func(k []byte, anc RewriteRule) bool {
			if anc.Source == key {
				return false
			}
			if !descriptor.IsSegmentAligned(anc.Source, key) {
				v.fail(diag.CodeInconsistentPrefix, &InconsistentPrefixError{
					First:  anc.Source,
					Second: key,
					Reason: fmt.Sprintf("%q continues %q mid-segment", key, anc.Source),
				}, anc.Source, key)
			}
			return false
		})
	}
}

func (v *validator) checkMaintained() {
	for _, m := range v.spec.maintain {
		if _, ok := v.spec.rewriteIndex[m]; ok {
			v.fail(diag.CodeAmbiguousFlag, &AmbiguousFlagError{
				Prefix:  m,
				Rewrite: m,
				Reason:  "prefix is declared both rewritten and maintained",
			}, m)
			continue
		}
		enclosing, aligned, ok := enclosingRewrite(v.rewrites, m)
		if !ok {
			diag.Warn(v.sink, diag.CodeUnenclosedMaintain,
				"maintained prefix has no enclosing rewrite rule and has no effect", m)
			continue
		}
		if !aligned {
			v.fail(diag.CodeAmbiguousFlag, &AmbiguousFlagError{
				Prefix:  m,
				Rewrite: enclosing.Source,
				Reason:  "maintained prefix does not start on a segment boundary of its enclosing rewrite",
			}, m, enclosing.Source)
		}
	}
}

// checkMethodRules warns about rules whose holder is not under any rewrite
// and whose replacement does not live in the rewritten namespace either.
func (v *validator) checkMethodRules(section string, rules []MethodRule) {
	for _, r := range rules {
		if _, ok := matchCovering(v.rewrites, string(r.Method.Holder)); ok {
			continue
		}
		if v.inLibraryNamespace(r.Replacement.Holder) {
			continue
		}
		diag.Warn(v.sink, diag.CodeUnmappedMethod,
			section+" entry is outside every rewritten namespace",
			r.Method.String(), r.Replacement.String())
	}
}

func (v *validator) checkEmulatedInterfaces() {
	for _, t := range v.spec.emulatedOrder {
		e := v.spec.emulated[t]
		if _, ok := matchCovering(v.rewrites, string(e.Interface)); ok {
			continue
		}
		if v.inLibraryNamespace(e.Companion) {
			continue
		}
		diag.Warn(v.sink, diag.CodeUnmappedInterface,
			"emulated interface companion is outside every rewritten namespace",
			string(e.Interface), string(e.Companion))
	}
}

// inLibraryNamespace reports whether t lives under a rewrite destination or
// the synthesized package prefix.
func (v *validator) inLibraryNamespace(t descriptor.TypeName) bool {
	name := string(t)
	if p := v.spec.meta.SynthesizedPackagePrefix; p != "" && descriptor.PrefixCovers(p, name) {
		return true
	}
	for _, r := range v.spec.rewrite {
		if descriptor.PrefixCovers(r.Destination, name) {
			return true
		}
	}
	return false
}

// enclosingRewrite returns the longest rewrite rule whose source strictly
// prefixes p on a segment boundary. When sources prefix p only mid-segment,
// the longest of them is returned with aligned set to false.
func enclosingRewrite(t *iradix.Tree[RewriteRule], p string) (rule RewriteRule, aligned, ok bool) {
	t.Root().WalkPath([]byte(p), func(k []byte, r RewriteRule) bool {
		if len(k) == len(p) {
			return false
		}
		switch {
		case descriptor.IsSegmentAligned(r.Source, p):
			rule, aligned, ok = r, true, true
		case !aligned:
			rule, ok = r, true
		}
		return false
	})
	return rule, aligned, ok
}

// matchCovering returns the value of the longest key that covers name.
// WalkPath visits keys shortest first.
func matchCovering[T any](t *iradix.Tree[T], name string) (T, bool) {
	var found T
	var ok bool
	t.Root().WalkPath([]byte(name), func(k []byte, val T) bool {
		if descriptor.PrefixCovers(string(k), name) {
			found, ok = val, true
		}
		return false
	})
	return found, ok
}

// Specification returns the underlying frozen specification.
func (v *Validated) Specification() *Specification {
	return v.spec
}

// MatchRewrite returns the longest rewrite rule whose source covers name.
func (v *Validated) MatchRewrite(name string) (RewriteRule, bool) {
	return matchCovering(v.rewrites, name)
}

// MatchMaintained returns the longest maintained prefix covering name.
func (v *Validated) MatchMaintained(name string) (string, bool) {
	return matchCovering(v.maintained, name)
}
