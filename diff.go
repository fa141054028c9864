package libdesugar

import (
	"fmt"
	"sort"
	"strings"

	"github.com/albertocavalcante/go-libdesugar/spec"
)

// RuleChange is a rule present on only one side of a diff.
type RuleChange struct {
	// Section is the rule group, e.g. "rewrite_prefix".
	Section string `json:"section"`

	// Key identifies the rule within its section.
	Key string `json:"key"`

	// Value is what the rule maps Key to. Empty for maintained prefixes.
	Value string `json:"value,omitempty"`
}

func (c RuleChange) String() string {
	if c.Value == "" {
		return fmt.Sprintf("%s %s", c.Section, c.Key)
	}
	return fmt.Sprintf("%s %s -> %s", c.Section, c.Key, c.Value)
}

// RuleUpdate is a rule whose value differs between the two sides.
type RuleUpdate struct {
	Section  string `json:"section"`
	Key      string `json:"key"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

func (u RuleUpdate) String() string {
	return fmt.Sprintf("%s %s: %s -> %s", u.Section, u.Key, u.OldValue, u.NewValue)
}

// SpecificationDiff describes the differences between two specifications.
//
// This is useful for:
//   - Reviewing a library upgrade before shipping it
//   - Checking that a document conversion kept every rule
//   - CI checks on specification changes
//
// Example usage:
//
//	diff := DiffSpecifications(oldSession.Specification(), newSession.Specification())
//	if !diff.IsEmpty() {
//	    fmt.Print(diff)
//	}
type SpecificationDiff struct {
	// Added contains rules present in new but not in old.
	Added []RuleChange `json:"added,omitempty"`

	// Removed contains rules present in old but not in new.
	Removed []RuleChange `json:"removed,omitempty"`

	// Changed contains rules present on both sides with different values.
	Changed []RuleUpdate `json:"changed,omitempty"`
}

// IsEmpty returns true if the specifications carry the same rules.
func (d *SpecificationDiff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// TotalChanges returns the total number of changes (added + removed + changed).
func (d *SpecificationDiff) TotalChanges() int {
	return len(d.Added) + len(d.Removed) + len(d.Changed)
}

// String renders the diff one change per line with +, - and ~ markers.
func (d *SpecificationDiff) String() string {
	var b strings.Builder
	for _, c := range d.Removed {
		fmt.Fprintf(&b, "- %s\n", c)
	}
	for _, c := range d.Added {
		fmt.Fprintf(&b, "+ %s\n", c)
	}
	for _, u := range d.Changed {
		fmt.Fprintf(&b, "~ %s\n", u)
	}
	return b.String()
}

// DiffSpecifications computes the rule differences between two
// specifications. Metadata is not compared. A nil specification is treated
// as empty. Results are sorted by section, then key.
func DiffSpecifications(old, new *spec.Specification) *SpecificationDiff {
	diff := &SpecificationDiff{}

	oldRules := flattenRules(old)
	newRules := flattenRules(new)

	for key, newValue := range newRules {
		oldValue, existedBefore := oldRules[key]
		if !existedBefore {
			diff.Added = append(diff.Added, RuleChange{Section: key.section, Key: key.key, Value: newValue})
		} else if oldValue != newValue {
			diff.Changed = append(diff.Changed, RuleUpdate{
				Section:  key.section,
				Key:      key.key,
				OldValue: oldValue,
				NewValue: newValue,
			})
		}
	}

	for key, oldValue := range oldRules {
		if _, existsNow := newRules[key]; !existsNow {
			diff.Removed = append(diff.Removed, RuleChange{Section: key.section, Key: key.key, Value: oldValue})
		}
	}

	sortRuleChanges(diff.Added)
	sortRuleChanges(diff.Removed)
	sort.Slice(diff.Changed, func(i, j int) bool {
		a, b := diff.Changed[i], diff.Changed[j]
		if a.Section != b.Section {
			return a.Section < b.Section
		}
		return a.Key < b.Key
	})

	return diff
}

type ruleKey struct {
	section string
	key     string
}

// flattenRules maps every rule of s to its printable value.
func flattenRules(s *spec.Specification) map[ruleKey]string {
	rules := make(map[ruleKey]string)
	if s == nil {
		return rules
	}

	for _, r := range s.RewriteRules() {
		rules[ruleKey{spec.SectionRewritePrefix, r.Source}] = r.Destination
	}
	for _, p := range s.MaintainedPrefixes() {
		rules[ruleKey{spec.SectionMaintainPrefix, p}] = ""
	}
	for _, r := range s.RetargetRules() {
		rules[ruleKey{spec.SectionRetargetMethod, r.Method.String()}] = methodRuleValue(r)
	}
	for _, r := range s.BackportRules() {
		rules[ruleKey{spec.SectionBackportMethod, r.Method.String()}] = methodRuleValue(r)
	}
	for _, e := range s.EmulatedInterfaces() {
		rules[ruleKey{spec.SectionEmulateInterface, e.Interface.String()}] = e.Companion.String()
		for _, d := range e.Defaults {
			rules[ruleKey{spec.SectionEmulatedDefault, e.Interface.String() + "#" + d.Signature}] = d.Forwarder.String()
		}
	}
	return rules
}

func methodRuleValue(r spec.MethodRule) string {
	if r.MinAPILevel > 0 {
		return fmt.Sprintf("%s (min api %d)", r.Replacement, r.MinAPILevel)
	}
	return r.Replacement.String()
}

// sortRuleChanges sorts changes by section, then key.
func sortRuleChanges(changes []RuleChange) {
	sort.Slice(changes, func(i, j int) bool {
		if changes[i].Section != changes[j].Section {
			return changes[i].Section < changes[j].Section
		}
		return changes[i].Key < changes[j].Key
	})
}
