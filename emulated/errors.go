package emulated

import (
	"errors"
	"fmt"
	"strings"

	"github.com/albertocavalcante/go-libdesugar/descriptor"
)

// ErrUnresolvedDiamond matches every *UnresolvedDiamondError.
var ErrUnresolvedDiamond = errors.New("unresolved default method diamond")

// UnresolvedDiamondError reports a default method inherited from several
// interfaces with no rule to pick one.
type UnresolvedDiamondError struct {
	Class      descriptor.TypeName
	Signature  string
	Interfaces []descriptor.TypeName
	Policy     TieBreakPolicy
}

func (e *UnresolvedDiamondError) Error() string {
	names := make([]string, len(e.Interfaces))
	for i, t := range e.Interfaces {
		names[i] = t.String()
	}
	return fmt.Sprintf("class %s: default method %s is inherited from %s with no deterministic winner (tie-break %s)",
		e.Class, e.Signature, strings.Join(names, ", "), e.Policy)
}

// Is reports whether target is ErrUnresolvedDiamond.
func (e *UnresolvedDiamondError) Is(target error) bool {
	return target == ErrUnresolvedDiamond
}
