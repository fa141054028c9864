package emulated

import "fmt"

// TieBreakPolicy decides between equally specific default methods.
type TieBreakPolicy int

const (
	// TieBreakDeclarationOrder prefers the interface nearest to the class,
	// then the one reached through the earliest declared interface.
	TieBreakDeclarationOrder TieBreakPolicy = iota

	// TieBreakStrict rejects every diamond between equally specific
	// interfaces.
	TieBreakStrict
)

func (p TieBreakPolicy) String() string {
	switch p {
	case TieBreakDeclarationOrder:
		return "declaration-order"
	case TieBreakStrict:
		return "strict"
	default:
		return fmt.Sprintf("TieBreakPolicy(%d)", int(p))
	}
}

// ParseTieBreakPolicy parses the String form of a policy.
func ParseTieBreakPolicy(s string) (TieBreakPolicy, error) {
	switch s {
	case "", "declaration-order":
		return TieBreakDeclarationOrder, nil
	case "strict":
		return TieBreakStrict, nil
	default:
		return 0, fmt.Errorf("unknown tie-break policy %q (want declaration-order or strict)", s)
	}
}
