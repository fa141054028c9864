package libdesugar

import (
	"github.com/albertocavalcante/go-libdesugar/emulated"
	"github.com/albertocavalcante/go-libdesugar/spec"
)

// Sentinel errors for errors.Is matching across packages.
var (
	// ErrInvalidSpecification matches every construction and validation
	// failure of a specification.
	ErrInvalidSpecification = spec.ErrInvalidSpecification

	// ErrUnresolvedDiamond matches a class whose default method has no
	// deterministic winner.
	ErrUnresolvedDiamond = emulated.ErrUnresolvedDiamond
)
