package catalog

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"

	"github.com/albertocavalcante/go-libdesugar/descriptor"
)

// SurfaceMethod is one public method of the runtime library surface.
type SurfaceMethod struct {
	// Method is the method, held by the declaring type.
	Method descriptor.Method

	// AddedIn is the API level that introduced the method natively. Zero
	// means no runtime provides it natively.
	AddedIn int
}

// NativeAt reports whether the runtime at level provides the method.
func (m SurfaceMethod) NativeAt(level int) bool {
	return m.AddedIn > 0 && m.AddedIn <= level
}

// Surface enumerates the public library surface. Implementations are
// typically backed by an API database of the runtime library.
type Surface interface {
	// Types returns every type of the surface.
	Types() []descriptor.TypeName

	// PublicMethods returns the public methods (constructors included) a
	// type declares.
	PublicMethods(t descriptor.TypeName) []SurfaceMethod
}

// StaticSurface is an in-memory Surface.
type StaticSurface map[descriptor.TypeName][]SurfaceMethod

// Types implements Surface. The result is sorted.
func (s StaticSurface) Types() []descriptor.TypeName {
	types := make([]descriptor.TypeName, 0, len(s))
	for t := range s {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}

// PublicMethods implements Surface.
func (s StaticSurface) PublicMethods(t descriptor.TypeName) []SurfaceMethod {
	return s[t]
}

// surfaceEntry is the JSON form of one method:
//
//	{"java.util.Collection": [{"method": "removeIf(java.util.function.Predicate)boolean", "added_in": 24}]}
type surfaceEntry struct {
	Method  string `json:"method"`
	AddedIn int    `json:"added_in,omitempty"`
}

// LoadSurface reads a JSON surface description mapping type names to their
// public methods.
func LoadSurface(r io.Reader) (StaticSurface, error) {
	var raw map[string][]surfaceEntry
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode surface: %w", err)
	}

	s := make(StaticSurface, len(raw))
	for typ, entries := range raw {
		t, err := descriptor.NewTypeName(typ)
		if err != nil {
			return nil, fmt.Errorf("surface: %w", err)
		}
		methods := make([]SurfaceMethod, 0, len(entries))
		for _, e := range entries {
			m, err := descriptor.ParseSignature(e.Method)
			if err != nil {
				return nil, fmt.Errorf("surface type %s: %w", t, err)
			}
			methods = append(methods, SurfaceMethod{Method: m.WithHolder(t), AddedIn: e.AddedIn})
		}
		s[t] = methods
	}
	return s, nil
}
