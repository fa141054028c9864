package document

import (
	_ "embed"
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaCUE []byte

const schemaRoot = "#Specification"

// SchemaError reports a document that does not satisfy the specification
// schema.
type SchemaError struct {
	// Filename is the document name used in messages.
	Filename string

	// Problems are "path: message" lines, one per violation.
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: schema violation: %s", e.Filename, strings.Join(e.Problems, "; "))
}

// checkSchema unifies a JSON document with the embedded schema. Unknown keys
// anywhere in the document are violations because the definitions are
// closed.
func checkSchema(data []byte, filename string) error {
	ctx := cuecontext.New()

	schema := ctx.CompileBytes(schemaCUE)
	if schema.Err() != nil {
		return fmt.Errorf("internal error: failed to compile schema: %w", schema.Err())
	}
	root := schema.LookupPath(cue.ParsePath(schemaRoot))
	if root.Err() != nil {
		return fmt.Errorf("internal error: schema definition %s not found: %w", schemaRoot, root.Err())
	}

	doc := ctx.CompileBytes(data, cue.Filename(filename))
	if doc.Err() != nil {
		return schemaError(doc.Err(), filename)
	}

	unified := root.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return schemaError(err, filename)
	}
	return nil
}

func schemaError(err error, filename string) error {
	se := &SchemaError{Filename: filename}
	for _, e := range cueerrors.Errors(err) {
		path := strings.Join(cueerrors.Path(e), ".")
		msg := e.Error()
		if path != "" && strings.HasPrefix(msg, path) {
			msg = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(msg, path), ":"))
		}
		if path != "" {
			msg = path + ": " + msg
		}
		se.Problems = append(se.Problems, msg)
	}
	if len(se.Problems) == 0 {
		se.Problems = []string{err.Error()}
	}
	return se
}
