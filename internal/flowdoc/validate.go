package flowdoc

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed schema.cue
var schemaSource string

var (
	schemaOnce sync.Once
	schemaVal  cue.Value
	schemaCtx  *cue.Context
	schemaErr  error
)

func compiledSchema() (*cue.Context, cue.Value, error) {
	schemaOnce.Do(func() {
		schemaCtx = cuecontext.New()
		schemaVal = schemaCtx.CompileString(schemaSource, cue.Filename("schema.cue"))
		if err := schemaVal.Err(); err != nil {
			schemaErr = fmt.Errorf("compile document schema: %w", err)
		}
	})
	return schemaCtx, schemaVal, schemaErr
}

// ValidationError carries the individual schema violations found in one
// document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid document: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid document: %d problems, first: %s", len(e.Problems), e.Problems[0])
}

// IsValidationError returns true if the error is (or wraps) a
// ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks raw document JSON against the embedded schema before
// any Go-level decoding. JSON is a subset of CUE, so the document
// compiles directly and unifies with the schema; unification errors are
// the violations.
func Validate(data []byte) error {
	ctx, schema, err := compiledSchema()
	if err != nil {
		return err
	}

	docVal := ctx.CompileBytes(data, cue.Filename("document.json"))
	if err := docVal.Err(); err != nil {
		return fmt.Errorf("document is not valid JSON: %w", err)
	}

	unified := schema.Unify(docVal)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		verr := &ValidationError{}
		for _, e := range cueerrors.Errors(err) {
			verr.Problems = append(verr.Problems, e.Error())
		}
		return verr
	}
	return nil
}
