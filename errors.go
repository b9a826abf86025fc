package quarry

import (
	"errors"
	"fmt"

	"github.com/hupe1980/quarry/catalog"
	"github.com/hupe1980/quarry/executor"
	"github.com/hupe1980/quarry/index/inverted"
	"github.com/hupe1980/quarry/projection"
	"github.com/hupe1980/quarry/query"
	"github.com/hupe1980/quarry/snapshot"
)

var (
	// ErrClosed is returned by every operation after Close.
	ErrClosed = errors.New("quarry: db is closed")

	// ErrNoBlobStore is returned by snapshot operations when no store is configured.
	ErrNoBlobStore = errors.New("quarry: no blob store configured")
)

// Re-exported sentinels. Use errors.Is against these.
var (
	ErrUnknownType      = catalog.ErrUnknownType
	ErrUnknownField     = catalog.ErrUnknownField
	ErrEmptyProjection  = query.ErrEmptyProjection
	ErrPredicateCompile = query.ErrPredicateCompile
	ErrSyntax           = query.ErrSyntax
	ErrNotStored        = query.ErrNotStored
	ErrExtraction       = projection.ErrExtraction
	ErrTypeMismatch     = projection.ErrTypeMismatch
	ErrNoSuchElement    = executor.ErrNoSuchElement
	ErrNoCodec          = snapshot.ErrNoCodec
	ErrNoSnapshot       = snapshot.ErrNoSnapshot
	ErrCodecMismatch    = snapshot.ErrCodecMismatch
	ErrFieldType        = inverted.ErrFieldType
)

// CompileError is returned when query text cannot be compiled into a plan.
//
// The underlying error (ErrSyntax, ErrUnknownType, ...) is available via errors.Unwrap.
type CompileError struct {
	Query string
	cause error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile %q: %v", e.Query, e.cause)
}

func (e *CompileError) Unwrap() error { return e.cause }

// IsCompileError reports whether err was caused by invalid query text rather
// than by execution.
func IsCompileError(err error) bool {
	var ce *CompileError
	return errors.As(err, &ce)
}

func translateCompileError(text string, err error) error {
	if err == nil {
		return nil
	}
	return &CompileError{Query: text, cause: err}
}
