// Package fault defines the typed failure taxonomy for the analysis
// pipeline. Every remote-call boundary surfaces one of these types so
// callers can distinguish, with errors.As, a malformed inference response
// from an index outage from an exhausted caption-regeneration budget.
// None of them are recovered silently inside the core.
package fault

import "fmt"

// AnalysisError reports a malformed or incomplete vision-inference
// response: missing required fields, out-of-range confidences, or a
// remote error from the inference service.
type AnalysisError struct {
	Reason string
	Err    error
}

func (e *AnalysisError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("media analysis failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("media analysis failed: %s", e.Reason)
}

func (e *AnalysisError) Unwrap() error { return e.Err }

// EmbeddingError reports a failed embedding computation or a vector whose
// dimension does not match the index configuration. The pipeline never
// substitutes noise for a real vector; this error is the alternative.
type EmbeddingError struct {
	Model  string
	Reason string
	Err    error
}

func (e *EmbeddingError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("embedding failed (model %s): %s: %v", e.Model, e.Reason, e.Err)
	}
	return fmt.Sprintf("embedding failed (model %s): %s", e.Model, e.Reason)
}

func (e *EmbeddingError) Unwrap() error { return e.Err }

// IndexError reports a failed upsert, delete, or query against the
// vector index. It must never be interpreted as "no matches".
type IndexError struct {
	Op  string // "upsert", "delete", "query"
	Err error
}

func (e *IndexError) Error() string {
	return fmt.Sprintf("trend index %s failed: %v", e.Op, e.Err)
}

func (e *IndexError) Unwrap() error { return e.Err }

// UnsupportedPlatformError reports a platform identifier with no entry
// in the constraint registry.
type UnsupportedPlatformError struct {
	Platform string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform %q", e.Platform)
}

// ConstraintError reports that the bounded caption-regeneration budget
// was exhausted before enough constraint-compliant captions were
// produced. The captions that did validate are still returned alongside
// this error; Shortfall is how many are missing.
type ConstraintError struct {
	Platform  string
	Requested int
	Produced  int
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("caption constraints unsatisfiable for %s: produced %d of %d requested",
		e.Platform, e.Produced, e.Requested)
}

// Shortfall is the number of captions the generator could not produce.
func (e *ConstraintError) Shortfall() int { return e.Requested - e.Produced }
