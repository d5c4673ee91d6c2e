package ai

import "errors"

// ErrMalformedExtraction indicates the extraction model returned output that
// could not be parsed as the expected JSON structure, even after repair and
// retries. Callers decide whether to fail the operation or degrade to an
// empty extraction.
var ErrMalformedExtraction = errors.New("entity extraction returned malformed data")
