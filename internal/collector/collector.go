package collector

import "errors"

// ErrUnavailable indicates the target service could not be reached or did not
// answer its introspection endpoints. Callers treat it as a transient skip for
// the affected service rather than a pipeline failure.
var ErrUnavailable = errors.New("service unavailable")
