package cdn

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates the package does not exist on the queried CDN.
// This is a valid outcome, not a failure: the asset simply has nothing to
// update from that backend.
var ErrNotFound = errors.New("package not found")

// UpstreamError indicates the CDN backend responded with an unexpected
// HTTP failure status. It aborts the run.
type UpstreamError struct {
	Provider   Provider
	URL        string
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d for %s", e.Provider, e.StatusCode, e.URL)
}

// IsNotFound reports whether err means the package is absent from the CDN.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
