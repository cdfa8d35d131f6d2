// Package backends maps a backend name to its synthesis implementation.
// Exactly two ship with this module: the Edge session-backed backend and
// the Google stateless backend.
package backends

import (
	"fmt"
	"strings"

	"github.com/feuyeux/hello-tts-go/tts"
	"github.com/feuyeux/hello-tts-go/tts/backends/edge"
	"github.com/feuyeux/hello-tts-go/tts/backends/google"
)

// Backend names accepted by New.
const (
	Edge   = "edge"
	Google = "google"
)

// New returns the backend implementation for name. The empty name selects
// Edge. Unknown names are a validation error.
func New(name string, cfg *tts.Config) (tts.Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", Edge:
		return edge.New(cfg), nil
	case Google:
		return google.New(cfg), nil
	default:
		return nil, tts.NewError(tts.KindValidation, "select backend",
			fmt.Errorf("%w: %q (have edge, google)", tts.ErrUnknownBackend, name))
	}
}
