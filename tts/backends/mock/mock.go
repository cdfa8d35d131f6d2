// Package mock provides a scriptable synthesis backend for testing.
package mock

import (
	"context"
	"sync"

	"github.com/feuyeux/hello-tts-go/tts"
)

// Backend implements tts.Backend with scriptable per-voice results and a
// record of every request it received.
type Backend struct {
	mu    sync.Mutex
	calls []tts.SpeechRequest

	audio        map[string][]byte
	errs         map[string]error
	defaultAudio []byte

	voices []tts.Voice
	closed bool
}

// compile-time interface assertion
var _ tts.Backend = (*Backend)(nil)

// New creates a mock backend that succeeds with a small fixed payload.
func New() *Backend {
	return &Backend{
		audio:        make(map[string][]byte),
		errs:         make(map[string]error),
		defaultAudio: []byte("mock-audio"),
		voices: []tts.Voice{
			{Name: "en-US-MockNeural", DisplayName: "Mock Voice", Locale: "en-US", Gender: "neutral"},
		},
	}
}

// SetAudio scripts the audio returned for a voice.
func (b *Backend) SetAudio(voice string, data []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.audio[voice] = data
}

// SetError scripts a failure for a voice.
func (b *Backend) SetError(voice string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errs[voice] = err
}

// Calls returns a copy of the recorded requests.
func (b *Backend) Calls() []tts.SpeechRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]tts.SpeechRequest, len(b.calls))
	copy(out, b.calls)
	return out
}

// CallCount returns the number of Synthesize calls received.
func (b *Backend) CallCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

// Closed reports whether Close was called.
func (b *Backend) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return "mock" }

// Synthesize records the request and returns the scripted result.
func (b *Backend) Synthesize(_ context.Context, req tts.SpeechRequest) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, req)

	if err, ok := b.errs[req.Voice]; ok {
		return nil, err
	}
	if data, ok := b.audio[req.Voice]; ok {
		return data, nil
	}
	return b.defaultAudio, nil
}

// Voices returns the scripted voice list.
func (b *Backend) Voices(_ context.Context) ([]tts.Voice, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.voices, nil
}

// Close marks the backend closed.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}
