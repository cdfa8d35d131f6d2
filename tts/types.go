// Package tts provides the core text-to-speech client: voice catalog,
// speech requests, backend facade, and voice-fallback policy.
package tts

import (
	"context"
	"fmt"
	"strings"
)

// Voice is an immutable description of a provider voice.
type Voice struct {
	Name        string `json:"name" mapstructure:"name"`                 // canonical provider id, e.g. "en-US-AriaNeural"
	DisplayName string `json:"display_name" mapstructure:"display_name"` // human-readable name
	Locale      string `json:"locale" mapstructure:"locale"`             // language-region, e.g. "en-US"
	Gender      string `json:"gender" mapstructure:"gender"`             // free-text gender label
	Description string `json:"description,omitempty" mapstructure:"description"`
}

// LanguageCode returns the primary language subtag of the voice locale,
// e.g. "en" for "en-US".
func (v Voice) LanguageCode() string {
	if i := strings.IndexByte(v.Locale, '-'); i > 0 {
		return v.Locale[:i]
	}
	return v.Locale
}

// AudioFormat identifies the requested output container.
type AudioFormat string

const (
	FormatMP3 AudioFormat = "mp3"
	FormatWAV AudioFormat = "wav"
	FormatOGG AudioFormat = "ogg"
)

// ParseFormat converts a user-supplied format string to an AudioFormat.
func ParseFormat(s string) (AudioFormat, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "mp3":
		return FormatMP3, nil
	case "wav":
		return FormatWAV, nil
	case "ogg", "opus":
		return FormatOGG, nil
	default:
		return "", NewError(KindValidation, "parse format", fmt.Errorf("%w: %q", ErrUnknownFormat, s))
	}
}

// Prosody holds the SSML prosody attributes applied to an utterance.
// Values use the provider's relative notation ("+0%", "+0Hz").
type Prosody struct {
	Rate   string
	Volume string
	Pitch  string
}

// DefaultProsody returns neutral prosody settings.
func DefaultProsody() Prosody {
	return Prosody{Rate: "+0%", Volume: "+0%", Pitch: "+0Hz"}
}

// SpeechRequest describes one utterance to synthesize. Constructed per call
// and discarded after the call returns.
type SpeechRequest struct {
	Text    string      // raw text, or a complete SSML document when UseSSML is set
	Voice   string      // provider voice id
	Format  AudioFormat // output container
	UseSSML bool        // Text already contains SSML markup
	Prosody Prosody
}

// Validate checks the request invariants. Empty text or voice is a
// validation error, never silently sent.
func (r SpeechRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return NewError(KindValidation, "validate request", ErrEmptyText)
	}
	if strings.TrimSpace(r.Voice) == "" {
		return NewError(KindValidation, "validate request", ErrEmptyVoice)
	}
	return nil
}

// Backend is the capability a synthesis provider exposes to the facade.
// Implementations live under tts/backends; exactly two ship with this
// module (the Edge session-backed one and the Google stateless one).
type Backend interface {
	// Name returns the backend identifier ("edge", "google").
	Name() string

	// Synthesize turns one request into audio bytes. Calls on one backend
	// value are serialized internally; callers that want parallel turns
	// use one backend value per logical stream.
	Synthesize(ctx context.Context, req SpeechRequest) ([]byte, error)

	// Voices returns the voices the provider advertises.
	Voices(ctx context.Context) ([]Voice, error)

	// Close releases any persistent connection the backend holds.
	Close() error
}
