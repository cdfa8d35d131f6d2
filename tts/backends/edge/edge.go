package edge

import (
	"context"
	"net/http"

	"github.com/feuyeux/hello-tts-go/tts"
)

// Backend drives the Edge synthesis service through one persistent session.
// Turns are serialized by the session; callers that need parallel turns use
// one Backend value per logical stream.
type Backend struct {
	config  *tts.Config
	tokens  *TokenProvider
	session *Session
	client  *http.Client
	voices  *voiceCache // nil unless CacheVoices is enabled
}

// compile-time interface assertion
var _ tts.Backend = (*Backend)(nil)

// New creates the Edge backend from the given configuration.
func New(config *tts.Config) *Backend {
	if config == nil {
		config = tts.DefaultConfig()
	}
	client := &http.Client{Timeout: config.Timeout()}
	tokens := NewTokenProvider("", client, config.Timeout())

	b := &Backend{
		config:  config,
		tokens:  tokens,
		session: NewSession(tokens, config.Timeout()),
		client:  client,
	}
	if config.CacheVoices {
		b.voices = newVoiceCache()
	}
	return b
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return "edge" }

// Synthesize fills request defaults from the configuration and drives one
// turn on the session.
func (b *Backend) Synthesize(ctx context.Context, req tts.SpeechRequest) ([]byte, error) {
	if req.Voice == "" {
		req.Voice = b.config.DefaultVoice
	}
	if req.Format == "" {
		format, err := tts.ParseFormat(b.config.OutputFormat)
		if err != nil {
			return nil, err
		}
		req.Format = format
	}
	if req.Prosody == (tts.Prosody{}) {
		req.Prosody = b.config.DefaultProsody()
	}
	return b.session.Synthesize(ctx, req)
}

// Voices returns the provider's advertised voice list, cached in memory
// when the configuration enables it.
func (b *Backend) Voices(ctx context.Context) ([]tts.Voice, error) {
	if b.voices != nil {
		if cached, ok := b.voices.get(); ok {
			return cached, nil
		}
	}
	voices, err := fetchVoices(ctx, b.client)
	if err != nil {
		return nil, err
	}
	if b.voices != nil {
		b.voices.put(voices)
	}
	return voices, nil
}

// Close tears down the persistent session.
func (b *Backend) Close() error {
	return b.session.Close()
}
