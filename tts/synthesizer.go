package tts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/feuyeux/hello-tts-go/internal/cache"
)

// audioCacheCapacity bounds the in-memory audio cache.
const audioCacheCapacity = 64 << 20 // 64 MiB

// Result is a successful synthesis outcome. Voice records which voice
// actually produced the audio, which matters when fallback was applied.
type Result struct {
	Audio []byte
	Voice string
}

// Synthesizer is the public entry point for speech synthesis. It validates
// inputs, delegates to the configured backend, and applies the one-level
// voice-fallback policy.
type Synthesizer struct {
	backend Backend
	config  *Config
	audio   *cache.Cache // nil unless CacheAudio is enabled
}

// NewSynthesizer creates a synthesizer on top of the given backend.
func NewSynthesizer(backend Backend, config *Config) *Synthesizer {
	if config == nil {
		config = DefaultConfig()
	}
	s := &Synthesizer{backend: backend, config: config}
	if config.CacheAudio {
		s.audio = cache.New(audioCacheCapacity, 0)
	}
	return s
}

// Backend returns the backend serving this synthesizer.
func (s *Synthesizer) Backend() Backend { return s.backend }

// Synthesize converts text to audio bytes using the given voice and the
// configured output format. Validation failures surface before any network
// activity.
func (s *Synthesizer) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	format, err := ParseFormat(s.config.OutputFormat)
	if err != nil {
		return nil, err
	}
	return s.SynthesizeRequest(ctx, SpeechRequest{
		Text:    text,
		Voice:   voice,
		Format:  format,
		Prosody: s.config.DefaultProsody(),
	})
}

// SynthesizeRequest synthesizes a fully specified request.
func (s *Synthesizer) SynthesizeRequest(ctx context.Context, req SpeechRequest) ([]byte, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	var key string
	if s.audio != nil {
		key = cache.Key(req.Text, req.Voice, string(req.Format))
		if data, ok := s.audio.Get(key); ok {
			log.Debug("Audio cache hit", "voice", req.Voice, "bytes", len(data))
			return data, nil
		}
	}

	data, err := s.backend.Synthesize(ctx, req)
	if err != nil {
		return nil, err
	}

	if s.audio != nil {
		if err := s.audio.Put(key, data); err != nil {
			log.Debug("Audio cache store skipped", "error", err)
		}
	}
	return data, nil
}

// SynthesizeWithFallback tries the primary voice and, if synthesis fails
// with a synthesis or validation error, retries once with the alternate
// voice. This is a one-level fallback, not a retry loop. The result reports
// which voice was actually used.
func (s *Synthesizer) SynthesizeWithFallback(ctx context.Context, text, primaryVoice, altVoice string) (*Result, error) {
	data, err := s.Synthesize(ctx, text, primaryVoice)
	if err == nil {
		return &Result{Audio: data, Voice: primaryVoice}, nil
	}

	fallbackable := IsKind(err, KindSynthesis) || IsKind(err, KindValidation)
	if !fallbackable || altVoice == "" || altVoice == primaryVoice {
		return nil, err
	}

	log.Warn("Primary voice failed, trying alternate",
		"primary", primaryVoice, "alternate", altVoice, "error", err)

	data, altErr := s.Synthesize(ctx, text, altVoice)
	if altErr != nil {
		return nil, NewError(KindSynthesis, "synthesize with fallback",
			fmt.Errorf("voice %q failed (%v); alternate %q failed: %w",
				primaryVoice, err, altVoice, altErr))
	}
	return &Result{Audio: data, Voice: altVoice}, nil
}

// SynthesizeBatch synthesizes texts concurrently with bounded parallelism,
// preserving input order in the results. Each worker drives its own call;
// turn serialization is the backend's concern.
func (s *Synthesizer) SynthesizeBatch(ctx context.Context, texts []string, voice string, maxConcurrent int) ([][]byte, error) {
	if maxConcurrent <= 0 {
		maxConcurrent = s.config.MaxConcurrent
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}

	results := make([][]byte, len(texts))
	errs := make([]error, len(texts))
	sem := make(chan struct{}, maxConcurrent)

	var wg sync.WaitGroup
	for i, text := range texts {
		wg.Add(1)
		go func(i int, text string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i], errs[i] = s.Synthesize(ctx, text, voice)
		}(i, text)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("batch item %d: %w", i+1, err)
		}
	}
	return results, nil
}

// Voices returns the voices the backend advertises.
func (s *Synthesizer) Voices(ctx context.Context) ([]Voice, error) {
	return s.backend.Voices(ctx)
}

// SaveAudio writes audio bytes to path, creating parent directories as
// needed.
func (s *Synthesizer) SaveAudio(data []byte, path string) error {
	return SaveAudio(data, path)
}

// Close releases the backend's resources.
func (s *Synthesizer) Close() error {
	return s.backend.Close()
}

// SaveAudio writes audio bytes to path, creating parent directories as
// needed.
func SaveAudio(data []byte, path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return NewError(KindIO, "save audio", fmt.Errorf("create directory %s: %w", dir, err))
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return NewError(KindIO, "save audio", fmt.Errorf("write %s: %w", path, err))
	}
	log.Debug("Audio saved", "path", path, "bytes", len(data))
	return nil
}
