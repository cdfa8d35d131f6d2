package tts

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
)

// stubBackend is a minimal scriptable Backend for facade tests.
type stubBackend struct {
	mu     sync.Mutex
	calls  []SpeechRequest
	errs   map[string]error
	closed bool
}

func newStubBackend() *stubBackend {
	return &stubBackend{errs: make(map[string]error)}
}

func (b *stubBackend) Name() string { return "stub" }

func (b *stubBackend) Synthesize(_ context.Context, req SpeechRequest) ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, req)
	if err := b.errs[req.Voice]; err != nil {
		return nil, err
	}
	return []byte("audio:" + req.Text + ":" + req.Voice), nil
}

func (b *stubBackend) Voices(context.Context) ([]Voice, error) {
	return []Voice{{Name: "en-US-AriaNeural", Locale: "en-US"}}, nil
}

func (b *stubBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *stubBackend) callCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.calls)
}

func TestSynthesizeValidatesBeforeBackend(t *testing.T) {
	backend := newStubBackend()
	synth := NewSynthesizer(backend, DefaultConfig())

	if _, err := synth.Synthesize(context.Background(), "", "en-US-AriaNeural"); !errors.Is(err, ErrEmptyText) {
		t.Fatalf("empty text error = %v, want ErrEmptyText", err)
	}
	if _, err := synth.Synthesize(context.Background(), "hello", ""); !errors.Is(err, ErrEmptyVoice) {
		t.Fatalf("empty voice error = %v, want ErrEmptyVoice", err)
	}
	if n := backend.callCount(); n != 0 {
		t.Errorf("backend called %d times for invalid input, want 0", n)
	}
}

func TestSynthesizeRejectsUnknownFormat(t *testing.T) {
	backend := newStubBackend()
	cfg := DefaultConfig()
	cfg.OutputFormat = "flac"
	synth := NewSynthesizer(backend, cfg)

	if _, err := synth.Synthesize(context.Background(), "hello", "en-US-AriaNeural"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("unknown format error = %v, want ErrUnknownFormat", err)
	}
	if n := backend.callCount(); n != 0 {
		t.Errorf("backend called %d times, want 0", n)
	}
}

func TestSynthesizeWithFallbackPrimarySucceeds(t *testing.T) {
	backend := newStubBackend()
	synth := NewSynthesizer(backend, DefaultConfig())

	result, err := synth.SynthesizeWithFallback(context.Background(), "hello", "primary", "alt")
	if err != nil {
		t.Fatalf("SynthesizeWithFallback() error: %v", err)
	}
	if result.Voice != "primary" {
		t.Errorf("Result.Voice = %q, want primary", result.Voice)
	}
	if n := backend.callCount(); n != 1 {
		t.Errorf("backend called %d times, want 1", n)
	}
}

func TestSynthesizeWithFallbackUsesAlternate(t *testing.T) {
	backend := newStubBackend()
	backend.errs["primary"] = NewError(KindSynthesis, "receive turn", ErrNoAudio)
	synth := NewSynthesizer(backend, DefaultConfig())

	result, err := synth.SynthesizeWithFallback(context.Background(), "hello", "primary", "alt")
	if err != nil {
		t.Fatalf("SynthesizeWithFallback() error: %v", err)
	}
	if result.Voice != "alt" {
		t.Errorf("Result.Voice = %q, want alt", result.Voice)
	}
	if got := string(result.Audio); !strings.Contains(got, "alt") {
		t.Errorf("audio %q was not produced by the alternate voice", got)
	}
}

func TestSynthesizeWithFallbackSkipsNetworkErrors(t *testing.T) {
	backend := newStubBackend()
	backend.errs["primary"] = NewError(KindNetwork, "connect", errors.New("refused"))
	synth := NewSynthesizer(backend, DefaultConfig())

	_, err := synth.SynthesizeWithFallback(context.Background(), "hello", "primary", "alt")
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsKind(err, KindNetwork) {
		t.Errorf("error = %v, want the original network error", err)
	}
	if n := backend.callCount(); n != 1 {
		t.Errorf("backend called %d times, want 1 (no fallback on network errors)", n)
	}
}

func TestSynthesizeWithFallbackReportsBothVoices(t *testing.T) {
	backend := newStubBackend()
	backend.errs["primary"] = NewError(KindSynthesis, "receive turn", ErrNoAudio)
	backend.errs["alt"] = NewError(KindSynthesis, "receive turn", ErrNoAudio)
	synth := NewSynthesizer(backend, DefaultConfig())

	_, err := synth.SynthesizeWithFallback(context.Background(), "hello", "primary", "alt")
	if err == nil {
		t.Fatal("expected error when both voices fail")
	}
	msg := err.Error()
	if !strings.Contains(msg, "primary") || !strings.Contains(msg, "alt") {
		t.Errorf("error %q should name both voices", msg)
	}
}

func TestSynthesizeWithFallbackIgnoresSameAlternate(t *testing.T) {
	backend := newStubBackend()
	backend.errs["primary"] = NewError(KindSynthesis, "receive turn", ErrNoAudio)
	synth := NewSynthesizer(backend, DefaultConfig())

	if _, err := synth.SynthesizeWithFallback(context.Background(), "hello", "primary", "primary"); err == nil {
		t.Fatal("expected error")
	}
	if n := backend.callCount(); n != 1 {
		t.Errorf("backend called %d times, want 1 (alternate equals primary)", n)
	}
}

func TestSynthesizeBatchPreservesOrder(t *testing.T) {
	backend := newStubBackend()
	synth := NewSynthesizer(backend, DefaultConfig())

	texts := []string{"one", "two", "three", "four", "five"}
	results, err := synth.SynthesizeBatch(context.Background(), texts, "en-US-AriaNeural", 2)
	if err != nil {
		t.Fatalf("SynthesizeBatch() error: %v", err)
	}
	if len(results) != len(texts) {
		t.Fatalf("got %d results, want %d", len(results), len(texts))
	}
	for i, text := range texts {
		want := "audio:" + text + ":en-US-AriaNeural"
		if string(results[i]) != want {
			t.Errorf("results[%d] = %q, want %q", i, results[i], want)
		}
	}
}

func TestSynthesizeBatchReportsFailedItem(t *testing.T) {
	backend := newStubBackend()
	synth := NewSynthesizer(backend, DefaultConfig())

	_, err := synth.SynthesizeBatch(context.Background(), []string{"ok", ""}, "en-US-AriaNeural", 1)
	if err == nil {
		t.Fatal("expected error for empty batch item")
	}
	if !strings.Contains(err.Error(), "batch item 2") {
		t.Errorf("error %q should name the failed item", err)
	}
}

func TestSynthesizeAudioCache(t *testing.T) {
	backend := newStubBackend()
	cfg := DefaultConfig()
	cfg.CacheAudio = true
	synth := NewSynthesizer(backend, cfg)

	first, err := synth.Synthesize(context.Background(), "hello", "en-US-AriaNeural")
	if err != nil {
		t.Fatal(err)
	}
	second, err := synth.Synthesize(context.Background(), "hello", "en-US-AriaNeural")
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Error("cached audio differs from original")
	}
	if n := backend.callCount(); n != 1 {
		t.Errorf("backend called %d times, want 1 (second call served from cache)", n)
	}

	// A different voice misses the cache.
	if _, err := synth.Synthesize(context.Background(), "hello", "en-US-JennyNeural"); err != nil {
		t.Fatal(err)
	}
	if n := backend.callCount(); n != 2 {
		t.Errorf("backend called %d times, want 2", n)
	}
}

func TestSaveAudio(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.mp3")

	if err := SaveAudio([]byte("payload"), path); err != nil {
		t.Fatalf("SaveAudio() error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "payload" {
		t.Errorf("file contents = %q", data)
	}
}

func TestSaveAudioReportsIOError(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Parent "directory" is a regular file.
	err := SaveAudio([]byte("payload"), filepath.Join(blocker, "out.mp3"))
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsKind(err, KindIO) {
		t.Errorf("error = %v, want KindIO", err)
	}
}

func TestSynthesizerClose(t *testing.T) {
	backend := newStubBackend()
	synth := NewSynthesizer(backend, nil)
	if err := synth.Close(); err != nil {
		t.Fatal(err)
	}
	if !backend.closed {
		t.Error("Close should reach the backend")
	}
}
