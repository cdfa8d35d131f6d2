package edge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/feuyeux/hello-tts-go/tts"
)

func TestBackendFillsRequestDefaults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("tok"))
	}))
	t.Cleanup(srv.Close)

	cfg := tts.DefaultConfig()
	cfg.DefaultVoice = "ja-JP-NanamiNeural"
	cfg.OutputFormat = "ogg"

	b := New(cfg)
	conn := &fakeConn{onUtterance: happyTurn("payload")}
	b.tokens = NewTokenProvider(srv.URL, srv.Client(), time.Second)
	b.session = NewSession(b.tokens, time.Second)
	b.session.dial = func(context.Context, string, http.Header) (wire, error) {
		return conn, nil
	}

	audio, err := b.Synthesize(context.Background(), tts.SpeechRequest{Text: "こんにちは"})
	if err != nil {
		t.Fatalf("Synthesize() error: %v", err)
	}
	if string(audio) != "payload" {
		t.Errorf("audio = %q", audio)
	}

	// The configured voice and format flowed into the frames.
	var config, utterance string
	for _, w := range conn.writes {
		headers, body := parseTextFrame(w)
		switch headers["Path"] {
		case pathSpeechConfig:
			config = string(w)
		case pathSSML:
			utterance = body
		}
	}
	if !strings.Contains(config, outputFormats[tts.FormatOGG]) {
		t.Errorf("config frame should carry the ogg format:\n%s", config)
	}
	if !strings.Contains(utterance, "ja-JP-NanamiNeural") {
		t.Errorf("utterance should carry the default voice:\n%s", utterance)
	}
}

func TestBackendName(t *testing.T) {
	if got := New(nil).Name(); got != "edge" {
		t.Errorf("Name() = %q", got)
	}
}
