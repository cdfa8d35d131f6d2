// Package google implements the stateless Google translate-TTS fallback
// backend: one HTTP request per utterance, no token, no persistent session.
package google

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/feuyeux/hello-tts-go/tts"
)

const (
	defaultEndpoint = "https://translate.google.com/translate_tts"

	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36"

	// slowSpeed is the provider's slow speaking rate parameter.
	slowSpeed = "0.24"
)

// supportedLanguages are the short codes the provider accepts. Region
// variants the provider distinguishes (zh-CN vs zh-TW) are kept as full
// locales.
var supportedLanguages = map[string]string{
	"ar": "Arabic", "de": "German", "en": "English", "es": "Spanish",
	"fr": "French", "hi": "Hindi", "it": "Italian", "ja": "Japanese",
	"ko": "Korean", "nl": "Dutch", "pl": "Polish", "pt": "Portuguese",
	"ru": "Russian", "sv": "Swedish", "tr": "Turkish",
	"zh-CN": "Chinese (Simplified)", "zh-TW": "Chinese (Traditional)",
}

// Backend issues one stateless request per utterance.
type Backend struct {
	config   *tts.Config
	endpoint string
	client   *http.Client
}

// compile-time interface assertion
var _ tts.Backend = (*Backend)(nil)

// New creates the Google backend from the given configuration.
func New(config *tts.Config) *Backend {
	if config == nil {
		config = tts.DefaultConfig()
	}
	return &Backend{
		config:   config,
		endpoint: defaultEndpoint,
		client:   &http.Client{Timeout: config.Timeout()},
	}
}

// Name returns the backend identifier.
func (b *Backend) Name() string { return "google" }

// Synthesize maps the voice to the provider's short language code and
// issues the request. The provider returns MP3 regardless of the requested
// container.
func (b *Backend) Synthesize(ctx context.Context, req tts.SpeechRequest) ([]byte, error) {
	if req.Voice == "" {
		req.Voice = b.config.GoogleDefaultVoice
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.Format != "" && req.Format != tts.FormatMP3 {
		log.Warn("Google backend only produces MP3", "requested", req.Format)
	}

	lang := Language(req.Voice)

	params := url.Values{}
	params.Set("ie", "UTF-8")
	params.Set("client", "tw-ob")
	params.Set("tl", lang)
	params.Set("q", req.Text)
	if b.config.GoogleSlowSpeech {
		params.Set("ttsspeed", slowSpeed)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, b.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, tts.NewError(tts.KindNetwork, "synthesize", err).WithVoice(req.Voice)
	}
	httpReq.Header.Set("User-Agent", userAgent)

	resp, err := b.client.Do(httpReq)
	if err != nil {
		return nil, tts.NewError(tts.KindNetwork, "synthesize", err).WithVoice(req.Voice)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, tts.NewError(tts.KindSynthesis, "synthesize",
			fmt.Errorf("service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))).
			WithVoice(req.Voice)
	}

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, tts.NewError(tts.KindNetwork, "synthesize", err).WithVoice(req.Voice)
	}
	if len(audio) == 0 {
		return nil, tts.NewError(tts.KindSynthesis, "synthesize", tts.ErrNoAudio).WithVoice(req.Voice)
	}

	log.Debug("Synthesized via google", "lang", lang, "bytes", len(audio))
	return audio, nil
}

// Voices returns the provider's supported languages as voice entries, in
// stable order.
func (b *Backend) Voices(_ context.Context) ([]tts.Voice, error) {
	codes := make([]string, 0, len(supportedLanguages))
	for code := range supportedLanguages {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	voices := make([]tts.Voice, 0, len(codes))
	for _, code := range codes {
		voices = append(voices, tts.Voice{
			Name:        code,
			DisplayName: supportedLanguages[code] + " (Standard)",
			Locale:      code,
			Gender:      "unknown",
		})
	}
	return voices, nil
}

// Close is a no-op; the backend holds no persistent connection.
func (b *Backend) Close() error { return nil }

// Language maps a voice identifier to the provider's language parameter.
// Short codes the provider knows pass through, including region variants
// like zh-TW; Edge-style ids are truncated to their primary subtag.
func Language(voice string) string {
	if voice == "" {
		return "en"
	}
	if _, ok := supportedLanguages[voice]; ok {
		return voice
	}
	// Normalize case on a locale-shaped code, e.g. "zh-tw" -> "zh-TW".
	if len(voice) == 5 && voice[2] == '-' {
		normalized := strings.ToLower(voice[:2]) + "-" + strings.ToUpper(voice[3:])
		if _, ok := supportedLanguages[normalized]; ok {
			return normalized
		}
	}
	return tts.GoogleLanguage(voice)
}
