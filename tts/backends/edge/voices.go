package edge

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/feuyeux/hello-tts-go/internal/cache"
	"github.com/feuyeux/hello-tts-go/tts"
)

const (
	voiceCacheTTL      = 24 * time.Hour
	voiceCacheCapacity = 4 << 20
	voiceCacheKey      = "edge-voice-list"
)

// edgeVoiceData is one entry of the provider's voice list JSON.
type edgeVoiceData struct {
	ShortName    string `json:"ShortName"`
	FriendlyName string `json:"FriendlyName"`
	Locale       string `json:"Locale"`
	Gender       string `json:"Gender"`
}

// fetchVoices downloads and parses the provider's voice list.
func fetchVoices(ctx context.Context, client *http.Client) ([]tts.Voice, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, voiceListEndpoint, nil)
	if err != nil {
		return nil, tts.NewError(tts.KindNetwork, "list voices", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, tts.NewError(tts.KindNetwork, "list voices", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, tts.NewError(tts.KindNetwork, "list voices",
			fmt.Errorf("voice list endpoint returned status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, tts.NewError(tts.KindNetwork, "list voices", err)
	}

	voices, err := parseVoiceList(body)
	if err != nil {
		return nil, err
	}

	log.Debug("Fetched voice list", "voices", len(voices))
	return voices, nil
}

// parseVoiceList converts the provider JSON into catalog voices.
func parseVoiceList(body []byte) ([]tts.Voice, error) {
	var raw []edgeVoiceData
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, tts.NewError(tts.KindSynthesis, "list voices",
			fmt.Errorf("parse voice list: %w", err))
	}

	voices := make([]tts.Voice, 0, len(raw))
	for _, v := range raw {
		voices = append(voices, tts.Voice{
			Name:        v.ShortName,
			DisplayName: v.FriendlyName,
			Locale:      v.Locale,
			Gender:      v.Gender,
		})
	}
	return voices, nil
}

// voiceCache wraps the shared byte cache with JSON encoding of the list.
type voiceCache struct {
	cache *cache.Cache
}

func newVoiceCache() *voiceCache {
	return &voiceCache{cache: cache.New(voiceCacheCapacity, voiceCacheTTL)}
}

func (vc *voiceCache) get() ([]tts.Voice, bool) {
	data, ok := vc.cache.Get(voiceCacheKey)
	if !ok {
		return nil, false
	}
	var voices []tts.Voice
	if err := json.Unmarshal(data, &voices); err != nil {
		vc.cache.Delete(voiceCacheKey)
		return nil, false
	}
	return voices, true
}

func (vc *voiceCache) put(voices []tts.Voice) {
	data, err := json.Marshal(voices)
	if err != nil {
		return
	}
	if err := vc.cache.Put(voiceCacheKey, data); err != nil {
		log.Debug("Voice cache store skipped", "error", err)
	}
}
