package edge

import (
	"testing"

	"github.com/feuyeux/hello-tts-go/tts"
)

func TestParseVoiceList(t *testing.T) {
	body := []byte(`[
		{"ShortName": "en-US-AriaNeural", "FriendlyName": "Microsoft Aria Online (Natural) - English (United States)", "Locale": "en-US", "Gender": "Female"},
		{"ShortName": "zh-CN-XiaoxiaoNeural", "FriendlyName": "Microsoft Xiaoxiao Online (Natural) - Chinese (Mainland)", "Locale": "zh-CN", "Gender": "Female"}
	]`)

	voices, err := parseVoiceList(body)
	if err != nil {
		t.Fatalf("parseVoiceList() error: %v", err)
	}
	if len(voices) != 2 {
		t.Fatalf("got %d voices, want 2", len(voices))
	}
	if voices[0].Name != "en-US-AriaNeural" || voices[0].Locale != "en-US" || voices[0].Gender != "Female" {
		t.Errorf("voices[0] = %+v", voices[0])
	}
	if voices[1].LanguageCode() != "zh" {
		t.Errorf("voices[1].LanguageCode() = %q", voices[1].LanguageCode())
	}
}

func TestParseVoiceListMalformed(t *testing.T) {
	_, err := parseVoiceList([]byte("<html>not json</html>"))
	if err == nil {
		t.Fatal("expected error for non-JSON body")
	}
	if !tts.IsKind(err, tts.KindSynthesis) {
		t.Errorf("error = %v, want KindSynthesis", err)
	}
}

func TestVoiceCacheRoundTrip(t *testing.T) {
	vc := newVoiceCache()

	if _, ok := vc.get(); ok {
		t.Fatal("empty cache should miss")
	}

	want := []tts.Voice{{Name: "en-US-AriaNeural", Locale: "en-US", Gender: "Female"}}
	vc.put(want)

	got, ok := vc.get()
	if !ok {
		t.Fatal("cache should hit after put")
	}
	if len(got) != 1 || got[0] != want[0] {
		t.Errorf("cached voices = %+v, want %+v", got, want)
	}
}
