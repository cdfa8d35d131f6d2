package tts

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.DefaultVoice != "en-US-AriaNeural" {
		t.Errorf("DefaultVoice = %q", cfg.DefaultVoice)
	}
	if cfg.GoogleDefaultVoice != "en" {
		t.Errorf("GoogleDefaultVoice = %q", cfg.GoogleDefaultVoice)
	}
	if cfg.OutputFormat != "mp3" {
		t.Errorf("OutputFormat = %q", cfg.OutputFormat)
	}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("Timeout() = %v", cfg.Timeout())
	}
}

func TestTimeoutFallsBackWhenUnset(t *testing.T) {
	cfg := &Config{}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("zero TimeoutSeconds should default, got %v", cfg.Timeout())
	}
	cfg.TimeoutSeconds = 5
	if cfg.Timeout() != 5*time.Second {
		t.Errorf("Timeout() = %v, want 5s", cfg.Timeout())
	}
}

func TestConfigDefaultProsody(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Rate = "+20%"
	cfg.Pitch = ""
	p := cfg.DefaultProsody()
	if p.Rate != "+20%" {
		t.Errorf("Rate = %q, want +20%%", p.Rate)
	}
	if p.Pitch != "+0Hz" {
		t.Errorf("empty Pitch should default, got %q", p.Pitch)
	}
}

func TestPresets(t *testing.T) {
	presets := Presets()
	for _, name := range []string{"default", "fast", "slow", "high_quality", "batch_processing", "whisper", "excited"} {
		if _, ok := presets[name]; !ok {
			t.Errorf("missing preset %q", name)
		}
	}

	fast, err := Preset("fast")
	if err != nil {
		t.Fatalf("Preset(fast) error: %v", err)
	}
	if fast.Rate != "+20%" {
		t.Errorf("fast preset Rate = %q", fast.Rate)
	}

	hq, _ := Preset("high_quality")
	if hq.OutputFormat != "wav" {
		t.Errorf("high_quality preset OutputFormat = %q", hq.OutputFormat)
	}

	if _, err := Preset("bogus"); err == nil {
		t.Error("Preset(bogus) should fail")
	} else if !IsKind(err, KindValidation) {
		t.Errorf("unknown preset should be a validation error, got %v", err)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	data := "default_voice: de-DE-KatjaNeural\noutput_format: wav\ntimeout: 10\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.DefaultVoice != "de-DE-KatjaNeural" {
		t.Errorf("DefaultVoice = %q", cfg.DefaultVoice)
	}
	if cfg.OutputFormat != "wav" {
		t.Errorf("OutputFormat = %q", cfg.OutputFormat)
	}
	if cfg.Timeout() != 10*time.Second {
		t.Errorf("Timeout() = %v", cfg.Timeout())
	}
	// Unspecified keys keep their defaults.
	if cfg.GoogleDefaultVoice != "en" {
		t.Errorf("GoogleDefaultVoice = %q, want default", cfg.GoogleDefaultVoice)
	}
}

func TestLoadConfigExplicitPathMustExist(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	if err == nil {
		t.Fatal("explicit missing config path should fail")
	}
	if !IsKind(err, KindIO) {
		t.Errorf("missing config should be an IO error, got %v", err)
	}
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yml")

	cfg := DefaultConfig()
	cfg.DefaultVoice = "ja-JP-NanamiNeural"
	cfg.MaxRetries = 7
	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig() error: %v", err)
	}

	loaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if loaded.DefaultVoice != "ja-JP-NanamiNeural" {
		t.Errorf("DefaultVoice = %q", loaded.DefaultVoice)
	}
	if loaded.MaxRetries != 7 {
		t.Errorf("MaxRetries = %d", loaded.MaxRetries)
	}
}

func TestExampleConfig(t *testing.T) {
	example := ExampleConfig()
	if !strings.HasPrefix(example, "#") {
		t.Error("example config should start with a comment header")
	}
	for _, key := range []string{"default_voice", "output_format", "max_retries"} {
		if !strings.Contains(example, key) {
			t.Errorf("example config missing key %q", key)
		}
	}
}
