package tts

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds the synthesis settings shared by both backends.
type Config struct {
	// DefaultVoice is the Edge voice used when the caller supplies none.
	DefaultVoice string `yaml:"default_voice" json:"default_voice" mapstructure:"default_voice"`

	// GoogleDefaultVoice is the short language code for the Google backend.
	GoogleDefaultVoice string `yaml:"google_default_voice" json:"google_default_voice" mapstructure:"google_default_voice"`

	// GoogleSlowSpeech selects the Google provider's slow speaking mode.
	GoogleSlowSpeech bool `yaml:"google_slow_speech" json:"google_slow_speech" mapstructure:"google_slow_speech"`

	// OutputFormat is the default audio container (mp3, wav, ogg).
	OutputFormat string `yaml:"output_format" json:"output_format" mapstructure:"output_format"`

	// OutputDirectory is where the CLI writes audio files.
	OutputDirectory string `yaml:"output_directory" json:"output_directory" mapstructure:"output_directory"`

	// AutoPlay plays generated audio through the platform player.
	AutoPlay bool `yaml:"auto_play" json:"auto_play" mapstructure:"auto_play"`

	// CacheVoices caches the provider voice list in memory.
	CacheVoices bool `yaml:"cache_voices" json:"cache_voices" mapstructure:"cache_voices"`

	// CacheAudio caches synthesized audio keyed by text, voice and format.
	CacheAudio bool `yaml:"cache_audio" json:"cache_audio" mapstructure:"cache_audio"`

	// MaxRetries bounds the CLI retry policy for network failures.
	MaxRetries int `yaml:"max_retries" json:"max_retries" mapstructure:"max_retries"`

	// TimeoutSeconds bounds every network operation: token fetch, connect,
	// and the per-turn receive loop.
	TimeoutSeconds int `yaml:"timeout" json:"timeout" mapstructure:"timeout"`

	// Prosody defaults applied when a request carries none.
	Rate   string `yaml:"rate" json:"rate" mapstructure:"rate"`
	Volume string `yaml:"volume" json:"volume" mapstructure:"volume"`
	Pitch  string `yaml:"pitch" json:"pitch" mapstructure:"pitch"`

	// MaxConcurrent bounds batch synthesis concurrency.
	MaxConcurrent int `yaml:"max_concurrent" json:"max_concurrent" mapstructure:"max_concurrent"`

	// BatchSize is the number of items a batch demo processes per group.
	BatchSize int `yaml:"batch_size" json:"batch_size" mapstructure:"batch_size"`
}

// DefaultConfig returns the default synthesis configuration.
func DefaultConfig() *Config {
	return &Config{
		DefaultVoice:       "en-US-AriaNeural",
		GoogleDefaultVoice: "en",
		OutputFormat:       string(FormatMP3),
		OutputDirectory:    "./output",
		AutoPlay:           false,
		CacheVoices:        true,
		CacheAudio:         false,
		MaxRetries:         3,
		TimeoutSeconds:     30,
		Rate:               "+0%",
		Volume:             "+0%",
		Pitch:              "+0Hz",
		MaxConcurrent:      3,
		BatchSize:          5,
	}
}

// Timeout returns the configured network timeout as a duration.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// DefaultProsody returns the configured prosody settings.
func (c *Config) DefaultProsody() Prosody {
	p := DefaultProsody()
	if c.Rate != "" {
		p.Rate = c.Rate
	}
	if c.Volume != "" {
		p.Volume = c.Volume
	}
	if c.Pitch != "" {
		p.Pitch = c.Pitch
	}
	return p
}

// Presets returns the named configuration presets.
func Presets() map[string]*Config {
	presets := map[string]*Config{
		"default": DefaultConfig(),
	}

	fast := DefaultConfig()
	fast.Rate = "+20%"
	fast.MaxConcurrent = 5
	fast.BatchSize = 10
	presets["fast"] = fast

	slow := DefaultConfig()
	slow.Rate = "-20%"
	slow.MaxConcurrent = 2
	slow.BatchSize = 3
	presets["slow"] = slow

	hq := DefaultConfig()
	hq.OutputFormat = string(FormatWAV)
	hq.CacheVoices = true
	hq.MaxRetries = 5
	presets["high_quality"] = hq

	batch := DefaultConfig()
	batch.MaxConcurrent = 8
	batch.BatchSize = 20
	batch.CacheVoices = true
	presets["batch_processing"] = batch

	whisper := DefaultConfig()
	whisper.Rate = "-10%"
	whisper.Volume = "-50%"
	whisper.Pitch = "-5Hz"
	presets["whisper"] = whisper

	excited := DefaultConfig()
	excited.Rate = "+15%"
	excited.Pitch = "+10Hz"
	excited.Volume = "+10%"
	presets["excited"] = excited

	return presets
}

// Preset returns the named preset, or an error listing the valid names.
func Preset(name string) (*Config, error) {
	presets := Presets()
	if cfg, ok := presets[name]; ok {
		return cfg, nil
	}
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	return nil, NewError(KindValidation, "load preset", fmt.Errorf("unknown preset %q (have %v)", name, names))
}

// configPaths returns the locations checked for a configuration file, in
// precedence order.
func configPaths() []string {
	paths := []string{}
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, "tts_config.json"))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "hello-tts", "config.json"))
		paths = append(paths, filepath.Join(home, ".config", "hello-tts", "config.yml"))
	}
	return paths
}

// LoadConfig loads the configuration from path, or from the default
// locations when path is empty. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	candidates := configPaths()
	if path != "" {
		candidates = []string{path}
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err != nil {
			if path != "" {
				return nil, NewError(KindIO, "load config", fmt.Errorf("%s: %w", candidate, err))
			}
			continue
		}

		v := viper.New()
		v.SetConfigFile(candidate)
		if err := v.ReadInConfig(); err != nil {
			return nil, NewError(KindValidation, "load config", fmt.Errorf("parse %s: %w", candidate, err))
		}
		if err := v.Unmarshal(config); err != nil {
			return nil, NewError(KindValidation, "load config", fmt.Errorf("parse %s: %w", candidate, err))
		}

		log.Debug("Loaded configuration", "path", candidate)
		return config, nil
	}

	log.Debug("No config file found, using defaults")
	return config, nil
}

// SaveConfig writes the configuration as YAML, creating parent directories
// as needed.
func SaveConfig(config *Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return NewError(KindIO, "save config", fmt.Errorf("create config directory: %w", err))
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return NewError(KindIO, "save config", fmt.Errorf("marshal config: %w", err))
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return NewError(KindIO, "save config", fmt.Errorf("write config file: %w", err))
	}

	log.Info("Saved configuration", "path", path)
	return nil
}

// ExampleConfig generates a commented example configuration file.
func ExampleConfig() string {
	data, _ := yaml.Marshal(DefaultConfig())

	header := `# hello-tts configuration file
#
# Place this file at:
#   - ./tts_config.json (project-specific, JSON with the same keys)
#   - ~/.config/hello-tts/config.yml (user-wide)
#
# The project-specific config takes precedence over the user config.

`
	return header + string(data)
}
