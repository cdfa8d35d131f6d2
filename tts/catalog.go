package tts

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"
)

// LanguageEntry is one language row of the catalog file: a locale code, a
// demo sentence, and the per-backend voice identifiers. The two providers
// use different identifier schemes, so each entry may carry both.
type LanguageEntry struct {
	Code        string `json:"code" mapstructure:"code"`               // locale code, e.g. "en" or "zh-CN"
	Name        string `json:"name" mapstructure:"name"`               // display name
	Flag        string `json:"flag" mapstructure:"flag"`               // emoji flag for demo output
	Text        string `json:"text" mapstructure:"text"`               // demo sentence
	EdgeVoice   string `json:"edge_voice" mapstructure:"edge_voice"`   // e.g. "en-US-AriaNeural"
	GoogleVoice string `json:"google_voice" mapstructure:"google_voice"` // e.g. "en"; optional
	AltVoice    string `json:"alt_voice" mapstructure:"alt_voice"`     // fallback voice; optional
}

// Catalog holds the static voice metadata loaded from the configuration
// file. Once loaded it is read-only and freely shared without locking.
type Catalog struct {
	entries []LanguageEntry
	voices  []Voice
}

// catalogFile mirrors the top-level shape of tts_config.json.
type catalogFile struct {
	Languages []LanguageEntry `json:"languages" mapstructure:"languages"`
}

// LoadCatalog reads the language/voice catalog from a JSON or YAML file.
// A missing file is fatal for callers that need voice listing; callers that
// already have an explicit voice string never consult the catalog.
func LoadCatalog(path string) (*Catalog, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, NewError(KindIO, "load catalog", fmt.Errorf("%w: %s", ErrCatalogMissing, path))
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, NewError(KindValidation, "load catalog", fmt.Errorf("parse %s: %w", path, err))
	}

	var file catalogFile
	if err := v.Unmarshal(&file); err != nil {
		return nil, NewError(KindValidation, "load catalog", fmt.Errorf("parse %s: %w", path, err))
	}

	entries := make([]LanguageEntry, 0, len(file.Languages))
	for _, entry := range file.Languages {
		if entry.Code == "" || entry.EdgeVoice == "" {
			log.Warn("Skipping catalog entry without code or voice", "name", entry.Name)
			continue
		}
		entries = append(entries, entry)
	}

	log.Debug("Loaded voice catalog", "path", path, "languages", len(entries))
	return NewCatalog(entries), nil
}

// NewCatalog builds a catalog from already-parsed entries.
func NewCatalog(entries []LanguageEntry) *Catalog {
	voices := make([]Voice, 0, len(entries))
	for _, entry := range entries {
		voices = append(voices, Voice{
			Name:        entry.EdgeVoice,
			DisplayName: entry.Name,
			Locale:      LocaleOfVoice(entry.EdgeVoice),
			Gender:      "unknown",
		})
	}
	return &Catalog{entries: entries, voices: voices}
}

// Entries returns all language entries in catalog insertion order.
func (c *Catalog) Entries() []LanguageEntry { return c.entries }

// Voices returns all voices in catalog insertion order.
func (c *Catalog) Voices() []Voice { return c.voices }

// FindByLanguage returns voices whose primary language subtag matches code,
// case-insensitively, in catalog insertion order.
func (c *Catalog) FindByLanguage(code string) []Voice {
	var out []Voice
	for _, v := range c.voices {
		if strings.EqualFold(v.LanguageCode(), code) {
			out = append(out, v)
		}
	}
	return out
}

// FindByLocale returns voices whose full locale matches code exactly,
// case-insensitively.
func (c *Catalog) FindByLocale(code string) []Voice {
	var out []Voice
	for _, v := range c.voices {
		if strings.EqualFold(v.Locale, code) {
			out = append(out, v)
		}
	}
	return out
}

// EntryByCode returns the entry whose language code matches, or false.
func (c *Catalog) EntryByCode(code string) (LanguageEntry, bool) {
	for _, entry := range c.entries {
		if strings.EqualFold(entry.Code, code) {
			return entry, true
		}
	}
	return LanguageEntry{}, false
}

// VoiceForBackend resolves the voice identifier a backend expects for the
// given language entry. An explicit per-backend id in the catalog always
// wins; for the Google backend without one, the short code is derived from
// the Edge voice id by taking its primary subtag ("en-US-AriaNeural" -> "en").
// Region variants such as zh-CN vs zh-TW must therefore carry an explicit
// google_voice entry to survive the mapping.
func VoiceForBackend(entry LanguageEntry, backend string) (string, error) {
	switch strings.ToLower(backend) {
	case "edge", "":
		return entry.EdgeVoice, nil
	case "google":
		if entry.GoogleVoice != "" {
			return entry.GoogleVoice, nil
		}
		return GoogleLanguage(entry.EdgeVoice), nil
	default:
		return "", NewError(KindValidation, "resolve voice", fmt.Errorf("%w: %q", ErrUnknownBackend, backend))
	}
}

// GoogleLanguage derives the Google short language code from a voice id:
// "en-US-AriaNeural" -> "en", "zh" -> "zh". Already-short codes pass through.
func GoogleLanguage(voice string) string {
	if voice == "" {
		return "en"
	}
	if i := strings.IndexByte(voice, '-'); i > 0 {
		return strings.ToLower(voice[:i])
	}
	return strings.ToLower(voice)
}
