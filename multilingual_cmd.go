package main

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/feuyeux/hello-tts-go/tts"
	"github.com/feuyeux/hello-tts-go/tts/backends"
)

var (
	multiLanguages []string
	multiDelay     time.Duration

	multilingualCmd = &cobra.Command{
		Use:   "multilingual",
		Short: "Speak the demo sentence of every catalog language",
		Long: paragraph(
			fmt.Sprintf("\nSynthesize the %s sentence of every language in the catalog, one file per language.",
				keyword("hello-world")),
		),
		Example: "hello-tts multilingual\nhello-tts multilingual --languages en,fr,zh-CN --delay 500ms",
		Args:    cobra.NoArgs,
		RunE:    runMultilingual,
	}
)

func runMultilingual(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	catalog, err := tts.LoadCatalog(catalogPath())
	if err != nil {
		return err
	}
	entries := selectEntries(catalog, multiLanguages)
	if len(entries) == 0 {
		return fmt.Errorf("no catalog languages match %v", multiLanguages)
	}

	backend, err := backends.New(backendName, cfg)
	if err != nil {
		return err
	}
	synth := tts.NewSynthesizer(backend, cfg)
	defer synth.Close() //nolint:errcheck

	ctx := cmd.Context()
	var succeeded, failed int
	for i, entry := range entries {
		// A short pause between turns keeps the demo polite to the
		// service.
		if i > 0 && multiDelay > 0 {
			if err := sleep(ctx, multiDelay); err != nil {
				return err
			}
		}
		if err := speakEntry(ctx, synth, cfg, entry); err != nil {
			failed++
			log.Error("Language failed", "code", entry.Code, "error", err)
			fmt.Printf("%s %s %s: %v\n", entry.Flag, entry.Name, keyword("failed"), err)
			continue
		}
		succeeded++
	}

	fmt.Printf("\n%d ok, %d failed of %d languages\n", succeeded, failed, len(entries))
	if succeeded == 0 {
		return fmt.Errorf("all %d languages failed", len(entries))
	}
	return nil
}

func speakEntry(ctx context.Context, synth *tts.Synthesizer, cfg *tts.Config, entry tts.LanguageEntry) error {
	voice, err := tts.VoiceForBackend(entry, backendName)
	if err != nil {
		return err
	}
	alt := ""
	if backendName == backends.Edge {
		alt = entry.AltVoice
	}

	result, err := synth.SynthesizeWithFallback(ctx, entry.Text, voice, alt)
	if err != nil {
		return err
	}

	name := fmt.Sprintf("hello_%s.%s", entry.Code, cfg.OutputFormat)
	path := filepath.Join(cfg.OutputDirectory, name)
	if err := synth.SaveAudio(result.Audio, path); err != nil {
		return err
	}

	note := ""
	if result.Voice != voice {
		note = subtle(" (fallback voice " + result.Voice + ")")
	}
	fmt.Printf("%s %-12s %s%s\n", entry.Flag, entry.Name, path, note)
	return nil
}

// selectEntries filters the catalog to the requested language codes, keeping
// catalog order. An empty filter selects everything.
func selectEntries(catalog *tts.Catalog, codes []string) []tts.LanguageEntry {
	if len(codes) == 0 {
		return catalog.Entries()
	}
	want := make(map[string]bool, len(codes))
	for _, code := range codes {
		want[strings.ToLower(strings.TrimSpace(code))] = true
	}
	var out []tts.LanguageEntry
	for _, entry := range catalog.Entries() {
		if want[strings.ToLower(entry.Code)] {
			out = append(out, entry)
		}
	}
	return out
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func init() {
	multilingualCmd.Flags().StringSliceVar(&multiLanguages, "languages", nil, "comma-separated language codes to include (default all)")
	multilingualCmd.Flags().DurationVar(&multiDelay, "delay", 300*time.Millisecond, "pause between languages")
}
