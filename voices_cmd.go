package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/feuyeux/hello-tts-go/tts"
	"github.com/feuyeux/hello-tts-go/tts/backends"
)

var (
	voicesLanguage string
	voicesLocale   string
	voicesRemote   bool

	voicesCmd = &cobra.Command{
		Use:   "voices",
		Short: "List available voices",
		Long: paragraph(
			fmt.Sprintf("\n%s the voices in the local catalog, or the full list the provider advertises with %s.",
				keyword("List"), keyword("--remote")),
		),
		Example: "hello-tts voices\nhello-tts voices --language zh\nhello-tts voices --remote --locale en-US",
		Args:    cobra.NoArgs,
		RunE:    runVoices,
	}
)

func runVoices(cmd *cobra.Command, _ []string) error {
	voices, err := listVoices(cmd)
	if err != nil {
		return err
	}
	if len(voices) == 0 {
		return fmt.Errorf("no voices match language=%q locale=%q", voicesLanguage, voicesLocale)
	}
	for _, v := range voices {
		display := v.DisplayName
		if v.Gender != "" && v.Gender != "unknown" {
			display += " " + subtle("("+strings.ToLower(v.Gender)+")")
		}
		fmt.Printf("%-42s %-8s %s\n", v.Name, v.Locale, display)
	}
	return nil
}

func listVoices(cmd *cobra.Command) ([]tts.Voice, error) {
	if voicesRemote {
		cfg, err := loadSettings()
		if err != nil {
			return nil, err
		}
		backend, err := backends.New(backendName, cfg)
		if err != nil {
			return nil, err
		}
		defer backend.Close() //nolint:errcheck

		voices, err := backend.Voices(cmd.Context())
		if err != nil {
			return nil, err
		}
		return filterVoices(voices), nil
	}

	catalog, err := tts.LoadCatalog(catalogPath())
	if err != nil {
		return nil, err
	}
	switch {
	case voicesLocale != "":
		return catalog.FindByLocale(voicesLocale), nil
	case voicesLanguage != "":
		return catalog.FindByLanguage(voicesLanguage), nil
	default:
		return catalog.Voices(), nil
	}
}

func filterVoices(voices []tts.Voice) []tts.Voice {
	if voicesLanguage == "" && voicesLocale == "" {
		return voices
	}
	var out []tts.Voice
	for _, v := range voices {
		if voicesLocale != "" && !strings.EqualFold(v.Locale, voicesLocale) {
			continue
		}
		if voicesLanguage != "" && !strings.EqualFold(v.LanguageCode(), voicesLanguage) {
			continue
		}
		out = append(out, v)
	}
	return out
}

func init() {
	voicesCmd.Flags().StringVarP(&voicesLanguage, "language", "L", "", "filter by primary language subtag, e.g. en")
	voicesCmd.Flags().StringVar(&voicesLocale, "locale", "", "filter by full locale, e.g. en-US")
	voicesCmd.Flags().BoolVar(&voicesRemote, "remote", false, "fetch the provider's advertised voice list")
}
