// Package main provides the entry point for the hello-tts CLI.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/sethvargo/go-retry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/feuyeux/hello-tts-go/internal/audio"
	"github.com/feuyeux/hello-tts-go/tts"
	"github.com/feuyeux/hello-tts-go/tts/backends"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile  string
	catalogFile string
	backendName string
	voiceName   string
	altVoice    string
	language    string
	formatName  string
	outputPath  string
	presetName  string
	rate        string
	volume      string
	pitch       string
	playAudio   bool
	debug       bool

	rootCmd = &cobra.Command{
		Use:   "hello-tts [TEXT]",
		Short: "Turn text into speech on the CLI",
		Long: paragraph(
			fmt.Sprintf("\nTurn text into speech from the command line, using %s with a %s fallback.",
				keyword("Edge neural voices"), keyword("Google Translate")),
		),
		Example:          "hello-tts \"Hello, World!\"\nhello-tts --language fr \"Bonjour\"\nhello-tts --backend google --voice zh-TW \"你好\"",
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return validateOptions(cmd)
		},
		RunE: execute,
	}
)

// envOverrides are the settings readable from the environment. Flags take
// precedence over these.
type envOverrides struct {
	Config  string `env:"CONFIG"`
	Catalog string `env:"CATALOG"`
	Voice   string `env:"VOICE"`
}

func validateOptions(cmd *cobra.Command) error {
	overrides, err := env.ParseAsWithOptions[envOverrides](env.Options{Prefix: "HELLO_TTS_"})
	if err != nil {
		return fmt.Errorf("error parsing environment: %w", err)
	}
	if debug {
		log.SetOutput(os.Stderr)
		log.SetLevel(log.DebugLevel)
	}
	applyEnvOverride(cmd, "config", &configFile, overrides.Config)
	applyEnvOverride(cmd, "catalog", &catalogFile, overrides.Catalog)
	applyEnvOverride(cmd, "voice", &voiceName, overrides.Voice)

	// grab config values from Viper
	backendName = firstNonEmpty(viper.GetString("backend"), backendName)
	formatName = firstNonEmpty(viper.GetString("format"), formatName)

	switch strings.ToLower(backendName) {
	case backends.Edge, backends.Google:
	default:
		return fmt.Errorf("unknown backend %q (have %s, %s)", backendName, backends.Edge, backends.Google)
	}

	// The format is validated up front so a typo fails before any network
	// traffic happens.
	if formatName != "" {
		if _, err := tts.ParseFormat(formatName); err != nil {
			return err
		}
	}

	if voiceName != "" && language != "" {
		return errors.New("cannot use both --voice and --language")
	}
	return nil
}

// applyEnvOverride writes an environment value into a flag variable unless
// the flag was set explicitly.
func applyEnvOverride(cmd *cobra.Command, flag string, dst *string, value string) {
	if value != "" && !cmd.Flags().Changed(flag) && *dst == "" {
		*dst = value
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func stdinIsPipe() (bool, error) {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false, fmt.Errorf("unable to stat stdin: %w", err)
	}
	if stat.Mode()&os.ModeCharDevice == 0 || stat.Size() > 0 {
		return true, nil
	}
	return false, nil
}

// gatherText resolves the text to speak: the argument, piped stdin, or the
// catalog demo sentence for the selected language.
func gatherText(args []string) (string, error) {
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	if yes, err := stdinIsPipe(); err != nil {
		return "", err
	} else if yes || (len(args) == 1 && args[0] == "-") {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("unable to read stdin: %w", err)
		}
		return strings.TrimSpace(string(b)), nil
	}
	if language != "" {
		if catalog, err := tts.LoadCatalog(catalogPath()); err == nil {
			if entry, ok := catalog.EntryByCode(language); ok && entry.Text != "" {
				return entry.Text, nil
			}
		}
	}
	return "Hello, World!", nil
}

// loadSettings builds the effective configuration: preset or config file,
// then flag overrides on top.
func loadSettings() (*tts.Config, error) {
	var cfg *tts.Config
	var err error
	if presetName != "" {
		cfg, err = tts.Preset(presetName)
	} else {
		cfg, err = tts.LoadConfig(configFile)
	}
	if err != nil {
		return nil, err
	}

	if formatName != "" {
		cfg.OutputFormat = strings.ToLower(formatName)
	}
	if rate != "" {
		cfg.Rate = rate
	}
	if volume != "" {
		cfg.Volume = volume
	}
	if pitch != "" {
		cfg.Pitch = pitch
	}
	return cfg, nil
}

// catalogPath returns the catalog file location: the flag, or
// tts_config.json next to the working directory.
func catalogPath() string {
	if catalogFile != "" {
		return catalogFile
	}
	return "tts_config.json"
}

// resolveVoices picks the primary and fallback voice for the run. An
// explicit --voice wins; --language consults the catalog; otherwise the
// configured default for the backend applies.
func resolveVoices(cfg *tts.Config) (string, string, error) {
	if voiceName != "" {
		return voiceName, altVoice, nil
	}

	if language != "" {
		catalog, err := tts.LoadCatalog(catalogPath())
		if err != nil {
			return "", "", err
		}
		entry, ok := catalog.EntryByCode(language)
		if !ok {
			return "", "", fmt.Errorf("language %q not in catalog %s", language, catalogPath())
		}
		voice, err := tts.VoiceForBackend(entry, backendName)
		if err != nil {
			return "", "", err
		}
		alt := altVoice
		if alt == "" && backendName == backends.Edge {
			alt = entry.AltVoice
		}
		return voice, alt, nil
	}

	if backendName == backends.Google {
		return cfg.GoogleDefaultVoice, altVoice, nil
	}
	return cfg.DefaultVoice, altVoice, nil
}

func execute(cmd *cobra.Command, args []string) error {
	text, err := gatherText(args)
	if err != nil {
		return err
	}

	cfg, err := loadSettings()
	if err != nil {
		return err
	}

	backend, err := backends.New(backendName, cfg)
	if err != nil {
		return err
	}
	synth := tts.NewSynthesizer(backend, cfg)
	defer synth.Close() //nolint:errcheck

	voice, alt, err := resolveVoices(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	result, err := synthesizeWithRetry(ctx, synth, cfg, text, voice, alt)
	if err != nil {
		return err
	}

	out := outputPath
	if out == "" {
		name := fmt.Sprintf("hello_tts_%s.%s", time.Now().Format("20060102_150405"), cfg.OutputFormat)
		out = filepath.Join(cfg.OutputDirectory, name)
	}
	if err := synth.SaveAudio(result.Audio, out); err != nil {
		return err
	}

	if term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Printf("%s %s %s\n", keyword("Saved"), out,
			subtle(fmt.Sprintf("(%s, %d bytes)", result.Voice, len(result.Audio))))
	} else {
		fmt.Println(out)
	}

	if playAudio || cfg.AutoPlay {
		return playFile(ctx, cfg, out)
	}
	return nil
}

// synthesizeWithRetry runs one fallback-aware synthesis, retrying transient
// network failures with exponential backoff.
func synthesizeWithRetry(ctx context.Context, synth *tts.Synthesizer, cfg *tts.Config, text, voice, alt string) (*tts.Result, error) {
	backoff := retry.WithMaxRetries(uint64(max(cfg.MaxRetries, 0)), retry.NewExponential(500*time.Millisecond)) //nolint:gosec

	var result *tts.Result
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var synthErr error
		result, synthErr = synth.SynthesizeWithFallback(ctx, text, voice, alt)
		if synthErr != nil && tts.Retryable(synthErr) {
			log.Warn("Synthesis failed, will retry", "error", synthErr)
			return retry.RetryableError(synthErr)
		}
		return synthErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func playFile(ctx context.Context, cfg *tts.Config, path string) error {
	player, err := audio.NewPlayer(cfg.Timeout())
	if err != nil {
		if errors.Is(err, audio.ErrNoPlayer) {
			log.Warn("Skipping playback", "error", err)
			return nil
		}
		return err
	}
	log.Debug("Playing audio", "path", path, "player", player.Command())
	return player.Play(ctx, path)
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default ./tts_config.json)")
	rootCmd.PersistentFlags().StringVar(&catalogFile, "catalog", "", "voice catalog file (default ./tts_config.json)")
	rootCmd.PersistentFlags().StringVarP(&backendName, "backend", "b", backends.Edge, "synthesis backend (edge or google)")
	rootCmd.Flags().StringVarP(&voiceName, "voice", "v", "", "voice identifier, e.g. en-US-AriaNeural")
	rootCmd.Flags().StringVar(&altVoice, "alt-voice", "", "fallback voice when the primary is rejected")
	rootCmd.Flags().StringVarP(&language, "language", "L", "", "pick the voice for a catalog language, e.g. fr or zh-CN")
	rootCmd.Flags().StringVarP(&formatName, "format", "f", "", "audio format (mp3, wav, ogg)")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path")
	rootCmd.Flags().StringVar(&presetName, "preset", "", "configuration preset (default, fast, slow, high_quality, batch_processing, whisper, excited)")
	rootCmd.Flags().StringVar(&rate, "rate", "", "speaking rate, e.g. +20%")
	rootCmd.Flags().StringVar(&volume, "volume", "", "speaking volume, e.g. -10%")
	rootCmd.Flags().StringVar(&pitch, "pitch", "", "voice pitch, e.g. +5Hz")
	rootCmd.Flags().BoolVarP(&playAudio, "play", "p", false, "play the audio after saving it")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging on stderr")

	// Config bindings
	_ = viper.BindPFlag("backend", rootCmd.PersistentFlags().Lookup("backend"))
	_ = viper.BindPFlag("format", rootCmd.Flags().Lookup("format"))

	viper.SetEnvPrefix("hello_tts")
	viper.AutomaticEnv()

	rootCmd.AddCommand(voicesCmd, multilingualCmd, configCmd)
}

// configDir returns the user-level configuration directory for hello-tts.
func configDir() (string, error) {
	scope := gap.NewScope(gap.User, "hello-tts")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		return "", fmt.Errorf("could not find configuration directory: %w", err)
	}
	if len(dirs) == 0 {
		return "", errors.New("could not find configuration directory")
	}
	return dirs[0], nil
}
