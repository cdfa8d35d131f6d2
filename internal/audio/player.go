package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
)

// ErrNoPlayer is returned when no supported media player is installed.
var ErrNoPlayer = errors.New("no audio playback command available")

// playerCommand is one candidate media player invocation. The file path is
// appended to Args.
type playerCommand struct {
	Name string
	Args []string
}

// candidates returns the media players probed for the given OS, in
// preference order.
func candidates(goos string) []playerCommand {
	switch goos {
	case "darwin":
		return []playerCommand{
			{Name: "afplay"},
		}
	case "linux":
		return []playerCommand{
			{Name: "mpg123", Args: []string{"-q"}},
			{Name: "ffplay", Args: []string{"-nodisp", "-autoexit", "-loglevel", "quiet"}},
			{Name: "mplayer", Args: []string{"-really-quiet"}},
			{Name: "cvlc", Args: []string{"--play-and-exit", "--quiet"}},
		}
	case "windows":
		return []playerCommand{
			{Name: "powershell", Args: []string{"-NoProfile", "-Command", "Start-Process -Wait"}},
		}
	default:
		return nil
	}
}

// Player plays audio files through the first available platform media
// player.
type Player struct {
	command playerCommand
	runner  *Runner
}

// NewPlayer resolves the platform media player. It fails when none of the
// known players is installed.
func NewPlayer(timeout time.Duration) (*Player, error) {
	return newPlayer(runtime.GOOS, exec.LookPath, timeout)
}

// newPlayer resolves against an injectable lookup for testing.
func newPlayer(goos string, lookPath func(string) (string, error), timeout time.Duration) (*Player, error) {
	for _, candidate := range candidates(goos) {
		if _, err := lookPath(candidate.Name); err == nil {
			log.Debug("Audio player resolved", "command", candidate.Name)
			return &Player{command: candidate, runner: NewRunner(timeout)}, nil
		}
	}
	return nil, fmt.Errorf("%w on %s", ErrNoPlayer, goos)
}

// Play plays the audio file at path and blocks until playback finishes.
func (p *Player) Play(ctx context.Context, path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("audio file: %w", err)
	}
	args := append(append([]string{}, p.command.Args...), path)
	return p.runner.Run(ctx, p.command.Name, args...)
}

// Command returns the resolved player command name.
func (p *Player) Command() string { return p.command.Name }
