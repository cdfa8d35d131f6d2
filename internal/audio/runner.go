// Package audio plays synthesized audio files through the platform's media
// player.
package audio

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Runner executes a subprocess with timeout protection and a graceful
// shutdown window before the process is killed.
type Runner struct {
	timeout time.Duration
	grace   time.Duration
}

// NewRunner creates a runner with the given timeout.
func NewRunner(timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &Runner{timeout: timeout, grace: 500 * time.Millisecond}
}

// Run executes the command, bounding it by the runner timeout and any
// earlier ctx deadline. Stderr is captured into the returned error.
func (r *Runner) Run(ctx context.Context, name string, args ...string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.WaitDelay = r.grace

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			log.Debug("Subprocess timed out", "command", name, "after", elapsed)
			return fmt.Errorf("%s timed out after %v", name, r.timeout)
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s failed: %w: %s", name, err, msg)
		}
		return fmt.Errorf("%s failed: %w", name, err)
	}

	log.Debug("Subprocess completed", "command", name, "duration", elapsed)
	return nil
}
