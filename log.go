package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// setupLog routes logging to the file named by HELLO_TTS_LOGFILE, or
// discards it. The returned closer flushes the log file, if any.
func setupLog() (func() error, error) {
	if logFile := os.Getenv("HELLO_TTS_LOGFILE"); logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("error opening log file: %w", err)
		}
		log.SetOutput(f)
		log.SetLevel(log.DebugLevel)
		log.SetTimeFormat(time.Kitchen)
		return f.Close, nil
	}
	if os.Getenv("HELLO_TTS_DEBUG") != "" {
		log.SetOutput(os.Stderr)
		log.SetLevel(log.DebugLevel)
		return func() error { return nil }, nil
	}
	log.SetOutput(io.Discard)
	return func() error { return nil }, nil
}
