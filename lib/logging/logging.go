// Package logging builds the diagnostic logger. Diagnostics never go to the
// wrapper's stdout or stderr since both belong to the annotated output, so
// they are written to a file or discarded.
package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// New opens path for appending and returns a logger writing to it at level.
// An empty path yields a disabled logger.
func New(path, level string) (*zerolog.Logger, io.Closer, error) {
	if path == "" {
		logger := zerolog.Nop()
		return &logger, nopCloser{}, nil
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file: %w", err)
	}
	logger := zerolog.New(file).Level(lvl).With().Timestamp().Int("ppid", os.Getpid()).Logger()
	return &logger, file, nil
}
