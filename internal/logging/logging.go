// Package logging configures the global zerolog logger used across the server.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-authcode-server/internal/config"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Init points the global zerolog logger at stdout (console output in DEV, JSON
// otherwise) and, when a log file pattern is configured, at a rotating file too.
// The returned closer releases the file sink.
func Init(cfg config.Config) (io.Closer, error) {
	level, err := zerolog.ParseLevel(cfg.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.TimeFieldFormat = time.RFC3339

	var stdout io.Writer = os.Stdout
	if cfg.IsDev() {
		stdout = zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.TimeOnly}
	}

	writer := stdout
	var closer io.Closer = nopCloser{}
	if pattern := cfg.GetLogFile(); pattern != "" {
		rotating, err := newRotatingWriter(pattern, cfg.GetLogMaxAge(), cfg.GetLogRotationTime())
		if err != nil {
			return nil, err
		}
		writer = zerolog.MultiLevelWriter(stdout, rotating)
		closer = rotating
	}

	log.Logger = zerolog.New(writer).Level(level).With().Timestamp().Str("app", cfg.GetAppName()).Logger()
	return closer, nil
}

func newRotatingWriter(pattern string, maxAge, rotation time.Duration) (*rotatelogs.RotateLogs, error) {
	if dir := filepath.Dir(pattern); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("[logging newRotatingWriter] create log dir: %w", err)
		}
	}
	options := []rotatelogs.Option{rotatelogs.WithRotationTime(rotation)}
	if maxAge > 0 {
		options = append(options, rotatelogs.WithMaxAge(maxAge))
	}
	rl, err := rotatelogs.New(pattern, options...)
	if err != nil {
		return nil, fmt.Errorf("[logging newRotatingWriter] %w", err)
	}
	return rl, nil
}
