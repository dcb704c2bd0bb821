// Package logging sets up the zerolog logger: console output on stderr and,
// when logging.dir is configured, a rotated log file next to it.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/Hedius/clickhouse-backup/src/config"
)

const logFileName = "clickhouse-backup.log"

// Setup builds the process logger from the logging config. The log file is
// rotated and kept for 14 days, matching the behavior backup operators
// relied on before.
func Setup(cfg config.LoggingConfig) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	console := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	writer := io.Writer(console)
	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return zerolog.Logger{}, fmt.Errorf("create log dir: %w", err)
		}
		writer = zerolog.MultiLevelWriter(console, &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, logFileName),
			MaxAge:     14,
			MaxBackups: 14,
			Compress:   true,
		})
	}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger(), nil
}
