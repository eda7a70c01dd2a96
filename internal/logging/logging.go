// Package logging builds the zap loggers used by the extmodel command.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Supported encodings.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// Config selects the level and encoding of a logger.
type Config struct {
	Level  string
	Format string

	// Output defaults to stderr so stdout stays free for documents.
	Output io.Writer
}

// New builds a logger from cfg.
func New(cfg Config) (*zap.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	var encoder zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "", FormatConsole:
		encCfg := zap.NewDevelopmentEncoderConfig()
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encCfg.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
		encoder = zapcore.NewConsoleEncoder(encCfg)
	case FormatJSON:
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	default:
		return nil, fmt.Errorf("unknown log format %q (want %s or %s)", cfg.Format, FormatConsole, FormatJSON)
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(out), level)), nil
}

// ParseLevel parses a level name. An empty name means info.
func ParseLevel(name string) (zapcore.Level, error) {
	if name == "" {
		return zapcore.InfoLevel, nil
	}
	var level zapcore.Level
	if err := level.UnmarshalText([]byte(strings.ToLower(name))); err != nil {
		return level, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}
