// Package observability contains logging setup.
package observability

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/joemunene-by/Steganography-tool/internal/config"
)

// SetupLogger builds a zap.Logger from the provided configuration. Output
// goes to stderr unless a log file is configured, in which case writes pass
// through a size/age-bounded rotator. The caller should defer logger.Sync().
//
// Stderr is the only stream the logger ever touches: stdout belongs to
// command output (decoded messages, reports).
func SetupLogger(c config.LogConfig) (*zap.Logger, error) {
	level := zap.NewAtomicLevel()
	switch strings.ToLower(c.Level) {
	case "debug":
		level.SetLevel(zap.DebugLevel)
	case "info":
		level.SetLevel(zap.InfoLevel)
	case "warn", "warning":
		level.SetLevel(zap.WarnLevel)
	case "error":
		level.SetLevel(zap.ErrorLevel)
	default:
		level.SetLevel(zap.InfoLevel)
	}

	var encoder zapcore.Encoder
	if strings.ToLower(c.Format) == "json" {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	} else {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(cfg)
	}

	var ws zapcore.WriteSyncer
	if c.File != "" {
		ws = zapcore.AddSync(&lumberjack.Logger{
			Filename:   c.File,
			MaxSize:    orDefault(c.MaxSizeMB, 10),
			MaxBackups: orDefault(c.MaxBackups, 3),
			MaxAge:     orDefault(c.MaxAgeDays, 7),
		})
	} else {
		ws = zapcore.AddSync(os.Stderr)
	}

	logger := zap.New(zapcore.NewCore(encoder, ws, level))
	zap.RedirectStdLog(logger)
	return logger, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
