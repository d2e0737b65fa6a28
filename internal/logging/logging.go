package logging

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// OpenLogFile opens the JSON log file in append mode. An empty path disables file logging.
func OpenLogFile(logFile string) (*os.File, error) {
	logFile = strings.TrimSpace(logFile)
	if logFile == "" {
		return nil, nil
	}

	file, err := os.OpenFile(logFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return file, nil
}

// Configure quiets console output to warnings while the REPL owns the terminal, and tees every
// entry at info (debug when enabled) into the log file.
func Configure(base *zap.Logger, file *os.File, debug bool) *zap.Logger {
	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	logger := base
	if !debug {
		logger = logger.WithOptions(zap.IncreaseLevel(zap.WarnLevel))
	}
	if file == nil {
		return logger
	}

	fileCore := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(file), level)
	return logger.WithOptions(zap.WrapCore(func(core zapcore.Core) zapcore.Core {
		return zapcore.NewTee(core, fileCore)
	}))
}
