// Package logger builds the zap logger handed to trees and broad phases.
package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/akmonengine/bvh/config"
)

// New builds a logger from the logging section of the config: a colored
// console core unless Quiet, and a rotating JSON file core when LogFile is set.
// With neither output the logger discards everything.
func New(cfg config.LoggingConfig) *zap.Logger {
	level := ParseLevel(cfg.Level)

	cores := make([]zapcore.Core, 0, 2)
	if !cfg.Quiet {
		cores = append(cores, zapcore.NewCore(consoleEncoder(), zapcore.Lock(os.Stdout), level))
	}
	if cfg.LogFile != "" {
		cores = append(cores, zapcore.NewCore(fileEncoder(), zapcore.AddSync(rotatingFile(cfg)), level))
	}

	if len(cores) == 0 {
		return zap.NewNop()
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()).Named("bvh")
}

// ParseLevel converts a config level to a zap level. Unknown levels map to info.
func ParseLevel(level string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

func rotatingFile(cfg config.LoggingConfig) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.MaxSizeMB,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAgeDays,
		Compress:   cfg.Compress,
		LocalTime:  true,
	}
}

func consoleEncoder() zapcore.Encoder {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000")
	ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	ec.ConsoleSeparator = " "
	return zapcore.NewConsoleEncoder(ec)
}

// fileEncoder writes one JSON object per entry, node counts and capacities as fields
func fileEncoder() zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapcore.NewJSONEncoder(ec)
}
