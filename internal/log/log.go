// Package log wires the process-wide slog default to a Zap backend.
//
// Binaries must call Initialize() before the first logging statement;
// library code logs through log/slog context functions only.
package log

import (
	golog "log"
	"log/slog"
	"strings"

	"github.com/blendle/zapdriver"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
)

// LoggingEnv selects a logger configuration.
type LoggingEnv string

const (
	LoggingEnvDev  LoggingEnv = "dev"
	LoggingEnvProd LoggingEnv = "prod"
)

func (e LoggingEnv) String() string {
	return string(e)
}

var loggingEnv LoggingEnv = LoggingEnvDev

// Initialize sets up the default slog logger backed by Zap, emitting
// records at or above level.
//
// "prod" uses the zapdriver production configuration (StackDriver-style
// labels); anything else uses Zap's development configuration.
func Initialize(env string, level Level) {
	var logger *zap.Logger
	var err error

	switch strings.ToLower(env) {
	case LoggingEnvProd.String():
		loggingEnv = LoggingEnvProd
		config := zapdriver.NewProductionConfig()
		// Sampling would silently drop per-file analysis logs.
		config.Sampling = nil
		config.Level = zap.NewAtomicLevelAt(level)
		logger, err = config.Build(zapdriver.WrapCore())
	default:
		loggingEnv = LoggingEnvDev
		config := zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(level)
		logger, err = config.Build()
	}
	if err != nil {
		golog.Panic(err)
	}

	zap.RedirectStdLog(logger)
	slogger := slog.New(NewContextLogHandler(zapslog.NewHandler(logger.Core(),
		zapslog.WithCaller(true),
	)))
	slog.SetDefault(slogger)
}

// Level re-exports zapcore levels for flag parsing in binaries.
type Level = zapcore.Level

// LabelAttr marks an attribute as a StackDriver label in prod, and logs
// it as a plain string attribute in dev.
func LabelAttr(key, value string) slog.Attr {
	if loggingEnv == LoggingEnvProd {
		return slog.String("labels."+key, value)
	}
	return slog.String(key, value)
}
