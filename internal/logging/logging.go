// Package logging constructs the structured logger shared by the engine and
// its transports.
package logging

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a zap.Logger for the engine. debug raises the level to Debug,
// matching MSGFLO_CPP_DEBUG / Config.DebugOutput; output is JSON either way.
func New(debug bool) *zap.Logger {
	level := zapcore.InfoLevel
	if debug {
		level = zapcore.DebugLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderCfg),
		zapcore.Lock(os.Stdout),
		level,
	)

	return zap.New(core)
}

// Noop returns a logger that discards everything, used as the zero-value
// default when a caller does not supply one.
func Noop() *zap.Logger {
	return zap.NewNop()
}

// DebugFromEnv reports whether MSGFLO_CPP_DEBUG is set, to any value
// including the empty string.
func DebugFromEnv() bool {
	_, set := os.LookupEnv("MSGFLO_CPP_DEBUG")
	return set
}
