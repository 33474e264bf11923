package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// log is a no-op until Initialize runs so packages can log from tests.
var log = zap.NewNop()

func Initialize(logLevel string) error {
	zLevel, err := zapcore.ParseLevel(logLevel)
	if err != nil {
		return err
	}

	config := zap.Config{
		Encoding:         "json",
		Level:            zap.NewAtomicLevelAt(zLevel),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		InitialFields:    map[string]interface{}{"service": "loyalty-hook"},
		EncoderConfig: zapcore.EncoderConfig{
			MessageKey:   "message",
			LevelKey:     "level",
			TimeKey:      "time",
			CallerKey:    "caller",
			EncodeLevel:  zapcore.LowercaseLevelEncoder,
			EncodeTime:   zapcore.ISO8601TimeEncoder,
			EncodeCaller: zapcore.ShortCallerEncoder,
		},
	}

	built, err := config.Build()
	if err != nil {
		return err
	}
	log = built

	return nil
}

// Replace swaps the process logger, e.g. for an observer core in tests or
// a console logger in CLI tools.
func Replace(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	log = l
}

func Logger() *zap.Logger {
	return log
}

func Sync() error {
	return log.Sync()
}
