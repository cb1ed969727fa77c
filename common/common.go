package common

import (
	"errors"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// ErrEmptyDataset returned when an index or a clustering is built over nothing
	ErrEmptyDataset = errors.New("dataset must contain at least one element")
	// ErrDimensionsMismatch returned when vectors of different sizes are mixed
	ErrDimensionsMismatch = errors.New("vectors dimensions mismatch")
)

// GetNewLogger creates a console logger writing to stderr
func GetNewLogger() *zap.SugaredLogger {
	config := zap.NewDevelopmentConfig()
	config.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	config.DisableStacktrace = true
	logger, err := config.Build()
	if err != nil {
		return zap.NewExample().Sugar()
	}
	return logger.Sugar()
}

// GetNopLogger returns logger which drops everything
func GetNopLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// LoggerOrNop returns the logger itself or the nop logger if it's nil
func LoggerOrNop(logger *zap.SugaredLogger) *zap.SugaredLogger {
	if logger == nil {
		return GetNopLogger()
	}
	return logger
}

// NewRand creates random source; zero seed means "seed from the wall clock"
func NewRand(seed int64) *rand.Rand {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}
