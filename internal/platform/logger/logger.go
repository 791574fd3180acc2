package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"linetrack-backend/internal/platform/config"
)

// New builds the process logger. dev mode gets the console encoder at debug level.
func New(mode string) (*zap.Logger, error) {
	var zc zap.Config
	if mode == config.ModeDev {
		zc = zap.NewDevelopmentConfig()
		zc.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		zc = zap.NewProductionConfig()
		zc.EncoderConfig.TimeKey = "time"
		zc.EncoderConfig.EncodeTime = zapcore.RFC3339NanoTimeEncoder
	}
	return zc.Build()
}
