package utils

import "go.uber.org/zap"

// NewLogger returns a zap logger. When debug is true, uses development config
// (human-readable, debug level); otherwise uses production config (JSON, info level).
func NewLogger(debug bool) (*zap.Logger, error) {
	logger, _, err := NewLeveledLogger(debug)
	return logger, err
}

// NewLeveledLogger is NewLogger that also returns the logger's level, so it can
// be changed at runtime with SetDebug (config hot reload).
func NewLeveledLogger(debug bool) (*zap.Logger, zap.AtomicLevel, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, cfg.Level, err
	}
	return logger, cfg.Level, nil
}

// SetDebug switches level between debug and info.
func SetDebug(level zap.AtomicLevel, debug bool) {
	if debug {
		level.SetLevel(zap.DebugLevel)
		return
	}
	level.SetLevel(zap.InfoLevel)
}
