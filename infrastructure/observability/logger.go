package observability

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. Production gets JSON output, anything
// else the console encoder. The returned level can be changed while running.
func NewLogger(production bool, level string) (*zap.Logger, zap.AtomicLevel, error) {
	parsed, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	atom := zap.NewAtomicLevelAt(parsed)

	var cfg zap.Config
	if production {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = atom

	// stdout carries the stdio protocol in worker mode, so logs go to stderr
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}

	logger, err := cfg.Build(zap.Fields(zap.String("service", "flowengine")))
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}
	return logger, atom, nil
}
