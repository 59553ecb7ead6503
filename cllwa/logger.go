package cllwa

import (
	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// NewLogger creates a JSON production logger at the configured level, tagged with
// the service name and deployment environment.
func NewLogger(env Environment) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(env.logLevel())
	cfg.Sampling = nil

	logger, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger")
	}
	return logger.With(
		zap.String("service", env.serviceName()),
		zap.String("environment", env.deployment()),
	), nil
}
