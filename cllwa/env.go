package cllwa

import (
	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
)

// Environment defines the interface that all environment configurations must implement.
// Embed BaseEnvironment in your struct to satisfy this interface.
type Environment interface {
	port() int
	serviceName() string
	readinessCheckPath() string
	logLevel() zapcore.Level
	otelExporter() string
	deployment() string
}

// BaseEnvironment contains the variables every function gets from clcdklwalambda.
// Embed this in your custom environment struct.
type BaseEnvironment struct {
	Port               int           `env:"AWS_LWA_PORT,required"`
	ReadinessCheckPath string        `env:"AWS_LWA_READINESS_CHECK_PATH,required"`
	ServiceName        string        `env:"CLS_SERVICE_NAME,required"`
	LogLevel           zapcore.Level `env:"CLS_LOG_LEVEL" envDefault:"info"`
	OtelExporter       string        `env:"CLS_OTEL_EXPORTER" envDefault:"stdout"`
	Deployment         string        `env:"CLS_ENVIRONMENT" envDefault:"dev"`
}

func (e BaseEnvironment) port() int {
	return e.Port
}
func (e BaseEnvironment) serviceName() string {
	return e.ServiceName
}
func (e BaseEnvironment) readinessCheckPath() string {
	return e.ReadinessCheckPath
}
func (e BaseEnvironment) logLevel() zapcore.Level {
	return e.LogLevel
}
func (e BaseEnvironment) otelExporter() string {
	return e.OtelExporter
}
func (e BaseEnvironment) deployment() string {
	return e.Deployment
}

var _ Environment = BaseEnvironment{}

// ParseEnv parses environment variables into the given Environment type.
func ParseEnv[E Environment]() func() (E, error) {
	return func() (e E, err error) {
		if err := env.Parse(&e); err != nil {
			return e, errors.Wrap(err, "failed to parse environment")
		}
		return e, nil
	}
}

// DeploymentOf returns the CLS_ENVIRONMENT value (dev, stg or prod) of e.
func DeploymentOf(e Environment) string {
	return e.deployment()
}
