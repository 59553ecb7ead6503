package clcdkutil

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
)

// SharedConstructor creates environment independent infrastructure in the shared stack.
// It returns the shared construct that will be passed to environment constructors.
type SharedConstructor[S any] func(stack awscdk.Stack) S

// EnvironmentConstructor creates the stacks of one environment below scope using
// NewStack. It receives the shared construct created by the SharedConstructor.
type EnvironmentConstructor[S any] func(scope constructs.Construct, shared S, env Environment)

// AppConfig configures the CDK app setup.
type AppConfig struct {
	// Prefix for context keys (e.g., "cls-" for "cls-qualifier", "cls-region", etc.)
	Prefix string
}

// SetupApp validates the CDK context, stores the config in the construct tree,
// creates the shared stack and then calls newEnvironment once per configured
// environment. It panics with a descriptive message if the context is invalid.
func SetupApp[S any](
	app awscdk.App,
	acfg AppConfig,
	newShared SharedConstructor[S],
	newEnvironment EnvironmentConstructor[S],
) *Config {
	cfg, err := NewConfig(app, acfg)
	if err != nil {
		panic(err)
	}
	StoreConfig(app, cfg)

	shared := newShared(NewSharedStack(app))
	for _, env := range cfg.ParsedEnvironments() {
		newEnvironment(app, shared, env)
	}

	return cfg
}
