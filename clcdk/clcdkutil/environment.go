package clcdkutil

import (
	"slices"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/cockroachdb/errors"
	"github.com/iancoleman/strcase"
)

// Environment identifies a deployment environment of the samples.
type Environment string

const (
	EnvironmentDev  Environment = "dev"
	EnvironmentStg  Environment = "stg"
	EnvironmentProd Environment = "prod"
)

// AllEnvironments lists the supported environments.
var AllEnvironments = []Environment{EnvironmentDev, EnvironmentStg, EnvironmentProd}

// ParseEnvironment validates an environment name.
func ParseEnvironment(s string) (Environment, error) {
	env := Environment(s)
	if !slices.Contains(AllEnvironments, env) {
		return "", errors.Newf("unknown environment %q (supported: dev, stg, prod)", s)
	}
	return env, nil
}

// Ident returns the CamelCase identifier used in stack names (e.g. "Dev").
func (e Environment) Ident() string {
	return strcase.ToCamel(string(e))
}

// IsProd reports whether this is the production environment.
func (e Environment) IsProd() bool {
	return e == EnvironmentProd
}

// Settings captures every setting that differs between environments.
type Settings struct {
	RemovalPolicy        awscdk.RemovalPolicy
	AutoDeleteObjects    bool
	LogRetention         awslogs.RetentionDays
	NatGateways          int
	PointInTimeRecovery  bool
	MultiAz              bool
	DeletionProtection   bool
	BackupRetentionDays  int
	DatabaseInstanceSize awsec2.InstanceSize
	LambdaMemorySize     int
	// WafRateLimit is the number of requests a single IP may send per five minutes.
	WafRateLimit    int
	RequireApproval bool
	RequireAPIKey   bool
	// AlarmThreshold is the number of Lambda errors within five minutes that raises an alarm.
	AlarmThreshold int
}

var settings = map[Environment]Settings{
	EnvironmentDev: {
		RemovalPolicy:        awscdk.RemovalPolicy_DESTROY,
		AutoDeleteObjects:    true,
		LogRetention:         awslogs.RetentionDays_ONE_WEEK,
		NatGateways:          1,
		BackupRetentionDays:  1,
		DatabaseInstanceSize: awsec2.InstanceSize_MICRO,
		LambdaMemorySize:     128,
		WafRateLimit:         2000,
		AlarmThreshold:       10,
	},
	EnvironmentStg: {
		RemovalPolicy:        awscdk.RemovalPolicy_DESTROY,
		AutoDeleteObjects:    true,
		LogRetention:         awslogs.RetentionDays_ONE_MONTH,
		NatGateways:          1,
		PointInTimeRecovery:  true,
		BackupRetentionDays:  7,
		DatabaseInstanceSize: awsec2.InstanceSize_SMALL,
		LambdaMemorySize:     256,
		WafRateLimit:         2000,
		AlarmThreshold:       5,
	},
	EnvironmentProd: {
		RemovalPolicy:        awscdk.RemovalPolicy_RETAIN,
		LogRetention:         awslogs.RetentionDays_THREE_MONTHS,
		NatGateways:          2,
		PointInTimeRecovery:  true,
		MultiAz:              true,
		DeletionProtection:   true,
		BackupRetentionDays:  30,
		DatabaseInstanceSize: awsec2.InstanceSize_MEDIUM,
		LambdaMemorySize:     512,
		WafRateLimit:         1000,
		RequireApproval:      true,
		RequireAPIKey:        true,
		AlarmThreshold:       1,
	},
}

// Settings returns the settings for the environment. Unknown environments get
// the dev settings.
func (e Environment) Settings() Settings {
	s, ok := settings[e]
	if !ok {
		return settings[EnvironmentDev]
	}
	return s
}

const environmentContextKey = "__clcdkutil_environment"

// StoreEnvironment records the environment of a stack so constructs below it can
// read it with EnvironmentOf.
func StoreEnvironment(stack awscdk.Stack, env Environment) {
	stack.Node().SetContext(jsii.String(environmentContextKey), string(env))
}

// EnvironmentOf returns the environment of the stack that contains scope.
// Shared stacks have no environment and return the empty string.
func EnvironmentOf(scope constructs.Construct) Environment {
	val := awscdk.Stack_Of(scope).Node().TryGetContext(jsii.String(environmentContextKey))
	if val == nil {
		return ""
	}
	s, ok := val.(string)
	if !ok {
		return ""
	}
	return Environment(s)
}

// SettingsOf returns the environment settings of the stack that contains scope.
func SettingsOf(scope constructs.Construct) Settings {
	return EnvironmentOf(scope).Settings()
}
