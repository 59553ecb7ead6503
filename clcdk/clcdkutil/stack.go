package clcdkutil

import (
	"fmt"
	"os"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/iancoleman/strcase"
)

// EdgeRegion is the region CloudFront-scoped resources (certificates, WAF web ACLs)
// must be created in.
const EdgeRegion = "us-east-1"

// StackName returns the CloudFormation stack name for an environment stack, for
// example "clsApn1DevNetwork".
func StackName(qualifier, regionIdent string, env Environment, label string) string {
	base := strcase.ToLowerCamel(fmt.Sprintf("%s-%s", qualifier, regionIdent))
	return base + env.Ident() + strcase.ToCamel(label)
}

// SharedStackName returns the CloudFormation stack name for the shared stack.
func SharedStackName(qualifier, regionIdent string) string {
	base := strcase.ToLowerCamel(fmt.Sprintf("%s-%s", qualifier, regionIdent))
	return base + "Shared"
}

// DomainName builds the host name of a service below the base domain. Prod omits
// the environment prefix: "items.example.com" versus "dev-items.example.com".
func DomainName(env Environment, subdomain, zoneName string) string {
	if env.IsProd() {
		return subdomain + "." + zoneName
	}
	return string(env) + "-" + subdomain + "." + zoneName
}

type stackOptions struct {
	region string
}

// StackOption configures NewStack.
type StackOption func(*stackOptions)

// InRegion places the stack in a region other than the configured one.
// Cross-region references are enabled for such stacks.
func InRegion(region string) StackOption {
	return func(o *stackOptions) { o.region = region }
}

// NewStack creates the stack for one sample in one environment. The label names the
// sample (e.g. "Network") and ends up in the stack name.
func NewStack(
	scope constructs.Construct, env Environment, label string, opts ...StackOption,
) awscdk.Stack {
	if env == "" {
		panic("environment must be set for " + label + " stack")
	}

	cfg := ConfigFromScope(scope)
	options := &stackOptions{region: cfg.Region}
	for _, opt := range opts {
		opt(options)
	}

	regionIdent := RegionIdentFor(options.region)
	baseIdent := strcase.ToLowerCamel(fmt.Sprintf("%s-%s", cfg.Qualifier, regionIdent))

	stack := newStack(scope, cfg.Qualifier, options.region,
		StackName(cfg.Qualifier, regionIdent, env, label),
		fmt.Sprintf("%s %s (region: %s, environment: %s)", baseIdent, label, options.region, env),
		options.region != cfg.Region)

	StoreEnvironment(stack, env)
	awscdk.Tags_Of(stack).Add(jsii.String("Environment"), jsii.String(string(env)), nil)

	return stack
}

// NewSharedStack creates the stack holding environment independent resources.
func NewSharedStack(scope constructs.Construct) awscdk.Stack {
	return NewGlobalStack(scope, "Shared")
}

// NewGlobalStack creates an environment independent stack in the configured region,
// named "{qualifier}{RegionIdent}{Label}". Constructs in it see no environment and
// get the dev settings.
func NewGlobalStack(scope constructs.Construct, label string) awscdk.Stack {
	cfg := ConfigFromScope(scope)
	regionIdent := cfg.RegionIdent()
	baseIdent := strcase.ToLowerCamel(fmt.Sprintf("%s-%s", cfg.Qualifier, regionIdent))

	description := fmt.Sprintf("%s (region: %s)", baseIdent, cfg.Region)
	if label != "Shared" {
		description = fmt.Sprintf("%s %s (region: %s)", baseIdent, label, cfg.Region)
	}

	return newStack(scope, cfg.Qualifier, cfg.Region,
		baseIdent+strcase.ToCamel(label), description, false)
}

func newStack(
	scope constructs.Construct, qual, region, stackName, description string, crossRegion bool,
) awscdk.Stack {
	var account *string
	if acc := os.Getenv("CDK_DEFAULT_ACCOUNT"); acc != "" {
		account = jsii.String(acc)
	}

	stack := awscdk.NewStack(scope, jsii.String(stackName), &awscdk.StackProps{
		Env: &awscdk.Environment{
			Account: account,
			Region:  jsii.String(region),
		},
		Description:           jsii.String(description),
		CrossRegionReferences: jsii.Bool(crossRegion),
		Synthesizer: awscdk.NewDefaultStackSynthesizer(&awscdk.DefaultStackSynthesizerProps{
			Qualifier: jsii.String(qual),
		}),
	})

	awscdk.Tags_Of(stack).Add(jsii.String("Project"), jsii.String(qual), nil)

	awscdk.Annotations_Of(stack).AcknowledgeWarning(
		jsii.String("@aws-cdk/aws-lambda-go-alpha:goBuildFlagsSecurityWarning"),
		jsii.String("Build flags are controlled by clcdkutil.ReproducibleGoBundling and are safe"),
	)

	return stack
}
