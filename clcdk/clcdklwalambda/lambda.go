// Package clcdklwalambda provides a Lambda construct for Go functions that run an
// HTTP server behind the AWS Lambda Web Adapter (LWA).
//
// Functions are built from a command directory of this repository with
// reproducible builds, run on arm64 and get the LWA layer, X-Ray tracing and a
// log group that follows the environment settings.
package clcdklwalambda

import (
	"fmt"
	"maps"
	"path/filepath"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/aws-cdk-go/awscdklambdagoalpha/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/cockroachdb/errors"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkloggroup"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
	"github.com/iancoleman/strcase"
)

// LWALayerVersion is the current version of the Lambda Web Adapter layer.
const LWALayerVersion = 25

// Port is the port the function's HTTP server listens on.
const Port = "8080"

// Lambda provides access to a Go Lambda function with AWS Lambda Web Adapter.
type Lambda interface {
	Function() awscdklambdagoalpha.GoFunction
	LogGroup() awslogs.ILogGroup
	// Name returns the construct name derived from the entry path.
	Name() string
}

// Props configures the Lambda construct.
type Props struct {
	// Entry is the Go command directory relative to the repository root.
	// Must match pattern "<component>/cmd/<command>" (e.g., "backend/cmd/itemsapi").
	// Required.
	Entry *string
	// Environment variables to pass to the function.
	Environment *map[string]*string
	// PassThroughPath sets AWS_LWA_PASS_THROUGH_PATH for non-HTTP event triggers
	// such as S3 notifications. LWA POSTs the raw event JSON to this path.
	// Must match "/l/<handler>" with a kebab-case handler. Optional.
	PassThroughPath *string
	// MemorySize in MB. Defaults to the environment setting.
	MemorySize *float64
	// Timeout defaults to 30 seconds.
	Timeout awscdk.Duration
	// Description shows up in the Lambda console. Optional.
	Description *string
}

func parsePassThroughPath(path string) (suffix string, err error) {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	if len(parts) != 2 || parts[0] != "l" || parts[1] == "" {
		return "", errors.Newf("PassThroughPath must match pattern /l/<handler>, got %q", path)
	}
	handler := parts[1]
	if handler != strcase.ToKebab(handler) {
		return "", errors.Newf("PassThroughPath handler must be kebab-case, got %q", handler)
	}
	return strcase.ToCamel(handler), nil
}

// ParseEntry extracts component and command from an entry path of the form
// "<component>/cmd/<command>".
func ParseEntry(entry string) (component, command string, err error) {
	parts := strings.Split(filepath.ToSlash(entry), "/")

	for i := len(parts) - 2; i >= 1; i-- {
		if parts[i] == "cmd" {
			component = parts[i-1]
			command = parts[i+1]
			if component == "" || command == "" {
				break
			}
			return component, command, nil
		}
	}

	return "", "", errors.Newf("entry must match pattern <component>/cmd/<command>, got %q", entry)
}

type lambda struct {
	function awscdklambdagoalpha.GoFunction
	logGroup awslogs.ILogGroup
	name     string
}

// New creates a Lambda construct with AWS Lambda Web Adapter. The construct is
// named after the entry ("backend/cmd/itemsapi" becomes "BackendItemsapi") with the
// pass-through handler appended when set.
func New(scope constructs.Construct, props Props) Lambda {
	component, command, err := ParseEntry(*props.Entry)
	if err != nil {
		panic(err)
	}
	scopeName := strcase.ToCamel(component) + strcase.ToCamel(command)
	if props.PassThroughPath != nil {
		suffix, err := parsePassThroughPath(*props.PassThroughPath)
		if err != nil {
			panic(err)
		}
		scopeName += suffix
	}
	scope = constructs.NewConstruct(scope, jsii.String(scopeName))
	con := &lambda{name: scopeName}

	region := *awscdk.Stack_Of(scope).Region()
	settings := clcdkutil.SettingsOf(scope)
	functionName := clcdkutil.ResourceName(scope, scopeName, clcdkutil.CasingKebab)

	env := make(map[string]*string)
	if props.Environment != nil {
		maps.Copy(env, *props.Environment)
	}
	env["AWS_LWA_PORT"] = jsii.String(Port)
	env["AWS_LWA_READINESS_CHECK_PATH"] = jsii.String("/health")
	env["CLS_SERVICE_NAME"] = jsii.String(functionName)
	env["CLS_OTEL_EXPORTER"] = jsii.String("xrayudp")
	env["CLS_ENVIRONMENT"] = jsii.String(string(clcdkutil.EnvironmentOf(scope)))
	if props.PassThroughPath != nil {
		env["AWS_LWA_PASS_THROUGH_PATH"] = props.PassThroughPath
	}

	con.logGroup = clcdkloggroup.New(scope, scopeName+"Logs", clcdkloggroup.Props{
		Purpose: jsii.String("Lambda function " + scopeName),
	}).LogGroup()

	lwaLayerArn := fmt.Sprintf(
		"arn:aws:lambda:%s:753240598075:layer:LambdaAdapterLayerArm64:%d",
		region, LWALayerVersion,
	)

	timeout := props.Timeout
	if timeout == nil {
		timeout = awscdk.Duration_Seconds(jsii.Number(30))
	}

	con.function = awscdklambdagoalpha.NewGoFunction(scope, jsii.String("Function"),
		&awscdklambdagoalpha.GoFunctionProps{
			FunctionName: jsii.String(functionName),
			Description:  props.Description,
			Entry:        jsii.String(clcdkutil.EntryPath(scope, *props.Entry)),
			Architecture: awslambda.Architecture_ARM_64(),
			Runtime:      awslambda.Runtime_PROVIDED_AL2023(),
			MemorySize:   jsii.Number(clcdkutil.OrPtr(props.MemorySize, float64(settings.LambdaMemorySize))),
			Timeout:      timeout,
			Environment:  &env,
			Bundling:     clcdkutil.ReproducibleGoBundling(),
			Tracing:      awslambda.Tracing_ACTIVE,
			Layers: &[]awslambda.ILayerVersion{
				awslambda.LayerVersion_FromLayerVersionArn(scope,
					jsii.String("LWALayer"), jsii.String(lwaLayerArn)),
			},
			LogGroup:      con.logGroup,
			LoggingFormat: awslambda.LoggingFormat_JSON,
		})

	return con
}

func (l *lambda) Function() awscdklambdagoalpha.GoFunction {
	return l.function
}

func (l *lambda) LogGroup() awslogs.ILogGroup {
	return l.logGroup
}

func (l *lambda) Name() string {
	return l.name
}
