// Package clcdkloggroup provides a CloudWatch Log Group construct whose retention
// and removal policy follow the environment of the enclosing stack.
//
// Every log group exports its name as a stack output so the CLI can tail it.
package clcdkloggroup

import (
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
)

// OutputSuffix ends the key of every log group output.
const OutputSuffix = "LogGroup"

// LogGroup provides access to a CloudWatch Log Group with standardized configuration.
type LogGroup interface {
	LogGroup() awslogs.ILogGroup
}

// Props configures the LogGroup construct.
type Props struct {
	// Purpose describes what this log group is for (e.g., "Lambda function logs").
	// Required.
	Purpose *string
	// Retention overrides the environment retention. Optional.
	Retention awslogs.RetentionDays
}

type logGroup struct {
	lg awslogs.ILogGroup
}

// New creates a LogGroup construct. Retention and removal policy come from the
// environment settings; the output key is "{id}LogGroup".
func New(scope constructs.Construct, id string, props Props) LogGroup {
	scope = constructs.NewConstruct(scope, jsii.String(id))
	con := &logGroup{}
	settings := clcdkutil.SettingsOf(scope)

	con.lg = awslogs.NewLogGroup(scope, jsii.String("LogGroup"), &awslogs.LogGroupProps{
		Retention:     clcdkutil.Or(props.Retention, settings.LogRetention),
		RemovalPolicy: settings.RemovalPolicy,
	})

	clcdkutil.Output(scope, id+OutputSuffix, "CloudWatch Log Group for "+*props.Purpose, con.lg.LogGroupName())

	return con
}

func (l *logGroup) LogGroup() awslogs.ILogGroup {
	return l.lg
}
