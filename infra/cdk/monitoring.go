package cdk

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigateway"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudwatch"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudwatchactions"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssns"
	"github.com/aws/aws-cdk-go/awscdk/v2/awssnssubscriptions"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
)

// MonitoredFunction is a Lambda function to alarm on.
type MonitoredFunction struct {
	Name     string
	Function awslambda.IFunction
}

// MonitoredApi is a REST API to alarm on.
type MonitoredApi struct {
	Name string
	Api  awsapigateway.RestApi
}

// MonitoringStackProps lists what to watch.
type MonitoringStackProps struct {
	Functions []MonitoredFunction
	Apis      []MonitoredApi
	// Period of every metric. Defaults to five minutes.
	Period awscdk.Duration
}

// MonitoringStack holds the alarms, their topic and a dashboard.
type MonitoringStack struct {
	awscdk.Stack

	AlarmTopic awssns.Topic
	Dashboard  awscloudwatch.Dashboard
	Alarms     []awscloudwatch.Alarm
}

// NewMonitoringStack creates error and throttle alarms per function, a 5XX alarm per
// API and one dashboard over all of them. Alarms trigger at the environment's alarm
// threshold and notify the alert email if one is configured.
func NewMonitoringStack(
	scope constructs.Construct, env clcdkutil.Environment, props MonitoringStackProps,
) *MonitoringStack {
	stack := clcdkutil.NewStack(scope, env, "Monitoring")
	s := &MonitoringStack{Stack: stack}

	cfg := clcdkutil.ConfigFromScope(stack)
	threshold := float64(clcdkutil.SettingsOf(stack).AlarmThreshold)
	period := props.Period
	if period == nil {
		period = awscdk.Duration_Minutes(jsii.Number(5))
	}

	s.AlarmTopic = awssns.NewTopic(stack, jsii.String("AlarmTopic"), &awssns.TopicProps{
		TopicName:   jsii.String(clcdkutil.ResourceName(stack, "alarms", clcdkutil.CasingKebab)),
		DisplayName: jsii.String("Alarms " + string(env)),
	})
	if cfg.AlertEmail != "" {
		s.AlarmTopic.AddSubscription(awssnssubscriptions.NewEmailSubscription(jsii.String(cfg.AlertEmail), nil))
	}
	action := awscloudwatchactions.NewSnsAction(s.AlarmTopic)

	s.Dashboard = awscloudwatch.NewDashboard(stack, jsii.String("Dashboard"), &awscloudwatch.DashboardProps{
		DashboardName: jsii.String(clcdkutil.ResourceName(stack, "overview", clcdkutil.CasingKebab)),
	})

	alarm := func(id string, metric awscloudwatch.IMetric, description string) {
		a := awscloudwatch.NewAlarm(stack, jsii.String(id), &awscloudwatch.AlarmProps{
			AlarmName:          jsii.String(clcdkutil.ResourceName(stack, id, clcdkutil.CasingKebab)),
			AlarmDescription:   jsii.String(description),
			Metric:             metric,
			Threshold:          jsii.Number(threshold),
			EvaluationPeriods:  jsii.Number(1),
			ComparisonOperator: awscloudwatch.ComparisonOperator_GREATER_THAN_OR_EQUAL_TO_THRESHOLD,
			TreatMissingData:   awscloudwatch.TreatMissingData_NOT_BREACHING,
		})
		a.AddAlarmAction(action)
		s.Alarms = append(s.Alarms, a)
	}

	sum := &awscloudwatch.MetricOptions{Period: period, Statistic: jsii.String("Sum")}

	for _, fn := range props.Functions {
		errs := fn.Function.MetricErrors(sum)
		throttles := fn.Function.MetricThrottles(sum)
		alarm(fn.Name+"Errors", errs, fn.Name+" function errors")
		alarm(fn.Name+"Throttles", throttles, fn.Name+" function throttles")

		s.Dashboard.AddWidgets(
			awscloudwatch.NewGraphWidget(&awscloudwatch.GraphWidgetProps{
				Title: jsii.String(fn.Name + " invocations and errors"),
				Left:  &[]awscloudwatch.IMetric{fn.Function.MetricInvocations(sum), errs},
				Width: jsii.Number(12),
			}),
			awscloudwatch.NewGraphWidget(&awscloudwatch.GraphWidgetProps{
				Title: jsii.String(fn.Name + " duration"),
				Left: &[]awscloudwatch.IMetric{fn.Function.MetricDuration(&awscloudwatch.MetricOptions{
					Period: period, Statistic: jsii.String("p99"),
				})},
				Width: jsii.Number(12),
			}),
		)
	}

	for _, api := range props.Apis {
		serverErrors := api.Api.MetricServerError(sum)
		alarm(api.Name+"ServerErrors", serverErrors, api.Name+" API 5XX responses")

		s.Dashboard.AddWidgets(
			awscloudwatch.NewGraphWidget(&awscloudwatch.GraphWidgetProps{
				Title: jsii.String(api.Name + " requests"),
				Left: &[]awscloudwatch.IMetric{
					api.Api.MetricCount(sum),
					api.Api.MetricClientError(sum),
					serverErrors,
				},
				Width: jsii.Number(12),
			}),
			awscloudwatch.NewGraphWidget(&awscloudwatch.GraphWidgetProps{
				Title: jsii.String(api.Name + " latency"),
				Left: &[]awscloudwatch.IMetric{api.Api.MetricLatency(&awscloudwatch.MetricOptions{
					Period: period, Statistic: jsii.String("p99"),
				})},
				Width: jsii.Number(12),
			}),
		)
	}

	clcdkutil.Output(stack, "AlarmTopicArn", "SNS topic receiving alarm notifications", s.AlarmTopic.TopicArn())
	clcdkutil.Output(stack, "DashboardName", "CloudWatch dashboard", s.Dashboard.DashboardName())

	return s
}
