package cdk

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsec2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkloggroup"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
)

// NetworkStackProps configures the VPC sample. Zero values use the defaults.
type NetworkStackProps struct {
	// Cidr defaults to 10.0.0.0/16.
	Cidr string
	// MaxAzs defaults to 2.
	MaxAzs float64
	// NatGateways overrides the environment setting when set.
	NatGateways *float64
}

// NetworkStack provides the VPC shared by the database sample.
type NetworkStack struct {
	awscdk.Stack

	Vpc awsec2.Vpc
	// AppSecurityGroup is attached to workloads that may reach the database.
	AppSecurityGroup awsec2.SecurityGroup
}

// NewNetworkStack creates a VPC with public, private and isolated /24 subnets per
// AZ, gateway endpoints for S3 and DynamoDB and flow logs to CloudWatch.
func NewNetworkStack(scope constructs.Construct, env clcdkutil.Environment, props NetworkStackProps) *NetworkStack {
	stack := clcdkutil.NewStack(scope, env, "Network")
	s := &NetworkStack{Stack: stack}
	settings := clcdkutil.SettingsOf(stack)

	flowLogs := clcdkloggroup.New(stack, "VpcFlow", clcdkloggroup.Props{
		Purpose: jsii.String("VPC flow logs"),
	})

	s.Vpc = awsec2.NewVpc(stack, jsii.String("Vpc"), &awsec2.VpcProps{
		VpcName:     jsii.String(clcdkutil.ResourceName(stack, "vpc", clcdkutil.CasingKebab)),
		IpAddresses: awsec2.IpAddresses_Cidr(jsii.String(clcdkutil.Or(props.Cidr, "10.0.0.0/16"))),
		MaxAzs:      jsii.Number(clcdkutil.Or(props.MaxAzs, 2)),
		NatGateways: jsii.Number(clcdkutil.OrPtr(props.NatGateways, float64(settings.NatGateways))),
		SubnetConfiguration: &[]*awsec2.SubnetConfiguration{
			{Name: jsii.String("Public"), SubnetType: awsec2.SubnetType_PUBLIC, CidrMask: jsii.Number(24)},
			{Name: jsii.String("Private"), SubnetType: awsec2.SubnetType_PRIVATE_WITH_EGRESS, CidrMask: jsii.Number(24)},
			{Name: jsii.String("Isolated"), SubnetType: awsec2.SubnetType_PRIVATE_ISOLATED, CidrMask: jsii.Number(24)},
		},
		GatewayEndpoints: &map[string]*awsec2.GatewayVpcEndpointOptions{
			"S3":       {Service: awsec2.GatewayVpcEndpointAwsService_S3()},
			"DynamoDB": {Service: awsec2.GatewayVpcEndpointAwsService_DYNAMODB()},
		},
		FlowLogs: &map[string]*awsec2.FlowLogOptions{
			"CloudWatch": {
				Destination: awsec2.FlowLogDestination_ToCloudWatchLogs(flowLogs.LogGroup(), nil),
				TrafficType: awsec2.FlowLogTrafficType_ALL,
			},
		},
	})

	s.AppSecurityGroup = awsec2.NewSecurityGroup(stack, jsii.String("AppSecurityGroup"), &awsec2.SecurityGroupProps{
		Vpc:               s.Vpc,
		SecurityGroupName: jsii.String(clcdkutil.ResourceName(stack, "app-sg", clcdkutil.CasingKebab)),
		Description:       jsii.String("Application workloads"),
		AllowAllOutbound:  jsii.Bool(true),
	})

	clcdkutil.Output(stack, "VpcId", "VPC ID", s.Vpc.VpcId())
	clcdkutil.Output(stack, "AppSecurityGroupId", "Application security group ID", s.AppSecurityGroup.SecurityGroupId())

	return s
}
