//nolint:paralleltest // jsii runtime doesn't support parallel tests
package cdk_test

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
	"github.com/hijiri0404/cdk-learning-samples/infra/cdk"
)

func TestNetworkStack_NatGatewaysFollowEnvironment(t *testing.T) {
	tests := []struct {
		env  clcdkutil.Environment
		nats float64
	}{
		{clcdkutil.EnvironmentDev, 1},
		{clcdkutil.EnvironmentStg, 1},
		{clcdkutil.EnvironmentProd, 2},
	}
	for _, tt := range tests {
		t.Run(string(tt.env), func(t *testing.T) {
			defer jsii.Close()

			s := cdk.NewNetworkStack(newApp(t), tt.env, cdk.NetworkStackProps{})

			template := templateOf(s.Stack)
			template.ResourceCountIs(jsii.String("AWS::EC2::VPC"), jsii.Number(1))
			template.HasResourceProperties(jsii.String("AWS::EC2::VPC"), map[string]any{
				"CidrBlock": "10.0.0.0/16",
			})
			template.ResourceCountIs(jsii.String("AWS::EC2::NatGateway"), jsii.Number(tt.nats))
		})
	}
}

func TestNetworkStack_SubnetsEndpointsAndFlowLogs(t *testing.T) {
	defer jsii.Close()

	nats := 0.0
	s := cdk.NewNetworkStack(newApp(t), clcdkutil.EnvironmentDev, cdk.NetworkStackProps{
		Cidr:        "10.20.0.0/16",
		NatGateways: &nats,
	})

	template := templateOf(s.Stack)
	template.HasResourceProperties(jsii.String("AWS::EC2::VPC"), map[string]any{
		"CidrBlock": "10.20.0.0/16",
	})
	template.ResourceCountIs(jsii.String("AWS::EC2::NatGateway"), jsii.Number(0))
	// public, private and isolated in two AZs
	template.ResourceCountIs(jsii.String("AWS::EC2::Subnet"), jsii.Number(6))
	template.ResourceCountIs(jsii.String("AWS::EC2::VPCEndpoint"), jsii.Number(2))
	template.HasResourceProperties(jsii.String("AWS::EC2::FlowLog"), map[string]any{
		"TrafficType": "ALL",
	})
	template.HasResourceProperties(jsii.String("AWS::EC2::SecurityGroup"), map[string]any{
		"GroupName": "cls-dev-app-sg",
	})
	template.HasOutput(jsii.String("VpcId"), map[string]any{})
}

func TestDatabaseStack_ProdSettings(t *testing.T) {
	defer jsii.Close()

	app := newApp(t)
	network := cdk.NewNetworkStack(app, clcdkutil.EnvironmentProd, cdk.NetworkStackProps{})
	s := cdk.NewDatabaseStack(app, clcdkutil.EnvironmentProd, cdk.DatabaseStackProps{
		Vpc:              network.Vpc,
		AppSecurityGroup: network.AppSecurityGroup,
	})

	template := templateOf(s.Stack)
	template.ResourceCountIs(jsii.String("AWS::RDS::DBInstance"), jsii.Number(1))
	template.HasResourceProperties(jsii.String("AWS::RDS::DBInstance"), map[string]any{
		"Engine":                "postgres",
		"DBInstanceIdentifier":  "cls-prod-db",
		"DBName":                "app",
		"MultiAZ":               true,
		"DeletionProtection":    true,
		"StorageEncrypted":      true,
		"BackupRetentionPeriod": assertions.Match_AnyValue(),
	})
	template.HasResourceProperties(jsii.String("AWS::SecretsManager::Secret"), map[string]any{
		"Name": "cls-prod-db-credentials",
	})
	template.HasResourceProperties(jsii.String("AWS::EC2::SecurityGroupIngress"), map[string]any{
		"FromPort":   cdk.PostgresPort,
		"ToPort":     cdk.PostgresPort,
		"IpProtocol": "tcp",
	})
	template.HasOutput(jsii.String("DatabaseEndpoint"), map[string]any{})
}

func TestDatabaseStack_DevIsDisposable(t *testing.T) {
	defer jsii.Close()

	app := newApp(t)
	network := cdk.NewNetworkStack(app, clcdkutil.EnvironmentDev, cdk.NetworkStackProps{})
	s := cdk.NewDatabaseStack(app, clcdkutil.EnvironmentDev, cdk.DatabaseStackProps{
		Vpc:              network.Vpc,
		AppSecurityGroup: network.AppSecurityGroup,
		DatabaseName:     jsii.String("samples"),
	})

	template := templateOf(s.Stack)
	template.HasResourceProperties(jsii.String("AWS::RDS::DBInstance"), map[string]any{
		"DBName":             "samples",
		"MultiAZ":            false,
		"DeletionProtection": false,
	})
	template.HasResource(jsii.String("AWS::RDS::DBInstance"), map[string]any{
		"DeletionPolicy": "Delete",
	})
}

func TestDatabaseStack_PanicsWithoutNetwork(t *testing.T) {
	defer jsii.Close()

	defer func() {
		if recover() == nil {
			t.Error("NewDatabaseStack() should panic without a VPC")
		}
	}()
	cdk.NewDatabaseStack(newApp(t), clcdkutil.EnvironmentDev, cdk.DatabaseStackProps{})
}
