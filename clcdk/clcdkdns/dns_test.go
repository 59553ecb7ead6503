//nolint:paralleltest // jsii runtime doesn't support parallel tests
package clcdkdns_test

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkdns"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdktest"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
)

func TestNew_StoresZoneID(t *testing.T) {
	defer jsii.Close()

	cfg := clcdktest.Config(t)
	cfg.BaseDomainName = "example.com"
	app := clcdktest.NewApp(cfg)
	stack := clcdkutil.NewSharedStack(app)

	d := clcdkdns.New(stack)
	if d.HostedZone() == nil {
		t.Fatal("HostedZone() should not be nil")
	}

	template := assertions.Template_FromStack(stack, nil)
	template.HasResourceProperties(jsii.String("AWS::Route53::HostedZone"), map[string]any{
		"Name": "example.com.",
	})
	template.HasResourceProperties(jsii.String("AWS::SSM::Parameter"), map[string]any{
		"Name": "/cls/dns/hosted-zone-id",
	})
	template.HasOutput(jsii.String(clcdkdns.NameServersOutputKey), map[string]any{})
}

func TestLookup_SameRegionUsesParameter(t *testing.T) {
	defer jsii.Close()

	cfg := clcdktest.Config(t)
	cfg.BaseDomainName = "example.com"
	app := clcdktest.NewApp(cfg)
	stack := clcdktest.NewStack(app, clcdkutil.EnvironmentDev)

	zone := clcdkdns.Lookup(stack)
	if *zone.ZoneName() != "example.com" {
		t.Errorf("ZoneName() = %q, want %q", *zone.ZoneName(), "example.com")
	}

	template := assertions.Template_FromStack(stack, nil)
	template.ResourceCountIs(jsii.String("Custom::AWS"), jsii.Number(0))
}

func TestLookup_EdgeRegionUsesCustomResource(t *testing.T) {
	defer jsii.Close()

	cfg := clcdktest.Config(t)
	cfg.BaseDomainName = "example.com"
	app := clcdktest.NewApp(cfg)
	stack := awscdk.NewStack(app, jsii.String("EdgeStack"), &awscdk.StackProps{
		Env: &awscdk.Environment{
			Account: jsii.String("123456789012"),
			Region:  jsii.String(clcdkutil.EdgeRegion),
		},
	})
	clcdkutil.StoreEnvironment(stack, clcdkutil.EnvironmentDev)

	clcdkdns.Lookup(stack)

	template := assertions.Template_FromStack(stack, nil)
	template.ResourceCountIs(jsii.String("Custom::AWS"), jsii.Number(1))
}
