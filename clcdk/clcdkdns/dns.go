// Package clcdkdns manages the Route53 hosted zone for the configured base domain.
//
// The shared stack creates the zone and stores its ID in SSM Parameter Store.
// Environment stacks reference the zone through that parameter, from the
// configured region or, for the CloudFront edge stacks, from us-east-1.
package clcdkdns

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsroute53"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkparams"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
)

// NameServersOutputKey is the output key holding the zone's NS records.
const NameServersOutputKey = "HostedZoneNameServers"

const (
	paramsNamespace = "dns"
	paramName       = "hosted-zone-id"
)

// DNS provides access to the hosted zone.
type DNS interface {
	HostedZone() awsroute53.IHostedZone
}

type dns struct {
	hostedZone awsroute53.IHostedZone
}

// New creates the hosted zone for the base domain name. Call it from the shared stack.
func New(scope constructs.Construct) DNS {
	scope = constructs.NewConstruct(scope, jsii.String("DNS"))
	con := &dns{}

	hostedZone := awsroute53.NewHostedZone(scope, jsii.String("HostedZone"),
		&awsroute53.HostedZoneProps{
			ZoneName: jsii.String(clcdkutil.BaseDomainName(scope)),
		})
	con.hostedZone = hostedZone

	clcdkparams.Store(scope, "HostedZoneIDParam", paramsNamespace, paramName, hostedZone.HostedZoneId())

	awscdk.NewCfnOutput(awscdk.Stack_Of(scope), jsii.String(NameServersOutputKey), &awscdk.CfnOutputProps{
		Value:       awscdk.Fn_Join(jsii.String(","), hostedZone.HostedZoneNameServers()),
		Description: jsii.String("Comma-separated list of NS records for DNS delegation"),
	})

	return con
}

// Lookup references the hosted zone created by New. Stacks outside the configured
// region read the zone ID through a cross-region custom resource.
func Lookup(scope constructs.Construct) awsroute53.IHostedZone {
	var zoneID *string
	if *awscdk.Stack_Of(scope).Region() == clcdkutil.Region(scope) {
		zoneID = clcdkparams.LookupLocalShared(scope, paramsNamespace, paramName)
	} else {
		zoneID = clcdkparams.LookupShared(scope, "LookupHostedZoneID",
			paramsNamespace, paramName, "hosted-zone-id-lookup")
	}

	return awsroute53.HostedZone_FromHostedZoneAttributes(scope, jsii.String("HostedZone"),
		&awsroute53.HostedZoneAttributes{
			HostedZoneId: zoneID,
			ZoneName:     jsii.String(clcdkutil.BaseDomainName(scope)),
		})
}

func (d *dns) HostedZone() awsroute53.IHostedZone {
	return d.hostedZone
}
