package cdk

import (
	"fmt"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfront"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscloudfrontorigins"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsroute53"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsroute53targets"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3"
	"github.com/aws/aws-cdk-go/awscdk/v2/awss3deployment"
	"github.com/aws/aws-cdk-go/awscdk/v2/awswafv2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkbucket"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkcerts"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkdns"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
)

// WebsiteStackProps configures the static website sample.
type WebsiteStackProps struct {
	// WebACL from the WAF stack. Optional.
	WebACL awswafv2.CfnWebACL
	// Subdomain of the custom domain. Defaults to "www".
	Subdomain *string
	// IndexHTML and ErrorHTML replace the generated pages.
	IndexHTML *string
	ErrorHTML *string
	// PriceClass defaults to PRICE_CLASS_200.
	PriceClass awscloudfront.PriceClass
}

// WebsiteStack serves a private bucket through CloudFront. It lives in us-east-1
// next to the WAF stack and the CloudFront certificate.
type WebsiteStack struct {
	awscdk.Stack

	Bucket       awss3.Bucket
	Distribution awscloudfront.Distribution
	// DomainName is "" without a base domain.
	DomainName string
}

// NewWebsiteStack creates the bucket, the distribution with origin access control
// and deploys index.html and error.html.
func NewWebsiteStack(
	scope constructs.Construct, shared *Shared, env clcdkutil.Environment, props WebsiteStackProps,
) *WebsiteStack {
	stack := clcdkutil.NewStack(scope, env, "Website", clcdkutil.InRegion(clcdkutil.EdgeRegion))
	s := &WebsiteStack{Stack: stack}

	s.Bucket = clcdkbucket.New(stack, "Site", clcdkbucket.Props{
		Description: jsii.String("Website content bucket"),
	})

	headers := awscloudfront.NewResponseHeadersPolicy(stack, jsii.String("SecurityHeaders"),
		&awscloudfront.ResponseHeadersPolicyProps{
			ResponseHeadersPolicyName: jsii.String(clcdkutil.ResourceName(stack, "security-headers", clcdkutil.CasingKebab)),
			SecurityHeadersBehavior: &awscloudfront.ResponseSecurityHeadersBehavior{
				ContentTypeOptions: &awscloudfront.ResponseHeadersContentTypeOptions{Override: jsii.Bool(true)},
				FrameOptions: &awscloudfront.ResponseHeadersFrameOptions{
					FrameOption: awscloudfront.HeadersFrameOption_DENY,
					Override:    jsii.Bool(true),
				},
				ReferrerPolicy: &awscloudfront.ResponseHeadersReferrerPolicy{
					ReferrerPolicy: awscloudfront.HeadersReferrerPolicy_STRICT_ORIGIN_WHEN_CROSS_ORIGIN,
					Override:       jsii.Bool(true),
				},
				StrictTransportSecurity: &awscloudfront.ResponseHeadersStrictTransportSecurity{
					AccessControlMaxAge: awscdk.Duration_Days(jsii.Number(365)),
					IncludeSubdomains:   jsii.Bool(true),
					Override:            jsii.Bool(true),
				},
				XssProtection: &awscloudfront.ResponseHeadersXSSProtection{
					Protection: jsii.Bool(true),
					ModeBlock:  jsii.Bool(true),
					Override:   jsii.Bool(true),
				},
			},
		})

	spaFallback := func(status float64) *awscloudfront.ErrorResponse {
		return &awscloudfront.ErrorResponse{
			HttpStatus:         jsii.Number(status),
			ResponseHttpStatus: jsii.Number(200),
			ResponsePagePath:   jsii.String("/index.html"),
			Ttl:                awscdk.Duration_Minutes(jsii.Number(5)),
		}
	}

	distProps := &awscloudfront.DistributionProps{
		Comment: jsii.String(clcdkutil.ResourceName(stack, "website", clcdkutil.CasingKebab)),
		DefaultBehavior: &awscloudfront.BehaviorOptions{
			Origin:                awscloudfrontorigins.S3BucketOrigin_WithOriginAccessControl(s.Bucket, nil),
			ViewerProtocolPolicy:  awscloudfront.ViewerProtocolPolicy_REDIRECT_TO_HTTPS,
			CachePolicy:           awscloudfront.CachePolicy_CACHING_OPTIMIZED(),
			ResponseHeadersPolicy: headers,
			Compress:              jsii.Bool(true),
		},
		DefaultRootObject:      jsii.String("index.html"),
		ErrorResponses:         &[]*awscloudfront.ErrorResponse{spaFallback(403), spaFallback(404)},
		PriceClass:             clcdkutil.Or(props.PriceClass, awscloudfront.PriceClass_PRICE_CLASS_200),
		MinimumProtocolVersion: awscloudfront.SecurityPolicyProtocol_TLS_V1_2_2021,
		HttpVersion:            awscloudfront.HttpVersion_HTTP2_AND_3,
	}
	if props.WebACL != nil {
		distProps.WebAclId = props.WebACL.AttrArn()
	}

	var zone awsroute53.IHostedZone
	if shared.HasDomain() {
		zone = clcdkdns.Lookup(stack)
		s.DomainName = clcdkutil.DomainName(env, clcdkutil.OrPtr(props.Subdomain, "www"), *zone.ZoneName())
		distProps.DomainNames = jsii.Strings(s.DomainName)
		distProps.Certificate = clcdkcerts.New(stack, clcdkcerts.Props{HostedZone: zone}).WildcardCertificate()
	}

	s.Distribution = awscloudfront.NewDistribution(stack, jsii.String("Distribution"), distProps)

	if zone != nil {
		awsroute53.NewARecord(stack, jsii.String("AliasRecord"), &awsroute53.ARecordProps{
			Zone:       zone,
			RecordName: jsii.String(s.DomainName),
			Target:     awsroute53.RecordTarget_FromAlias(awsroute53targets.NewCloudFrontTarget(s.Distribution)),
		})
	}

	index := clcdkutil.OrPtr(props.IndexHTML, defaultPage("Welcome", fmt.Sprintf("Served from the %s environment.", env)))
	errorPage := clcdkutil.OrPtr(props.ErrorHTML, defaultPage("Something went wrong", "The page could not be loaded."))

	awss3deployment.NewBucketDeployment(stack, jsii.String("DeployContent"), &awss3deployment.BucketDeploymentProps{
		Sources: &[]awss3deployment.ISource{
			awss3deployment.Source_Data(jsii.String("index.html"), jsii.String(index), nil),
			awss3deployment.Source_Data(jsii.String("error.html"), jsii.String(errorPage), nil),
		},
		DestinationBucket: s.Bucket,
		Distribution:      s.Distribution,
		DistributionPaths: jsii.Strings("/*"),
	})

	url := s.Distribution.DistributionDomainName()
	if s.DomainName != "" {
		url = jsii.String(s.DomainName)
	}
	clcdkutil.Output(stack, "WebsiteUrl", "Website URL", jsii.Sprintf("https://%s", *url))
	clcdkutil.Output(stack, "DistributionId", "CloudFront distribution ID", s.Distribution.DistributionId())

	return s
}

func defaultPage(title, body string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>%[1]s</title></head>
<body><h1>%[1]s</h1><p>%[2]s</p></body>
</html>
`, title, body)
}
