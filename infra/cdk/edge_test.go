//nolint:paralleltest // jsii runtime doesn't support parallel tests
package cdk_test

import (
	"testing"

	"github.com/aws/aws-cdk-go/awscdk/v2/assertions"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
	"github.com/hijiri0404/cdk-learning-samples/infra/cdk"
)

func TestWafStack_RulesAndRateLimit(t *testing.T) {
	tests := []struct {
		env   clcdkutil.Environment
		limit float64
	}{
		{clcdkutil.EnvironmentDev, 2000},
		{clcdkutil.EnvironmentProd, 1000},
	}
	for _, tt := range tests {
		t.Run(string(tt.env), func(t *testing.T) {
			defer jsii.Close()

			s := cdk.NewWafStack(newApp(t), tt.env, cdk.WafStackProps{})

			if got := *s.Region(); got != clcdkutil.EdgeRegion {
				t.Errorf("region = %q, want %q", got, clcdkutil.EdgeRegion)
			}

			template := templateOf(s.Stack)
			template.ResourceCountIs(jsii.String("AWS::WAFv2::WebACL"), jsii.Number(1))
			template.HasResourceProperties(jsii.String("AWS::WAFv2::WebACL"), map[string]any{
				"Name":          "cls-" + string(tt.env) + "-web-acl",
				"Scope":         "CLOUDFRONT",
				"DefaultAction": map[string]any{"Allow": map[string]any{}},
				"Rules": []any{
					assertions.Match_ObjectLike(&map[string]any{"Name": cdk.ManagedRuleGroups[0], "Priority": 0}),
					assertions.Match_ObjectLike(&map[string]any{"Name": cdk.ManagedRuleGroups[1], "Priority": 1}),
					assertions.Match_ObjectLike(&map[string]any{"Name": cdk.ManagedRuleGroups[2], "Priority": 2}),
					assertions.Match_ObjectLike(&map[string]any{
						"Name":     "RateLimit",
						"Priority": 3,
						"Action":   map[string]any{"Block": map[string]any{}},
						"Statement": map[string]any{
							"RateBasedStatement": map[string]any{
								"Limit":            tt.limit,
								"AggregateKeyType": "IP",
							},
						},
					}),
				},
			})
		})
	}
}

func TestWafStack_RateLimitOverride(t *testing.T) {
	defer jsii.Close()

	s := cdk.NewWafStack(newApp(t), clcdkutil.EnvironmentDev, cdk.WafStackProps{RateLimit: jsii.Number(500)})

	templateOf(s.Stack).HasResourceProperties(jsii.String("AWS::WAFv2::WebACL"), map[string]any{
		"Rules": assertions.Match_ArrayWith(&[]any{
			assertions.Match_ObjectLike(&map[string]any{
				"Statement": map[string]any{
					"RateBasedStatement": map[string]any{"Limit": 500},
				},
			}),
		}),
	})
}

func TestWebsiteStack_DistributionWithWaf(t *testing.T) {
	defer jsii.Close()

	app := newApp(t)
	waf := cdk.NewWafStack(app, clcdkutil.EnvironmentDev, cdk.WafStackProps{})
	s := cdk.NewWebsiteStack(app, &cdk.Shared{}, clcdkutil.EnvironmentDev, cdk.WebsiteStackProps{
		WebACL: waf.WebACL,
	})

	if got := *s.StackName(); got != "clsUse1DevWebsite" {
		t.Errorf("stack name = %q", got)
	}
	if s.DomainName != "" {
		t.Errorf("DomainName = %q without a base domain", s.DomainName)
	}

	template := templateOf(s.Stack)
	template.ResourceCountIs(jsii.String("AWS::CloudFront::Distribution"), jsii.Number(1))
	template.HasResourceProperties(jsii.String("AWS::CloudFront::Distribution"), map[string]any{
		"DistributionConfig": map[string]any{
			"DefaultRootObject": "index.html",
			"PriceClass":        "PriceClass_200",
			"HttpVersion":       "http2and3",
			"WebACLId":          assertions.Match_AnyValue(),
			"DefaultCacheBehavior": map[string]any{
				"ViewerProtocolPolicy": "redirect-to-https",
			},
			"CustomErrorResponses": []any{
				map[string]any{
					"ErrorCode":          403,
					"ResponseCode":       200,
					"ResponsePagePath":   "/index.html",
					"ErrorCachingMinTTL": 300,
				},
				map[string]any{
					"ErrorCode":          404,
					"ResponseCode":       200,
					"ResponsePagePath":   "/index.html",
					"ErrorCachingMinTTL": 300,
				},
			},
		},
	})
	template.ResourceCountIs(jsii.String("AWS::CloudFront::OriginAccessControl"), jsii.Number(1))
	template.HasResourceProperties(jsii.String("AWS::CloudFront::ResponseHeadersPolicy"), map[string]any{
		"ResponseHeadersPolicyConfig": map[string]any{
			"Name": "cls-dev-security-headers",
		},
	})
	template.ResourceCountIs(jsii.String("Custom::CDKBucketDeployment"), jsii.Number(1))
	template.HasOutput(jsii.String("WebsiteUrl"), map[string]any{})
	template.HasOutput(jsii.String("DistributionId"), map[string]any{})
}
