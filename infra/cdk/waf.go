package cdk

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awswafv2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
	"github.com/iancoleman/strcase"
)

// ManagedRuleGroups are the AWS managed rule groups every web ACL evaluates, in
// priority order.
var ManagedRuleGroups = []string{
	"AWSManagedRulesCommonRuleSet",
	"AWSManagedRulesKnownBadInputsRuleSet",
	"AWSManagedRulesAmazonIpReputationList",
}

// WafStackProps configures the web ACL sample.
type WafStackProps struct {
	// RateLimit overrides the per-IP limit per five minutes of the environment.
	RateLimit *float64
}

// WafStack holds a CloudFront scoped web ACL. It lives in us-east-1.
type WafStack struct {
	awscdk.Stack

	WebACL awswafv2.CfnWebACL
}

// NewWafStack creates the web ACL with the managed rule groups and a rate based rule.
func NewWafStack(scope constructs.Construct, env clcdkutil.Environment, props WafStackProps) *WafStack {
	stack := clcdkutil.NewStack(scope, env, "Waf", clcdkutil.InRegion(clcdkutil.EdgeRegion))
	s := &WafStack{Stack: stack}
	settings := clcdkutil.SettingsOf(stack)

	name := clcdkutil.ResourceName(stack, "web-acl", clcdkutil.CasingKebab)

	rules := make([]any, 0, len(ManagedRuleGroups)+1)
	for i, group := range ManagedRuleGroups {
		rules = append(rules, &awswafv2.CfnWebACL_RuleProperty{
			Name:     jsii.String(group),
			Priority: jsii.Number(float64(i)),
			OverrideAction: &awswafv2.CfnWebACL_OverrideActionProperty{
				None: map[string]any{},
			},
			Statement: &awswafv2.CfnWebACL_StatementProperty{
				ManagedRuleGroupStatement: &awswafv2.CfnWebACL_ManagedRuleGroupStatementProperty{
					VendorName: jsii.String("AWS"),
					Name:       jsii.String(group),
				},
			},
			VisibilityConfig: visibility(strcase.ToCamel(group)),
		})
	}

	rules = append(rules, &awswafv2.CfnWebACL_RuleProperty{
		Name:     jsii.String("RateLimit"),
		Priority: jsii.Number(float64(len(ManagedRuleGroups))),
		Action: &awswafv2.CfnWebACL_RuleActionProperty{
			Block: map[string]any{},
		},
		Statement: &awswafv2.CfnWebACL_StatementProperty{
			RateBasedStatement: &awswafv2.CfnWebACL_RateBasedStatementProperty{
				Limit:            jsii.Number(clcdkutil.OrPtr(props.RateLimit, float64(settings.WafRateLimit))),
				AggregateKeyType: jsii.String("IP"),
			},
		},
		VisibilityConfig: visibility("RateLimit"),
	})

	s.WebACL = awswafv2.NewCfnWebACL(stack, jsii.String("WebAcl"), &awswafv2.CfnWebACLProps{
		Name:  jsii.String(name),
		Scope: jsii.String("CLOUDFRONT"),
		DefaultAction: &awswafv2.CfnWebACL_DefaultActionProperty{
			Allow: map[string]any{},
		},
		VisibilityConfig: visibility(strcase.ToCamel(name)),
		Rules:            &rules,
	})

	clcdkutil.Output(stack, "WebAclArn", "WAF web ACL ARN", s.WebACL.AttrArn())

	return s
}

func visibility(metric string) *awswafv2.CfnWebACL_VisibilityConfigProperty {
	return &awswafv2.CfnWebACL_VisibilityConfigProperty{
		CloudWatchMetricsEnabled: jsii.Bool(true),
		MetricName:               jsii.String(metric),
		SampledRequestsEnabled:   jsii.Bool(true),
	}
}
