// Package clcdkrestgateway provides a REST API construct that fronts a Go Lambda
// function running behind AWS Lambda Web Adapter.
//
// Only the routes listed in Props are exposed. Paths the function serves for
// pass-through events (/l/*) stay reachable by direct invocation only.
package clcdkrestgateway

import (
	"slices"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2/awsapigateway"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscertificatemanager"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscognito"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslogs"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsroute53"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsroute53targets"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkloggroup"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdklwalambda"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkparams"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
	"github.com/iancoleman/strcase"
)

// AllowedHeaders are the request headers browsers may send cross-origin.
var AllowedHeaders = []string{"Content-Type", "X-Api-Key", "Authorization"}

// RestGateway provides access to a REST API backed by a Go Lambda function.
type RestGateway interface {
	// Lambda returns the underlying LWA Lambda construct.
	Lambda() clcdklwalambda.Lambda
	RestApi() awsapigateway.RestApi
	AccessLogGroup() awslogs.ILogGroup
	// URL returns the endpoint of the deployed stage or the custom domain.
	URL() *string
	// DomainName returns the custom domain, or "" when none is configured.
	DomainName() string
}

// Route is one method and path exposed through the API.
type Route struct {
	// Method is an HTTP method such as "GET", or "ANY".
	Method string
	// Path like "/items/{id}". Use {proxy+} for greedy matching.
	Path string
}

// Props configures the RestGateway construct.
type Props struct {
	// Name identifies the API (e.g. "items"). Used for construct IDs, the API name,
	// the output keys and the SSM parameter holding the URL. Required.
	Name *string
	// Entry is the Go command directory passed to the LWA Lambda. Required.
	Entry *string
	// Routes to expose. Required.
	Routes []Route
	// Environment variables to pass to the Lambda function.
	Environment *map[string]*string
	// Description of the Lambda function.
	Description *string

	// UserPool enables a Cognito authorizer on AuthorizedMethods. Optional.
	UserPool awscognito.IUserPool
	// AuthorizedMethods defaults to POST, PUT, PATCH and DELETE.
	AuthorizedMethods []string

	// RequireAPIKey overrides the environment setting when set.
	RequireAPIKey *bool

	// Domain configures a custom domain "{env}-{subdomain}.{zone}" (prod drops the
	// environment prefix). Optional.
	Domain *DomainProps
}

// DomainProps configures a regional custom domain.
type DomainProps struct {
	HostedZone  awsroute53.IHostedZone
	Certificate awscertificatemanager.ICertificate
	Subdomain   *string
}

// DefaultAuthorizedMethods are the methods protected when a UserPool is given.
var DefaultAuthorizedMethods = []string{"POST", "PUT", "PATCH", "DELETE"}

type restGateway struct {
	lambda         clcdklwalambda.Lambda
	restApi        awsapigateway.RestApi
	accessLogGroup awslogs.ILogGroup
	url            *string
	domainName     string
}

// New creates a RestGateway with a Lambda proxy integration per route.
func New(scope constructs.Construct, props Props) RestGateway {
	if props.Name == nil || len(props.Routes) == 0 {
		panic("clcdkrestgateway: Name and Routes are required")
	}
	name := *props.Name
	scope = constructs.NewConstruct(scope, jsii.String(strcase.ToCamel(name)+"RGw"))
	con := &restGateway{}

	env := clcdkutil.EnvironmentOf(scope)
	settings := clcdkutil.SettingsOf(scope)

	con.lambda = clcdklwalambda.New(scope, clcdklwalambda.Props{
		Entry:       props.Entry,
		Environment: props.Environment,
		Description: props.Description,
	})

	con.accessLogGroup = clcdkloggroup.New(scope, strcase.ToCamel(name)+"Access", clcdkloggroup.Props{
		Purpose: jsii.Sprintf("API Gateway access logs for %s", name),
	}).LogGroup()

	restApiProps := &awsapigateway.RestApiProps{
		RestApiName: jsii.String(clcdkutil.ResourceName(scope, name+"-api", clcdkutil.CasingKebab)),
		Description: jsii.Sprintf("%s API (%s)", name, env),
		EndpointConfiguration: &awsapigateway.EndpointConfiguration{
			Types: &[]awsapigateway.EndpointType{awsapigateway.EndpointType_REGIONAL},
		},
		DefaultCorsPreflightOptions: &awsapigateway.CorsOptions{
			AllowOrigins: awsapigateway.Cors_ALL_ORIGINS(),
			AllowMethods: awsapigateway.Cors_ALL_METHODS(),
			AllowHeaders: jsii.Strings(AllowedHeaders...),
		},
		CloudWatchRole: jsii.Bool(true),
		DeployOptions: &awsapigateway.StageOptions{
			StageName:            jsii.String(string(env)),
			TracingEnabled:       jsii.Bool(true),
			ThrottlingRateLimit:  jsii.Number(100),
			ThrottlingBurstLimit: jsii.Number(200),
			AccessLogDestination: awsapigateway.NewLogGroupLogDestination(con.accessLogGroup),
			AccessLogFormat: awsapigateway.AccessLogFormat_JsonWithStandardFields(
				&awsapigateway.JsonWithStandardFieldProps{
					Caller:         jsii.Bool(true),
					HttpMethod:     jsii.Bool(true),
					Ip:             jsii.Bool(true),
					Protocol:       jsii.Bool(true),
					RequestTime:    jsii.Bool(true),
					ResourcePath:   jsii.Bool(true),
					ResponseLength: jsii.Bool(true),
					Status:         jsii.Bool(true),
					User:           jsii.Bool(true),
				}),
		},
	}

	if props.Domain != nil {
		con.domainName = DomainName(env, *props.Domain.Subdomain, *props.Domain.HostedZone.ZoneName())
		restApiProps.DomainName = &awsapigateway.DomainNameOptions{
			DomainName:   jsii.String(con.domainName),
			Certificate:  props.Domain.Certificate,
			EndpointType: awsapigateway.EndpointType_REGIONAL,
		}
	}

	con.restApi = awsapigateway.NewRestApi(scope, jsii.String("Api"), restApiProps)

	integration := awsapigateway.NewLambdaIntegration(con.lambda.Function(), &awsapigateway.LambdaIntegrationOptions{
		Proxy: jsii.Bool(true),
	})

	requireAPIKey := clcdkutil.OrPtr(props.RequireAPIKey, settings.RequireAPIKey)
	authorizedMethods := props.AuthorizedMethods
	if len(authorizedMethods) == 0 {
		authorizedMethods = DefaultAuthorizedMethods
	}

	var authorizer awsapigateway.IAuthorizer
	for _, route := range props.Routes {
		opts := &awsapigateway.MethodOptions{ApiKeyRequired: jsii.Bool(requireAPIKey)}
		if props.UserPool != nil && slices.Contains(authorizedMethods, strings.ToUpper(route.Method)) {
			if authorizer == nil {
				authorizer = awsapigateway.NewCognitoUserPoolsAuthorizer(scope, jsii.String("Authorizer"),
					&awsapigateway.CognitoUserPoolsAuthorizerProps{
						CognitoUserPools: &[]awscognito.IUserPool{props.UserPool},
					})
			}
			opts.Authorizer = authorizer
			opts.AuthorizationType = awsapigateway.AuthorizationType_COGNITO
		}
		addRoute(con.restApi.Root(), route, integration, opts)
	}

	if requireAPIKey {
		addUsagePlan(scope, con.restApi, name)
	}

	con.url = con.restApi.Url()
	if props.Domain != nil {
		awsroute53.NewARecord(scope, jsii.String("DnsRecord"), &awsroute53.ARecordProps{
			Zone:       props.Domain.HostedZone,
			RecordName: jsii.String(con.domainName),
			Target:     awsroute53.RecordTarget_FromAlias(awsroute53targets.NewApiGateway(con.restApi)),
		})
		con.url = jsii.Sprintf("https://%s/", con.domainName)
	}

	clcdkparams.Store(scope, "UrlParam", "api", name+"-url", con.url)

	outputPrefix := strcase.ToCamel(name)
	clcdkutil.Output(scope, outputPrefix+"ApiUrl", "API Gateway endpoint URL", con.url)
	clcdkutil.Output(scope, outputPrefix+"ApiId", "API Gateway REST API ID", con.restApi.RestApiId())

	return con
}

// DomainName builds the custom domain of an API. Prod omits the environment prefix.
func DomainName(env clcdkutil.Environment, subdomain, zoneName string) string {
	return clcdkutil.DomainName(env, subdomain, zoneName)
}

func addRoute(
	root awsapigateway.IResource,
	route Route,
	integration awsapigateway.LambdaIntegration,
	opts *awsapigateway.MethodOptions,
) {
	resource := root
	if path := strings.Trim(route.Path, "/"); path != "" {
		resource = root.ResourceForPath(jsii.String(path))
	}
	resource.AddMethod(jsii.String(strings.ToUpper(route.Method)), integration, opts)
}

func addUsagePlan(scope constructs.Construct, api awsapigateway.RestApi, name string) {
	plan := api.AddUsagePlan(jsii.String("UsagePlan"), &awsapigateway.UsagePlanProps{
		Name: jsii.String(clcdkutil.ResourceName(scope, name+"-usage-plan", clcdkutil.CasingKebab)),
		Throttle: &awsapigateway.ThrottleSettings{
			RateLimit:  jsii.Number(100),
			BurstLimit: jsii.Number(200),
		},
		Quota: &awsapigateway.QuotaSettings{
			Limit:  jsii.Number(10000),
			Period: awsapigateway.Period_DAY,
		},
		ApiStages: &[]*awsapigateway.UsagePlanPerApiStage{
			{Api: api, Stage: api.DeploymentStage()},
		},
	})
	key := api.AddApiKey(jsii.String("ApiKey"), &awsapigateway.ApiKeyOptions{
		ApiKeyName: jsii.String(clcdkutil.ResourceName(scope, name+"-api-key", clcdkutil.CasingKebab)),
	})
	plan.AddApiKey(key, nil)
}

func (r *restGateway) Lambda() clcdklwalambda.Lambda {
	return r.lambda
}

func (r *restGateway) RestApi() awsapigateway.RestApi {
	return r.restApi
}

func (r *restGateway) AccessLogGroup() awslogs.ILogGroup {
	return r.accessLogGroup
}

func (r *restGateway) URL() *string {
	return r.url
}

func (r *restGateway) DomainName() string {
	return r.domainName
}
