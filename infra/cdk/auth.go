package cdk

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awscognito"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkparams"
	"github.com/hijiri0404/cdk-learning-samples/clcdk/clcdkutil"
)

// UserGroups are created in every user pool with their precedence.
var UserGroups = []struct {
	Name        string
	Description string
	Precedence  float64
}{
	{"admin", "Administrators", 1},
	{"user", "Regular users", 10},
}

// AuthStackProps configures the Cognito sample.
type AuthStackProps struct {
	// CallbackURLs default to http://localhost:3000/callback.
	CallbackURLs []string
	// LogoutURLs default to http://localhost:3000/.
	LogoutURLs []string
	// DomainPrefix of the hosted UI. Defaults to "{qualifier}-{env}-auth".
	DomainPrefix *string
}

// AuthStack holds the user pool other stacks authorize against.
type AuthStack struct {
	awscdk.Stack

	UserPool       awscognito.UserPool
	UserPoolClient awscognito.UserPoolClient
	Domain         awscognito.UserPoolDomain
}

// NewAuthStack creates a user pool with email sign-in, the admin and user groups,
// a public client and a hosted UI domain.
func NewAuthStack(scope constructs.Construct, env clcdkutil.Environment, props AuthStackProps) *AuthStack {
	stack := clcdkutil.NewStack(scope, env, "Auth")
	s := &AuthStack{Stack: stack}
	settings := clcdkutil.SettingsOf(stack)

	callbacks := props.CallbackURLs
	if len(callbacks) == 0 {
		callbacks = []string{"http://localhost:3000/callback"}
	}
	logouts := props.LogoutURLs
	if len(logouts) == 0 {
		logouts = []string{"http://localhost:3000/"}
	}

	s.UserPool = awscognito.NewUserPool(stack, jsii.String("UserPool"), &awscognito.UserPoolProps{
		UserPoolName:      jsii.String(clcdkutil.ResourceName(stack, "users", clcdkutil.CasingKebab)),
		SelfSignUpEnabled: jsii.Bool(true),
		SignInAliases:     &awscognito.SignInAliases{Email: jsii.Bool(true)},
		AutoVerify:        &awscognito.AutoVerifiedAttrs{Email: jsii.Bool(true)},
		StandardAttributes: &awscognito.StandardAttributes{
			Email: &awscognito.StandardAttribute{Required: jsii.Bool(true), Mutable: jsii.Bool(true)},
		},
		PasswordPolicy: &awscognito.PasswordPolicy{
			MinLength:        jsii.Number(8),
			RequireLowercase: jsii.Bool(true),
			RequireUppercase: jsii.Bool(true),
			RequireDigits:    jsii.Bool(true),
			RequireSymbols:   jsii.Bool(env.IsProd()),
		},
		AccountRecovery:    awscognito.AccountRecovery_EMAIL_ONLY,
		DeletionProtection: jsii.Bool(settings.DeletionProtection),
		RemovalPolicy:      settings.RemovalPolicy,
	})

	for _, g := range UserGroups {
		awscognito.NewCfnUserPoolGroup(stack, jsii.String(g.Name+"Group"), &awscognito.CfnUserPoolGroupProps{
			UserPoolId:  s.UserPool.UserPoolId(),
			GroupName:   jsii.String(g.Name),
			Description: jsii.String(g.Description),
			Precedence:  jsii.Number(g.Precedence),
		})
	}

	s.UserPoolClient = s.UserPool.AddClient(jsii.String("WebClient"), &awscognito.UserPoolClientOptions{
		UserPoolClientName: jsii.String(clcdkutil.ResourceName(stack, "web-client", clcdkutil.CasingKebab)),
		GenerateSecret:     jsii.Bool(false),
		AuthFlows:          &awscognito.AuthFlow{UserSrp: jsii.Bool(true)},
		OAuth: &awscognito.OAuthSettings{
			Flows: &awscognito.OAuthFlows{AuthorizationCodeGrant: jsii.Bool(true)},
			Scopes: &[]awscognito.OAuthScope{
				awscognito.OAuthScope_EMAIL(),
				awscognito.OAuthScope_OPENID(),
				awscognito.OAuthScope_PROFILE(),
			},
			CallbackUrls: jsii.Strings(callbacks...),
			LogoutUrls:   jsii.Strings(logouts...),
		},
		PreventUserExistenceErrors: jsii.Bool(true),
	})

	prefix := clcdkutil.OrPtr(props.DomainPrefix, clcdkutil.ResourceName(stack, "auth", clcdkutil.CasingKebab))
	s.Domain = s.UserPool.AddDomain(jsii.String("HostedUi"), &awscognito.UserPoolDomainOptions{
		CognitoDomain: &awscognito.CognitoDomainOptions{DomainPrefix: jsii.String(prefix)},
	})

	clcdkparams.Store(stack, "UserPoolIdParam", "auth", "user-pool-id", s.UserPool.UserPoolId())

	clcdkutil.Output(stack, "UserPoolId", "Cognito user pool ID", s.UserPool.UserPoolId())
	clcdkutil.Output(stack, "UserPoolClientId", "Cognito web client ID", s.UserPoolClient.UserPoolClientId())
	clcdkutil.Output(stack, "HostedUiUrl", "Cognito hosted UI base URL", s.Domain.BaseUrl(nil))

	return s
}
