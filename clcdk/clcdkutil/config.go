package clcdkutil

import (
	"fmt"
	"strings"

	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
)

// DefaultSourceRoot is the repository root relative to the CDK app directory (infra/cdk).
const DefaultSourceRoot = "../.."

// DefaultGitHubBranch is used when a GitHub source is configured without a branch.
const DefaultGitHubBranch = "main"

// DefaultAllowedFileTypes are the file extensions accepted by the upload API
// when none are configured.
var DefaultAllowedFileTypes = []string{".jpg", ".png", ".pdf"}

// Qualifier returns the CDK qualifier.
// Retrieves Config from the construct tree.
func Qualifier(scope constructs.Construct) string {
	return ConfigFromScope(scope).Qualifier
}

// Region returns the region the regional stacks deploy to.
// Retrieves Config from the construct tree.
func Region(scope constructs.Construct) string {
	return ConfigFromScope(scope).Region
}

// BaseDomainName returns the base domain name, empty when not configured.
// Retrieves Config from the construct tree.
func BaseDomainName(scope constructs.Construct) string {
	return ConfigFromScope(scope).BaseDomainName
}

// HasBaseDomainName reports whether custom domains are configured.
func HasBaseDomainName(scope constructs.Construct) bool {
	return ConfigFromScope(scope).HasBaseDomainName()
}

// Config holds all CDK context values validated upfront.
type Config struct {
	Prefix       string   `validate:"required"`
	Qualifier    string   `validate:"required,max=10"`
	Region       string   `validate:"required"`
	Environments []string `validate:"required,min=1,dive,oneof=dev stg prod"`
	SourceRoot   string   `validate:"required"`

	// Optional values. Features depending on them are skipped when empty.
	BaseDomainName      string   `validate:"omitempty,fqdn"`
	AlertEmail          string   `validate:"omitempty,email"`
	GitHubOwner         string   `validate:"required_with=GitHubRepo"`
	GitHubRepo          string   `validate:"required_with=GitHubOwner"`
	GitHubBranch        string   `validate:"required"`
	GitHubConnectionARN string   `validate:"required_with=GitHubRepo"`
	AllowedFileTypes    []string `validate:"required,dive,startswith=."`
}

// NewConfig reads and validates all CDK context values.
// Returns an error if any required value is missing or invalid.
func NewConfig(scope constructs.Construct, acfg AppConfig) (*Config, error) {
	var readErrs []string

	cfg := &Config{Prefix: acfg.Prefix}

	cfg.Qualifier, readErrs = readContextString(scope, acfg.Prefix+"qualifier", readErrs)
	cfg.Region, readErrs = readContextString(scope, acfg.Prefix+"region", readErrs)
	cfg.Environments, readErrs = readContextStringSlice(scope, acfg.Prefix+"environments", readErrs)

	cfg.SourceRoot, readErrs = readOptionalContextString(scope, acfg.Prefix+"source-root", DefaultSourceRoot, readErrs)
	cfg.BaseDomainName, readErrs = readOptionalContextString(scope, acfg.Prefix+"base-domain-name", "", readErrs)
	cfg.AlertEmail, readErrs = readOptionalContextString(scope, acfg.Prefix+"alert-email", "", readErrs)
	cfg.GitHubOwner, readErrs = readOptionalContextString(scope, acfg.Prefix+"github-owner", "", readErrs)
	cfg.GitHubRepo, readErrs = readOptionalContextString(scope, acfg.Prefix+"github-repo", "", readErrs)
	cfg.GitHubBranch, readErrs = readOptionalContextString(scope, acfg.Prefix+"github-branch",
		DefaultGitHubBranch, readErrs)
	cfg.GitHubConnectionARN, readErrs = readOptionalContextString(scope,
		acfg.Prefix+"github-connection-arn", "", readErrs)

	if scope.Node().TryGetContext(jsii.String(acfg.Prefix+"allowed-file-types")) == nil {
		cfg.AllowedFileTypes = append([]string(nil), DefaultAllowedFileTypes...)
	} else {
		cfg.AllowedFileTypes, readErrs = readContextStringSlice(scope, acfg.Prefix+"allowed-file-types", readErrs)
	}

	if cfg.Region != "" && !IsKnownRegion(cfg.Region) {
		readErrs = append(readErrs, fmt.Sprintf(
			"unknown region %q - add it to clcdkutil.RegionIdents", cfg.Region))
	}

	if len(readErrs) > 0 {
		return nil, errors.Errorf("CDK context read errors:\n  - %s", strings.Join(readErrs, "\n  - "))
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	if err := validate.Struct(cfg); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			msgs := make([]string, 0, len(validationErrs))
			for _, e := range validationErrs {
				msgs = append(msgs, formatValidationError(e))
			}
			return nil, errors.Errorf("CDK context validation errors:\n  - %s", strings.Join(msgs, "\n  - "))
		}
		return nil, errors.Wrap(err, "CDK context validation failed")
	}

	return cfg, nil
}

// HasBaseDomainName reports whether custom domains are configured.
func (c *Config) HasBaseDomainName() bool {
	return c.BaseDomainName != ""
}

// HasGitHubSource reports whether a GitHub repository is configured for the pipeline.
func (c *Config) HasGitHubSource() bool {
	return c.GitHubRepo != "" && c.GitHubConnectionARN != ""
}

// ParsedEnvironments returns the configured environments in declaration order.
func (c *Config) ParsedEnvironments() []Environment {
	envs := make([]Environment, 0, len(c.Environments))
	for _, e := range c.Environments {
		envs = append(envs, Environment(e))
	}
	return envs
}

// RegionIdent returns the acronym identifier for the configured region.
func (c *Config) RegionIdent() string {
	return RegionIdentFor(c.Region)
}

const configContextKey = "__clcdkutil_config"

// StoreConfig stores a validated Config in the app's context so it can be retrieved
// anywhere in the construct tree via ConfigFromScope.
func StoreConfig(app awscdk.App, cfg *Config) {
	app.Node().SetContext(jsii.String(configContextKey), cfg)
}

// ConfigFromScope retrieves the validated Config from the construct tree.
// It panics if Config was not stored (i.e., SetupApp was not called).
func ConfigFromScope(scope constructs.Construct) *Config {
	val := scope.Node().TryGetContext(jsii.String(configContextKey))
	if val == nil {
		panic("clcdkutil.Config not found in construct tree - was SetupApp or StoreConfig called?")
	}
	cfg, ok := val.(*Config)
	if !ok {
		panic(fmt.Sprintf("clcdkutil.Config has unexpected type %T", val))
	}
	return cfg
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "required_with":
		return fmt.Sprintf("%s is required when %s is set", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("%s exceeds maximum length of %s (got %q)", e.Field(), e.Param(), e.Value())
	case "min":
		return fmt.Sprintf("%s needs at least %s entries", e.Field(), e.Param())
	case "fqdn":
		return fmt.Sprintf("%s must be a valid domain name (got %q)", e.Field(), e.Value())
	case "email":
		return fmt.Sprintf("%s must be a valid email address (got %q)", e.Field(), e.Value())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s] (got %q)", e.Namespace(), e.Param(), e.Value())
	case "startswith":
		return fmt.Sprintf("%s must start with %q (got %q)", e.Namespace(), e.Param(), e.Value())
	default:
		return fmt.Sprintf("%s failed validation %q", e.Field(), e.Tag())
	}
}

func readContextString(scope constructs.Construct, key string, errs []string) (string, []string) {
	val := scope.Node().TryGetContext(jsii.String(key))
	if val == nil {
		return "", append(errs, fmt.Sprintf("context key %q is not set", key))
	}
	s, ok := val.(string)
	if !ok {
		return "", append(errs, fmt.Sprintf("context key %q must be a string, got %T", key, val))
	}
	return s, errs
}

func readOptionalContextString(
	scope constructs.Construct, key, def string, errs []string,
) (string, []string) {
	if scope.Node().TryGetContext(jsii.String(key)) == nil {
		return def, errs
	}
	s, errs := readContextString(scope, key, errs)
	if s == "" {
		return def, errs
	}
	return s, errs
}

func readContextStringSlice(scope constructs.Construct, key string, errs []string) ([]string, []string) {
	val := scope.Node().TryGetContext(jsii.String(key))
	if val == nil {
		return nil, append(errs, fmt.Sprintf("context key %q is not set", key))
	}

	slice, ok := val.([]any)
	if !ok {
		return nil, append(errs, fmt.Sprintf("context key %q must be an array, got %T", key, val))
	}

	result := make([]string, 0, len(slice))
	for i, v := range slice {
		s, ok := v.(string)
		if !ok {
			return nil, append(errs, fmt.Sprintf("context key %q[%d] must be a string, got %T", key, i, v))
		}
		result = append(result, s)
	}
	return result, errs
}
