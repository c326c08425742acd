package system

import (
	"context"
	"fmt"

	appconfig "iisctl/internal/config"
	"iisctl/pkg/logging"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// IdentityGetter is the STS call used to prove credentials work
type IdentityGetter interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// IdentityProvider returns an STS client for a region
type IdentityProvider func(ctx context.Context, region string) (IdentityGetter, error)

// RequirementsChecker checks that iisctl can run: valid configuration and working AWS credentials
type RequirementsChecker struct {
	logger   *logging.Logger
	identity IdentityProvider
}

// RequirementResult represents the result of a requirement check
type RequirementResult struct {
	Name       string `json:"name"`
	Passed     bool   `json:"passed"`
	Error      string `json:"error,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Detail     string `json:"detail,omitempty"`
}

// NewRequirementsChecker creates a new requirements checker
func NewRequirementsChecker(logger *logging.Logger, identity IdentityProvider) *RequirementsChecker {
	return &RequirementsChecker{
		logger:   logger,
		identity: identity,
	}
}

// CheckAll runs every check against cfg; configFile is the file that was loaded, if any
func (c *RequirementsChecker) CheckAll(ctx context.Context, cfg *appconfig.Config, configFile string) []RequirementResult {
	configResult, region := c.checkConfiguration(cfg)
	results := []RequirementResult{
		c.checkConfigFile(configFile),
		configResult,
	}

	// Credentials are only worth checking against a usable region
	if configResult.Passed {
		results = append(results, c.checkAWSCredentials(ctx, region))
	}

	return results
}

// AllPassed reports whether every result passed
func AllPassed(results []RequirementResult) bool {
	for _, r := range results {
		if !r.Passed {
			return false
		}
	}
	return true
}

func (c *RequirementsChecker) checkConfigFile(configFile string) RequirementResult {
	result := RequirementResult{Name: "Config File"}

	if configFile == "" || !appconfig.Exists(configFile) {
		// Defaults are a valid configuration, so a missing file is not a failure
		result.Passed = true
		result.Detail = "not found, using built-in defaults"
		result.Suggestion = "Run 'iisctl config init' to create one"
		return result
	}

	result.Passed = true
	result.Detail = configFile
	return result
}

// checkConfiguration validates a copy of cfg and returns the normalized region
func (c *RequirementsChecker) checkConfiguration(cfg *appconfig.Config) (RequirementResult, string) {
	result := RequirementResult{Name: "Configuration"}

	if cfg == nil {
		result.Error = "no configuration loaded"
		return result, ""
	}

	checked := *cfg
	if err := appconfig.Validate(&checked); err != nil {
		result.Error = err.Error()
		result.Suggestion = "Fix the reported key in your config file or IISCTL_ environment variables"
		return result, ""
	}

	result.Passed = true
	result.Detail = fmt.Sprintf("region %s, server env var %s", checked.Region, checked.ServerEnvVar)
	return result, checked.Region
}

// checkAWSCredentials checks if AWS credentials are configured and valid
func (c *RequirementsChecker) checkAWSCredentials(ctx context.Context, region string) RequirementResult {
	result := RequirementResult{Name: "AWS Credentials"}

	client, err := c.identity(ctx, region)
	if err != nil {
		result.Error = "Failed to load AWS configuration"
		result.Suggestion = "Configure AWS credentials using 'aws configure' or the AWS_* environment variables"
		c.logger.Debug("AWS config load failed", "error", err)
		return result
	}

	identity, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		result.Error = "AWS credentials are not valid or have expired"
		result.Suggestion = "Refresh your AWS session or update your AWS credentials"
		c.logger.Debug("GetCallerIdentity failed", "error", err)
		return result
	}

	result.Passed = true
	result.Detail = fmt.Sprintf("account %s as %s", aws.ToString(identity.Account), aws.ToString(identity.Arn))
	return result
}
