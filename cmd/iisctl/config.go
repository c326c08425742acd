package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"iisctl/internal/config"
	"iisctl/internal/ssm"
	"iisctl/internal/system"
	"iisctl/pkg/colors"
	"iisctl/pkg/errors"
	"iisctl/pkg/security"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newIdentityProvider supplies STS clients to 'config check'
var newIdentityProvider = func() system.IdentityProvider {
	pool := ssm.NewClientPool()
	return func(ctx context.Context, region string) (system.IdentityGetter, error) {
		client, err := pool.GetSTSClient(ctx, region)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long: `Manage iisctl configuration.

Examples:
  iisctl config init                    # Create ~/.iisctl.yaml
  iisctl config show                    # Show effective configuration
  iisctl config check                   # Validate configuration and AWS credentials`,
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	Long:  `Create a commented configuration file with the built-in defaults.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		force, _ := cmd.Flags().GetBool("force")

		path := configFile
		if path == "" {
			path = config.GetConfigPath()
		}

		if err := initializeConfigFile(cmd.OutOrStdout(), path, force); err != nil {
			GetLogger().Error("Configuration initialization failed", "error", err)
			os.Exit(1)
		}
	},
}

// configShowCmd represents the config show command
var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Display current configuration",
	Long:  `Display the effective configuration after merging defaults, the config file and IISCTL_ environment variables.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := showConfiguration(cmd.OutOrStdout(), config.Get(), viper.ConfigFileUsed()); err != nil {
			GetLogger().Error("Failed to show configuration", "error", err)
			os.Exit(1)
		}
	},
}

// configCheckCmd represents the config check command
var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check configuration and AWS credentials",
	Long:  `Validate the configuration and confirm the AWS credentials work by calling STS GetCallerIdentity.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if err := checkRequirements(cmd.Context(), cmd.OutOrStdout(), config.Get(), viper.ConfigFileUsed()); err != nil {
			GetLogger().Error("Requirements check failed", "error", err)
			os.Exit(1)
		}
	},
}

// initializeConfigFile writes the sample config to path, refusing to overwrite without force
func initializeConfigFile(out io.Writer, path string, force bool) error {
	if security.ContainsUnsafePath(path) {
		return errors.NewValidationError(fmt.Sprintf("unsafe config file path: %q", path))
	}
	if !filepath.IsAbs(path) {
		if err := security.ValidateFilePath(path, "."); err != nil {
			return errors.Wrap(errors.ErrTypeValidation, "config file must stay within the working directory", err)
		}
	}

	if config.Exists(path) && !force {
		return errors.NewConfigError(fmt.Sprintf("configuration file already exists at %s (use --force to overwrite)", path), nil)
	}

	if err := config.CreateSampleConfig(path); err != nil {
		return err
	}

	colors.Success.Fprintf(out, "✅ Configuration file created: %s\n", path)
	return nil
}

// showConfiguration prints cfg as YAML along with the file it came from
func showConfiguration(out io.Writer, cfg *config.Config, usedFile string) error {
	data, err := config.ToYAML(cfg)
	if err != nil {
		return err
	}

	colors.Header.Fprintf(out, "=== Current Configuration ===\n")
	fmt.Fprint(out, string(data))

	if usedFile != "" {
		colors.Data.Fprintf(out, "\nConfig File: %s\n", usedFile)
	} else {
		colors.Data.Fprintf(out, "\nConfig File: Not found (using defaults)\n")
		fmt.Fprintln(out, "Run 'iisctl config init' to create configuration file")
	}

	return nil
}

// checkRequirements runs the requirement checks and fails when any of them fails
func checkRequirements(ctx context.Context, out io.Writer, cfg *config.Config, usedFile string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	checker := system.NewRequirementsChecker(GetLogger(), newIdentityProvider())
	results := checker.CheckAll(ctx, cfg, usedFile)

	for _, result := range results {
		if result.Passed {
			colors.Success.Fprintf(out, "✅ %s", result.Name)
			if result.Detail != "" {
				fmt.Fprintf(out, ": %s", result.Detail)
			}
			fmt.Fprintln(out)
		} else {
			colors.Error.Fprintf(out, "❌ %s: %s\n", result.Name, result.Error)
		}
		if result.Suggestion != "" {
			fmt.Fprintf(out, "   💡 %s\n", result.Suggestion)
		}
	}

	if !system.AllPassed(results) {
		return errors.NewConfigError("some requirements are not met", nil)
	}

	colors.Success.Fprintf(out, "All requirements met!\n")
	return nil
}

func init() {
	configInitCmd.Flags().BoolP("force", "f", false, "overwrite an existing configuration file")

	configCmd.AddCommand(configInitCmd, configShowCmd, configCheckCmd)
}
