package main

import (
	"fmt"
	"os"
	"strings"

	"iisctl/internal/config"
	"iisctl/internal/interactive"
	"iisctl/internal/ssm"
	awspkg "iisctl/pkg/aws"
	"iisctl/pkg/logging"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version can be set at build time using -ldflags "-X main.Version=X.Y.Z"
	Version    = "1.0.0"
	configFile string
	debug      bool
	regionCode string
	logger     *logging.Logger
)

// Seams replaced in tests
var (
	newManager = func(logger *logging.Logger, cfg *config.Config) *ssm.Manager {
		return ssm.NewDefaultManager(logger, cfg)
	}
	newSelector = func() interactive.InstanceSelector {
		return interactive.NewFuzzyInstanceSelector()
	}
	isInteractive = interactive.IsInteractive
	lookupEnv     = os.LookupEnv
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "iisctl",
	Short: "Restart IIS on EC2 Windows instances through AWS Systems Manager",
	Long: `iisctl resets IIS on a Windows EC2 instance without RDP or WinRM access.

It resolves the target by instance ID or Name tag, then sends one
AWS-RunPowerShellScript command that restarts every application pool and
website and prints the SSM command ID for tracking.

The server can be given as an argument or through the Server_name
environment variable (configurable with server_env_var).`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is $HOME/.iisctl.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
	rootCmd.PersistentFlags().StringVarP(&regionCode, "region", "r", "", "AWS region or shortcode (use1, cac1, euw1, etc.) - default from config")

	if err := viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug")); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to bind debug flag: %v\n", err)
	}

	rootCmd.AddCommand(restartCmd, statusCmd, resolveCmd, configCmd, versionCmd)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	logger = logging.NewLogger(debug)

	if err := setupConfiguration(); err != nil {
		logger.Error("Configuration setup failed", "error", err)
		os.Exit(1)
	}

	setupLogging(config.Get())
}

// setupConfiguration handles the configuration logic and returns errors instead of calling os.Exit
func setupConfiguration() error {
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("unable to find home directory: %w", err)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".iisctl")
	}

	viper.SetEnvPrefix("IISCTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if configFile != "" {
			return fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	} else if debug {
		logger.Debug("Using config file", "file", viper.ConfigFileUsed())
	}

	if err := config.Load(); err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	return nil
}

// setupLogging applies the logging section of the configuration
func setupLogging(cfg *config.Config) {
	if !debug {
		GetLogger().SetLevel(logging.ParseLevel(cfg.Logging.Level))
	}

	if !cfg.Logging.FileLogging {
		return
	}
	if err := logging.SetupFileLogger(cfg.Logging.Directory); err != nil {
		GetLogger().Warn("File logging disabled", "error", err)
	}
}

// GetLogger returns the shared logger instance
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewLogger(debug)
	}
	return logger
}

// resolveRegion turns the --region value (shortcode or full name) into a region, defaulting to config
func resolveRegion(code string) (string, error) {
	if code == "" {
		return config.Get().Region, nil
	}
	return awspkg.ValidateRegionInput(code)
}

// versionCmd prints the build version
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the iisctl version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "iisctl version %s\n", Version)
	},
}
