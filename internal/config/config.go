package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"iisctl/internal/iis"
	awspkg "iisctl/pkg/aws"
	"iisctl/pkg/errors"
)

const (
	// DefaultRegion is used when neither the config file nor --region names one
	DefaultRegion = "us-east-1"

	// DefaultServerEnvVar is the environment variable consulted when no identifier argument is given
	DefaultServerEnvVar = "Server_name"

	// DefaultExecutionTimeout is the on-instance execution limit in seconds
	DefaultExecutionTimeout = 3600

	// DefaultDeliveryTimeout is the SendCommand TimeoutSeconds value
	DefaultDeliveryTimeout = 600

	configFileName = ".iisctl.yaml"

	// SSM limits for AWS-RunPowerShellScript executionTimeout and SendCommand TimeoutSeconds
	maxExecutionTimeout = 172800
	minDeliveryTimeout  = 30
	maxDeliveryTimeout  = 2592000
)

// Config represents the application configuration
type Config struct {
	// AWS region for EC2 lookups and SSM commands
	Region string `mapstructure:"region" yaml:"region"`

	// Environment variable holding the server identifier when no argument is given
	ServerEnvVar string `mapstructure:"server_env_var" yaml:"server_env_var"`

	SSM SSMConfig `mapstructure:"ssm" yaml:"ssm"`

	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// SSMConfig holds the send-command parameters
type SSMConfig struct {
	DocumentName string `mapstructure:"document_name" yaml:"document_name"`

	// Seconds the script may run on the instance (executionTimeout document parameter)
	ExecutionTimeout int `mapstructure:"execution_timeout" yaml:"execution_timeout"`

	// Seconds SSM waits for the instance to pick the command up (TimeoutSeconds)
	DeliveryTimeout int32 `mapstructure:"delivery_timeout" yaml:"delivery_timeout"`

	WorkingDirectory string `mapstructure:"working_directory" yaml:"working_directory"`

	// Script overrides the built-in IIS reset payload; empty means built-in
	Script string `mapstructure:"script" yaml:"script,omitempty"`

	// Seconds restart --wait blocks per instance
	WaitTimeout int `mapstructure:"wait_timeout" yaml:"wait_timeout"`

	// Seconds between invocation status polls
	PollInterval int `mapstructure:"poll_interval" yaml:"poll_interval"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Directory   string `mapstructure:"directory" yaml:"directory"`
	FileLogging bool   `mapstructure:"file_logging" yaml:"file_logging"`
	Level       string `mapstructure:"level" yaml:"level"`
}

var cfg *Config

// Load reads configuration from viper (file, environment, bound flags) into the global instance
func Load() error {
	setDefaults()

	loaded := &Config{}
	if err := viper.Unmarshal(loaded); err != nil {
		return errors.NewConfigError("failed to unmarshal configuration", err)
	}

	loaded.Logging.Directory = expandPath(loaded.Logging.Directory)

	if err := Validate(loaded); err != nil {
		return err
	}

	cfg = loaded
	return nil
}

// Get returns the global configuration instance, falling back to defaults
func Get() *Config {
	if cfg == nil {
		cfg = Default()
	}
	return cfg
}

// Set replaces the global configuration instance
func Set(c *Config) {
	cfg = c
}

// Default returns a configuration populated with built-in defaults
func Default() *Config {
	return &Config{
		Region:       DefaultRegion,
		ServerEnvVar: DefaultServerEnvVar,
		SSM: SSMConfig{
			DocumentName:     iis.DocumentName,
			ExecutionTimeout: DefaultExecutionTimeout,
			DeliveryTimeout:  DefaultDeliveryTimeout,
			WorkingDirectory: "",
			WaitTimeout:      DefaultExecutionTimeout,
			PollInterval:     5,
		},
		Logging: LoggingConfig{
			Directory:   "",
			FileLogging: true,
			Level:       "info",
		},
	}
}

// setDefaults registers the built-in defaults with viper
func setDefaults() {
	d := Default()

	viper.SetDefault("region", d.Region)
	viper.SetDefault("server_env_var", d.ServerEnvVar)

	viper.SetDefault("ssm.document_name", d.SSM.DocumentName)
	viper.SetDefault("ssm.execution_timeout", d.SSM.ExecutionTimeout)
	viper.SetDefault("ssm.delivery_timeout", d.SSM.DeliveryTimeout)
	viper.SetDefault("ssm.working_directory", d.SSM.WorkingDirectory)
	viper.SetDefault("ssm.script", "")
	viper.SetDefault("ssm.wait_timeout", d.SSM.WaitTimeout)
	viper.SetDefault("ssm.poll_interval", d.SSM.PollInterval)

	viper.SetDefault("logging.directory", d.Logging.Directory)
	viper.SetDefault("logging.file_logging", d.Logging.FileLogging)
	viper.SetDefault("logging.level", d.Logging.Level)
}

// Validate checks a configuration and normalizes region shortcodes in place
func Validate(c *Config) error {
	region, err := awspkg.ValidateRegionInput(c.Region)
	if err != nil {
		return errors.NewConfigError("invalid region", err)
	}
	c.Region = region

	if strings.TrimSpace(c.ServerEnvVar) == "" {
		return errors.NewValidationError("server_env_var cannot be empty")
	}

	if strings.TrimSpace(c.SSM.DocumentName) == "" {
		return errors.NewValidationError("ssm.document_name cannot be empty")
	}

	if c.SSM.ExecutionTimeout < 1 || c.SSM.ExecutionTimeout > maxExecutionTimeout {
		return errors.NewValidationError(fmt.Sprintf("ssm.execution_timeout must be between 1 and %d seconds, got %d", maxExecutionTimeout, c.SSM.ExecutionTimeout))
	}

	if c.SSM.DeliveryTimeout < minDeliveryTimeout || c.SSM.DeliveryTimeout > maxDeliveryTimeout {
		return errors.NewValidationError(fmt.Sprintf("ssm.delivery_timeout must be between %d and %d seconds, got %d", minDeliveryTimeout, maxDeliveryTimeout, c.SSM.DeliveryTimeout))
	}

	if c.SSM.WaitTimeout < 1 {
		return errors.NewValidationError("ssm.wait_timeout must be positive")
	}

	if c.SSM.PollInterval < 1 {
		return errors.NewValidationError("ssm.poll_interval must be positive")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return errors.NewValidationError(fmt.Sprintf("logging.level must be one of debug, info, warn, error; got %q", c.Logging.Level))
	}

	return nil
}

// ToYAML renders a configuration the way it would appear in the config file
func ToYAML(c *Config) ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, errors.NewConfigError("failed to render configuration", err)
	}
	return data, nil
}

// CreateSampleConfig writes a commented sample configuration file
func CreateSampleConfig(configPath string) error {
	d := Default()

	sampleConfig := fmt.Sprintf(`# iisctl Configuration File

# AWS region for instance lookups and SSM commands (full name or shortcode such as use1)
region: "%s"

# Environment variable read when no instance ID or server name argument is given
server_env_var: "%s"

# SSM send-command settings
ssm:
  document_name: "%s"

  # Seconds the IIS reset script may run on the instance
  execution_timeout: %d

  # Seconds SSM waits for the instance to pick up the command
  delivery_timeout: %d

  working_directory: ""

  # Seconds 'restart --wait' waits per instance, and seconds between status polls
  wait_timeout: %d
  poll_interval: %d

# Logging configuration
logging:
  # Empty uses the platform default log directory
  directory: ""
  file_logging: true
  # debug, info, warn, error
  level: "info"
`, d.Region, d.ServerEnvVar, d.SSM.DocumentName, d.SSM.ExecutionTimeout, d.SSM.DeliveryTimeout,
		d.SSM.WaitTimeout, d.SSM.PollInterval)

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return errors.NewConfigError("failed to create config directory", err)
	}

	if err := os.WriteFile(configPath, []byte(sampleConfig), 0600); err != nil {
		return errors.NewConfigError("failed to write sample config", err)
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, configFileName)
}

// Exists checks if a file exists at configPath, or at the default location when it is empty
func Exists(configPath string) bool {
	if configPath == "" {
		configPath = GetConfigPath()
	}
	_, err := os.Stat(configPath)
	return err == nil
}

// expandPath expands paths with tilde (~) to the user's home directory
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}

	return path
}
