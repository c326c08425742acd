package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"iisctl/pkg/errors"
)

func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	cfg = nil
	t.Cleanup(func() {
		viper.Reset()
		cfg = nil
	})
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty path", "", ""},
		{"absolute path", "/tmp/test", "/tmp/test"},
		{"relative path", "test/path", "test/path"},
		{"tilde", "~", home},
		{"tilde prefix", "~/logs", filepath.Join(home, "logs")},
		{"tilde user form untouched", "~ops/logs", "~ops/logs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, expandPath(tt.input))
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	resetViper(t)

	require.NoError(t, Load())
	c := Get()

	assert.Equal(t, "us-east-1", c.Region)
	assert.Equal(t, "Server_name", c.ServerEnvVar)
	assert.Equal(t, "AWS-RunPowerShellScript", c.SSM.DocumentName)
	assert.Equal(t, 3600, c.SSM.ExecutionTimeout)
	assert.Equal(t, int32(600), c.SSM.DeliveryTimeout)
	assert.Equal(t, "", c.SSM.WorkingDirectory)
	assert.Empty(t, c.SSM.Script)
	assert.True(t, c.Logging.FileLogging)
}

func TestLoadOverrides(t *testing.T) {
	resetViper(t)

	viper.Set("region", "cac1")
	viper.Set("server_env_var", "TARGET_SERVER")
	viper.Set("ssm.execution_timeout", 900)
	viper.Set("logging.directory", "~/iis-logs")

	require.NoError(t, Load())
	c := Get()

	home, _ := os.UserHomeDir()
	assert.Equal(t, "ca-central-1", c.Region, "shortcodes are normalized")
	assert.Equal(t, "TARGET_SERVER", c.ServerEnvVar)
	assert.Equal(t, 900, c.SSM.ExecutionTimeout)
	assert.Equal(t, int32(600), c.SSM.DeliveryTimeout)
	assert.Equal(t, filepath.Join(home, "iis-logs"), c.Logging.Directory)
}

func TestLoadRejectsInvalidConfig(t *testing.T) {
	resetViper(t)

	viper.Set("region", "moon-base-1")

	err := Load()
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
	assert.Nil(t, cfg, "a failed load must not replace the global config")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		shouldErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"region shortcode", func(c *Config) { c.Region = "euw1" }, false},
		{"empty region", func(c *Config) { c.Region = "" }, true},
		{"empty env var", func(c *Config) { c.ServerEnvVar = " " }, true},
		{"empty document", func(c *Config) { c.SSM.DocumentName = "" }, true},
		{"zero execution timeout", func(c *Config) { c.SSM.ExecutionTimeout = 0 }, true},
		{"execution timeout too large", func(c *Config) { c.SSM.ExecutionTimeout = 172801 }, true},
		{"delivery timeout too small", func(c *Config) { c.SSM.DeliveryTimeout = 10 }, true},
		{"zero wait timeout", func(c *Config) { c.SSM.WaitTimeout = 0 }, true},
		{"zero poll interval", func(c *Config) { c.SSM.PollInterval = 0 }, true},
		{"unknown log level", func(c *Config) { c.Logging.Level = "trace" }, true},
		{"upper case log level", func(c *Config) { c.Logging.Level = "DEBUG" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.mutate(c)
			err := Validate(c)
			if tt.shouldErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSampleConfigLoadsToDefaults(t *testing.T) {
	resetViper(t)

	configPath := filepath.Join(t.TempDir(), "nested", ".iisctl.yaml")
	require.NoError(t, CreateSampleConfig(configPath))
	assert.True(t, Exists(configPath))

	viper.SetConfigFile(configPath)
	require.NoError(t, viper.ReadInConfig())
	require.NoError(t, Load())

	assert.Equal(t, Default(), Get())
}

func TestToYAML(t *testing.T) {
	c := Default()
	c.SSM.WorkingDirectory = "C:\\inetpub"

	data, err := ToYAML(c)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, "region: us-east-1")
	assert.Contains(t, out, "execution_timeout: 3600")
	assert.NotContains(t, out, "script:", "empty script override is omitted")

	var decoded map[string]interface{}
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	ssm, ok := decoded["ssm"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "C:\\inetpub", ssm["working_directory"])
}

func TestGetFallsBackToDefaults(t *testing.T) {
	Set(nil)
	defer Set(nil)

	c := Get()
	assert.Equal(t, Default(), c)
	assert.True(t, strings.HasSuffix(GetConfigPath(), ".iisctl.yaml"))
}
