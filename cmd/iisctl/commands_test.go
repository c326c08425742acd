package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"iisctl/internal/config"
	"iisctl/internal/system"
	"iisctl/pkg/errors"
	"iisctl/pkg/logging"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPerformResolve(t *testing.T) {
	p, out := setupCommandTest(t, map[string][]string{"web-prod": {testInstanceA, testInstanceB}}, nil)

	require.NoError(t, performResolve(context.Background(), out, "web-prod", ""))
	assert.Equal(t, testInstanceA+","+testInstanceB+"\n", out.String())
	assert.Equal(t, 0, p.ssm.SentCount())
}

func TestPerformResolve_InstanceIDFromEnv(t *testing.T) {
	p, out := setupCommandTest(t, nil, map[string]string{"Server_name": testInstanceA})

	require.NoError(t, performResolve(context.Background(), out, "", ""))
	assert.Equal(t, testInstanceA+"\n", out.String())
	assert.Equal(t, 0, p.ec2.CallCount())
}

func TestPerformResolve_NoServer(t *testing.T) {
	_, out := setupCommandTest(t, nil, nil)

	err := performResolve(context.Background(), out, "", "")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))
}

func TestPerformStatus(t *testing.T) {
	p, out := setupCommandTest(t, nil, nil)
	p.ssm.SetInvocation("cmd-1", testInstanceA, ssmtypes.CommandInvocationStatusSuccess, "IIS services have been reset.", "", 0)

	require.NoError(t, performStatus(context.Background(), out, "cmd-1", "euw1"))
	assert.Contains(t, out.String(), "=== Command cmd-1 ===")
	assert.Contains(t, out.String(), "Status: Success")
	assert.Contains(t, out.String(), "IIS services have been reset.")
}

func TestPerformStatus_Unknown(t *testing.T) {
	_, out := setupCommandTest(t, nil, nil)

	err := performStatus(context.Background(), out, "cmd-missing", "")
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeNotFound))
}

func TestInitializeConfigFile(t *testing.T) {
	_, out := setupCommandTest(t, nil, nil)
	path := filepath.Join(t.TempDir(), ".iisctl.yaml")

	require.NoError(t, initializeConfigFile(out, path, false))
	assert.FileExists(t, path)
	assert.Contains(t, out.String(), path)

	err := initializeConfigFile(out, path, false)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))

	require.NoError(t, os.WriteFile(path, []byte("region: bogus\n"), 0600))
	require.NoError(t, initializeConfigFile(out, path, true))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "us-east-1")
}

func TestInitializeConfigFile_UnsafePath(t *testing.T) {
	_, out := setupCommandTest(t, nil, nil)

	for _, path := range []string{"../outside.yaml", "conf/../../x.yaml", "bad\nname.yaml"} {
		err := initializeConfigFile(out, path, true)
		require.Error(t, err, path)
		assert.True(t, errors.IsType(err, errors.ErrTypeValidation), path)
	}
}

func TestShowConfiguration(t *testing.T) {
	_, out := setupCommandTest(t, nil, nil)

	require.NoError(t, showConfiguration(out, config.Default(), ""))
	assert.Contains(t, out.String(), "region: us-east-1")
	assert.Contains(t, out.String(), "server_env_var: Server_name")
	assert.Contains(t, out.String(), "using defaults")

	out.Reset()
	require.NoError(t, showConfiguration(out, config.Default(), "/etc/iisctl.yaml"))
	assert.Contains(t, out.String(), "Config File: /etc/iisctl.yaml")
}

type fakeIdentity struct{ err error }

func (f fakeIdentity) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &sts.GetCallerIdentityOutput{Account: aws.String("123456789012"), Arn: aws.String("arn:aws:iam::123456789012:user/ops")}, nil
}

func useIdentity(t *testing.T, client fakeIdentity) {
	prev := newIdentityProvider
	newIdentityProvider = func() system.IdentityProvider {
		return func(ctx context.Context, region string) (system.IdentityGetter, error) {
			return client, nil
		}
	}
	t.Cleanup(func() { newIdentityProvider = prev })
}

func TestCheckRequirements(t *testing.T) {
	t.Run("all passing", func(t *testing.T) {
		_, out := setupCommandTest(t, nil, nil)
		useIdentity(t, fakeIdentity{})

		require.NoError(t, checkRequirements(context.Background(), out, config.Default(), ""))
		assert.Contains(t, out.String(), "AWS Credentials: account 123456789012")
		assert.Contains(t, out.String(), "All requirements met!")
	})

	t.Run("bad credentials", func(t *testing.T) {
		_, out := setupCommandTest(t, nil, nil)
		useIdentity(t, fakeIdentity{err: fmt.Errorf("ExpiredToken")})

		err := checkRequirements(context.Background(), out, config.Default(), "")
		require.Error(t, err)
		assert.Contains(t, out.String(), "❌ AWS Credentials")
	})
}

func TestResolveRegion(t *testing.T) {
	setupCommandTest(t, nil, nil)

	region, err := resolveRegion("")
	require.NoError(t, err)
	assert.Equal(t, "us-east-1", region)

	region, err = resolveRegion("cac1")
	require.NoError(t, err)
	assert.Equal(t, "ca-central-1", region)

	region, err = resolveRegion("eu-west-2")
	require.NoError(t, err)
	assert.Equal(t, "eu-west-2", region)

	_, err = resolveRegion("not-a-region")
	assert.Error(t, err)
}

func TestRootCommand(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("IISCTL_LOG_DIR", filepath.Join(home, "logs"))
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Cleanup(logging.CloseLogger)
	setupCommandTest(t, nil, nil)

	tests := []struct {
		name     string
		args     []string
		wantErr  bool
		contains string
	}{
		{"help", []string{"--help"}, false, "iisctl resets IIS"},
		{"version flag", []string{"--version"}, false, Version},
		{"version command", []string{"version"}, false, "iisctl version " + Version},
		{"unknown command", []string{"invalid"}, true, ""},
		{"status needs command id", []string{"status"}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := new(bytes.Buffer)
			rootCmd.SetOut(buf)
			rootCmd.SetErr(buf)
			rootCmd.SetArgs(tt.args)
			t.Cleanup(func() {
				rootCmd.SetArgs(nil)
				resetBoolFlag(rootCmd.Flags().Lookup("help"))
				resetBoolFlag(rootCmd.Flags().Lookup("version"))
			})

			err := rootCmd.Execute()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, buf.String(), tt.contains)
		})
	}
}

func resetBoolFlag(f *pflag.Flag) {
	if f == nil {
		return
	}
	_ = f.Value.Set("false")
	f.Changed = false
}

func TestSetupConfigurationEnvOverrides(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv("IISCTL_REGION", "euw1")
	t.Setenv("IISCTL_SSM_EXECUTION_TIMEOUT", "1200")
	viper.Reset()
	t.Cleanup(viper.Reset)
	setupCommandTest(t, nil, nil)

	prevFile := configFile
	configFile = ""
	t.Cleanup(func() { configFile = prevFile })

	require.NoError(t, setupConfiguration())
	cfg := config.Get()
	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, 1200, cfg.SSM.ExecutionTimeout)
}

func TestSetupConfigurationMissingExplicitFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	setupCommandTest(t, nil, nil)

	prevFile := configFile
	configFile = filepath.Join(t.TempDir(), "missing.yaml")
	t.Cleanup(func() { configFile = prevFile })

	assert.Error(t, setupConfiguration())
}
