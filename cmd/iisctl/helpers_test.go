package main

import (
	"bytes"
	"context"
	"io"
	"testing"

	"iisctl/internal/config"
	"iisctl/internal/interactive"
	"iisctl/internal/ssm"
	"iisctl/internal/testutil"
	awspkg "iisctl/pkg/aws"
	"iisctl/pkg/logging"

	"github.com/fatih/color"
)

const (
	testInstanceA = "i-0123456789abcdef0"
	testInstanceB = "i-0fedcba9876543210"
)

type fakeProvider struct {
	ec2 *testutil.FakeEC2
	ssm *testutil.FakeSSM
}

func (p *fakeProvider) GetEC2Client(ctx context.Context, region string) (awspkg.InstanceDescriber, error) {
	return p.ec2, nil
}

func (p *fakeProvider) GetSSMClient(ctx context.Context, region string) (ssm.API, error) {
	return p.ssm, nil
}

type fakeSelector struct {
	offered []awspkg.Instance
	pick    int
}

func (s *fakeSelector) SelectInstance(instances []awspkg.Instance) (*awspkg.Instance, error) {
	s.offered = instances
	return &instances[s.pick], nil
}

// setupCommandTest swaps every seam for fakes and returns the provider and an output buffer
func setupCommandTest(t *testing.T, inventory map[string][]string, env map[string]string) (*fakeProvider, *bytes.Buffer) {
	t.Helper()

	provider := &fakeProvider{
		ec2: testutil.NewFakeEC2(inventory),
		ssm: testutil.NewFakeSSM("cmd-0123456789"),
	}

	cfg := config.Default()
	cfg.SSM.PollInterval = 1
	config.Set(cfg)

	prevManager, prevLookup, prevInteractive, prevSelector := newManager, lookupEnv, isInteractive, newSelector
	prevLogger, prevRegion := logger, regionCode
	prevConsole := logging.SetConsoleOutput(io.Discard)
	prevNoColor := color.NoColor

	newManager = func(l *logging.Logger, c *config.Config) *ssm.Manager {
		return ssm.NewManager(logging.NewNoOpLogger(), c, provider)
	}
	lookupEnv = func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
	isInteractive = func() bool { return false }
	logger = logging.NewNoOpLogger()
	regionCode = ""
	color.NoColor = true

	t.Cleanup(func() {
		newManager, lookupEnv, isInteractive, newSelector = prevManager, prevLookup, prevInteractive, prevSelector
		logger, regionCode = prevLogger, prevRegion
		logging.SetConsoleOutput(prevConsole)
		color.NoColor = prevNoColor
		config.Set(nil)
	})

	return provider, &bytes.Buffer{}
}

func useSelector(s interactive.InstanceSelector) {
	newSelector = func() interactive.InstanceSelector { return s }
	isInteractive = func() bool { return true }
}
