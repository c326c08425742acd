package ssm

import (
	"context"
	"fmt"
	"time"

	appconfig "iisctl/internal/config"
	awspkg "iisctl/pkg/aws"
	"iisctl/pkg/errors"
	"iisctl/pkg/logging"

	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/google/uuid"
)

// Manager resolves target instances and dispatches the IIS reset to them
type Manager struct {
	logger          *logging.Logger
	cfg             *appconfig.Config
	clients         ClientProvider
	instanceService *awspkg.InstanceService
	newRunID        func() string
}

// RestartOptions control a single restart run
type RestartOptions struct {
	// Name is the Name tag to look up; empty means the identifier itself
	Name string

	// Wait blocks until the script finishes on every target
	Wait bool

	// DryRun resolves and builds the request without sending it
	DryRun bool
}

// RestartResult describes what a restart run did
type RestartResult struct {
	RunID       string                `json:"run_id" yaml:"run_id"`
	Region      string                `json:"region" yaml:"region"`
	InstanceIDs []string              `json:"instance_ids" yaml:"instance_ids"`
	CommandID   string                `json:"command_id,omitempty" yaml:"command_id,omitempty"`
	DryRun      bool                  `json:"dry_run" yaml:"dry_run"`
	Input       *ssm.SendCommandInput `json:"-" yaml:"-"`
	Results     []CommandResult       `json:"results,omitempty" yaml:"results,omitempty"`
}

// NewManager creates a manager over the given client provider
func NewManager(logger *logging.Logger, cfg *appconfig.Config, clients ClientProvider) *Manager {
	if cfg == nil {
		cfg = appconfig.Default()
	}
	return &Manager{
		logger:          logger,
		cfg:             cfg,
		clients:         clients,
		instanceService: awspkg.NewInstanceService(clients, logger),
		newRunID:        uuid.NewString,
	}
}

// NewDefaultManager creates a manager backed by a fresh AWS client pool
func NewDefaultManager(logger *logging.Logger, cfg *appconfig.Config) *Manager {
	return NewManager(logger, cfg, NewClientPoolAdapter(NewClientPool()))
}

// GetInstanceService exposes the shared instance service
func (m *Manager) GetInstanceService() *awspkg.InstanceService {
	return m.instanceService
}

func (m *Manager) region(region string) string {
	if region != "" {
		return region
	}
	if m.cfg.Region != "" {
		return m.cfg.Region
	}
	return appconfig.DefaultRegion
}

// Resolve turns an identifier into comma-joined instance IDs
func (m *Manager) Resolve(ctx context.Context, identifier, name, region string) (string, error) {
	return m.instanceService.ResolveInstanceIdentifier(ctx, identifier, name, m.region(region))
}

// RestartIIS resolves the identifier and submits the IIS reset script to the matching instances
func (m *Manager) RestartIIS(ctx context.Context, identifier, region string, opts RestartOptions) (*RestartResult, error) {
	region = m.region(region)
	runID := m.newRunID()

	m.logger.Info("Restarting IIS", "identifier", identifier, "region", region, "run", runID)

	instanceIDs, err := m.instanceService.ResolveInstanceIdentifier(ctx, identifier, opts.Name, region)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve instance: %w", err)
	}

	ssmClient, err := m.clients.GetSSMClient(ctx, region)
	if err != nil {
		return nil, errors.NewAWSError("failed to get SSM client", err)
	}

	dispatchOpts := OptionsFromConfig(m.cfg)
	dispatchOpts.Comment = "iisctl restart " + runID
	dispatcher := NewDispatcher(ssmClient, dispatchOpts, m.logger)

	input, err := dispatcher.BuildInput(instanceIDs)
	if err != nil {
		return nil, err
	}

	result := &RestartResult{
		RunID:       runID,
		Region:      region,
		InstanceIDs: input.InstanceIds,
		DryRun:      opts.DryRun,
		Input:       input,
	}

	if opts.DryRun {
		m.logger.Info("Dry run, command not sent", "targets", len(input.InstanceIds))
		return result, nil
	}

	commandID, err := dispatcher.Dispatch(ctx, instanceIDs)
	if err != nil {
		return nil, err
	}
	result.CommandID = commandID

	m.logger.Info("IIS reset command sent", "commandID", commandID, "run", runID)

	if !opts.Wait {
		return result, nil
	}

	waiter := NewWaiter(ssmClient,
		time.Duration(m.cfg.SSM.WaitTimeout)*time.Second,
		time.Duration(m.cfg.SSM.PollInterval)*time.Second,
		m.logger)

	results, err := waiter.Wait(ctx, commandID, result.InstanceIDs)
	result.Results = results
	if err != nil {
		return result, err
	}

	return result, nil
}

// CommandStatus lists the per-instance status of a previously sent command
func (m *Manager) CommandStatus(ctx context.Context, commandID, region string) ([]InvocationStatus, error) {
	ssmClient, err := m.clients.GetSSMClient(ctx, m.region(region))
	if err != nil {
		return nil, errors.NewAWSError("failed to get SSM client", err)
	}
	return ListInvocations(ctx, ssmClient, commandID)
}

// ListWindowsInstances lists running Windows instances for the interactive picker
func (m *Manager) ListWindowsInstances(ctx context.Context, region string) ([]awspkg.Instance, error) {
	return m.instanceService.ListWindowsInstances(ctx, m.region(region))
}
