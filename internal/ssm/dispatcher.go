package ssm

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	appconfig "iisctl/internal/config"
	"iisctl/internal/iis"
	awspkg "iisctl/pkg/aws"
	"iisctl/pkg/errors"
	"iisctl/pkg/logging"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// maxTargets is the SendCommand limit on explicit instance IDs
const maxTargets = 50

// CommandSender is the part of the SSM API that submits commands
type CommandSender interface {
	SendCommand(ctx context.Context, params *ssm.SendCommandInput, optFns ...func(*ssm.Options)) (*ssm.SendCommandOutput, error)
}

// API is every SSM call iisctl makes; *ssm.Client satisfies it
type API interface {
	CommandSender
	InvocationGetter
	InvocationLister
}

// DispatchOptions are the fixed send-command parameters for an IIS reset
type DispatchOptions struct {
	DocumentName     string
	ExecutionTimeout int
	DeliveryTimeout  int32
	WorkingDirectory string
	Script           string
	Comment          string
}

// OptionsFromConfig builds dispatch options from the application configuration
func OptionsFromConfig(c *appconfig.Config) DispatchOptions {
	return DispatchOptions{
		DocumentName:     c.SSM.DocumentName,
		ExecutionTimeout: c.SSM.ExecutionTimeout,
		DeliveryTimeout:  c.SSM.DeliveryTimeout,
		WorkingDirectory: c.SSM.WorkingDirectory,
		Script:           c.SSM.Script,
	}
}

// Dispatcher submits the IIS reset script to instances
type Dispatcher struct {
	client CommandSender
	opts   DispatchOptions
	logger *logging.Logger
}

// NewDispatcher creates a dispatcher; empty options fall back to the built-in defaults
func NewDispatcher(client CommandSender, opts DispatchOptions, logger *logging.Logger) *Dispatcher {
	if opts.DocumentName == "" {
		opts.DocumentName = iis.DocumentName
	}
	if opts.ExecutionTimeout == 0 {
		opts.ExecutionTimeout = appconfig.DefaultExecutionTimeout
	}
	if opts.DeliveryTimeout == 0 {
		opts.DeliveryTimeout = appconfig.DefaultDeliveryTimeout
	}

	return &Dispatcher{
		client: client,
		opts:   opts,
		logger: logger,
	}
}

// SplitInstanceIDs splits a comma-joined target list, trimming blanks
func SplitInstanceIDs(instanceIDs string) []string {
	parts := strings.Split(instanceIDs, ",")
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		if id := strings.TrimSpace(part); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

// BuildInput validates the targets and assembles the SendCommand request
func (d *Dispatcher) BuildInput(instanceIDs string) (*ssm.SendCommandInput, error) {
	targets := SplitInstanceIDs(instanceIDs)
	if len(targets) == 0 {
		return nil, errors.NewValidationError("no instance IDs to target")
	}
	if len(targets) > maxTargets {
		return nil, errors.NewValidationError(fmt.Sprintf("%d instances targeted, SSM accepts at most %d per command", len(targets), maxTargets))
	}
	for _, id := range targets {
		if err := awspkg.ValidateInstanceID(id); err != nil {
			return nil, errors.Wrap(errors.ErrTypeValidation, "invalid dispatch target", err)
		}
	}

	input := &ssm.SendCommandInput{
		DocumentName: aws.String(d.opts.DocumentName),
		InstanceIds:  targets,
		Parameters: map[string][]string{
			"workingDirectory": {d.opts.WorkingDirectory},
			"executionTimeout": {strconv.Itoa(d.opts.ExecutionTimeout)},
			"commands":         iis.Commands(d.opts.Script),
		},
		TimeoutSeconds: aws.Int32(d.opts.DeliveryTimeout),
	}
	if d.opts.Comment != "" {
		input.Comment = aws.String(truncateComment(d.opts.Comment))
	}

	return input, nil
}

// Dispatch submits the reset script and returns the SSM command ID
func (d *Dispatcher) Dispatch(ctx context.Context, instanceIDs string) (string, error) {
	input, err := d.BuildInput(instanceIDs)
	if err != nil {
		return "", err
	}

	d.logger.Debug("Sending IIS reset command", "document", d.opts.DocumentName, "targets", strings.Join(input.InstanceIds, ","))

	resp, err := d.client.SendCommand(ctx, input)
	if err != nil {
		return "", errors.NewSSMError("failed to send command", err).WithContext("instance_ids", instanceIDs)
	}
	if resp == nil || resp.Command == nil || aws.ToString(resp.Command.CommandId) == "" {
		return "", errors.NewSSMError("send command returned no command ID", nil)
	}

	commandID := aws.ToString(resp.Command.CommandId)
	d.logger.Debug("Command sent with ID", "commandID", commandID)

	return commandID, nil
}

// truncateComment keeps comments under the 100 character SSM limit
func truncateComment(comment string) string {
	const maxComment = 100
	if len(comment) <= maxComment {
		return comment
	}
	return comment[:maxComment]
}
