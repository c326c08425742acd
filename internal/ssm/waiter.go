package ssm

import (
	"context"
	"time"

	"iisctl/pkg/errors"
	"iisctl/pkg/logging"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// InvocationGetter fetches the result of one command on one instance
type InvocationGetter interface {
	GetCommandInvocation(ctx context.Context, params *ssm.GetCommandInvocationInput, optFns ...func(*ssm.Options)) (*ssm.GetCommandInvocationOutput, error)
}

// CommandResult represents the result of the reset script on one instance
type CommandResult struct {
	InstanceID    string         `json:"instance_id" yaml:"instance_id"`
	Status        string         `json:"status" yaml:"status"`
	ExitCode      *int32         `json:"exit_code,omitempty" yaml:"exit_code,omitempty"`
	Output        string         `json:"output" yaml:"output"`
	ErrorOutput   string         `json:"error_output,omitempty" yaml:"error_output,omitempty"`
	ExecutionTime *time.Duration `json:"execution_time,omitempty" yaml:"execution_time,omitempty"`
}

// Succeeded reports whether the script finished with status Success
func (r *CommandResult) Succeeded() bool {
	return r.Status == string(ssmtypes.CommandInvocationStatusSuccess)
}

// Waiter blocks until a command reaches a terminal state on each instance
type Waiter struct {
	client       InvocationGetter
	logger       *logging.Logger
	maxWait      time.Duration
	pollInterval time.Duration
}

// NewWaiter creates a waiter; non-positive durations fall back to one hour and five seconds
func NewWaiter(client InvocationGetter, maxWait, pollInterval time.Duration, logger *logging.Logger) *Waiter {
	if maxWait <= 0 {
		maxWait = time.Hour
	}
	if pollInterval <= 0 {
		pollInterval = 5 * time.Second
	}
	return &Waiter{
		client:       client,
		logger:       logger,
		maxWait:      maxWait,
		pollInterval: pollInterval,
	}
}

// Wait waits for commandID on every instance in turn and collects the results.
// A failed script is reported in its CommandResult, not as an error.
func (w *Waiter) Wait(ctx context.Context, commandID string, instanceIDs []string) ([]CommandResult, error) {
	results := make([]CommandResult, 0, len(instanceIDs))
	for _, instanceID := range instanceIDs {
		result, err := w.waitOne(ctx, commandID, instanceID)
		if err != nil {
			return results, err
		}
		results = append(results, *result)
	}
	return results, nil
}

func (w *Waiter) waitOne(ctx context.Context, commandID, instanceID string) (*CommandResult, error) {
	input := &ssm.GetCommandInvocationInput{
		CommandId:  aws.String(commandID),
		InstanceId: aws.String(instanceID),
	}

	maxDelay := w.pollInterval * 4
	waiter := ssm.NewCommandExecutedWaiter(w.client, func(o *ssm.CommandExecutedWaiterOptions) {
		o.MinDelay = w.pollInterval
		o.MaxDelay = maxDelay
	})

	w.logger.Debug("Waiting for command", "commandID", commandID, "instanceID", instanceID)

	startTime := time.Now()
	out, waitErr := waiter.WaitForOutput(ctx, input, w.maxWait)
	if waitErr != nil {
		// Failure states end the waiter with an error; fetch the invocation to report its output
		detail, err := w.client.GetCommandInvocation(ctx, input)
		if err != nil || !isTerminal(detail.Status) {
			return nil, errors.NewSSMError("failed waiting for command", waitErr).
				WithContext("command_id", commandID).
				WithContext("instance_id", instanceID)
		}
		out = detail
	}

	executionTime := time.Since(startTime)
	result := &CommandResult{
		InstanceID:    instanceID,
		Status:        string(out.Status),
		Output:        aws.ToString(out.StandardOutputContent),
		ErrorOutput:   aws.ToString(out.StandardErrorContent),
		ExecutionTime: &executionTime,
	}
	if out.ResponseCode != 0 {
		code := out.ResponseCode
		result.ExitCode = &code
	}

	w.logger.Debug("Command finished", "instanceID", instanceID, "status", result.Status)
	return result, nil
}

func isTerminal(status ssmtypes.CommandInvocationStatus) bool {
	switch status {
	case ssmtypes.CommandInvocationStatusSuccess,
		ssmtypes.CommandInvocationStatusFailed,
		ssmtypes.CommandInvocationStatusCancelled,
		ssmtypes.CommandInvocationStatusTimedOut:
		return true
	}
	return false
}
