package ssm

import (
	"context"

	"iisctl/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// InvocationLister lists per-instance invocations of a command
type InvocationLister interface {
	ListCommandInvocations(ctx context.Context, params *ssm.ListCommandInvocationsInput, optFns ...func(*ssm.Options)) (*ssm.ListCommandInvocationsOutput, error)
}

// InvocationStatus is the state of a previously submitted command on one instance
type InvocationStatus struct {
	InstanceID   string `json:"instance_id" yaml:"instance_id"`
	InstanceName string `json:"instance_name,omitempty" yaml:"instance_name,omitempty"`
	Status       string `json:"status" yaml:"status"`
	Comment      string `json:"comment,omitempty" yaml:"comment,omitempty"`
	ResponseCode int32  `json:"response_code" yaml:"response_code"`
	Output       string `json:"output,omitempty" yaml:"output,omitempty"`
}

// ListInvocations returns every instance invocation of commandID, with plugin output
func ListInvocations(ctx context.Context, client InvocationLister, commandID string) ([]InvocationStatus, error) {
	if commandID == "" {
		return nil, errors.NewValidationError("command ID is required")
	}

	paginator := ssm.NewListCommandInvocationsPaginator(client, &ssm.ListCommandInvocationsInput{
		CommandId: aws.String(commandID),
		Details:   true,
	})

	var statuses []InvocationStatus
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.NewSSMError("failed to list command invocations", err).WithContext("command_id", commandID)
		}

		for _, inv := range page.CommandInvocations {
			status := InvocationStatus{
				InstanceID:   aws.ToString(inv.InstanceId),
				InstanceName: aws.ToString(inv.InstanceName),
				Status:       string(inv.Status),
				Comment:      aws.ToString(inv.Comment),
			}
			for _, plugin := range inv.CommandPlugins {
				status.Output += aws.ToString(plugin.Output)
				if plugin.ResponseCode != 0 {
					status.ResponseCode = plugin.ResponseCode
				}
			}
			statuses = append(statuses, status)
		}
	}

	if len(statuses) == 0 {
		return nil, errors.NewNotFoundError("no invocations found for command " + commandID)
	}

	return statuses, nil
}
