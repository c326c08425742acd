package aws

import (
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// NameTagKey is the EC2 tag that carries a server's human-readable name
const NameTagKey = "Name"

// Instance is the slice of EC2 instance metadata iisctl shows when picking a target
type Instance struct {
	InstanceID       string            `json:"instance_id" yaml:"instance_id"`
	Name             string            `json:"name" yaml:"name"`
	State            string            `json:"state" yaml:"state"`
	Platform         string            `json:"platform" yaml:"platform"`
	PrivateIPAddress string            `json:"private_ip,omitempty" yaml:"private_ip,omitempty"`
	Tags             map[string]string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// NewInstanceFromEC2 converts an EC2 API instance
func NewInstanceFromEC2(ec2Instance types.Instance) Instance {
	tags := extractTags(ec2Instance.Tags)

	instance := Instance{
		InstanceID:       aws.ToString(ec2Instance.InstanceId),
		Name:             tags[NameTagKey],
		Platform:         getPlatform(ec2Instance),
		PrivateIPAddress: aws.ToString(ec2Instance.PrivateIpAddress),
		Tags:             tags,
	}
	if ec2Instance.State != nil {
		instance.State = string(ec2Instance.State.Name)
	}

	return instance
}

func extractTags(tags []types.Tag) map[string]string {
	tagMap := make(map[string]string, len(tags))
	for _, tag := range tags {
		if tag.Key != nil && tag.Value != nil {
			tagMap[*tag.Key] = *tag.Value
		}
	}
	return tagMap
}

// getPlatform determines the platform from EC2 instance information
func getPlatform(instance types.Instance) string {
	if instance.PlatformDetails != nil {
		details := strings.ToLower(*instance.PlatformDetails)
		if strings.Contains(details, "windows") {
			return "Windows"
		}
		if strings.Contains(details, "linux") {
			return "Linux"
		}
	}

	if instance.Platform == types.PlatformValuesWindows {
		return "Windows"
	}

	return "Linux"
}
