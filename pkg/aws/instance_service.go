package aws

import (
	"context"
	"fmt"
	"strings"

	"iisctl/pkg/errors"
	"iisctl/pkg/logging"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// InstanceDescriber is the part of the EC2 API the instance service calls.
// *ec2.Client satisfies it; tests substitute a fake.
type InstanceDescriber interface {
	DescribeInstances(ctx context.Context, params *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
}

// ClientPoolInterface hands out EC2 clients per region
type ClientPoolInterface interface {
	GetEC2Client(ctx context.Context, region string) (InstanceDescriber, error)
}

// InstanceService turns server identifiers into instance IDs
type InstanceService struct {
	clientPool ClientPoolInterface
	logger     *logging.Logger
}

// NewInstanceService creates a new instance service
func NewInstanceService(clientPool ClientPoolInterface, logger *logging.Logger) *InstanceService {
	return &InstanceService{
		clientPool: clientPool,
		logger:     logger,
	}
}

// ResolveInstanceIdentifier returns the instance ID target for an identifier.
//
// Identifiers already shaped as an instance ID are returned unchanged without
// calling EC2. Anything else is looked up by Name tag (using name when it is set,
// the identifier otherwise) and every matching instance ID is joined with commas.
func (s *InstanceService) ResolveInstanceIdentifier(ctx context.Context, identifier, name, region string) (string, error) {
	if IsInstanceID(identifier) {
		s.logger.Debug("Identifier is already an instance ID", "identifier", identifier)
		return identifier, nil
	}

	if name == "" {
		name = identifier
	}

	ids, err := s.FindInstanceIDsByName(ctx, name, region)
	if err != nil {
		return "", err
	}

	if len(ids) > 1 {
		s.logger.Warn("Name tag matches several instances, targeting all of them", "name", name, "count", len(ids))
	}

	return strings.Join(ids, ","), nil
}

// FindInstanceIDsByName returns the IDs of every instance whose Name tag equals name.
// Only the first page of results is read.
func (s *InstanceService) FindInstanceIDsByName(ctx context.Context, name, region string) ([]string, error) {
	ec2Client, err := s.clientPool.GetEC2Client(ctx, region)
	if err != nil {
		return nil, errors.NewAWSError(fmt.Sprintf("failed to get EC2 client for region %s", region), err)
	}

	s.logger.Debug("Looking up instances by Name tag", "name", name, "region", region)

	result, err := ec2Client.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		Filters: []types.Filter{
			{
				Name:   aws.String("tag:" + NameTagKey),
				Values: []string{name},
			},
		},
	})
	if err != nil {
		return nil, errors.NewAWSError(fmt.Sprintf("failed to search for instances with Name tag '%s'", name), err)
	}

	var ids []string
	for _, reservation := range result.Reservations {
		for _, instance := range reservation.Instances {
			if instance.InstanceId != nil {
				ids = append(ids, *instance.InstanceId)
			}
		}
	}

	if len(ids) == 0 {
		return nil, errors.NewNotFoundError(fmt.Sprintf("no EC2 instances found with Name tag '%s'", name)).
			WithContext("name", name).
			WithContext("region", region)
	}

	return ids, nil
}

// ListWindowsInstances lists running Windows instances, the only ones an IIS restart can target
func (s *InstanceService) ListWindowsInstances(ctx context.Context, region string) ([]Instance, error) {
	ec2Client, err := s.clientPool.GetEC2Client(ctx, region)
	if err != nil {
		return nil, errors.NewAWSError(fmt.Sprintf("failed to get EC2 client for region %s", region), err)
	}

	input := &ec2.DescribeInstancesInput{
		Filters: []types.Filter{
			{Name: aws.String("platform"), Values: []string{"windows"}},
			{Name: aws.String("instance-state-name"), Values: []string{"running"}},
		},
	}

	var instances []Instance
	paginator := ec2.NewDescribeInstancesPaginator(ec2Client, input)
	for paginator.HasMorePages() {
		output, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, errors.NewAWSError("failed to describe instances", err)
		}

		for _, reservation := range output.Reservations {
			for _, instance := range reservation.Instances {
				instances = append(instances, NewInstanceFromEC2(instance))
			}
		}
	}

	s.logger.Debug("Listed Windows instances", "region", region, "count", len(instances))

	return instances, nil
}
