package ssm

import (
	"context"

	awspkg "iisctl/pkg/aws"
)

// ClientProvider hands out the narrow EC2 and SSM clients the manager needs
type ClientProvider interface {
	GetEC2Client(ctx context.Context, region string) (awspkg.InstanceDescriber, error)
	GetSSMClient(ctx context.Context, region string) (API, error)
}

// ClientPoolAdapter narrows the concrete ClientPool to ClientProvider
type ClientPoolAdapter struct {
	pool *ClientPool
}

// NewClientPoolAdapter creates a new adapter for the ClientPool
func NewClientPoolAdapter(pool *ClientPool) *ClientPoolAdapter {
	return &ClientPoolAdapter{pool: pool}
}

// GetSSMClient returns an SSM client for the specified region
func (a *ClientPoolAdapter) GetSSMClient(ctx context.Context, region string) (API, error) {
	client, err := a.pool.GetSSMClient(ctx, region)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// GetEC2Client returns an EC2 client for the specified region
func (a *ClientPoolAdapter) GetEC2Client(ctx context.Context, region string) (awspkg.InstanceDescriber, error) {
	client, err := a.pool.GetEC2Client(ctx, region)
	if err != nil {
		return nil, err
	}
	return client, nil
}

var (
	_ awspkg.ClientPoolInterface = (*ClientPoolAdapter)(nil)
	_ ClientProvider             = (*ClientPoolAdapter)(nil)
)
