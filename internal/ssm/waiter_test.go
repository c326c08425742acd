package ssm

import (
	"context"
	"fmt"
	"testing"
	"time"

	"iisctl/internal/testutil"
	"iisctl/pkg/errors"
	"iisctl/pkg/logging"

	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testInstanceA = "i-0123456789abcdef0"
	testInstanceB = "i-0fedcba9876543210"
)

func newTestWaiter(client InvocationGetter, maxWait time.Duration) *Waiter {
	return NewWaiter(client, maxWait, 10*time.Millisecond, logging.NewNoOpLogger())
}

func TestNewWaiter_Defaults(t *testing.T) {
	w := NewWaiter(testutil.NewFakeSSM("cmd"), 0, -1, logging.NewNoOpLogger())
	assert.Equal(t, time.Hour, w.maxWait)
	assert.Equal(t, 5*time.Second, w.pollInterval)
}

func TestWaiter_Success(t *testing.T) {
	fake := testutil.NewFakeSSM("cmd-1")
	fake.SetInvocation("cmd-1", testInstanceA, ssmtypes.CommandInvocationStatusSuccess, "IIS services have been reset.\n", "", 0)
	fake.SetInvocation("cmd-1", testInstanceB, ssmtypes.CommandInvocationStatusSuccess, "IIS services have been reset.\n", "", 0)

	results, err := newTestWaiter(fake, time.Second).Wait(context.Background(), "cmd-1", []string{testInstanceA, testInstanceB})
	require.NoError(t, err)
	require.Len(t, results, 2)

	for i, id := range []string{testInstanceA, testInstanceB} {
		assert.Equal(t, id, results[i].InstanceID)
		assert.True(t, results[i].Succeeded())
		assert.Equal(t, "IIS services have been reset.\n", results[i].Output)
		assert.Nil(t, results[i].ExitCode)
		assert.NotNil(t, results[i].ExecutionTime)
	}
}

func TestWaiter_FailedScriptReportsOutput(t *testing.T) {
	fake := testutil.NewFakeSSM("cmd-2")
	fake.SetInvocation("cmd-2", testInstanceA, ssmtypes.CommandInvocationStatusFailed, "", "Import-Module : module not found", 1)

	results, err := newTestWaiter(fake, time.Second).Wait(context.Background(), "cmd-2", []string{testInstanceA})
	require.NoError(t, err)
	require.Len(t, results, 1)

	result := results[0]
	assert.False(t, result.Succeeded())
	assert.Equal(t, "Failed", result.Status)
	assert.Equal(t, "Import-Module : module not found", result.ErrorOutput)
	require.NotNil(t, result.ExitCode)
	assert.Equal(t, int32(1), *result.ExitCode)
}

func TestWaiter_TimesOutWhileInProgress(t *testing.T) {
	fake := testutil.NewFakeSSM("cmd-3")

	results, err := newTestWaiter(fake, 50*time.Millisecond).Wait(context.Background(), "cmd-3", []string{testInstanceA})
	require.Error(t, err)
	assert.Empty(t, results)
	assert.True(t, errors.IsType(err, errors.ErrTypeSSM))
	assert.GreaterOrEqual(t, fake.GetCalls, 2)
}

func TestWaiter_APIError(t *testing.T) {
	fake := testutil.NewFakeSSM("cmd-4")
	fake.GetErr = fmt.Errorf("AccessDeniedException: not authorized")

	_, err := newTestWaiter(fake, 50*time.Millisecond).Wait(context.Background(), "cmd-4", []string{testInstanceA})
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeSSM))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, isTerminal(ssmtypes.CommandInvocationStatusSuccess))
	assert.True(t, isTerminal(ssmtypes.CommandInvocationStatusFailed))
	assert.True(t, isTerminal(ssmtypes.CommandInvocationStatusCancelled))
	assert.True(t, isTerminal(ssmtypes.CommandInvocationStatusTimedOut))
	assert.False(t, isTerminal(ssmtypes.CommandInvocationStatusInProgress))
	assert.False(t, isTerminal(ssmtypes.CommandInvocationStatusPending))
	assert.False(t, isTerminal(ssmtypes.CommandInvocationStatusDelayed))
}
