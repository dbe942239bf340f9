package azcli

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/azure-inventory/pkg/logger"
)

func TestCLIRunner_CapturesStdout(t *testing.T) {
	t.Parallel()

	r := NewCLIRunner("sh", 5*time.Second, logger.NewTestLogger())

	result, err := r.Run(context.Background(), "-c", "echo hello")
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "hello\n", string(result.Stdout))
}

func TestCLIRunner_NonZeroExitIsNotAnError(t *testing.T) {
	t.Parallel()

	r := NewCLIRunner("sh", 5*time.Second, logger.NewTestLogger())

	result, err := r.Run(context.Background(), "-c", "echo oops >&2; exit 3")
	require.NoError(t, err)
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "oops\n", string(result.Stderr))
}

func TestCLIRunner_TimeoutNeverHangs(t *testing.T) {
	t.Parallel()

	r := NewCLIRunner("sleep", 100*time.Millisecond, logger.NewTestLogger())

	start := time.Now()
	result, err := r.Run(context.Background(), "10")
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Nil(t, result)
	assert.Less(t, elapsed, 5*time.Second)
}

func TestCLIRunner_MissingBinary(t *testing.T) {
	t.Parallel()

	r := NewCLIRunner("definitely-not-a-real-binary", time.Second, logger.NewTestLogger())

	result, err := r.Run(context.Background(), "graph", "query")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrTimeout)
	assert.Nil(t, result)
}

func TestNewCLIRunner_Defaults(t *testing.T) {
	t.Parallel()

	r := NewCLIRunner("", 0, logger.NewTestLogger())
	assert.Equal(t, "az", r.Binary)
	assert.Equal(t, defaultTimeout, r.Timeout)
}
