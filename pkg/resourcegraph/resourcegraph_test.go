package resourcegraph

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/azure-inventory/pkg/azcli"
	"github.com/carverauto/azure-inventory/pkg/logger"
	"github.com/carverauto/azure-inventory/pkg/models"
)

func newTestClient(t *testing.T) (*Client, *azcli.MockRunner) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	runner := azcli.NewMockRunner(ctrl)

	return NewClient(runner, 1000, 100, logger.NewTestLogger()), runner
}

func vmPageJSON(t *testing.T, names []string, skipToken string) []byte {
	t.Helper()

	data := make([]map[string]any, 0, len(names))
	for _, name := range names {
		data = append(data, map[string]any{
			"id":            fmt.Sprintf("/subscriptions/s/resourceGroups/rg/providers/Microsoft.Compute/virtualMachines/%s", name),
			"name":          name,
			"resourceGroup": "rg",
			"location":      "eastus",
			"osType":        "Linux",
			"nicId":         "/nic/" + name,
		})
	}

	payload := map[string]any{"data": data}
	if skipToken != "" {
		payload["skipToken"] = skipToken
	}

	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	return raw
}

func TestClient_VirtualMachines_FollowsSkipTokenPagination(t *testing.T) {
	t.Parallel()

	client, runner := newTestClient(t)

	calls := 0
	tokens := []string{"", "t1", "t2", "t3"}
	pages := [][]string{{"vm-1", "vm-2"}, {"vm-3"}, {"vm-4"}, nil}

	runner.EXPECT().
		Run(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, args ...string) (*azcli.Result, error) {
			require.Less(t, calls, 4, "client must stop after the page without a token")

			wantToken := tokens[calls]
			if wantToken == "" {
				assert.NotContains(t, args, "--skip-token")
			} else {
				assert.Contains(t, args, "--skip-token")
				assert.Contains(t, args, wantToken)
			}

			var next string
			if calls < 3 {
				next = tokens[calls+1]
			}

			out := vmPageJSON(t, pages[calls], next)
			calls++

			return &azcli.Result{ExitCode: 0, Stdout: out}, nil
		}).
		Times(4)

	vms := client.VirtualMachines(context.Background())

	require.Equal(t, 4, calls)
	require.Len(t, vms, 4)
	assert.Equal(t, "vm-1", vms[0].Name)
	assert.Equal(t, "vm-4", vms[3].Name)
}

func TestClient_RecognizesAlternateTokenKey(t *testing.T) {
	t.Parallel()

	client, runner := newTestClient(t)

	first := []byte(`{"data":[{"id":"/nic/a","privateIp":"10.0.0.4"}],"skip_token":"alt"}`)
	second := []byte(`{"data":[{"id":"/nic/b","privateIp":""}]}`)

	gomock.InOrder(
		runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(&azcli.Result{Stdout: first}, nil),
		runner.EXPECT().Run(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, args ...string) (*azcli.Result, error) {
				assert.Contains(t, args, "alt")
				return &azcli.Result{Stdout: second}, nil
			}),
	)

	nics := client.NetworkInterfaces(context.Background())
	require.Len(t, nics, 2)
	assert.Equal(t, []models.NetworkInterface{
		{ID: "/nic/a", PrivateIP: "10.0.0.4"},
		{ID: "/nic/b", PrivateIP: ""},
	}, nics)
}

func TestClient_FailsClosedToEmpty(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result *azcli.Result
		err    error
	}{
		{
			name: "non-zero exit",
			result: &azcli.Result{
				ExitCode: 1,
				Stderr:   []byte("az: not logged in"),
			},
		},
		{
			name:   "blank stdout",
			result: &azcli.Result{ExitCode: 0, Stdout: []byte("  \n")},
		},
		{
			name:   "unparsable payload",
			result: &azcli.Result{ExitCode: 0, Stdout: []byte("<html>gateway error</html>")},
		},
		{
			name: "timeout",
			err:  azcli.ErrTimeout,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, runner := newTestClient(t)
			runner.EXPECT().Run(gomock.Any(), gomock.Any()).Return(tt.result, tt.err)

			vms := client.VirtualMachines(context.Background())
			assert.Empty(t, vms)
		})
	}
}

func TestClient_FailureOnLaterPageDiscardsEverything(t *testing.T) {
	t.Parallel()

	client, runner := newTestClient(t)

	gomock.InOrder(
		runner.EXPECT().Run(gomock.Any(), gomock.Any()).
			Return(&azcli.Result{Stdout: vmPageJSON(t, []string{"vm-1"}, "t1")}, nil),
		runner.EXPECT().Run(gomock.Any(), gomock.Any()).
			Return(&azcli.Result{ExitCode: 1}, nil),
	)

	vms := client.VirtualMachines(context.Background())
	assert.Empty(t, vms)
}

func TestClient_PageCapGuardsAgainstInfinitePagination(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	runner := azcli.NewMockRunner(ctrl)
	client := NewClient(runner, 10, 3, logger.NewTestLogger())

	// Backend that always hands out another token.
	runner.EXPECT().
		Run(gomock.Any(), gomock.Any()).
		Return(&azcli.Result{Stdout: vmPageJSON(t, []string{"vm"}, "again")}, nil).
		Times(3)

	vms := client.VirtualMachines(context.Background())
	assert.Empty(t, vms)
}
