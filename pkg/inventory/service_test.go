package inventory

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/azure-inventory/pkg/logger"
	"github.com/carverauto/azure-inventory/pkg/mde"
	"github.com/carverauto/azure-inventory/pkg/models"
)

type fakeGraph struct {
	vms      []models.VirtualMachine
	nics     []models.NetworkInterface
	vmCalls  int
	nicCalls int
}

func (f *fakeGraph) VirtualMachines(_ context.Context) []models.VirtualMachine {
	f.vmCalls++
	return f.vms
}

func (f *fakeGraph) NetworkInterfaces(_ context.Context) []models.NetworkInterface {
	f.nicCalls++
	return f.nics
}

type fakeKeys struct {
	keys  mde.KeySet
	calls int
}

func (f *fakeKeys) WindowsMachineKeys(_ context.Context) mde.KeySet {
	f.calls++
	return f.keys
}

type fakeStore struct {
	cached []byte
	hit    bool
	saved  [][]byte
}

func (f *fakeStore) Load() ([]byte, bool) {
	return f.cached, f.hit
}

func (f *fakeStore) Save(data []byte) {
	f.saved = append(f.saved, data)
}

func newTestService(graph *fakeGraph, keys *fakeKeys, store *fakeStore) *Service {
	return NewService(graph, keys, store, Options{}, logger.NewTestLogger())
}

func TestService_CacheHitSkipsAllQueries(t *testing.T) {
	t.Parallel()

	graph := &fakeGraph{}
	keys := &fakeKeys{}
	store := &fakeStore{cached: []byte(`{"cached": true}`), hit: true}

	data, err := newTestService(graph, keys, store).Run(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, []byte(`{"cached": true}`), data, "cached document is served verbatim")
	assert.Zero(t, graph.vmCalls)
	assert.Zero(t, graph.nicCalls)
	assert.Zero(t, keys.calls)
	assert.Empty(t, store.saved)
}

func TestService_RefreshBypassesCache(t *testing.T) {
	t.Parallel()

	graph := &fakeGraph{vms: []models.VirtualMachine{{Name: "web01", OSType: models.OSTypeLinux}}}
	keys := &fakeKeys{keys: make(mde.KeySet)}
	store := &fakeStore{cached: []byte(`{"stale": true}`), hit: true}

	data, err := newTestService(graph, keys, store).Run(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, 1, graph.vmCalls)
	require.Len(t, store.saved, 1, "refresh still writes the cache")
	assert.Equal(t, data, store.saved[0])
}

func TestService_MissRunsSequentiallyAndCaches(t *testing.T) {
	t.Parallel()

	graph := &fakeGraph{
		vms:  []models.VirtualMachine{{Name: "dc01", OSType: models.OSTypeWindows, ID: "/vm/dc01"}},
		nics: []models.NetworkInterface{},
	}
	keySet := make(mde.KeySet)
	keySet.Add("dc01")
	keys := &fakeKeys{keys: keySet}
	store := &fakeStore{}

	data, err := newTestService(graph, keys, store).Run(context.Background(), false)
	require.NoError(t, err)

	assert.Equal(t, 1, graph.vmCalls)
	assert.Equal(t, 1, graph.nicCalls)
	assert.Equal(t, 1, keys.calls)
	require.Len(t, store.saved, 1)
	assert.Equal(t, data, store.saved[0])

	var doc models.Document

	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, []string{"dc01"}, doc.WindowsMDEOnboarded.Hosts)
}

func TestService_UpstreamFailureEmitsEmptyDocumentNotError(t *testing.T) {
	t.Parallel()

	graph := &fakeGraph{}
	keys := &fakeKeys{keys: make(mde.KeySet)}
	store := &fakeStore{}

	data, err := newTestService(graph, keys, store).Run(context.Background(), false)
	require.NoError(t, err)

	expected := `{
		"_meta": {"hostvars": {}},
		"all": {"hosts": []},
		"linux": {"hosts": []},
		"windows": {"hosts": []},
		"network_appliances": {"hosts": []},
		"windows_mde_onboarded": {"hosts": []},
		"windows_mde_not_onboarded": {"hosts": []}
	}`
	assert.JSONEq(t, expected, string(data))
	require.Len(t, store.saved, 1, "the degraded document is still cached")
}

func TestService_RunTwiceProducesIdenticalBytes(t *testing.T) {
	t.Parallel()

	graph := &fakeGraph{vms: []models.VirtualMachine{
		{Name: "web01", OSType: models.OSTypeLinux},
		{Name: "dc01", OSType: models.OSTypeWindows},
	}}
	keys := &fakeKeys{keys: make(mde.KeySet)}

	svc := newTestService(graph, keys, &fakeStore{})

	first, err := svc.Run(context.Background(), true)
	require.NoError(t, err)

	second, err := svc.Run(context.Background(), true)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
