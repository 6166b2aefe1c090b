package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridctl/internal/cloud"
)

func launchedCluster(t *testing.T, gw *fakeGateway, workers int64) *ClusterView {
	t.Helper()
	view, err := Launch(gw, "demo", testPlan(workers))
	require.NoError(t, err)
	return view
}

func TestStopThenStartKeepsInstanceIds(t *testing.T) {
	gw := newFakeGateway()
	before := launchedCluster(t, gw, 2)

	require.NoError(t, Stop(gw, "demo", true))
	stopped, err := Discover(gw, "demo")
	require.NoError(t, err)
	for _, instance := range stopped.All() {
		assert.Equal(t, cloud.StateStopped, instance.State)
	}

	after, err := Start(gw, "demo")
	require.NoError(t, err)
	assert.ElementsMatch(t, instanceIds(before.Masters), instanceIds(after.Masters))
	assert.ElementsMatch(t, instanceIds(before.Workers), instanceIds(after.Workers))

	running, err := Discover(gw, "demo")
	require.NoError(t, err)
	for _, instance := range running.All() {
		assert.Equal(t, cloud.StateRunning, instance.State)
	}
}

func TestStopWithoutConfirmationIsNoop(t *testing.T) {
	gw := newFakeGateway()
	launchedCluster(t, gw, 2)
	mutations := gw.mutationCalls()

	require.NoError(t, Stop(gw, "demo", false))
	assert.Equal(t, mutations, gw.mutationCalls())
}

func TestDestroyWithoutConfirmationIsNoop(t *testing.T) {
	gw := newFakeGateway()
	launchedCluster(t, gw, 2)

	require.NoError(t, Destroy(gw, "demo", false))
	assert.Zero(t, gw.terminateCalls)
}

func TestDestroyTerminatesEveryGroup(t *testing.T) {
	gw := newFakeGateway()
	launchedCluster(t, gw, 2)

	require.NoError(t, Destroy(gw, "demo", true))
	// One terminate call per non-empty role group.
	assert.Equal(t, 2, gw.terminateCalls)
	_, err := Discover(gw, "demo")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Zero(t, notFound.ActiveInstances)
}

func TestWaitUntilRunningPollsOutPending(t *testing.T) {
	gw := newFakeGateway()
	view := launchedCluster(t, gw, 1)
	gw.describeCalls = 0
	gw.pendingPolls = 3

	require.NoError(t, WaitUntilRunning(gw, view, 0))
	assert.Greater(t, gw.describeCalls, 3)
}

func TestAttachVolumeRequiresVolumeId(t *testing.T) {
	gw := newFakeGateway()
	launchedCluster(t, gw, 1)

	require.Error(t, AttachVolume(gw, "demo", "", "/dev/sdh"))
	assert.Zero(t, gw.attachCalls)

	require.NoError(t, AttachVolume(gw, "demo", "vol-0a1b", "/dev/sdh"))
	assert.Equal(t, 1, gw.attachCalls)
}

func TestDetachVolumeRequiresVolumeId(t *testing.T) {
	gw := newFakeGateway()
	require.Error(t, DetachVolume(gw, ""))
	require.NoError(t, DetachVolume(gw, "vol-0a1b"))
	assert.Equal(t, 1, gw.detachCalls)
}
