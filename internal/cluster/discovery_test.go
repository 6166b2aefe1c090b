package cluster

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridctl/internal/cloud"
)

func TestDiscoverClassifiesByGroup(t *testing.T) {
	gw := newFakeGateway()
	gw.newInstance("demo-master", cloud.StateRunning)
	gw.newInstance("demo-slaves", cloud.StateRunning)
	gw.newInstance("demo-slaves", cloud.StatePending)
	gw.newInstance("demo-zoo", cloud.StateStopped)
	gw.newInstance("other-master", cloud.StateRunning)
	gw.newInstance("demo-slaves", cloud.StateTerminated)

	view, err := Discover(gw, "demo")
	require.NoError(t, err)
	assert.Len(t, view.Masters, 1)
	assert.Len(t, view.Workers, 2)
	assert.Len(t, view.Coordinators, 1)
}

func TestDiscoverMasterWithoutWorkersIsNotFound(t *testing.T) {
	gw := newFakeGateway()
	gw.newInstance("demo-master", cloud.StateRunning)

	view, err := Discover(gw, "demo")
	require.Nil(t, view)
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, []string{"demo-slaves"}, notFound.EmptyGroups)
	assert.Equal(t, 1, notFound.ActiveInstances)
}

func TestDiscoverEmptyClusterNamesBothGroups(t *testing.T) {
	gw := newFakeGateway()

	_, err := Discover(gw, "demo")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, []string{"demo-master", "demo-slaves"}, notFound.EmptyGroups)
	assert.Zero(t, notFound.ActiveInstances)
}

func TestDiscoverAmbiguousMembershipIsInconsistent(t *testing.T) {
	gw := newFakeGateway()
	gw.newInstance("demo-master", cloud.StateRunning)
	gw.newInstance("demo-slaves", cloud.StateRunning)
	ambiguous := gw.newInstance("demo-master", cloud.StateRunning)
	gw.instances[2].SecurityGroups = []string{"demo-master", "demo-slaves"}

	view, err := Discover(gw, "demo")
	require.Nil(t, view)
	var inconsistent *InconsistentError
	require.ErrorAs(t, err, &inconsistent)
	assert.Equal(t, ambiguous.ID, inconsistent.InstanceID)
	assert.ElementsMatch(t, []string{"demo-master", "demo-slaves"}, inconsistent.Groups)
}

func TestDiscoverSkipsTerminatedInstances(t *testing.T) {
	gw := newFakeGateway()
	gw.newInstance("demo-master", cloud.StateTerminated)
	gw.newInstance("demo-slaves", cloud.StateShuttingDown)

	_, err := Discover(gw, "demo")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Zero(t, notFound.ActiveInstances)
}
