package cluster

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gridctl/internal/cloud"
)

func testPlan(workers int64) LaunchPlan {
	plan := NewLaunchPlan(workers, "m1.xlarge", "", "ami-0123", "demo-key", "us-west-2a")
	plan.WaitBudget = 50 * time.Millisecond
	return plan
}

func TestLaunchOnDemandCounts(t *testing.T) {
	gw := newFakeGateway()

	view, err := Launch(gw, "demo", testPlan(3))
	require.NoError(t, err)
	assert.Len(t, view.Masters, 1)
	assert.Len(t, view.Workers, 3)

	// One run call per role: workers as a batch, master alone.
	require.Len(t, gw.runCalls, 2)
	assert.Equal(t, runCall{group: "demo-slaves", count: 3}, gw.runCalls[0])
	assert.Equal(t, runCall{group: "demo-master", count: 1}, gw.runCalls[1])
}

func TestLaunchTwiceFailsWithoutMutation(t *testing.T) {
	gw := newFakeGateway()

	_, err := Launch(gw, "demo", testPlan(2))
	require.NoError(t, err)
	mutations := gw.mutationCalls()

	_, err = Launch(gw, "demo", testPlan(2))
	require.ErrorIs(t, err, ErrAlreadyExists)
	assert.Equal(t, mutations, gw.mutationCalls(), "second launch must not touch the provider")
}

func TestLaunchIntoPartialClusterFails(t *testing.T) {
	gw := newFakeGateway()
	// A lone master, e.g. left over from an interrupted launch.
	gw.newInstance("demo-master", cloud.StateRunning)

	_, err := Launch(gw, "demo", testPlan(2))
	require.ErrorIs(t, err, ErrAlreadyExists)
	assert.Zero(t, gw.mutationCalls())
}

func TestEnsureSecurityGroupsIdempotent(t *testing.T) {
	gw := newFakeGateway()

	require.NoError(t, ensureSecurityGroups(gw, "demo"))
	assert.Equal(t, 3, gw.createCalls)
	installed := gw.authorizeCalls
	assert.Greater(t, installed, 0)

	// Populated groups must not receive a single additional rule.
	require.NoError(t, ensureSecurityGroups(gw, "demo"))
	assert.Equal(t, 3, gw.createCalls)
	assert.Equal(t, installed, gw.authorizeCalls)
}

func TestLaunchSpotFullGrant(t *testing.T) {
	gw := newFakeGateway()
	gw.spotGrants = 2

	plan := testPlan(2)
	plan.SpotPrice = 0.35
	view, err := Launch(gw, "demo", plan)
	require.NoError(t, err)
	assert.Len(t, view.Workers, 2)
	assert.Len(t, view.Masters, 1)
}

func TestLaunchSpotPartialGrant(t *testing.T) {
	gw := newFakeGateway()
	gw.spotGrants = 2

	plan := testPlan(3)
	plan.SpotPrice = 0.35
	view, err := Launch(gw, "demo", plan)
	require.Nil(t, view)

	var partial *PartialGrantError
	require.ErrorAs(t, err, &partial)
	assert.Equal(t, 2, partial.Granted)
	assert.Equal(t, 3, partial.Requested)
	assert.Len(t, partial.InstanceIDs, 2, "must not fabricate the missing instance")
}

func TestNewLaunchPlanDefaults(t *testing.T) {
	plan := NewLaunchPlan(4, "m1.xlarge", "", "ami-0123", "k", "us-west-2a")
	assert.Equal(t, "m1.xlarge", plan.MasterInstanceType)
	assert.Equal(t, 4, plan.ProcsPerNode)

	plan = NewLaunchPlan(4, "cc2.8xlarge", "m1.xlarge", "ami-0123", "k", "us-west-2a")
	assert.Equal(t, "m1.xlarge", plan.MasterInstanceType)
	assert.Equal(t, 8, plan.ProcsPerNode)
}
