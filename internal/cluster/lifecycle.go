package cluster

import (
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"gridctl/internal/cloud"
	"gridctl/internal/logging"
)

// Poll intervals, shrunk by tests.
var (
	instancePollInterval = cloud.InstancePollInterval
	spotPollInterval     = cloud.SpotPollInterval
)

// startable reports whether an instance can still be stopped or started;
// terminating instances are left alone.
func startable(instance cloud.Instance) bool {
	return instance.State != cloud.StateShuttingDown && instance.State != cloud.StateTerminated
}

// WaitUntilRunning polls the cluster's instances until none is pending,
// then sleeps the settle delay before the cluster is considered ready for
// configuration. One role group at a time, master first.
func WaitUntilRunning(gw cloud.Gateway, view *ClusterView, settle time.Duration) error {
	logging.UserProgress("Waiting for instances to start up...")
	time.Sleep(instancePollInterval)
	for _, group := range [][]cloud.Instance{view.Masters, view.Workers, view.Coordinators} {
		if len(group) == 0 {
			continue
		}
		if err := waitForInstances(gw, instanceIds(group)); err != nil {
			return err
		}
	}
	logging.UserProgress("Waiting %s more for the cluster to settle...", settle)
	time.Sleep(settle)
	return nil
}

func waitForInstances(gw cloud.Gateway, ids []string) error {
	for {
		instances, err := gw.DescribeInstances(ids)
		if err != nil {
			return err
		}
		pending := 0
		for _, instance := range instances {
			if instance.State == cloud.StatePending {
				pending++
			}
		}
		if pending == 0 {
			return nil
		}
		log.Debug().Msgf("%d instance(s) still pending", pending)
		time.Sleep(instancePollInterval)
	}
}

// Stop stops every non-terminating instance in all three groups. It is
// destructive (ephemeral data is lost) and therefore a no-op unless the
// caller confirms.
func Stop(gw cloud.Gateway, name ClusterName, confirmed bool) error {
	if !confirmed {
		logging.UserWarning("Stop of cluster %s not confirmed, aborting", name)
		return nil
	}
	view, err := Discover(gw, name)
	if err != nil {
		return err
	}
	for _, group := range []struct {
		role      Role
		instances []cloud.Instance
	}{
		{RoleMaster, view.Masters},
		{RoleWorker, view.Workers},
		{RoleCoordinator, view.Coordinators},
	} {
		ids := stoppableIds(group.instances)
		if len(ids) == 0 {
			continue
		}
		logging.UserProgress("Stopping %s instances...", group.role)
		if err := gw.StopInstances(ids); err != nil {
			return errors.Wrapf(err, "stopping %s group", group.role)
		}
	}
	return nil
}

func stoppableIds(instances []cloud.Instance) []string {
	var ids []string
	for _, instance := range instances {
		if startable(instance) {
			ids = append(ids, instance.ID)
		}
	}
	return ids
}

// Start brings a stopped cluster back: workers first, then master, then
// coordinators, tolerating instances that are already running. The caller
// follows up with WaitUntilRunning and bootstrap, same as launch.
func Start(gw cloud.Gateway, name ClusterName) (*ClusterView, error) {
	view, err := Discover(gw, name)
	if err != nil {
		return nil, err
	}
	for _, group := range []struct {
		role      Role
		instances []cloud.Instance
	}{
		{RoleWorker, view.Workers},
		{RoleMaster, view.Masters},
		{RoleCoordinator, view.Coordinators},
	} {
		ids := stoppableIds(group.instances)
		if len(ids) == 0 {
			continue
		}
		logging.UserProgress("Starting %s instances...", group.role)
		if err := gw.StartInstances(ids); err != nil {
			return nil, errors.Wrapf(err, "starting %s group", group.role)
		}
	}
	return view, nil
}

// Destroy terminates every active instance across all three groups.
// Irreversible; a no-op without confirmation.
func Destroy(gw cloud.Gateway, name ClusterName, confirmed bool) error {
	if !confirmed {
		logging.UserWarning("Destroy of cluster %s not confirmed, aborting", name)
		return nil
	}
	view, err := Discover(gw, name)
	if err != nil {
		return err
	}
	for _, group := range []struct {
		role      Role
		instances []cloud.Instance
	}{
		{RoleMaster, view.Masters},
		{RoleWorker, view.Workers},
		{RoleCoordinator, view.Coordinators},
	} {
		if len(group.instances) == 0 {
			continue
		}
		logging.UserProgress("Terminating %s instances...", group.role)
		if err := gw.TerminateInstances(instanceIds(group.instances)); err != nil {
			return errors.Wrapf(err, "terminating %s group", group.role)
		}
	}
	return nil
}

// AttachVolume attaches an existing data volume to the master node.
func AttachVolume(gw cloud.Gateway, name ClusterName, volumeID, device string) error {
	if volumeID == "" {
		return errors.New("volume id is required")
	}
	view, err := Discover(gw, name)
	if err != nil {
		return err
	}
	return gw.AttachVolume(volumeID, view.Master().ID, device)
}

// DetachVolume detaches a data volume. The volume id alone identifies the
// attachment; no discovery is needed.
func DetachVolume(gw cloud.Gateway, volumeID string) error {
	if volumeID == "" {
		return errors.New("volume id is required")
	}
	return gw.DetachVolume(volumeID)
}
